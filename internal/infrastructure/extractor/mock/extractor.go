// Package mock fakes field extraction by handing out demo fixtures.
package mock

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/kirillkom/docestate/internal/core/domain"
)

var ErrNoTemplates = errors.New("no extraction templates available")

type Extractor struct {
	templates []domain.Document
}

// NewExtractor uses every template that has extracted data.
func NewExtractor(templates []domain.Document) *Extractor {
	usable := make([]domain.Document, 0, len(templates))
	for _, tpl := range templates {
		if tpl.ExtractedData != nil {
			usable = append(usable, tpl.Clone())
		}
	}
	return &Extractor{templates: usable}
}

// Extract picks a template by hashing the document id, so the same document
// always gets the same fields.
func (e *Extractor) Extract(ctx context.Context, doc domain.Document) (domain.Extraction, error) {
	if err := ctx.Err(); err != nil {
		return domain.Extraction{}, err
	}
	if len(e.templates) == 0 {
		return domain.Extraction{}, fmt.Errorf("extract %s: %w", doc.ID, ErrNoTemplates)
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(doc.ID))
	tpl := e.templates[h.Sum32()%uint32(len(e.templates))]

	data := *tpl.ExtractedData
	summary := ""
	if tpl.Summary != nil {
		summary = *tpl.Summary
	} else {
		summary = Summarize(data)
	}
	return domain.Extraction{Data: data, Summary: summary}, nil
}

// Summarize renders the plain-language summary shown in the viewer.
func Summarize(data domain.ExtractedData) string {
	return fmt.Sprintf(
		"This rental agreement is between %s (Tenant) and %s (Landlord) for the property located at %s. "+
			"The lease term is %s with a monthly rent of %s. "+
			"The agreement includes standard terms for utilities, maintenance, and termination with %s.",
		data.Buyer, data.Seller, data.PropertyAddress, data.LockInPeriod, data.Rent, data.TerminationClause,
	)
}
