// Package fixtures ships the demo workspace used to seed the store and to
// drive the mock extractor.
package fixtures

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/docestate/internal/core/domain"
)

//go:embed demo_documents.yaml
var demoDocuments []byte

type Catalog struct {
	Documents []domain.Document `yaml:"documents"`
}

// Demo parses the embedded demo catalog.
func Demo() (*Catalog, error) {
	return Parse(demoDocuments)
}

func Parse(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "parse fixtures", err)
	}
	for i, doc := range catalog.Documents {
		if doc.ID == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "parse fixtures", fmt.Errorf("document #%d has no id", i))
		}
		if !doc.Status.Valid() {
			return nil, domain.WrapError(
				domain.ErrInvalidInput,
				"parse fixtures",
				fmt.Errorf("document %s has unknown status %q", doc.ID, doc.Status),
			)
		}
	}
	return &catalog, nil
}

// Completed returns the fixtures that carry extracted data.
func (c *Catalog) Completed() []domain.Document {
	out := make([]domain.Document, 0, len(c.Documents))
	for _, doc := range c.Documents {
		if doc.Status == domain.StatusCompleted && doc.ExtractedData != nil {
			out = append(out, doc.Clone())
		}
	}
	return out
}

// Seed adds the catalog oldest first, so the store ends up in catalog order.
func (c *Catalog) Seed(state interface{ AddDocument(domain.Document) }) int {
	for i := len(c.Documents) - 1; i >= 0; i-- {
		state.AddDocument(c.Documents[i])
	}
	return len(c.Documents)
}
