// Package export renders workspace documents into spreadsheet form.
package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docestate/internal/core/domain"
)

const (
	SheetName       = "Documents"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{
	"Name",
	"Uploaded",
	"Status",
	"Buyer/Tenant",
	"Seller/Landlord",
	"Agreement Date",
	"Property Address",
	"Rent",
	"Lock-in Period",
	"Termination Clause",
	"Summary",
}

type Service struct {
	logger *slog.Logger
}

func NewService(logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger}
}

// DocumentsXLSX writes one row per document, in the given order. Documents
// without extracted data leave the field columns blank.
func (s *Service) DocumentsXLSX(ctx context.Context, docs []domain.Document) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, rowValues(doc)); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i+2, err)
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 40)
	_ = f.SetColWidth(SheetName, "B", "C", 22)
	_ = f.SetColWidth(SheetName, "D", "J", 26)
	_ = f.SetColWidth(SheetName, "K", "K", 80)
	_ = f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.InfoContext(ctx, "documents_exported",
		"rows", len(docs),
		"bytes", buf.Len(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func rowValues(doc domain.Document) *[]any {
	row := []any{doc.Name, doc.UploadedAt, string(doc.Status)}
	if data := doc.ExtractedData; data != nil {
		row = append(row,
			data.Buyer,
			data.Seller,
			data.AgreementDate,
			data.PropertyAddress,
			data.Rent,
			data.LockInPeriod,
			data.TerminationClause,
		)
	} else {
		row = append(row, "", "", "", "", "", "", "")
	}
	summary := ""
	if doc.Summary != nil {
		summary = *doc.Summary
	}
	row = append(row, summary)
	return &row
}
