package export

import (
	"bytes"
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docestate/internal/core/domain"
)

func TestDocumentsXLSX(t *testing.T) {
	docs := []domain.Document{
		{
			ID:         "1",
			Name:       "Rental Agreement - 123 Main St.pdf",
			UploadedAt: "2024-01-15T10:30:00Z",
			Status:     domain.StatusCompleted,
			ExtractedData: &domain.ExtractedData{
				Buyer:             "John Smith",
				Seller:            "ABC Properties LLC",
				Rent:              "$2,500/month",
				TerminationClause: "30 days notice required",
			},
			Summary: domain.StringPtr("summary text"),
		},
		{ID: "2", Name: "Purchase Agreement.pdf", UploadedAt: "2024-01-14T14:20:00Z", Status: domain.StatusProcessing},
	}

	data, err := NewService(nil).DocumentsXLSX(context.Background(), docs)
	if err != nil {
		t.Fatalf("DocumentsXLSX() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if len(rows[0]) != len(headers) || rows[0][0] != "Name" || rows[0][10] != "Summary" {
		t.Fatalf("unexpected header: %v", rows[0])
	}
	if rows[1][3] != "John Smith" || rows[1][7] != "$2,500/month" || rows[1][10] != "summary text" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
	if rows[2][2] != "processing" {
		t.Fatalf("expected processing status in second row, got %v", rows[2])
	}
}

func TestDocumentsXLSXEmpty(t *testing.T) {
	data, err := NewService(nil).DocumentsXLSX(context.Background(), nil)
	if err != nil {
		t.Fatalf("DocumentsXLSX() error = %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, _ := f.GetRows(SheetName)
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %d rows", len(rows))
	}
}
