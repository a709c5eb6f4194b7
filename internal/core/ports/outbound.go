package ports

import (
	"context"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
)

// FieldExtractor produces extracted fields and a summary for a document.
type FieldExtractor interface {
	Extract(ctx context.Context, doc domain.Document) (domain.Extraction, error)
}

// PDFInspector reads structural facts from PDF bytes.
type PDFInspector interface {
	PageCount(data []byte) (int, error)
}

// ProcessingScheduler runs processing for a document some time after upload.
type ProcessingScheduler interface {
	Schedule(documentID string)
}

// StateEventPublisher fans store changes out to external consumers.
type StateEventPublisher interface {
	PublishStateChanged(ctx context.Context, change store.Change) error
}

// DocumentExporter renders documents into a downloadable workbook.
type DocumentExporter interface {
	DocumentsXLSX(ctx context.Context, docs []domain.Document) ([]byte, error)
}
