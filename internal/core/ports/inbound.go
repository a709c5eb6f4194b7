package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
)

// DocumentUploader is the inbound contract for the simulated upload flow.
type DocumentUploader interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.UploadResult, error)
}

// DocumentProcessor is the inbound contract for simulated document processing.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// StateStore is the workspace state consumed by adapters.
type StateStore interface {
	AddDocument(doc domain.Document)
	UpdateDocument(id string, patch domain.DocumentPatch) bool
	SetCurrentDocument(doc *domain.Document)
	SetLoading(loading bool)
	SetUser(user *domain.User)
	Logout()

	State() domain.AppState
	Documents() []domain.Document
	Document(id string) (domain.Document, bool)
	Stats() domain.DashboardStats
	Current() store.Change
	Subscribe(fn store.Listener) func()
}

var _ StateStore = (*store.DocumentStore)(nil)
