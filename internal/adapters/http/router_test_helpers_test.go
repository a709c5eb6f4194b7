package httpadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/kirillkom/docestate/internal/config"
	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
	"github.com/kirillkom/docestate/internal/observability/logging"
)

type uploaderFake struct {
	err      error
	filename string
	mimeType string
	body     []byte
}

func (f *uploaderFake) Upload(_ context.Context, filename, mimeType string, body io.Reader) (*domain.UploadResult, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, err
	}
	f.filename, f.mimeType, f.body = filename, mimeType, raw
	if f.err != nil {
		return nil, f.err
	}
	return &domain.UploadResult{
		Document:  domain.Document{ID: "doc-1", Name: filename, UploadedAt: "t0", Status: domain.StatusProcessing},
		PageCount: 2,
	}, nil
}

type exporterFake struct {
	docs []domain.Document
	err  error
}

func (f *exporterFake) DocumentsXLSX(_ context.Context, docs []domain.Document) ([]byte, error) {
	f.docs = docs
	if f.err != nil {
		return nil, f.err
	}
	return []byte("xlsx"), nil
}

func newTestHandler(cfg config.Config) http.Handler {
	h, _ := newTestRouter(cfg, &uploaderFake{}, &exporterFake{})
	return h
}

func newTestRouter(cfg config.Config, uploader *uploaderFake, exporter *exporterFake) (http.Handler, *store.DocumentStore) {
	s := store.New()
	rt := NewRouter(cfg, s, uploader, exporter, Options{Logger: logging.Discard()})
	return rt.Handler(), s
}

func doJSON(t *testing.T, handler http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func doRaw(handler http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	return res
}

func decodeBody[T any](t *testing.T, res *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(res.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", res.Body.String(), err)
	}
	return out
}

func sampleDocument(id string) domain.Document {
	return domain.Document{
		ID:         id,
		Name:       "Rental Agreement - 123 Main St.pdf",
		UploadedAt: "2024-01-15T10:30:00Z",
		Status:     domain.StatusProcessing,
	}
}
