package httpadapter

import (
	"net/http"
	"strings"
	"testing"

	"github.com/kirillkom/docestate/internal/config"
	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
	"github.com/kirillkom/docestate/internal/observability/logging"
)

func TestHealthzEndpoint(t *testing.T) {
	s := store.New()
	handler := NewRouter(config.Config{}, s, nil, nil, Options{
		Logger: logging.Discard(),
		Health: func() map[string]string {
			return map[string]string{"status": "broken", "publisher": "closed"}
		},
	}).Handler()

	res := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	body := decodeBody[map[string]string](t, res)
	if body["status"] != "ok" || body["publisher"] != "closed" {
		t.Fatalf("unexpected health payload: %v", body)
	}
	if res.Header().Get(requestIDHeader) == "" {
		t.Fatalf("expected request id header")
	}
}

func TestGetStateOnEmptyStore(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := doJSON(t, handler, http.MethodGet, "/v1/state", nil)
	if res.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.Code)
	}
	want := `{"documents":[],"currentDocument":null,"isLoading":false,"user":null}`
	if got := strings.TrimSpace(res.Body.String()); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
}

func TestSetLoading(t *testing.T) {
	handler, s := newTestRouter(config.Config{}, &uploaderFake{}, &exporterFake{})

	res := doJSON(t, handler, http.MethodPut, "/v1/state/loading", map[string]bool{"loading": true})
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if !s.State().IsLoading {
		t.Fatalf("expected loading flag set")
	}

	res = doRaw(handler, http.MethodPut, "/v1/state/loading", `{}`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing flag, got %d", res.Code)
	}
}

func TestSetCurrentDocumentAndClear(t *testing.T) {
	handler, s := newTestRouter(config.Config{}, &uploaderFake{}, &exporterFake{})

	res := doJSON(t, handler, http.MethodPut, "/v1/state/current-document", sampleDocument("1"))
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	state := s.State()
	if state.CurrentDocument == nil || state.CurrentDocument.ID != "1" {
		t.Fatalf("expected current document 1, got %+v", state.CurrentDocument)
	}
	if len(state.Documents) != 0 {
		t.Fatalf("expected document list untouched")
	}

	res = doRaw(handler, http.MethodPut, "/v1/state/current-document", `null`)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if s.State().CurrentDocument != nil {
		t.Fatalf("expected current document cleared")
	}
}

func TestSessionUserAndLogout(t *testing.T) {
	handler, s := newTestRouter(config.Config{}, &uploaderFake{}, &exporterFake{})
	s.AddDocument(sampleDocument("1"))
	s.SetLoading(true)

	user := domain.User{IsAuthenticated: true, Name: "Jane Doe", Email: "jane@example.com"}
	res := doJSON(t, handler, http.MethodPut, "/v1/session/user", user)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	if got := s.State().User; got == nil || *got != user {
		t.Fatalf("expected user %+v, got %+v", user, got)
	}

	res = doJSON(t, handler, http.MethodPost, "/v1/session/logout", nil)
	if res.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", res.Code)
	}
	state := s.State()
	if state.User != nil || len(state.Documents) != 0 || state.CurrentDocument != nil {
		t.Fatalf("expected cleared workspace, got %+v", state)
	}
	if !state.IsLoading {
		t.Fatalf("expected loading flag untouched by logout")
	}
}

func TestDashboardStats(t *testing.T) {
	handler, s := newTestRouter(config.Config{}, &uploaderFake{}, &exporterFake{})
	s.AddDocument(sampleDocument("1"))
	done := sampleDocument("2")
	done.Status = domain.StatusCompleted
	s.AddDocument(done)

	res := doJSON(t, handler, http.MethodGet, "/v1/dashboard", nil)
	stats := decodeBody[domain.DashboardStats](t, res)
	if stats.Total != 2 || stats.Completed != 1 || stats.Processing != 1 || stats.Error != 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}

func TestMalformedJSONReturns400(t *testing.T) {
	handler := newTestHandler(config.Config{})

	res := doRaw(handler, http.MethodPut, "/v1/session/user", `{"name":`)
	if res.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", res.Code)
	}
	body := decodeBody[map[string]string](t, res)
	if body["error"] == "" {
		t.Fatalf("expected error message")
	}
}
