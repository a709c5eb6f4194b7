package bootstrap

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kirillkom/docestate/internal/config"
	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/observability/logging"
)

func testConfig() config.Config {
	return config.Config{
		UploadMaxBytes:  1 << 20,
		SeedDemoData:    true,
		MCPEnabled:      true,
		SSEKeepalive:    time.Hour,
		UploadDelay:     0,
		ProcessingDelay: 0,
	}
}

func TestNewSeedsDemoData(t *testing.T) {
	app, err := New(context.Background(), testConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()

	stats := app.Store.Stats()
	if stats.Total != 3 || stats.Completed != 2 || stats.Processing != 1 {
		t.Fatalf("unexpected seeded stats: %+v", stats)
	}
}

func TestUploadIsProcessedEndToEnd(t *testing.T) {
	app, err := New(context.Background(), testConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()
	handler := app.Handler()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("file", "Lease.pdf")
	_, _ = part.Write([]byte("%PDF-1.4 not a real document"))
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/v1/uploads", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	res := httptest.NewRecorder()
	handler.ServeHTTP(res, req)
	if res.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", res.Code, res.Body.String())
	}

	var result domain.UploadResult
	if err := json.Unmarshal(res.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode upload result: %v", err)
	}
	if result.Document.Status != domain.StatusProcessing {
		t.Fatalf("expected processing document, got %s", result.Document.Status)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		doc, ok := app.Store.Document(result.Document.ID)
		if ok && doc.Status == domain.StatusCompleted {
			if doc.ExtractedData == nil || doc.Summary == nil {
				t.Fatalf("expected extracted data and summary, got %+v", doc)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for processing, last state %+v", doc)
		}
		time.Sleep(10 * time.Millisecond)
	}

	if docs := app.Store.Documents(); docs[0].ID != result.Document.ID {
		t.Fatalf("expected upload at the front, got %s", docs[0].ID)
	}
}

func TestHandlerServesMetricsAndHealth(t *testing.T) {
	app, err := New(context.Background(), testConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()
	handler := app.Handler()

	res := httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if res.Code != http.StatusOK || !strings.Contains(res.Body.String(), "docestate_store_mutations_total") {
		t.Fatalf("expected store metrics in scrape, got %d", res.Code)
	}

	res = httptest.NewRecorder()
	handler.ServeHTTP(res, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	var health map[string]string
	if err := json.Unmarshal(res.Body.Bytes(), &health); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	if health["status"] != "ok" || health["publisher"] != "disabled" {
		t.Fatalf("unexpected health: %v", health)
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	app, err := New(context.Background(), testConfig(), logging.Discard())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	app.Close()
	app.Close()

	if app.Store.SubscriberCount() != 0 {
		t.Fatalf("expected subscribers dropped on close")
	}
}
