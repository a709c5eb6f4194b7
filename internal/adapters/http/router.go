package httpadapter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/kirillkom/docestate/internal/config"
	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/ports"
	"github.com/kirillkom/docestate/internal/observability/metrics"
)

const (
	serviceName = "docestate-api"

	maxJSONBodyBytes = 1 << 20
	multipartSlack   = 1 << 20
)

// Options carries the optional collaborators of the router.
type Options struct {
	Metrics        *metrics.HTTPServerMetrics
	MetricsHandler http.Handler
	MCPHandler     http.Handler
	// Health contributes extra fields to /healthz.
	Health func() map[string]string
	Logger *slog.Logger
	// StreamBuffer is the per-client queue of the state stream; zero means 64.
	StreamBuffer int
}

type Router struct {
	cfg      config.Config
	state    ports.StateStore
	uploader ports.DocumentUploader
	exporter ports.DocumentExporter
	opts     Options
	logger   *slog.Logger
}

func NewRouter(
	cfg config.Config,
	state ports.StateStore,
	uploader ports.DocumentUploader,
	exporter ports.DocumentExporter,
	opts Options,
) *Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		cfg:      cfg,
		state:    state,
		uploader: uploader,
		exporter: exporter,
		opts:     opts,
		logger:   logger,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", rt.healthz)

	mux.HandleFunc("GET /v1/state", rt.getState)
	mux.HandleFunc("GET /v1/state/stream", rt.streamState)
	mux.HandleFunc("PUT /v1/state/current-document", rt.setCurrentDocument)
	mux.HandleFunc("PUT /v1/state/loading", rt.setLoading)
	mux.HandleFunc("PUT /v1/session/user", rt.setUser)
	mux.HandleFunc("POST /v1/session/logout", rt.logout)
	mux.HandleFunc("GET /v1/dashboard", rt.dashboard)

	mux.HandleFunc("GET /v1/documents", rt.listDocuments)
	mux.HandleFunc("POST /v1/documents", rt.addDocument)
	mux.HandleFunc("POST /v1/uploads", rt.uploadDocument)
	mux.HandleFunc("GET /v1/documents/{id}", rt.getDocument)
	mux.HandleFunc("PATCH /v1/documents/{id}", rt.updateDocument)
	mux.HandleFunc("GET /v1/documents/{id}/summary", rt.downloadSummary)
	mux.HandleFunc("GET /v1/exports/documents.xlsx", rt.exportDocuments)

	if rt.opts.MetricsHandler != nil {
		mux.Handle("GET /metrics", rt.opts.MetricsHandler)
	}
	if rt.opts.MCPHandler != nil {
		mux.Handle("/mcp", rt.opts.MCPHandler)
	}

	var api http.Handler = mux
	if rt.cfg.OpenAPIValidationEnabled {
		validator, err := newOpenAPIValidator()
		if err != nil {
			rt.logger.Error("openapi_validation_disabled", "error", err)
		} else {
			api = validator.middleware(api)
		}
	}
	api = exemptPaths(
		backpressureMiddleware(api, rt.cfg.APIMaxInFlight, rt.cfg.APIBackpressureWait),
		api,
		"/v1/state/stream",
	)
	api = rateLimitMiddleware(api, rt.cfg.APIRateLimitRPS, rt.cfg.APIRateLimitBurst)
	api = exemptPaths(api, mux, "/healthz", "/metrics")

	var handler = api
	if rt.opts.Metrics != nil {
		handler = rt.opts.Metrics.Middleware(serviceName, handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	return requestIDMiddleware(handler)
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	payload := map[string]string{"status": "ok"}
	if rt.opts.Health != nil {
		for k, v := range rt.opts.Health() {
			if k != "status" {
				payload[k] = v
			}
		}
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// decodeJSON reads a single JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	body := http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	decoder := json.NewDecoder(body)
	if err := decoder.Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return domain.WrapError(domain.ErrInvalidInput, "decode body", errors.New("request body is empty"))
		}
		return domain.WrapError(domain.ErrInvalidInput, "decode body", fmt.Errorf("invalid json: %w", err))
	}
	if decoder.More() {
		return domain.WrapError(domain.ErrInvalidInput, "decode body", errors.New("unexpected data after json value"))
	}
	return nil
}
