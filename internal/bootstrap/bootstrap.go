package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	httpadapter "github.com/kirillkom/docestate/internal/adapters/http"
	mcpadapter "github.com/kirillkom/docestate/internal/adapters/mcp"
	"github.com/kirillkom/docestate/internal/config"
	"github.com/kirillkom/docestate/internal/core/ports"
	"github.com/kirillkom/docestate/internal/core/store"
	"github.com/kirillkom/docestate/internal/core/usecase"
	"github.com/kirillkom/docestate/internal/infrastructure/export"
	"github.com/kirillkom/docestate/internal/infrastructure/extractor/mock"
	"github.com/kirillkom/docestate/internal/infrastructure/extractor/pdfinfo"
	"github.com/kirillkom/docestate/internal/infrastructure/fixtures"
	"github.com/kirillkom/docestate/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docestate/internal/infrastructure/resilience"
	"github.com/kirillkom/docestate/internal/infrastructure/worker"
	"github.com/kirillkom/docestate/internal/observability/metrics"
)

const (
	ServiceName = "docestate-api"
	Version     = "1.0.0"
)

type App struct {
	Config config.Config

	Store     *store.DocumentStore
	UploadUC  ports.DocumentUploader
	ProcessUC ports.DocumentProcessor
	Exporter  ports.DocumentExporter
	Scheduler *worker.Scheduler
	Relay     *usecase.StateRelay

	HTTPMetrics       *metrics.HTTPServerMetrics
	StoreMetrics      *metrics.StoreMetrics
	ProcessingMetrics *metrics.ProcessingMetrics

	executor *resilience.Executor
	mcp      *mcpadapter.Server
	logger   *slog.Logger

	closeOnce sync.Once
	closeFn   func()
}

// New wires the application. Background work (scheduled processing, event
// relay) is bound to ctx and stopped by Close.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	runCtx, cancel := context.WithCancel(ctx)

	catalog, err := fixtures.Demo()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("load demo fixtures: %w", err)
	}

	state := store.New()

	storeMetrics := metrics.NewStoreMetrics(ServiceName)
	state.Subscribe(storeMetrics.Listener())

	if cfg.SeedDemoData {
		n := catalog.Seed(state)
		logger.Info("demo_data_seeded", "documents", n)
	}

	executor := resilience.NewExecutor(resilience.StateEventsConfig(), logger)

	var (
		publisher *nats.Publisher
		relay     *usecase.StateRelay
		relayDone = make(chan struct{})
	)
	if cfg.NATSURL != "" {
		publisher, err = nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResilienceExecutor: executor,
			Logger:             logger,
		})
		if err != nil {
			cancel()
			return nil, fmt.Errorf("init state event publisher: %w", err)
		}
		relay = usecase.NewStateRelay(publisher, usecase.DefaultRelayBuffer, logger)
		state.Subscribe(relay.Listener())
		go func() {
			defer close(relayDone)
			relay.Run(runCtx)
		}()
	} else {
		close(relayDone)
	}

	processingMetrics := metrics.NewProcessingMetrics(ServiceName)
	processUC := usecase.NewProcessDocumentUseCase(state, mock.NewExtractor(catalog.Completed()), logger)
	scheduler := worker.NewScheduler(runCtx, processUC, worker.Options{
		Service:  ServiceName,
		Delay:    cfg.ProcessingDelay,
		Observer: processingMetrics,
		Logger:   logger,
	})
	uploadUC := usecase.NewUploadDocumentUseCase(
		state,
		pdfinfo.NewInspector(),
		scheduler,
		usecase.UploadConfig{MaxBytes: cfg.UploadMaxBytes, Delay: cfg.UploadDelay},
		logger,
	)

	app := &App{
		Config: cfg,

		Store:     state,
		UploadUC:  uploadUC,
		ProcessUC: processUC,
		Exporter:  export.NewService(logger),
		Scheduler: scheduler,
		Relay:     relay,

		HTTPMetrics:       metrics.NewHTTPServerMetrics(ServiceName),
		StoreMetrics:      storeMetrics,
		ProcessingMetrics: processingMetrics,

		executor: executor,
		logger:   logger,
	}
	if cfg.MCPEnabled {
		app.mcp = mcpadapter.NewServer(state, Version)
	}

	app.closeFn = func() {
		cancel()
		scheduler.Wait()
		<-relayDone
		state.Close()
		if publisher != nil {
			publisher.Close()
		}
	}
	return app, nil
}

// Handler builds the public HTTP surface.
func (a *App) Handler() http.Handler {
	opts := httpadapter.Options{
		Metrics: a.HTTPMetrics,
		MetricsHandler: metrics.Handler(
			a.HTTPMetrics.Gatherer(),
			a.StoreMetrics.Gatherer(),
			a.ProcessingMetrics.Gatherer(),
		),
		Health: a.health,
		Logger: a.logger,
	}
	if a.mcp != nil {
		opts.MCPHandler = a.mcp.Handler()
	}
	return httpadapter.NewRouter(a.Config, a.Store, a.UploadUC, a.Exporter, opts).Handler()
}

func (a *App) health() map[string]string {
	out := map[string]string{"publisher": "disabled"}
	if a.Relay != nil {
		out["publisher"] = "enabled"
		out["publisher_dropped"] = fmt.Sprintf("%d", a.Relay.Dropped())
	}
	for op, state := range a.executor.BreakerStates() {
		out["breaker."+op] = state
	}
	return out
}

func (a *App) Close() {
	a.closeOnce.Do(func() {
		if a.closeFn != nil {
			a.closeFn()
		}
	})
}
