// Command events-tail follows the state events published by the API and logs
// one line per change.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/kirillkom/docestate/internal/config"
	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docestate/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger("docestate-events-tail", cfg.LogLevel)
	slog.SetDefault(logger)

	if cfg.NATSURL == "" {
		logger.Error("nats_url_missing", "hint", "set NATS_URL")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	subscriber, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{Logger: logger})
	if err != nil {
		logger.Error("nats_connect_failed", "error", err)
		os.Exit(1)
	}
	defer subscriber.Close()

	logger.Info("events_tail_subscribed", "subject", cfg.NATSSubject)
	err = subscriber.SubscribeStateChanged(ctx, func(_ context.Context, event nats.StateEvent) error {
		stats := domain.CountByStatus(event.State.Documents)
		logger.Info("state_changed",
			"sequence", event.Sequence,
			"action", event.Action,
			"sent_at", event.SentAt,
			"documents", stats.Total,
			"processing", stats.Processing,
		)
		return nil
	})
	if err != nil {
		logger.Error("events_tail_subscribe_failed", "error", err)
		os.Exit(1)
	}
}
