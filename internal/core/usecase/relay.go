package usecase

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/kirillkom/docestate/internal/core/ports"
	"github.com/kirillkom/docestate/internal/core/store"
)

const DefaultRelayBuffer = 256

// StateRelay forwards store changes to an external publisher without letting
// a slow broker stall store mutations. Changes that do not fit in the buffer
// are dropped and counted.
type StateRelay struct {
	publisher ports.StateEventPublisher
	changes   chan store.Change
	dropped   atomic.Uint64
	logger    *slog.Logger
}

func NewStateRelay(publisher ports.StateEventPublisher, buffer int, logger *slog.Logger) *StateRelay {
	if buffer <= 0 {
		buffer = DefaultRelayBuffer
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &StateRelay{
		publisher: publisher,
		changes:   make(chan store.Change, buffer),
		logger:    logger,
	}
}

// Listener is meant to be passed to Subscribe. It never blocks.
func (r *StateRelay) Listener() store.Listener {
	return func(change store.Change) {
		select {
		case r.changes <- change:
		default:
			total := r.dropped.Add(1)
			r.logger.Warn("state_event_dropped",
				"sequence", change.Sequence,
				"action", change.Action,
				"dropped_total", total,
			)
		}
	}
}

func (r *StateRelay) Dropped() uint64 {
	return r.dropped.Load()
}

// Run publishes buffered changes until ctx is done.
func (r *StateRelay) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case change := <-r.changes:
			if err := r.publisher.PublishStateChanged(ctx, change); err != nil {
				r.logger.ErrorContext(ctx, "state_event_publish_failed",
					"sequence", change.Sequence,
					"action", change.Action,
					"error", err,
				)
			}
		}
	}
}
