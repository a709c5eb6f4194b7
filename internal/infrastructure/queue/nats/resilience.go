package nats

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/infrastructure/resilience"
)

var (
	// Broker or connection trouble: worth another attempt and counts
	// against the breaker.
	transientPublishErrors = []error{
		nats.ErrNoServers,
		nats.ErrTimeout,
		nats.ErrConnectionClosed,
		nats.ErrDisconnected,
		nats.ErrConnectionDraining,
		nats.ErrReconnectBufExceeded,
	}

	// The event itself cannot be published. The broker is fine, so the
	// breaker is left alone.
	rejectedEventErrors = []error{
		nats.ErrMaxPayload,
		nats.ErrBadSubject,
		nats.ErrInvalidMsg,
	}
)

func classifyPublishError(err error) resilience.ErrorClassification {
	switch {
	case err == nil:
		return resilience.ErrorClassification{}
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return resilience.ErrorClassification{}
	case resilience.IsCircuitOpen(err), isAny(err, transientPublishErrors):
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	case isAny(err, rejectedEventErrors):
		return resilience.ErrorClassification{}
	default:
		return resilience.ErrorClassification{RecordFailure: true}
	}
}

// publishError tags failures a later event may get past as temporary. A
// lost event is never replayed: the next one carries the full state.
func publishError(sequence uint64, err error) error {
	if err == nil {
		return nil
	}
	op := fmt.Sprintf("publish state event %d", sequence)
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyPublishError(err).Retryable {
		return domain.WrapError(domain.ErrTemporary, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
