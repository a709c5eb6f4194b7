package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/docestate/internal/core/domain"
	"github.com/kirillkom/docestate/internal/core/store"
	"github.com/kirillkom/docestate/internal/infrastructure/resilience"
)

// StateEvent is the wire form of a store change.
type StateEvent struct {
	Sequence uint64          `json:"sequence"`
	Action   store.Action    `json:"action"`
	State    domain.AppState `json:"state"`
	SentAt   time.Time       `json:"sentAt"`
}

type Publisher struct {
	conn     *nats.Conn
	subject  string
	executor *resilience.Executor
	logger   *slog.Logger
}

type Options struct {
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
	Logger               *slog.Logger
}

func New(url, subject string) (*Publisher, error) {
	return NewWithOptions(url, subject, Options{})
}

func NewWithOptions(url, subject string, options Options) (*Publisher, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	conn, err := nats.Connect(
		url,
		nats.Name("docestate"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Publisher{
		conn:     conn,
		subject:  subject,
		executor: options.ResilienceExecutor,
		logger:   logger,
	}, nil
}

func (p *Publisher) Close() {
	if p.conn != nil {
		p.conn.Close()
	}
}

func (p *Publisher) PublishStateChanged(ctx context.Context, change store.Change) error {
	payload, err := EncodeChange(change, time.Now())
	if err != nil {
		return err
	}

	call := func(_ context.Context) error {
		if err := p.conn.Publish(p.subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if p.executor != nil {
		err = p.executor.Execute(ctx, "nats.publish", call, classifyPublishError)
	} else {
		err = call(ctx)
	}
	if err != nil {
		return publishError(change.Sequence, err)
	}
	return nil
}

// SubscribeStateChanged delivers decoded events to handler until ctx is done.
func (p *Publisher) SubscribeStateChanged(ctx context.Context, handler func(context.Context, StateEvent) error) error {
	sub, err := p.conn.Subscribe(p.subject, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}
		event, err := DecodeEvent(msg.Data)
		if err != nil {
			p.logger.Warn("state_event_decode_failed", "error", err)
			return
		}
		if err := handler(ctx, event); err != nil {
			p.logger.Warn("state_event_handler_failed", "sequence", event.Sequence, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := p.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := p.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func EncodeChange(change store.Change, sentAt time.Time) ([]byte, error) {
	payload, err := json.Marshal(StateEvent{
		Sequence: change.Sequence,
		Action:   change.Action,
		State:    change.State,
		SentAt:   sentAt.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode state event: %w", err)
	}
	return payload, nil
}

func DecodeEvent(data []byte) (StateEvent, error) {
	var event StateEvent
	if err := json.Unmarshal(data, &event); err != nil {
		return StateEvent{}, fmt.Errorf("decode state event: %w", err)
	}
	return event, nil
}
