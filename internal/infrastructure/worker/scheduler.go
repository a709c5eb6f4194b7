// Package worker runs simulated document processing in the background.
package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/kirillkom/docestate/internal/core/ports"
)

const (
	DefaultDelay   = 3 * time.Second
	DefaultTimeout = 5 * time.Minute
)

type Observer interface {
	StartDocument()
	FinishDocument(service string, duration time.Duration, err error)
	ObserveScheduleLag(service string, lag time.Duration)
}

type Options struct {
	Service  string
	Delay    time.Duration
	Timeout  time.Duration
	Observer Observer
	Logger   *slog.Logger
}

// Scheduler processes each scheduled document once its delay elapses.
// Pending work is abandoned when the base context is cancelled.
type Scheduler struct {
	ctx       context.Context
	processor ports.DocumentProcessor
	opts      Options
	wg        sync.WaitGroup
}

func NewScheduler(ctx context.Context, processor ports.DocumentProcessor, opts Options) *Scheduler {
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Service == "" {
		opts.Service = "docestate-api"
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Scheduler{ctx: ctx, processor: processor, opts: opts}
}

func (s *Scheduler) Schedule(documentID string) {
	scheduledAt := time.Now()
	if s.opts.Observer != nil {
		s.opts.Observer.StartDocument()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		timer := time.NewTimer(s.opts.Delay)
		defer timer.Stop()

		select {
		case <-s.ctx.Done():
			s.finish(documentID, 0, s.ctx.Err())
			return
		case <-timer.C:
		}

		start := time.Now()
		if s.opts.Observer != nil {
			s.opts.Observer.ObserveScheduleLag(s.opts.Service, start.Sub(scheduledAt))
		}

		processCtx, cancel := context.WithTimeout(s.ctx, s.opts.Timeout)
		defer cancel()
		err := s.processor.ProcessByID(processCtx, documentID)
		s.finish(documentID, time.Since(start), err)
	}()
}

// Wait blocks until every scheduled task has returned.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) finish(documentID string, duration time.Duration, err error) {
	if s.opts.Observer != nil {
		s.opts.Observer.FinishDocument(s.opts.Service, duration, err)
	}
	if err != nil {
		s.opts.Logger.Warn("processing_task_failed", "document_id", documentID, "error", err)
		return
	}
	s.opts.Logger.Debug("processing_task_done", "document_id", documentID, "duration_ms", duration.Milliseconds())
}
