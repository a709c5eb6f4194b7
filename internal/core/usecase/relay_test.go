package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/kirillkom/docestate/internal/core/store"
)

type publisherFake struct {
	mu        sync.Mutex
	sequences []uint64
	err       error
}

func (f *publisherFake) PublishStateChanged(_ context.Context, change store.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sequences = append(f.sequences, change.Sequence)
	return f.err
}

func (f *publisherFake) published() []uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uint64(nil), f.sequences...)
}

func TestStateRelayPublishesChangesInOrder(t *testing.T) {
	publisher := &publisherFake{}
	relay := NewStateRelay(publisher, 8, nil)
	s := store.New()
	s.Subscribe(relay.Listener())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	s.SetLoading(true)
	s.SetLoading(false)
	s.Logout()

	deadline := time.After(2 * time.Second)
	for len(publisher.published()) < 3 {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for publishes, got %v", publisher.published())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done

	got := publisher.published()
	for i, seq := range got {
		if seq != uint64(i+1) {
			t.Fatalf("expected sequence %d at %d, got %v", i+1, i, got)
		}
	}
}

func TestStateRelayDropsWhenBufferFull(t *testing.T) {
	relay := NewStateRelay(&publisherFake{}, 1, nil)
	listener := relay.Listener()

	listener(store.Change{Sequence: 1})
	listener(store.Change{Sequence: 2})
	listener(store.Change{Sequence: 3})

	if relay.Dropped() != 2 {
		t.Fatalf("expected 2 dropped changes, got %d", relay.Dropped())
	}
}

func TestStateRelayKeepsRunningAfterPublishError(t *testing.T) {
	publisher := &publisherFake{err: errors.New("broker down")}
	relay := NewStateRelay(publisher, 4, nil)
	listener := relay.Listener()
	listener(store.Change{Sequence: 1})
	listener(store.Change{Sequence: 2})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		relay.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for len(publisher.published()) < 2 {
		select {
		case <-deadline:
			t.Fatalf("timed out, got %v", publisher.published())
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
