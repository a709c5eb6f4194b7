package httpadapter

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/kirillkom/docestate/internal/core/store"
)

const defaultStreamBuffer = 64

// streamState sends the current snapshot, then one frame per store change.
// Frames carry the full state, so a client that falls behind is sent a fresh
// snapshot instead of the changes it missed.
func (rt *Router) streamState(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming is not supported"})
		return
	}

	buffer := rt.opts.StreamBuffer
	if buffer <= 0 {
		buffer = defaultStreamBuffer
	}
	changes := make(chan store.Change, buffer)
	var lagged atomic.Bool
	unsubscribe := rt.state.Subscribe(func(change store.Change) {
		select {
		case changes <- change:
		default:
			lagged.Store(true)
		}
	})
	defer unsubscribe()

	if rt.opts.Metrics != nil {
		rt.opts.Metrics.StreamOpened()
		defer rt.opts.Metrics.StreamClosed()
	}

	// Streams outlive the server write timeout.
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	lastSequence := uint64(0)
	send := func(change store.Change) bool {
		if change.Sequence != 0 && change.Sequence <= lastSequence {
			return true
		}
		if err := writeSSEChange(w, change); err != nil {
			return false
		}
		flusher.Flush()
		lastSequence = change.Sequence
		return true
	}

	if !send(rt.state.Current()) {
		return
	}

	keepalive := rt.cfg.SSEKeepalive
	if keepalive <= 0 {
		keepalive = 15 * time.Second
	}
	ticker := time.NewTicker(keepalive)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case change := <-changes:
			if lagged.Swap(false) {
				drain(changes)
				change = rt.state.Current()
			}
			if !send(change) {
				return
			}
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeSSEChange(w http.ResponseWriter, change store.Change) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "id: %d\ndata: %s\n\n", change.Sequence, payload)
	return err
}

func drain(changes <-chan store.Change) {
	for {
		select {
		case <-changes:
		default:
			return
		}
	}
}
