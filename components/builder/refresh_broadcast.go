package builder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

type noopRefreshHook struct{}

func (noopRefreshHook) BlocksUpdated(context.Context, BlockEvent) error { return nil }

const subscriberBuffer = 16

// BroadcastHook relays page changes to live preview panes. Every event the
// service emits passes through: block add, remove and reorder, editor.*
// draft changes, commit, cancel, settings, save, preview, hydrate and load.
// Each relayed event carries a per-hook sequence number, and a new
// subscriber is primed with the latest event so it can render at once.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]chan BlockEvent
	next int
	seq  uint64
	last *BlockEvent
}

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan BlockEvent),
	}
}

// BlocksUpdated satisfies RefreshHook. A pane that falls behind drops events
// instead of stalling the editor; the next event still carries a fresh seq.
func (h *BroadcastHook) BlocksUpdated(_ context.Context, event BlockEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	event.Seq = h.seq
	h.last = &event
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

// Last returns the most recent relayed event.
func (h *BroadcastHook) Last() (BlockEvent, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.last == nil {
		return BlockEvent{}, false
	}
	return *h.last, true
}

// Subscribe returns a channel of block events and a cancel func. Calling
// cancel more than once is safe.
func (h *BroadcastHook) Subscribe() (<-chan BlockEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan BlockEvent, subscriberBuffer)
	if h.last != nil {
		ch <- *h.last
	}
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
}

// Stream subscribes and hands every event to write until ctx ends, write
// fails, or the subscription closes. Transports share it.
func (h *BroadcastHook) Stream(ctx context.Context, write func(BlockEvent) error) error {
	events, cancel := h.Subscribe()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if err := write(event); err != nil {
				return err
			}
		}
	}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams block events as JSON frames.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	_ = h.Stream(r.Context(), func(event BlockEvent) error {
		return conn.WriteJSON(event)
	})
}

// ServeSSE streams block events as Server-Sent Events. The event name is the
// reason and the id is the sequence number, so a preview pane can listen
// for "save" or "commit" alone.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}
	_ = h.Stream(r.Context(), func(event BlockEvent) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "id: %d\nevent: %s\ndata: %s\n\n", event.Seq, event.Reason, payload); err != nil {
			return err
		}
		if flusher != nil {
			flusher.Flush()
		}
		return nil
	})
}
