package builder

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestBroadcastHookSubscribe(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	defer cancel()
	event := BlockEvent{BlockID: "b1", Reason: "add"}
	if err := hook.BlocksUpdated(context.Background(), event); err != nil {
		t.Fatalf("BlocksUpdated returned error: %v", err)
	}
	select {
	case e := <-ch:
		if e.BlockID != event.BlockID {
			t.Fatalf("expected block %s, got %s", event.BlockID, e.BlockID)
		}
	default:
		t.Fatalf("expected event to be delivered")
	}
}

func TestBroadcastHookCancelClosesChannel(t *testing.T) {
	hook := NewBroadcastHook()
	ch, cancel := hook.Subscribe()
	cancel()
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	cancel()
	if err := hook.BlocksUpdated(context.Background(), BlockEvent{Reason: "add"}); err != nil {
		t.Fatalf("BlocksUpdated returned error: %v", err)
	}
}

func TestBroadcastHookWebSocket(t *testing.T) {
	hook := NewBroadcastHook()
	server := httptest.NewServer(http.HandlerFunc(hook.ServeWebSocket))
	defer server.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(server.URL, "http"), nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	received := make(chan BlockEvent, 1)
	go func() {
		var event BlockEvent
		if err := conn.ReadJSON(&event); err == nil {
			received <- event
		}
	}()
	for time.Now().Before(deadline) {
		_ = hook.BlocksUpdated(context.Background(), BlockEvent{BlockID: "b1", Reason: "save"})
		select {
		case event := <-received:
			if event.Reason != "save" {
				t.Fatalf("expected save event, got %#v", event)
			}
			return
		case <-time.After(20 * time.Millisecond):
		}
	}
	t.Fatalf("no websocket event received")
}

func TestBroadcastHookPrimesLateSubscriber(t *testing.T) {
	hook := NewBroadcastHook()
	ctx := context.Background()
	_ = hook.BlocksUpdated(ctx, BlockEvent{BlockID: "b1", Reason: "add"})
	_ = hook.BlocksUpdated(ctx, BlockEvent{BlockID: "b1", Reason: "commit"})

	last, ok := hook.Last()
	if !ok || last.Reason != "commit" || last.Seq != 2 {
		t.Fatalf("expected commit with seq 2, got %#v", last)
	}

	ch, cancel := hook.Subscribe()
	defer cancel()
	select {
	case e := <-ch:
		if e.Reason != "commit" || e.Seq != 2 {
			t.Fatalf("expected replay of latest event, got %#v", e)
		}
	default:
		t.Fatalf("expected late subscriber to receive latest event")
	}
}

func TestBroadcastHookStreamStopsWithContext(t *testing.T) {
	hook := NewBroadcastHook()
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan BlockEvent, 4)
	done := make(chan error, 1)
	go func() {
		done <- hook.Stream(ctx, func(e BlockEvent) error {
			got <- e
			return nil
		})
	}()

	deadline := time.After(2 * time.Second)
	for {
		_ = hook.BlocksUpdated(context.Background(), BlockEvent{Reason: "save"})
		select {
		case e := <-got:
			if e.Reason != "save" {
				t.Fatalf("expected save event, got %#v", e)
			}
			cancel()
			if err := <-done; err != context.Canceled {
				t.Fatalf("expected context cancellation, got %v", err)
			}
			return
		case <-deadline:
			t.Fatalf("no event streamed")
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestBroadcastHookSSENamesEventsByReason(t *testing.T) {
	hook := NewBroadcastHook()
	_ = hook.BlocksUpdated(context.Background(), BlockEvent{Reason: "preview"})

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/builder/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	done := make(chan struct{})
	go func() {
		hook.ServeSSE(rec, req)
		close(done)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	body := rec.Body.String()
	if !strings.Contains(body, "id: 1\nevent: preview\ndata: ") {
		t.Fatalf("unexpected SSE frame %q", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected event-stream content type, got %q", ct)
	}
}
