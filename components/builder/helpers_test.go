package builder

import (
	"context"
	"fmt"
	"sync"
)

func seqIDs(prefix string) IDGenerator {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func blockIDs(blocks []Block) []string {
	ids := make([]string, len(blocks))
	for i, block := range blocks {
		ids[i] = block.ID
	}
	return ids
}

func orders(blocks []Block) []int {
	out := make([]int, len(blocks))
	for i, block := range blocks {
		out[i] = block.Order
	}
	return out
}

type recordingOwner struct {
	commits  []map[string]any
	discards []WidgetKind
}

func (o *recordingOwner) OnCommit(_ context.Context, _ WidgetKind, data map[string]any) error {
	o.commits = append(o.commits, data)
	return nil
}

func (o *recordingOwner) OnDiscard(_ context.Context, kind WidgetKind) error {
	o.discards = append(o.discards, kind)
	return nil
}

type recordingTelemetry struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingTelemetry) Record(_ context.Context, event string, _ map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingTelemetry) has(event string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.events {
		if e == event {
			return true
		}
	}
	return false
}
