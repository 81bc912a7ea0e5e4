package testutil

import (
	"sync"

	"github.com/puyacodes/folder-hash/fhtypes"
)

// EventRecorder collects walker events. It is safe for concurrent use.
type EventRecorder struct {
	mu     sync.Mutex
	Events []fhtypes.Event
}

// Record appends ev and returns Continue; use it as a Visitor or ProgressFunc.
func (r *EventRecorder) Record(ev fhtypes.Event) fhtypes.VisitResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Events = append(r.Events, ev)
	return fhtypes.Continue()
}

// Kinds returns "<kind>:<name>" for every recorded event.
func (r *EventRecorder) Kinds() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.Events))
	for i, ev := range r.Events {
		out[i] = ev.Kind.String() + ":" + ev.Name
	}
	return out
}

// Count returns the number of events of kind k.
func (r *EventRecorder) Count(k fhtypes.EventKind) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, ev := range r.Events {
		if ev.Kind == k {
			n++
		}
	}
	return n
}

// ChangeRecorder collects change notifications.
type ChangeRecorder struct {
	Changes []fhtypes.Change
}

// Record appends c.
func (r *ChangeRecorder) Record(c fhtypes.Change) {
	r.Changes = append(r.Changes, c)
}
