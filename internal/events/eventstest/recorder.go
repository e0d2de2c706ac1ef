// Package eventstest provides an in-memory events.Outbox for service tests.
package eventstest

import (
	"context"
	"database/sql"
	"sync"

	"go-hrms/internal/events"
)

// Recorder collects enqueued events. Events enqueued in a transaction that
// later rolls back are still recorded.
type Recorder struct {
	mu     sync.Mutex
	events []events.DomainEvent
	Err    error
}

func (r *Recorder) Enqueue(_ context.Context, _ *sql.Tx, evts ...events.DomainEvent) error {
	if r.Err != nil {
		return r.Err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evts...)
	return nil
}

func (r *Recorder) Events() []events.DomainEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.DomainEvent, len(r.events))
	copy(out, r.events)
	return out
}

// OfType returns the recorded events of typ in enqueue order.
func (r *Recorder) OfType(typ events.Type) []events.DomainEvent {
	var out []events.DomainEvent
	for _, e := range r.Events() {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
