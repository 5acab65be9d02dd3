package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGraphBuilt  EventType = "graph_built"
	EventStatePruned EventType = "state_pruned"
	EventProjected   EventType = "projected"
	EventFire        EventType = "fire"
	EventStall       EventType = "stall"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Actor     string    `json:"actor"`
}

// GraphEvent reports controller graph construction.
type GraphEvent struct {
	EventBase
	States      int    `json:"states"`
	Transitions int    `json:"transitions"`
	Conditions  int    `json:"conditions"`
	Pruned      int    `json:"pruned"`
	State       string `json:"state,omitempty"` // Set for EventStatePruned
}

// ProjectionEvent reports a strategy projection.
type ProjectionEvent struct {
	EventBase
	Strategy string `json:"strategy"`
	Size     int    `json:"size"` // Strategy specific: branches, tree nodes or table entries
}

// StepEvent reports the outcome of one firing step of an instance.
type StepEvent struct {
	EventBase
	Strategy    string `json:"strategy"`
	State       string `json:"state"`
	Transition  string `json:"transition,omitempty"`
	Evaluations int    `json:"evaluations"`
}

// LifecycleHooks defines callbacks for observability.
// Compile-time hooks run synchronously inside pure code and must not block.
type LifecycleHooks struct {
	OnGraphBuilt  func(*GraphEvent)
	OnStatePruned func(*GraphEvent)
	OnProjected   func(*ProjectionEvent)
	OnFire        func(context.Context, *StepEvent)
	OnStall       func(context.Context, *StepEvent)
}

// Merge returns hooks that call h first and then other for every event.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnGraphBuilt:  chain(h.OnGraphBuilt, other.OnGraphBuilt),
		OnStatePruned: chain(h.OnStatePruned, other.OnStatePruned),
		OnProjected:   chain(h.OnProjected, other.OnProjected),
		OnFire:        chainCtx(h.OnFire, other.OnFire),
		OnStall:       chainCtx(h.OnStall, other.OnStall),
	}
}

func chain[E any](a, b func(*E)) func(*E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(e *E) {
		a(e)
		b(e)
	}
}

func chainCtx[E any](a, b func(context.Context, *E)) func(context.Context, *E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e *E) {
		a(ctx, e)
		b(ctx, e)
	}
}
