package dsl

import (
	"fmt"

	"github.com/streamblocks/actormachine/internal/validator"
	"github.com/streamblocks/actormachine/pkg/adapters/memory"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// Pred creates a host predicate guard.
func Pred(expression string) domain.Condition { return domain.Predicate(expression) }

// HasData creates a guard on unread input tokens.
func HasData(port string, count int) domain.Condition { return domain.InputAvailable(port, count) }

// HasSpace creates a guard on free output slots.
func HasSpace(port string, count int) domain.Condition { return domain.OutputHasSpace(port, count) }

// Builder manages the construction of one actor.
type Builder struct {
	actor       domain.Actor
	conditions  map[domain.Condition]int
	transitions []*TransitionBuilder
	scopes      []*ScopeBuilder
}

// New creates a new actor builder.
func New(name string) *Builder {
	return &Builder{
		actor:      domain.Actor{Name: name},
		conditions: make(map[domain.Condition]int),
	}
}

// Describe sets the actor description.
func (b *Builder) Describe(text string) *Builder {
	b.actor.Description = text
	return b
}

// Input declares an input port.
func (b *Builder) Input(name, elementType string) *Builder {
	b.actor.Ports = append(b.actor.Ports, domain.Port{Name: name, Direction: domain.DirectionIn, ElementType: elementType})
	return b
}

// Output declares an output port with its buffer capacity (0 = decided by the network).
func (b *Builder) Output(name, elementType string, capacity int) *Builder {
	b.actor.Ports = append(b.actor.Ports, domain.Port{Name: name, Direction: domain.DirectionOut, ElementType: elementType, Capacity: capacity})
	return b
}

// States declares the controller states in order. The first is the start
// state unless Start says otherwise.
func (b *Builder) States(names ...string) *Builder {
	b.actor.States = append(b.actor.States, names...)
	return b
}

// Start sets the initial state.
func (b *Builder) Start(name string) *Builder {
	b.actor.Start = name
	return b
}

// Persistent adds a scope initialized once per instance.
func (b *Builder) Persistent(name string) *ScopeBuilder {
	return b.scope(name, true)
}

// Transient adds a scope re-initialized for every firing.
func (b *Builder) Transient(name string) *ScopeBuilder {
	return b.scope(name, false)
}

func (b *Builder) scope(name string, persistent bool) *ScopeBuilder {
	sb := &ScopeBuilder{scope: domain.Scope{Name: name, Persistent: persistent}}
	b.scopes = append(b.scopes, sb)
	return sb
}

// Condition registers c and returns its index. Registering an identical
// condition again returns the existing index.
func (b *Builder) Condition(c domain.Condition) int {
	if idx, ok := b.conditions[c]; ok {
		return idx
	}
	idx := len(b.actor.Conditions)
	b.actor.Conditions = append(b.actor.Conditions, c)
	b.conditions[c] = idx
	return idx
}

// Transition appends a transition. Declaration order is priority order.
func (b *Builder) Transition(name string) *TransitionBuilder {
	tb := &TransitionBuilder{transition: domain.Transition{Name: name}, builder: b}
	b.transitions = append(b.transitions, tb)
	return tb
}

// Actor returns the actor as built so far, without validation.
func (b *Builder) Actor() domain.Actor {
	a := b.actor
	a.Ports = append([]domain.Port(nil), b.actor.Ports...)
	a.Conditions = append([]domain.Condition(nil), b.actor.Conditions...)
	a.States = append([]string(nil), b.actor.States...)
	a.Scopes = nil
	for _, sb := range b.scopes {
		a.Scopes = append(a.Scopes, sb.Build())
	}
	a.Transitions = nil
	for _, tb := range b.transitions {
		a.Transitions = append(a.Transitions, tb.Build())
	}
	return a
}

// Build returns the validated actor.
func (b *Builder) Build() (*domain.Actor, error) {
	a := b.Actor()
	if err := validator.ValidateActor(&a); err != nil {
		return nil, fmt.Errorf("actor %s: %w", a.Name, err)
	}
	return &a, nil
}

// Library collects several actors into one loader.
type Library struct {
	builders []*Builder
}

// NewLibrary creates a library from builders.
func NewLibrary(builders ...*Builder) *Library {
	return &Library{builders: builders}
}

// Add appends a builder.
func (l *Library) Add(b *Builder) *Library {
	l.builders = append(l.builders, b)
	return l
}

// Build validates every actor and compiles the set into a memory Loader.
func (l *Library) Build() (*memory.Loader, error) {
	actors := make([]domain.Actor, 0, len(l.builders))
	for _, b := range l.builders {
		a, err := b.Build()
		if err != nil {
			return nil, err
		}
		actors = append(actors, *a)
	}

	loader, err := memory.NewFromActors(actors...)
	if err != nil {
		return nil, fmt.Errorf("failed to build memory loader: %w", err)
	}
	return loader, nil
}
