package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/streamblocks/actormachine/internal/validator"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// Loader implements ports.ActorLoader and ports.Watchable over an in-memory
// library. Put and Remove notify watchers, so in-process tools get the same
// rebuild loop as a watched directory.
type Loader struct {
	mu       sync.RWMutex
	actors   map[string][]byte
	watchers map[chan string]struct{}
}

// NewLoader creates a new Loader with the provided raw descriptions (YAML or JSON).
func NewLoader(data map[string]string) *Loader {
	actors := make(map[string][]byte)
	for k, v := range data {
		actors[k] = []byte(v)
	}
	return &Loader{
		actors:   actors,
		watchers: make(map[chan string]struct{}),
	}
}

// NewFromActors creates a Loader from domain actors, keyed by name.
// Every actor is validated first, and duplicate names are rejected.
func NewFromActors(actors ...domain.Actor) (*Loader, error) {
	l := NewLoader(nil)
	for _, a := range actors {
		if a.Name == "" {
			return nil, fmt.Errorf("actor missing name")
		}
		if _, dup := l.actors[a.Name]; dup {
			return nil, fmt.Errorf("duplicate actor %q", a.Name)
		}
		if err := validator.ValidateActor(&a); err != nil {
			return nil, fmt.Errorf("actor %s: %w", a.Name, err)
		}
		bytes, err := json.Marshal(a)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal actor %s: %w", a.Name, err)
		}
		l.actors[a.Name] = bytes
	}
	return l, nil
}

// GetActor retrieves the raw description of an actor by ID.
func (l *Loader) GetActor(id string) ([]byte, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	content, ok := l.actors[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrActorNotFound, id)
	}
	return content, nil
}

// ListActors returns all available actor IDs.
func (l *Loader) ListActors() ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.actors))
	for k := range l.actors {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}

// Put adds or replaces the description of actor id.
func (l *Loader) Put(id string, raw []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.actors[id] = raw
	l.notify(id)
}

// Remove deletes actor id. Removing an unknown actor is a no-op.
func (l *Loader) Remove(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.actors[id]; !ok {
		return
	}
	delete(l.actors, id)
	l.notify(id)
}

// notify must be called with mu held. Slow watchers miss events rather than
// block writers.
func (l *Loader) notify(id string) {
	for ch := range l.watchers {
		select {
		case ch <- id:
		default:
		}
	}
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	ch := make(chan string, 16)

	l.mu.Lock()
	l.watchers[ch] = struct{}{}
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		l.mu.Lock()
		delete(l.watchers, ch)
		close(ch)
		l.mu.Unlock()
	}()
	return ch, nil
}
