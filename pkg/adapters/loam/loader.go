package loam

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aretw0/loam"

	"github.com/streamblocks/actormachine/pkg/domain"
)

// Loader adapts the Loam library to the ActorLoader interface.
// The markdown body of a document becomes the actor description.
type Loader struct {
	Repo *loam.TypedRepository[ActorMetadata]
}

// New creates a new Loam adapter.
func New(repo *loam.TypedRepository[ActorMetadata]) *Loader {
	return &Loader{
		Repo: repo,
	}
}

// GetActor retrieves an actor document and re-encodes it as JSON for the compiler.
func (l *Loader) GetActor(id string) ([]byte, error) {
	ctx := context.Background()

	doc, err := l.Repo.Get(ctx, id)
	if err != nil {
		if !l.exists(id) {
			return nil, fmt.Errorf("%w: %s", domain.ErrActorNotFound, id)
		}
		return nil, fmt.Errorf("loam get failed for %s: %w", id, err)
	}

	data := buildActorData(doc.ID, doc.Data, doc.Content)
	bytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal actor data: %w", err)
	}
	return bytes, nil
}

func (l *Loader) exists(id string) bool {
	ids, err := l.ListActors()
	if err != nil {
		return false
	}
	for _, known := range ids {
		if known == id {
			return true
		}
	}
	return false
}

func buildActorData(docID string, meta ActorMetadata, content string) map[string]any {
	data := make(map[string]any)

	name := meta.Name
	if name == "" {
		name = trimExtension(docID)
	}
	data["name"] = name

	if meta.Format != nil {
		data["format"] = meta.Format
	}
	description := meta.Description
	if description == "" {
		description = strings.TrimSpace(content)
	}
	if description != "" {
		data["description"] = description
	}

	set := func(key string, v []any) {
		if len(v) > 0 {
			data[key] = v
		}
	}
	set("ports", meta.Ports)
	set("scopes", meta.Scopes)
	set("conditions", meta.Conditions)
	set("transitions", meta.Transitions)

	if len(meta.States) > 0 {
		data["states"] = meta.States
	}
	if meta.Start != "" {
		data["start"] = meta.Start
	}
	return data
}

// ListActors lists all actors in the repository.
func (l *Loader) ListActors() ([]string, error) {
	ctx := context.Background()
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	ids := make([]string, 0, len(docs))

	for _, doc := range docs {
		id := trimExtension(doc.ID)

		// Collision Detection
		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID
		ids = append(ids, id)
	}
	return ids, nil
}

// Watch implements ports.Watchable.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	events, err := l.Repo.Watch(ctx, "**/*.{md,json,yaml,yml}")
	if err != nil {
		return nil, fmt.Errorf("failed to start loam watcher: %w", err)
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case evt, ok := <-events:
				if !ok {
					return
				}
				select {
				case ch <- trimExtension(evt.ID):
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
