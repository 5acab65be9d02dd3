package ports

import "context"

// ActorLoader defines how the compiler retrieves actor descriptions.
// This allows the storage layer (Loam, FS, Memory) to be decoupled.
type ActorLoader interface {
	// GetActor retrieves the raw description of an actor by ID.
	// It returns the raw bytes (which the compiler will parse) or an error
	// wrapping domain.ErrActorNotFound.
	GetActor(id string) ([]byte, error)

	// ListActors returns the IDs of all actors available from the source.
	ListActors() ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the ID of every actor whose
	// description changed. The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
