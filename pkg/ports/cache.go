package ports

import (
	"context"

	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// ControllerCache stores controller graphs so unchanged actors are not rebuilt.
// Keys are content hashes of the actor description.
type ControllerCache interface {
	// Get returns the graph stored under key, or domain.ErrCacheMiss.
	Get(ctx context.Context, key string) (*controller.Graph, error)

	// Put stores the graph under key, replacing any previous entry.
	Put(ctx context.Context, key string, g *controller.Graph) error

	// Delete removes the entry. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// ChannelMetadata provides buffer capacities for the ports of actor instances.
type ChannelMetadata = domain.ChannelMetadata
