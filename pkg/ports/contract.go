package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamblocks/actormachine/pkg/controller"
	"github.com/streamblocks/actormachine/pkg/domain"
)

// RunControllerCacheContract runs a suite of tests to verify that a ControllerCache
// implementation adheres to the defined interface contract.
func RunControllerCacheContract(t *testing.T, cache ControllerCache) {
	ctx := context.Background()
	key := "contract-test-" + time.Now().Format("20060102150405")

	graph := &controller.Graph{
		Actor:       "contract",
		Conditions:  []domain.Condition{domain.InputAvailable("in", 2), domain.Predicate("x > 0")},
		Transitions: []string{"t0"},
		States: []controller.State{{
			Index: 0,
			Name:  domain.ImplicitState,
			Alternatives: []controller.Alternative{
				{Guard: []int{0, 1}, Transition: 0, Target: 0},
				{Transition: controller.Stall, Target: controller.Stall},
			},
		}},
		Pruned: []string{"orphan"},
	}

	t.Run("Put and Get", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, graph), "Put should not return error")

		loaded, err := cache.Get(ctx, key)
		require.NoError(t, err, "Get should not return error")
		assert.Equal(t, graph, loaded)
		assert.NoError(t, loaded.Validate())
	})

	t.Run("Get Missing", func(t *testing.T) {
		_, err := cache.Get(ctx, "missing-"+key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})

	t.Run("Overwrite", func(t *testing.T) {
		other := *graph
		other.Actor = "replaced"
		require.NoError(t, cache.Put(ctx, key, &other))

		loaded, err := cache.Get(ctx, key)
		require.NoError(t, err)
		assert.Equal(t, "replaced", loaded.Actor)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, cache.Put(ctx, key, graph))
		require.NoError(t, cache.Delete(ctx, key), "Delete should not return error")

		_, err := cache.Get(ctx, key)
		assert.ErrorIs(t, err, domain.ErrCacheMiss, "Get after Delete should return ErrCacheMiss")
		assert.NoError(t, cache.Delete(ctx, key), "Deleting twice is not an error")
	})
}
