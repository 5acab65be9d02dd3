package tests

import (
	"errors"
	"testing"

	"github.com/streamblocks/actormachine/pkg/domain"
	"github.com/streamblocks/actormachine/pkg/ports"
)

// ActorLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ActorLoader.
func ActorLoaderContractTest(t *testing.T, loader ports.ActorLoader, setupData map[string][]byte) {
	t.Helper()

	t.Run("GetActor_Success", func(t *testing.T) {
		for id, expectedContent := range setupData {
			content, err := loader.GetActor(id)
			if err != nil {
				t.Fatalf("unexpected error getting actor %s: %v", id, err)
			}
			if expectedContent != nil && string(content) != string(expectedContent) {
				t.Errorf("content mismatch for %s. got %q, want %q", id, content, expectedContent)
			}
		}
	})

	t.Run("GetActor_NotFound", func(t *testing.T) {
		_, err := loader.GetActor("non-existent-actor")
		if !errors.Is(err, domain.ErrActorNotFound) {
			t.Errorf("expected ErrActorNotFound for non-existent actor, got %v", err)
		}
	})

	t.Run("ListActors", func(t *testing.T) {
		ids, err := loader.ListActors()
		if err != nil {
			t.Fatalf("unexpected error listing actors: %v", err)
		}

		if len(ids) != len(setupData) {
			t.Errorf("expected %d actors, got %d", len(setupData), len(ids))
		}

		lookup := make(map[string]bool)
		for _, id := range ids {
			lookup[id] = true
		}
		for id := range setupData {
			if !lookup[id] {
				t.Errorf("actor %s missing from list", id)
			}
		}
	})
}
