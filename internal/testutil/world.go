package testutil

import (
	"testing"

	"github.com/udisondev/pregen/internal/world"
)

// NewTestManager создаёт world.Manager с детерминированными мирами (HashGenerator, seed = индекс+1).
func NewTestManager(t testing.TB, names ...string) *world.Manager {
	t.Helper()

	m := world.NewManager()
	for i, name := range names {
		w := world.NewWorld(name, world.HashGenerator{Seed: int64(i + 1)}, world.DefaultMaxHeight)
		if err := m.Add(w); err != nil {
			t.Fatalf("adding world %q: %v", name, err)
		}
	}
	return m
}
