package testsupport

import (
	"context"
	"testing"

	"dsprep/internal/manifest"
)

// MustOpenManifest opens a manifest in dir and registers cleanup.
func MustOpenManifest(t testing.TB, dir string) *manifest.Store {
	t.Helper()

	store, err := manifest.Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("manifest.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
