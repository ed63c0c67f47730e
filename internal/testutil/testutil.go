// Package testutil provides shared test helpers for setting up storage roots.
package testutil

import (
	"testing"

	"github.com/askeladd/deckforge/internal/storage"
)

// TestStore creates a temporary storage root that is automatically cleaned up.
func TestStore(t *testing.T) (*storage.Dir, string) {
	t.Helper()
	root := t.TempDir()
	store, err := storage.NewDir(root)
	if err != nil {
		t.Fatalf("NewDir: %v", err)
	}
	return store, root
}
