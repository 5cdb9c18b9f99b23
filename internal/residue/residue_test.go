package residue

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRemoveAll_DeletesTree(t *testing.T) {
	r := NewRemover()

	dir := filepath.Join(t.TempDir(), "leftovers")
	if err := os.MkdirAll(filepath.Join(dir, "nested"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "nested", "state.json"), []byte("{}"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := r.RemoveAll(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatal("expected tree to be gone")
	}
}

func TestRemoveAll_AbsentPathIsIdempotent(t *testing.T) {
	r := NewRemover()
	missing := filepath.Join(t.TempDir(), "never-created")

	if err := r.RemoveAll(missing); err != nil {
		t.Fatalf("deleting an absent path must succeed, got %v", err)
	}
	// Repeat to confirm idempotence.
	if err := r.RemoveAll(missing); err != nil {
		t.Fatalf("second deletion must also succeed, got %v", err)
	}
}

func TestRemoveAll_RefusesUnsafePaths(t *testing.T) {
	r := NewRemover()

	for _, path := range []string{"/", "relative/path", ""} {
		if err := r.RemoveAll(path); err == nil {
			t.Fatalf("expected refusal for %q", path)
		}
	}
}
