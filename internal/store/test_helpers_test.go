package store

import (
	"path/filepath"
	"testing"

	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// createTestStore creates a new store in a temporary directory.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestRun creates a run with minimal required fields.
func createTestRun(id string) Run {
	return Run{
		ID:         id,
		Name:       "test",
		Reactor:    "iterative",
		Seed:       42,
		Budget:     3,
		InputHash:  "test-hash",
		Experiment: []byte(`{"name":"test"}`),
	}
}

func createTestEvents() []bucket.Event {
	return []bucket.Event{
		bucket.NewEvent(0, chem.Mols("A", "B"), chem.Mols("B", "C")).WithWall(1700000000),
		bucket.NewEvent(1, chem.Mols("C"), chem.Mols("A")).WithRate(2.5),
		bucket.NewEvent(2, chem.Mols("A"), chem.Mols()),
	}
}
