// Package runid issues identifiers for stored simulation runs.
package runid

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// Generator issues run identifiers.
type Generator interface {
	New() string
}

// UUIDv7 issues time-sortable UUIDv7 identifiers, so listing runs by ID
// lists them by creation time. Safe for concurrent use.
type UUIDv7 struct{}

func (UUIDv7) New() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Fixed returns predetermined IDs in order, for golden tests.
type Fixed struct {
	mu  sync.Mutex
	ids []string
	idx int
}

// NewFixed creates a generator that hands out ids in order and panics once
// they are exhausted.
func NewFixed(ids ...string) *Fixed {
	return &Fixed{ids: ids}
}

func (g *Fixed) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.idx >= len(g.ids) {
		panic(fmt.Sprintf("runid: all %d fixed ids used", len(g.ids)))
	}
	id := g.ids[g.idx]
	g.idx++
	return id
}

// Valid reports whether id parses as a UUID.
func Valid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
