package bucket

import (
	"fmt"
	"maps"
	"math"

	"github.com/roach88/achemkit/internal/chem"
)

// Snapshot is the species census at the end of one time bin.
type Snapshot struct {
	Time   float64
	Counts map[chem.Species]int
}

// MolCounts replays the events over an initial pool and returns a snapshot
// at time 0 followed by one per occupied bin. Events at time t fall in the
// bin ending at ceil(t/interval)*interval; events at or before time 0 fall
// in the first bin. Species absent from a bin carry their last count.
func (b *Bucket) MolCounts(initial []chem.Species, interval float64) ([]Snapshot, error) {
	if !(interval > 0) {
		return nil, fmt.Errorf("interval must be positive, got %v", interval)
	}
	counts := make(map[chem.Species]int)
	for _, sp := range initial {
		counts[sp]++
	}
	out := []Snapshot{{Time: 0, Counts: maps.Clone(counts)}}

	current := math.NaN()
	for _, e := range b.events {
		bin := max(math.Ceil(e.Time/interval)*interval, interval)
		if bin != current {
			if !math.IsNaN(current) {
				out = append(out, Snapshot{Time: current, Counts: maps.Clone(counts)})
			}
			current = bin
		}
		for sp := range e.Reactants.All() {
			counts[sp]--
		}
		for sp := range e.Products.All() {
			counts[sp]++
		}
	}
	if !math.IsNaN(current) {
		out = append(out, Snapshot{Time: current, Counts: maps.Clone(counts)})
	}
	return out, nil
}
