package harness

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/chem"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string
	Expected string
	Actual   string
}

func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s", e.Actual)
	return buf.String()
}

func evaluate(r *Result, a Assertion) error {
	switch a.Type {
	case AssertEventCount:
		return assertCount(a.Type, *a.Count, len(r.Events), "events")
	case AssertElasticCount:
		n := 0
		for _, e := range r.Events {
			if e.Elastic() {
				n++
			}
		}
		return assertCount(a.Type, *a.Count, n, "elastic events")
	case AssertReactionCount:
		return assertCount(a.Type, *a.Count, r.Network.Len(), "reactions")
	case AssertEventContains:
		return assertEventContains(r, a)
	case AssertTimeOrdered:
		return assertTimeOrdered(r)
	case AssertNetworkSubset:
		return assertNetworkSubset(r)
	case AssertNetworkEquals:
		return assertNetworkEquals(r, a)
	case AssertFinalCounts:
		return assertFinalCounts(r, a)
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func assertCount(typ string, want, got int, what string) error {
	if want == got {
		return nil
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d %s", want, what),
		Actual:   fmt.Sprintf("%d %s", got, what),
	}
}

// assertEventContains matches sides as multisets. An empty side in the
// assertion matches any side.
func assertEventContains(r *Result, a Assertion) error {
	reactants, products := chem.Mols(a.Reactants...), chem.Mols(a.Products...)
	for _, e := range r.Events {
		if len(a.Reactants) > 0 && !e.Reactants.Equal(reactants) {
			continue
		}
		if len(a.Products) > 0 && !e.Products.Equal(products) {
			continue
		}
		return nil
	}
	return &AssertionError{
		Type:     AssertEventContains,
		Expected: fmt.Sprintf("an event %s -> %s", chem.JoinSpecies(reactants), chem.JoinSpecies(products)),
		Actual:   fmt.Sprintf("none among %d events", len(r.Events)),
	}
}

func assertTimeOrdered(r *Result) error {
	for i := 1; i < len(r.Events); i++ {
		if r.Events[i].Less(r.Events[i-1]) {
			return &AssertionError{
				Type:     AssertTimeOrdered,
				Expected: "non-decreasing event times",
				Actual: fmt.Sprintf("event %d at %v follows event %d at %v",
					i, r.Events[i].Time, i-1, r.Events[i-1].Time),
			}
		}
	}
	return nil
}

func assertNetworkSubset(r *Result) error {
	if r.Source == nil {
		return &AssertionError{
			Type:     AssertNetworkSubset,
			Expected: "an experiment with a reaction network",
			Actual:   "procedural chemistry",
		}
	}
	for reaction := range r.Network.All() {
		if !r.Source.Has(reaction) {
			return &AssertionError{
				Type:     AssertNetworkSubset,
				Expected: "every observed reaction in the source network",
				Actual:   fmt.Sprintf("unknown reaction %s", reaction),
			}
		}
	}
	return nil
}

func assertNetworkEquals(r *Result, a Assertion) error {
	want, err := chem.Parse(a.Network)
	if err != nil {
		return fmt.Errorf("%s: expected network: %w", AssertNetworkEquals, err)
	}
	if r.Network.Equal(want) {
		return nil
	}
	return &AssertionError{
		Type:     AssertNetworkEquals,
		Expected: fmt.Sprintf("\n%s", want.Text()),
		Actual:   fmt.Sprintf("\n%s", r.Network.Text()),
	}
}

// assertFinalCounts replays the events over the initial pool and compares
// the named species only.
func assertFinalCounts(r *Result, a Assertion) error {
	pool := bag.NewOrderedBag(r.Pool...)
	for _, e := range r.Events {
		for _, s := range e.Reactants.Items() {
			pool.Remove(s)
		}
		pool.Add(e.Products.Items()...)
	}

	var diffs []string
	for _, name := range slices.Sorted(maps.Keys(a.Counts)) {
		got := pool.Count(chem.NewSpecies(name))
		if got != a.Counts[name] {
			diffs = append(diffs, fmt.Sprintf("%s=%d (want %d)", name, got, a.Counts[name]))
		}
	}
	if len(diffs) == 0 {
		return nil
	}
	return &AssertionError{
		Type:     AssertFinalCounts,
		Expected: fmt.Sprintf("%v", a.Counts),
		Actual:   strings.Join(diffs, ", "),
	}
}
