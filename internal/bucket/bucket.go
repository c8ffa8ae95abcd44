// Package bucket records simulation events and reconstructs reaction
// networks from them.
//
// A Bucket is an immutable, time-sorted event log. Its reaction network is
// derived on first request: reactions that carry explicit rate constants
// keep them, all others get a rate estimated from how often they occurred.
package bucket

import (
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/roach88/achemkit/internal/chem"
)

// Estimator selects how rates are inferred for events without an explicit
// rate constant.
type Estimator int

const (
	// EstimateCount uses the number of occurrences of each reaction.
	EstimateCount Estimator = iota

	// EstimateNormalized divides occurrences by the number of times the
	// same reactant multiset was drawn, elastic draws included. Logs that
	// omit elastic collisions bias this estimate upward.
	EstimateNormalized
)

func (e Estimator) String() string {
	switch e {
	case EstimateNormalized:
		return "normalized"
	default:
		return "count"
	}
}

// ParseEstimator maps "count" or "normalized" to an Estimator.
func ParseEstimator(s string) (Estimator, error) {
	switch s {
	case "", "count":
		return EstimateCount, nil
	case "normalized":
		return EstimateNormalized, nil
	}
	return 0, fmt.Errorf("unknown estimator %q (want count or normalized)", s)
}

// Option configures a Bucket.
type Option func(*Bucket)

// WithEstimator sets the rate estimator. The default is EstimateCount.
func WithEstimator(e Estimator) Option {
	return func(b *Bucket) { b.estimator = e }
}

// Bucket is an immutable, time-ordered event log.
type Bucket struct {
	events    []Event
	estimator Estimator

	once   sync.Once
	net    *chem.Network
	netErr error
}

// New builds a Bucket from events in any order. Events are sorted by time;
// events sharing a time keep their input order.
func New(events []Event, opts ...Option) *Bucket {
	b := &Bucket{events: slices.Clone(events)}
	for _, opt := range opts {
		opt(b)
	}
	slices.SortStableFunc(b.events, func(x, y Event) int {
		switch {
		case x.Less(y):
			return -1
		case y.Less(x):
			return 1
		}
		return 0
	})
	return b
}

// Collect drains seq into a Bucket, stopping at the first error.
func Collect(seq iter.Seq2[Event, error], opts ...Option) (*Bucket, error) {
	var events []Event
	for e, err := range seq {
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return New(events, opts...), nil
}

// Len returns the number of events.
func (b *Bucket) Len() int { return len(b.events) }

// Events returns a copy of the sorted events.
func (b *Bucket) Events() []Event { return slices.Clone(b.events) }

// All iterates over events in time order.
func (b *Bucket) All() iter.Seq[Event] { return slices.Values(b.events) }

// After returns a Bucket holding only events strictly later than t.
func (b *Bucket) After(t float64) *Bucket {
	i, _ := slices.BinarySearchFunc(b.events, t, func(e Event, t float64) int {
		if e.Time <= t {
			return -1
		}
		return 1
	})
	return &Bucket{events: slices.Clone(b.events[i:]), estimator: b.estimator}
}

// ReactionNet reconstructs the reaction network exhibited by the events.
// The result is computed once and cached.
//
// Elastic events never become reactions. Events of one reaction must either
// all carry the same explicit rate constant or all carry none; anything else
// is an invariant violation wrapping chem.ErrConflictingRate.
func (b *Bucket) ReactionNet() (*chem.Network, error) {
	b.once.Do(func() {
		b.net, b.netErr = b.reconstruct()
	})
	return b.net, b.netErr
}

type tally struct {
	reaction chem.Reaction
	count    int
	rate     float64
	explicit bool
}

func (b *Bucket) reconstruct() (*chem.Network, error) {
	var order []chem.ReactionKey
	tallies := make(map[chem.ReactionKey]*tally)
	draws := make(map[string]int)

	for _, e := range b.events {
		draws[e.Reactants.Key()]++
		if e.Elastic() {
			continue
		}
		r := e.Reaction()
		k := r.Key()
		rate, explicit := e.RateConstant()
		t, ok := tallies[k]
		if !ok {
			t = &tally{reaction: r, rate: rate, explicit: explicit}
			tallies[k] = t
			order = append(order, k)
		}
		if t.explicit != explicit || (explicit && t.rate != rate) {
			return nil, chem.NewInvariantError(
				fmt.Sprintf("%s at time %s", r, chem.FormatRate(e.Time)), chem.ErrConflictingRate)
		}
		t.count++
	}

	entries := make([]chem.Entry, 0, len(order))
	for _, k := range order {
		t := tallies[k]
		rate := t.rate
		if !t.explicit {
			rate = float64(t.count)
			if b.estimator == EstimateNormalized {
				rate /= float64(draws[k.Reactants])
			}
		}
		entries = append(entries, chem.Entry{
			Reactants: t.reaction.Reactants.Items(),
			Products:  t.reaction.Products.Items(),
			Rate:      rate,
		})
	}
	return chem.New(entries)
}
