package reactor

import (
	"iter"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// Stepwise partitions the whole pool into reacting groups every unit time
// step. Molecules left over when fewer than a group remain wait for the
// next step. The budget is simulated time.
type Stepwise struct {
	base
	time    float64
	maxTime float64
}

// NewStepwise builds a Stepwise reactor over a copy of pool.
func NewStepwise(c achem.Chemistry, pool []chem.Species, opts ...Option) (*Stepwise, error) {
	b, err := newBase(KindStepwise, c, pool, opts)
	if err != nil {
		return nil, err
	}
	if err := b.validateFixedArity(); err != nil {
		return nil, err
	}
	return &Stepwise{base: b}, nil
}

// Time returns the simulated time of the next step.
func (r *Stepwise) Time() float64 { return r.time }

// group is one reactant draw and the source it reacts with.
type group struct {
	reactants chem.Molecules
	rng       *rand.Rand
}

// Do runs steps until budget more time has passed. All events of a step
// share its timestamp and are emitted in draw order.
func (r *Stepwise) Do(budget float64) iter.Seq2[bucket.Event, error] {
	return r.sequence(budget, func(budget float64, yield func(bucket.Event, error) bool) {
		r.maxTime += budget
		for r.time < r.maxTime {
			now := r.time
			groups := r.partition(now)
			products, err := r.react(groups)
			if err != nil {
				for _, g := range groups {
					r.pool.Add(g.reactants.Items()...)
				}
				yield(bucket.Event{}, err)
				return
			}
			r.time++

			events := make([]bucket.Event, len(groups))
			for i, g := range groups {
				r.pool.Add(products[i].Items()...)
				events[i] = r.event(now, g.reactants, products[i])
			}
			for _, e := range events {
				r.observe(e)
				if !yield(e, nil) {
					return
				}
			}
		}
	})
}

// partition shuffles the pool and draws groups until too few molecules
// remain. Each group gets its own source split from the reactor's, so
// results do not depend on evaluation order.
func (r *Stepwise) partition(now float64) []group {
	r.pool.Shuffle(r.cfg.rng)
	var groups []group
	for r.pool.Len() > 0 {
		n := r.drawArity()
		drawn := r.pool.Take(n)
		if drawn == nil {
			r.skip(now, n)
			break
		}
		seed1, seed2 := r.cfg.rng.Uint64(), r.cfg.rng.Uint64()
		groups = append(groups, group{
			reactants: bag.NewFrozen(drawn...),
			rng:       rand.New(rand.NewPCG(seed1, seed2)),
		})
	}
	return groups
}

// react evaluates every group, in parallel when configured. Results are
// addressed by group index, never by completion order.
func (r *Stepwise) react(groups []group) ([]chem.Molecules, error) {
	results := make([]chem.Molecules, len(groups))
	if r.cfg.workers < 2 || len(groups) < 2 {
		for i, g := range groups {
			products, err := r.rule.React(g.rng, g.reactants)
			if err != nil {
				return nil, err
			}
			results[i] = products
		}
		return results, nil
	}

	var eg errgroup.Group
	eg.SetLimit(r.cfg.workers)
	for i, g := range groups {
		eg.Go(func() error {
			products, err := r.rule.React(g.rng, g.reactants)
			if err != nil {
				return err
			}
			results[i] = products
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
