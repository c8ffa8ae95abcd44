package reactor

import (
	"iter"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// Iterative reacts one randomly drawn group per unit time step. The budget
// is simulated time.
type Iterative struct {
	base
	time    float64
	maxTime float64
}

// NewIterative builds an Iterative reactor over a copy of pool.
func NewIterative(c achem.Chemistry, pool []chem.Species, opts ...Option) (*Iterative, error) {
	b, err := newBase(KindIterative, c, pool, opts)
	if err != nil {
		return nil, err
	}
	if err := b.validateFixedArity(); err != nil {
		return nil, err
	}
	return &Iterative{base: b}, nil
}

// Time returns the simulated time of the next tick.
func (r *Iterative) Time() float64 { return r.time }

// Do runs ticks until budget more time has passed. Each tick shuffles the
// pool, draws one group, reacts it and returns the products to the pool.
// A tick without enough molecules emits nothing but still takes time.
func (r *Iterative) Do(budget float64) iter.Seq2[bucket.Event, error] {
	return r.sequence(budget, func(budget float64, yield func(bucket.Event, error) bool) {
		r.maxTime += budget
		for r.time < r.maxTime {
			now := r.time
			r.time++
			r.pool.Shuffle(r.cfg.rng)
			n := r.drawArity()
			drawn := r.pool.Take(n)
			if drawn == nil {
				r.skip(now, n)
				continue
			}
			reactants := bag.NewFrozen(drawn...)
			products, err := r.rule.React(r.cfg.rng, reactants)
			if err != nil {
				r.pool.Add(drawn...)
				yield(bucket.Event{}, err)
				return
			}
			r.pool.Add(products.Items()...)
			e := r.event(now, reactants, products)
			r.observe(e)
			if !yield(e, nil) {
				return
			}
		}
	})
}
