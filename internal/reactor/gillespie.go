package reactor

import (
	"iter"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// Gillespie is a continuous-time stochastic simulation. Waiting times are
// exponential with rate equal to the total propensity of the pool, scaled by
// the temperature. The budget is simulated time.
type Gillespie struct {
	base
	arities []int
	time    float64
	maxTime float64
}

// NewGillespie builds a Gillespie reactor over a copy of pool. The
// chemistry's arity distribution is validated here.
func NewGillespie(c achem.Chemistry, pool []chem.Species, opts ...Option) (*Gillespie, error) {
	b, err := newBase(KindGillespie, c, pool, opts)
	if err != nil {
		return nil, err
	}
	if err := b.validateArity(); err != nil {
		return nil, err
	}
	if !(b.cfg.temperature > 0) {
		return nil, chem.NewInvariantError("gillespie reactor: temperature must be positive", chem.ErrNonPositiveRate)
	}
	return &Gillespie{base: b, arities: b.arity.Support()}, nil
}

// Time returns the simulated time of the last event.
func (r *Gillespie) Time() float64 { return r.time }

// Propensity returns the total number of ordered reactant draws from a pool
// of m molecules, summed over the admitted arities.
func Propensity(m int, arities []int) float64 {
	total := 0.0
	for _, n := range arities {
		if n > m {
			continue
		}
		ways := 1.0
		for i := range n {
			ways *= float64(m - i)
		}
		total += ways
	}
	return total
}

// Do advances simulated time by budget. A draw that needs more molecules
// than the pool holds is skipped but its waiting time still elapses. When
// no draw is possible at all, time jumps to the end of the budget.
func (r *Gillespie) Do(budget float64) iter.Seq2[bucket.Event, error] {
	return r.sequence(budget, func(budget float64, yield func(bucket.Event, error) bool) {
		r.maxTime += budget
		for r.time < r.maxTime {
			total := Propensity(r.pool.Len(), r.arities)
			if total == 0 {
				r.cfg.logger.Debug("no possible reactions", "time", r.time, "pool", r.pool.Len())
				r.time = r.maxTime
				return
			}
			r.time += r.cfg.rng.ExpFloat64() / total * r.cfg.temperature

			n := r.arity.Sample(r.cfg.rng)
			r.pool.Shuffle(r.cfg.rng)
			drawn := r.pool.Take(n)
			if drawn == nil {
				r.skip(r.time, n)
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
			e := r.event(r.time, reactants, products)
			r.observe(e)
			if !yield(e, nil) {
				return
			}
		}
	})
}
