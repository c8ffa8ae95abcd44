package reactor

import (
	"iter"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

// Enumerate explores the reaction network reachable from the initial
// species breadth first. Every unordered pair of known species, self pairs
// included, is evaluated once with AllReactions. The budget is a number of
// species: each Do raises the species cap by budget.
type Enumerate struct {
	base
	species  []chem.Species
	known    map[chem.Species]bool
	tested   map[string]bool
	untested []chem.Molecules
	pending  []bucket.Event
	maxMols  int
}

// NewEnumerate builds an Enumerate reactor seeded with the distinct species
// of pool, in first-seen order.
func NewEnumerate(c achem.Chemistry, pool []chem.Species, opts ...Option) (*Enumerate, error) {
	b, err := newBase(KindEnumerate, c, nil, opts)
	if err != nil {
		return nil, err
	}
	r := &Enumerate{
		base:   b,
		known:  make(map[chem.Species]bool),
		tested: make(map[string]bool),
	}
	for _, sp := range pool {
		r.addSpecies(sp)
	}
	return r, nil
}

// Species returns the species discovered so far, in discovery order.
func (r *Enumerate) Species() []chem.Species { return slices.Clone(r.species) }

// Pool returns the discovered species.
func (r *Enumerate) Pool() []chem.Species { return r.Species() }

func (r *Enumerate) addSpecies(sp chem.Species) {
	if r.known[sp] {
		return
	}
	r.known[sp] = true
	r.species = append(r.species, sp)
	for _, other := range r.species {
		pair := bag.NewFrozen(sp, other)
		if !r.tested[pair.Key()] {
			r.untested = append(r.untested, pair)
		}
	}
}

// Do raises the species cap by budget and evaluates pending pairs round by
// round until the cap is reached or no pairs remain. Each non-elastic
// outcome is emitted once, at time 0, with its rate as the explicit rate
// constant. Pairs not evaluated because the cap was reached stay pending.
func (r *Enumerate) Do(budget float64) iter.Seq2[bucket.Event, error] {
	return r.sequence(budget, func(budget float64, yield func(bucket.Event, error) bool) {
		r.raiseCap(budget)
		defer r.markExhausted()
		if !r.flush(yield) {
			return
		}
		for len(r.species) < r.maxMols && len(r.untested) > 0 {
			batch := r.untested
			r.untested = nil
			outcomes, err := r.evaluate(batch)
			if err != nil {
				r.untested = append(batch, r.untested...)
				yield(bucket.Event{}, err)
				return
			}
			for i, pair := range batch {
				if len(r.species) >= r.maxMols {
					r.untested = append(slices.Clone(batch[i:]), r.untested...)
					break
				}
				r.tested[pair.Key()] = true
				for _, o := range outcomes[i] {
					if o.Reaction.Elastic() {
						continue
					}
					for sp := range o.Reaction.Products.All() {
						r.addSpecies(sp)
					}
					r.pending = append(r.pending, r.event(0, o.Reaction.Reactants, o.Reaction.Products).WithRate(o.Rate))
				}
				if !r.flush(yield) {
					r.untested = append(slices.Clone(batch[i+1:]), r.untested...)
					return
				}
			}
		}
	})
}

// flush emits events discovered but not yet delivered. It reports false if
// the consumer stopped.
func (r *Enumerate) flush(yield func(bucket.Event, error) bool) bool {
	for len(r.pending) > 0 {
		e := r.pending[0]
		r.pending = r.pending[1:]
		r.observe(e)
		if !yield(e, nil) {
			return false
		}
	}
	return true
}

func (r *Enumerate) markExhausted() {
	if len(r.untested) == 0 && len(r.pending) == 0 && r.state != StateExhausted {
		r.state = StateExhausted
		r.cfg.logger.Debug("enumeration exhausted", "species", len(r.species))
	}
}

// evaluate runs AllReactions for every pair, in parallel when configured.
func (r *Enumerate) evaluate(batch []chem.Molecules) ([][]achem.Outcome, error) {
	results := make([][]achem.Outcome, len(batch))
	if r.cfg.workers < 2 || len(batch) < 2 {
		for i, pair := range batch {
			out, err := r.rule.AllReactions(pair)
			if err != nil {
				return nil, err
			}
			results[i] = out
		}
		return results, nil
	}

	var eg errgroup.Group
	eg.SetLimit(r.cfg.workers)
	for i, pair := range batch {
		eg.Go(func() error {
			out, err := r.rule.AllReactions(pair)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// raiseCap adds budget to the species cap, saturating at math.MaxInt so an
// infinite budget enumerates to completion.
func (r *Enumerate) raiseCap(budget float64) {
	if budget >= float64(math.MaxInt-r.maxMols) {
		r.maxMols = math.MaxInt
		return
	}
	r.maxMols += int(budget)
}
