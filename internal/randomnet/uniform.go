// Package randomnet generates random reaction networks, mostly as null
// models to compare real networks against.
package randomnet

import (
	"fmt"
	"math/rand/v2"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

// UniformParams configures Uniform. Every count and rate is a distribution
// sampled once per reaction.
type UniformParams struct {
	// Species are drawn uniformly for every reactant and product slot.
	Species []chem.Species

	Reactions dist.Dist[int]
	Reactants dist.Dist[int]
	Products  dist.Dist[int]
	Rates     dist.Dist[float64]
}

// Names returns n species named M0, M1, ...
func Names(n int) []chem.Species {
	out := make([]chem.Species, n)
	for i := range out {
		out[i] = chem.Species(fmt.Sprintf("M%d", i))
	}
	return out
}

func (p UniformParams) validate() error {
	if len(p.Species) == 0 {
		return fmt.Errorf("uniform: no species")
	}
	if err := p.Reactions.Validate(); err != nil {
		return fmt.Errorf("uniform: reactions: %w", err)
	}
	if err := p.Reactants.Validate(); err != nil {
		return fmt.Errorf("uniform: reactants: %w", err)
	}
	if err := p.Products.Validate(); err != nil {
		return fmt.Errorf("uniform: products: %w", err)
	}
	if err := p.Rates.Validate(); err != nil {
		return fmt.Errorf("uniform: rates: %w", err)
	}
	return nil
}

// Uniform assigns reactions at random between species. The reaction count
// is drawn first, then every reactant count, product count and rate, then
// the species of each reaction. A reaction drawn twice keeps its later rate
// and elastic draws are dropped, so the result may hold fewer reactions
// than drawn.
func Uniform(p UniformParams, rng *rand.Rand) (*chem.Network, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	n := p.Reactions.Sample(rng)
	if n < 0 {
		return nil, fmt.Errorf("uniform: negative reaction count %d", n)
	}
	nreactants := make([]int, n)
	nproducts := make([]int, n)
	rates := make([]float64, n)
	for i := range n {
		nreactants[i] = p.Reactants.Sample(rng)
	}
	for i := range n {
		nproducts[i] = p.Products.Sample(rng)
	}
	for i := range n {
		rates[i] = p.Rates.Sample(rng)
	}

	table := newRateTable()
	species := dist.Uniform(p.Species...)
	for i := range n {
		reactants := make([]chem.Species, max(nreactants[i], 0))
		for j := range reactants {
			reactants[j] = species.Sample(rng)
		}
		products := make([]chem.Species, max(nproducts[i], 0))
		for j := range products {
			products[j] = species.Sample(rng)
		}
		table.set(chem.NewReaction(reactants, products), rates[i])
	}
	return table.network()
}

// rateTable keeps reactions in first-insertion order.
type rateTable struct {
	order []chem.ReactionKey
	rows  map[chem.ReactionKey]chem.Entry
}

func newRateTable() *rateTable {
	return &rateTable{rows: make(map[chem.ReactionKey]chem.Entry)}
}

func (t *rateTable) has(r chem.Reaction) bool {
	_, ok := t.rows[r.Key()]
	return ok
}

func (t *rateTable) set(r chem.Reaction, rate float64) {
	k := r.Key()
	if _, ok := t.rows[k]; !ok {
		t.order = append(t.order, k)
	}
	t.rows[k] = chem.Entry{Reactants: r.Reactants.Items(), Products: r.Products.Items(), Rate: rate}
}

func (t *rateTable) network() (*chem.Network, error) {
	entries := make([]chem.Entry, 0, len(t.order))
	for _, k := range t.order {
		entries = append(entries, t.rows[k])
	}
	return chem.New(entries)
}
