// Package achem defines the chemistry rule consumed by reactors.
//
// A Chemistry turns reactant molecules into products, either by sampling a
// single outcome (React) or by listing every outcome with its relative rate
// (AllReactions). Reactors depend only on this interface, never on how a
// chemistry is backed.
package achem

import (
	"errors"
	"math/rand/v2"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

// ErrUninterpretable is returned when a chemistry cannot evaluate the
// reactants it was given.
var ErrUninterpretable = errors.New("reactants cannot be interpreted")

// Chemistry is a reaction rule.
//
// React must not retain or modify reactants. Returning the reactants
// unchanged is an elastic collision, not an error. Implementations must be
// safe for concurrent use when the reactor evaluates groups in parallel;
// all randomness comes from rng.
type Chemistry interface {
	// React samples the products of one collision.
	React(rng *rand.Rand, reactants chem.Molecules) (chem.Molecules, error)

	// AllReactions lists every non-elastic outcome of reactants with its
	// relative rate, sorted by products.
	AllReactions(reactants chem.Molecules) ([]Outcome, error)

	// Arity is the distribution of reactant counts per collision.
	Arity() dist.Dist[int]
}

// Outcome is one possible result of a collision.
type Outcome struct {
	Reaction chem.Reaction
	Rate     float64
}

// Identity is a chemistry where nothing ever reacts.
type Identity struct {
	// Arities overrides the default arity of 2.
	Arities dist.Dist[int]
}

func (Identity) React(_ *rand.Rand, reactants chem.Molecules) (chem.Molecules, error) {
	return reactants, nil
}

func (Identity) AllReactions(chem.Molecules) ([]Outcome, error) { return nil, nil }

func (c Identity) Arity() dist.Dist[int] {
	if c.Arities.Kind() == dist.KindInvalid {
		return dist.Fixed(2)
	}
	return c.Arities
}

// WithArity returns c with its arity distribution replaced by d.
func WithArity(c Chemistry, d dist.Dist[int]) Chemistry {
	return arityOverride{Chemistry: c, arity: d}
}

type arityOverride struct {
	Chemistry
	arity dist.Dist[int]
}

func (c arityOverride) Arity() dist.Dist[int] { return c.arity }
