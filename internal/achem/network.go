package achem

import (
	"math/rand/v2"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

// NetworkChemistry reacts molecules according to a fixed reaction network.
// It is mainly used to check how faithfully a reactor reproduces the
// network it was driven by.
type NetworkChemistry struct {
	net   *chem.Network
	arity dist.Dist[int]
}

// NewNetworkChemistry wraps net. The arity distribution mirrors the mix of
// reactant counts among the network's reactions.
func NewNetworkChemistry(net *chem.Network) *NetworkChemistry {
	return &NetworkChemistry{net: net, arity: dist.Uniform(net.Arities()...)}
}

// Network returns the wrapped network.
func (c *NetworkChemistry) Network() *chem.Network { return c.net }

// React picks uniformly among the recorded products for reactants and
// falls back to an elastic collision when none exist. It never fails.
func (c *NetworkChemistry) React(rng *rand.Rand, reactants chem.Molecules) (chem.Molecules, error) {
	outcomes := c.net.Outcomes(reactants)
	if len(outcomes) == 0 {
		return reactants, nil
	}
	return outcomes[rng.IntN(len(outcomes))].Products, nil
}

func (c *NetworkChemistry) AllReactions(reactants chem.Molecules) ([]Outcome, error) {
	reactions := c.net.Outcomes(reactants)
	out := make([]Outcome, 0, len(reactions))
	for _, r := range reactions {
		rate, err := c.net.RateOf(r)
		if err != nil {
			return nil, err
		}
		out = append(out, Outcome{Reaction: r, Rate: rate})
	}
	return out, nil
}

func (c *NetworkChemistry) Arity() dist.Dist[int] { return c.arity }
