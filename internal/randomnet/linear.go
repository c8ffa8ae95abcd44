package randomnet

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

// LinearParams configures Linear.
type LinearParams struct {
	Atoms     dist.Dist[int]
	MaxLength dist.Dist[int]
	PForm     dist.Dist[float64]
	PBreak    dist.Dist[float64]
	Directed  bool
	Rates     dist.Dist[float64]
}

// AtomName returns the name of the i-th atom: A..Z, then Aa, Ab, ...
func AtomName(i int) string {
	const alpha = "abcdefghijklmnopqrstuvwxyz"
	name := string(alpha[i%len(alpha)])
	for i >= len(alpha) {
		i /= len(alpha)
		name = string(alpha[(i%len(alpha)+len(alpha)-1)%len(alpha)]) + name
	}
	return strings.ToUpper(name[:1]) + name[1:]
}

// Linear grows a network of molecules that are strings of atoms. Starting
// from single atoms, each round every new molecule may break at each bond
// with probability pbreak, and every pairing of a new molecule with a known
// or new one may join in each orientation with probability pform, up to
// the length limit. Growth stops once a round discovers nothing new.
// This follows Kauffman's autocatalytic-set model without catalysis.
func Linear(p LinearParams, rng *rand.Rand) (*chem.Network, error) {
	checks := []struct {
		name string
		err  error
	}{
		{"atoms", p.Atoms.Validate()},
		{"max length", p.MaxLength.Validate()},
		{"pform", p.PForm.Validate()},
		{"pbreak", p.PBreak.Validate()},
		{"rates", p.Rates.Validate()},
	}
	for _, c := range checks {
		if c.err != nil {
			return nil, fmt.Errorf("linear: %s: %w", c.name, c.err)
		}
	}
	natoms := p.Atoms.Sample(rng)
	maxLength := p.MaxLength.Sample(rng)
	lc := &achem.LinearChemistry{
		PForm:     p.PForm.Sample(rng),
		PBreak:    p.PBreak.Sample(rng),
		MaxLength: maxLength,
		Directed:  p.Directed,
	}
	if natoms < 1 {
		return nil, fmt.Errorf("linear: need at least one atom, got %d", natoms)
	}
	if maxLength < 1 {
		return nil, fmt.Errorf("linear: max length must be positive, got %d", maxLength)
	}
	if err := lc.Validate(); err != nil {
		return nil, fmt.Errorf("linear: %w", err)
	}

	g := &linearGrowth{params: p, rule: lc, rng: rng, table: newRateTable(), known: make(map[chem.Species]bool)}
	for i := range natoms {
		g.discover(chem.Species(AtomName(i)))
	}
	for len(g.fresh) > 0 {
		g.round()
	}
	return g.table.network()
}

type linearGrowth struct {
	params LinearParams
	rule   *achem.LinearChemistry
	rng    *rand.Rand
	table  *rateTable

	molecules []chem.Species
	fresh     []chem.Species
	known     map[chem.Species]bool
}

func (g *linearGrowth) discover(mol chem.Species) {
	if g.known[mol] {
		return
	}
	g.known[mol] = true
	g.fresh = append(g.fresh, mol)
}

func (g *linearGrowth) add(reactants, products []chem.Species) {
	r := chem.NewReaction(reactants, products)
	if !g.table.has(r) {
		g.table.set(r, g.params.Rates.Sample(g.rng))
	}
}

func (g *linearGrowth) orient(mol chem.Species) chem.Species {
	if g.params.Directed {
		return mol
	}
	return achem.Orient(mol)
}

func (g *linearGrowth) round() {
	current := g.fresh
	g.fresh = nil

	for _, z := range current {
		atoms := achem.Atoms(z)
		for i := 1; i < len(atoms); i++ {
			if g.rng.Float64() >= g.rule.PBreak {
				continue
			}
			a := g.orient(chem.Species(strings.Join(atoms[:i], "")))
			b := g.orient(chem.Species(strings.Join(atoms[i:], "")))
			g.add([]chem.Species{z}, []chem.Species{a, b})
			g.discover(a)
			g.discover(b)
		}
	}

	var pairs [][2]chem.Species
	for _, a := range current {
		for _, b := range g.molecules {
			pairs = append(pairs, [2]chem.Species{a, b})
		}
	}
	for i, a := range current {
		for _, b := range current[i:] {
			pairs = append(pairs, [2]chem.Species{a, b})
		}
	}
	for _, pair := range pairs {
		a, b := pair[0], pair[1]
		if len(achem.Atoms(a))+len(achem.Atoms(b)) > g.rule.MaxLength {
			continue
		}
		combos := [][2]chem.Species{{a, b}, {b, a}}
		if !g.params.Directed {
			combos = append(combos, [2]chem.Species{achem.Reverse(a), b}, [2]chem.Species{a, achem.Reverse(b)})
		}
		for _, xy := range combos {
			if g.rng.Float64() >= g.rule.PForm {
				continue
			}
			x, y := xy[0], xy[1]
			z := g.orient(x + y)
			reactants := []chem.Species{g.orient(x), g.orient(y)}
			slices.Sort(reactants)
			g.add(reactants, []chem.Species{z})
			g.discover(z)
		}
	}
	g.molecules = append(g.molecules, current...)
}
