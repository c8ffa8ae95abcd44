package achem

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"slices"
	"strings"

	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

var atomPattern = regexp.MustCompile(`[A-Z][a-z]*|[^A-Z]+`)

// Atoms splits a molecule name into atoms. An atom is a capital letter
// followed by lower-case letters, so "AaBbC" is [Aa Bb C].
func Atoms(mol chem.Species) []string {
	return atomPattern.FindAllString(string(mol), -1)
}

// Reverse returns the molecule with its atoms in reverse order.
func Reverse(mol chem.Species) chem.Species {
	atoms := Atoms(mol)
	slices.Reverse(atoms)
	return chem.Species(strings.Join(atoms, ""))
}

// Orient returns the lesser of mol and its reverse, the canonical name of
// an undirected molecule.
func Orient(mol chem.Species) chem.Species {
	return min(mol, Reverse(mol))
}

// LinearChemistry is a procedural chemistry over strings of atoms. Two
// molecules join end to end with probability PForm per orientation and a
// molecule breaks at one of its bonds with probability PBreak.
type LinearChemistry struct {
	PForm  float64
	PBreak float64

	// MaxLength bounds the atom count of joined molecules. Zero is unbounded.
	MaxLength int

	// Directed molecules distinguish AaBb from BbAa.
	Directed bool

	// Arities overrides the default uniform choice between 1 and 2.
	Arities dist.Dist[int]
}

// Validate checks that both probabilities lie in [0, 1].
func (c *LinearChemistry) Validate() error {
	if c.PForm < 0 || c.PForm > 1 {
		return fmt.Errorf("pform %v outside [0, 1]", c.PForm)
	}
	if c.PBreak < 0 || c.PBreak > 1 {
		return fmt.Errorf("pbreak %v outside [0, 1]", c.PBreak)
	}
	if c.MaxLength < 0 {
		return fmt.Errorf("negative max length %d", c.MaxLength)
	}
	return nil
}

func (c *LinearChemistry) Arity() dist.Dist[int] {
	if c.Arities.Kind() == dist.KindInvalid {
		return dist.Uniform(1, 2)
	}
	return c.Arities
}

// React joins two reactants or breaks one. Other reactant counts bounce.
func (c *LinearChemistry) React(rng *rand.Rand, reactants chem.Molecules) (chem.Molecules, error) {
	items := reactants.Items()
	if err := checkAtoms(items); err != nil {
		return reactants, err
	}
	switch len(items) {
	case 1:
		bonds := len(Atoms(items[0])) - 1
		if bonds < 1 || rng.Float64() >= c.PBreak {
			return reactants, nil
		}
		a, b := c.split(items[0], 1+rng.IntN(bonds))
		return bag.NewFrozen(a, b), nil
	case 2:
		pairs := c.orientations(items[0], items[1])
		x := pairs[rng.IntN(len(pairs))]
		if !c.fits(x[0], x[1]) || rng.Float64() >= c.PForm {
			return reactants, nil
		}
		return bag.NewFrozen(c.join(x[0], x[1])), nil
	}
	return reactants, nil
}

// AllReactions lists every join orientation at rate PForm and every break
// point at rate PBreak. Outcomes reachable in more than one way are listed once.
func (c *LinearChemistry) AllReactions(reactants chem.Molecules) ([]Outcome, error) {
	items := reactants.Items()
	if err := checkAtoms(items); err != nil {
		return nil, err
	}
	seen := make(map[chem.ReactionKey]bool)
	var out []Outcome
	add := func(products chem.Molecules, rate float64) {
		r := chem.Reaction{Reactants: reactants, Products: products}
		if rate <= 0 || r.Elastic() || seen[r.Key()] {
			return
		}
		seen[r.Key()] = true
		out = append(out, Outcome{Reaction: r, Rate: rate})
	}
	switch len(items) {
	case 1:
		for i := 1; i < len(Atoms(items[0])); i++ {
			a, b := c.split(items[0], i)
			add(bag.NewFrozen(a, b), c.PBreak)
		}
	case 2:
		for _, x := range c.orientations(items[0], items[1]) {
			if c.fits(x[0], x[1]) {
				add(bag.NewFrozen(c.join(x[0], x[1])), c.PForm)
			}
		}
	}
	slices.SortFunc(out, func(a, b Outcome) int { return a.Reaction.Compare(b.Reaction) })
	return out, nil
}

func (c *LinearChemistry) orientations(a, b chem.Species) [][2]chem.Species {
	pairs := [][2]chem.Species{{a, b}, {b, a}}
	if !c.Directed {
		pairs = append(pairs, [2]chem.Species{Reverse(a), b}, [2]chem.Species{a, Reverse(b)})
	}
	return pairs
}

func (c *LinearChemistry) fits(a, b chem.Species) bool {
	return c.MaxLength == 0 || len(Atoms(a))+len(Atoms(b)) <= c.MaxLength
}

func (c *LinearChemistry) join(a, b chem.Species) chem.Species {
	z := a + b
	if !c.Directed {
		z = Orient(z)
	}
	return z
}

func (c *LinearChemistry) split(mol chem.Species, at int) (chem.Species, chem.Species) {
	atoms := Atoms(mol)
	a := chem.Species(strings.Join(atoms[:at], ""))
	b := chem.Species(strings.Join(atoms[at:], ""))
	if !c.Directed {
		a, b = Orient(a), Orient(b)
	}
	return a, b
}

func checkAtoms(items []chem.Species) error {
	for _, mol := range items {
		if mol == "" {
			return fmt.Errorf("%w: empty molecule", ErrUninterpretable)
		}
	}
	return nil
}
