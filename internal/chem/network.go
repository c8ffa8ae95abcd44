package chem

import (
	"fmt"
	"iter"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/achemkit/internal/bag"
	"github.com/roach88/achemkit/internal/canon"
)

// Reaction pairs a reactant multiset with a product multiset.
type Reaction struct {
	Reactants Molecules
	Products  Molecules
}

// NewReaction builds a Reaction from species lists in any order.
func NewReaction(reactants, products []Species) Reaction {
	return Reaction{Reactants: bag.NewFrozen(reactants...), Products: bag.NewFrozen(products...)}
}

// ReactionKey identifies a reaction by the canonical keys of its multisets.
// Two reactions built from the same species in any order share a key.
type ReactionKey struct {
	Reactants string
	Products  string
}

// Key returns the map key for r.
func (r Reaction) Key() ReactionKey {
	return ReactionKey{Reactants: r.Reactants.Key(), Products: r.Products.Key()}
}

// Elastic reports whether the reaction leaves its reactants unchanged.
func (r Reaction) Elastic() bool { return r.Reactants.Equal(r.Products) }

// Compare orders reactions by reactants, then products.
func (r Reaction) Compare(other Reaction) int {
	if c := r.Reactants.Compare(other.Reactants); c != 0 {
		return c
	}
	return r.Products.Compare(other.Products)
}

func (r Reaction) String() string { return ReactionToText(r, 1.0) }

// Entry is one row of a rate table used to construct a Network.
type Entry struct {
	Reactants []Species
	Products  []Species
	Rate      float64
}

// Network is an immutable mapping from reactions to positive rates.
//
// Elastic entries are dropped at construction. Derived views are computed
// once on first access and are safe for concurrent readers.
type Network struct {
	rates     map[ReactionKey]float64
	reactions map[ReactionKey]Reaction

	once       sync.Once
	sorted     []Reaction
	seen       []Species
	byReactant map[string][]Reaction
}

// New builds a Network from entries.
//
// Returns an invariant violation if any rate is not strictly positive and
// finite, or if
// two entries describe the same reaction. Elastic entries are skipped.
func New(entries []Entry) (*Network, error) {
	n := &Network{
		rates:     make(map[ReactionKey]float64, len(entries)),
		reactions: make(map[ReactionKey]Reaction, len(entries)),
	}
	for _, e := range entries {
		r := NewReaction(e.Reactants, e.Products)
		if !(e.Rate > 0) || math.IsInf(e.Rate, 1) {
			return nil, NewInvariantError(fmt.Sprintf("%s: rate %v", r, e.Rate), ErrNonPositiveRate)
		}
		if r.Elastic() {
			continue
		}
		k := r.Key()
		if _, dup := n.rates[k]; dup {
			return nil, NewInvariantError(r.String(), ErrDuplicateReaction)
		}
		n.rates[k] = e.Rate
		n.reactions[k] = r
	}
	return n, nil
}

// MustNew is like New but panics on error. Intended for fixtures.
func MustNew(entries []Entry) *Network {
	n, err := New(entries)
	if err != nil {
		panic(err)
	}
	return n
}

// Len returns the number of reactions.
func (n *Network) Len() int { return len(n.rates) }

// Rate returns the rate of the reaction reactants -> products.
func (n *Network) Rate(reactants, products Molecules) (float64, error) {
	return n.RateOf(Reaction{Reactants: reactants, Products: products})
}

// RateOf returns the rate of r, or a lookup error if r is unknown.
func (n *Network) RateOf(r Reaction) (float64, error) {
	rate, ok := n.rates[r.Key()]
	if !ok {
		return 0, &Error{Code: ErrCodeLookup, Message: r.String(), Err: ErrUnknownReaction}
	}
	return rate, nil
}

// Has reports whether r is a reaction of the network.
func (n *Network) Has(r Reaction) bool {
	_, ok := n.rates[r.Key()]
	return ok
}

// Reactions returns all reactions in sorted order.
func (n *Network) Reactions() []Reaction {
	n.derive()
	return slices.Clone(n.sorted)
}

// Seen returns every species appearing in any reaction, sorted.
func (n *Network) Seen() []Species {
	n.derive()
	return slices.Clone(n.seen)
}

// All iterates over reactions and their rates in sorted order.
func (n *Network) All() iter.Seq2[Reaction, float64] {
	n.derive()
	return func(yield func(Reaction, float64) bool) {
		for _, r := range n.sorted {
			if !yield(r, n.rates[r.Key()]) {
				return
			}
		}
	}
}

// Outcomes returns the reactions whose reactants equal reactants, sorted by products.
func (n *Network) Outcomes(reactants Molecules) []Reaction {
	n.derive()
	return n.byReactant[reactants.Key()]
}

// Arities returns the reactant count of every reaction, in sorted reaction order.
func (n *Network) Arities() []int {
	n.derive()
	out := make([]int, len(n.sorted))
	for i, r := range n.sorted {
		out[i] = r.Reactants.Len()
	}
	return out
}

func (n *Network) derive() {
	n.once.Do(func() {
		n.sorted = slices.SortedFunc(maps.Values(n.reactions), Reaction.Compare)
		n.byReactant = make(map[string][]Reaction)
		seen := make(map[Species]struct{})
		for _, r := range n.sorted {
			k := r.Reactants.Key()
			n.byReactant[k] = append(n.byReactant[k], r)
			for sp := range r.Reactants.All() {
				seen[sp] = struct{}{}
			}
			for sp := range r.Products.All() {
				seen[sp] = struct{}{}
			}
		}
		n.seen = slices.Sorted(maps.Keys(seen))
	})
}

// Equal reports whether both networks hold identical rate tables.
func (n *Network) Equal(other *Network) bool {
	if n == nil || other == nil {
		return n == other
	}
	return maps.Equal(n.rates, other.rates)
}

// Hash returns a content digest; equal networks share a hash.
func (n *Network) Hash() string {
	rows := make([]any, 0, n.Len())
	for r, rate := range n.All() {
		rows = append(rows, []any{r.Reactants.Key(), r.Products.Key(), strconv.FormatFloat(rate, 'g', -1, 64)})
	}
	data, err := canon.Marshal(rows)
	if err != nil {
		panic(fmt.Sprintf("chem: hash network: %v", err))
	}
	return canon.HashWithDomain(canon.DomainNetwork, data)
}

// Text renders the network in the line-oriented .chem format: one reaction
// per line, lines sorted, no trailing newline.
func (n *Network) Text() string {
	lines := make([]string, 0, n.Len())
	for r, rate := range n.All() {
		if line := ReactionToText(r, rate); line != "" {
			lines = append(lines, line)
		}
	}
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

func (n *Network) String() string { return n.Text() }

// ReactionToText renders a single reaction as "A + B\t-2.0>\tB + C".
// A rate of exactly 1 renders as "->". Elastic reactions render as "".
func ReactionToText(r Reaction, rate float64) string {
	if r.Elastic() {
		return ""
	}
	arrow := "\t->\t"
	if rate != 1.0 {
		arrow = "\t-" + FormatRate(rate) + ">\t"
	}
	return JoinSpecies(r.Reactants) + arrow + JoinSpecies(r.Products)
}

// FormatRate renders a rate in plain decimal notation with at least one
// fractional digit, so "2" becomes "2.0".
func FormatRate(rate float64) string {
	s := strconv.FormatFloat(rate, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}
