package chem

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/achemkit/internal/bag"
)

// Species is an opaque token naming a molecular kind.
type Species string

// Molecules is a multiset of species.
type Molecules = bag.Frozen[Species]

// NewSpecies returns the NFC-normalized, whitespace-trimmed form of s.
func NewSpecies(s string) Species {
	return Species(norm.NFC.String(strings.TrimSpace(s)))
}

// SpeciesOf converts names to species without normalization.
func SpeciesOf(names ...string) []Species {
	out := make([]Species, len(names))
	for i, n := range names {
		out[i] = Species(n)
	}
	return out
}

// Mols builds a Molecules bag from names.
func Mols(names ...string) Molecules {
	return bag.NewFrozen(SpeciesOf(names...)...)
}

// SplitSpecies parses a "+"-separated species list, dropping empty entries.
func SplitSpecies(s string) []Species {
	var out []Species
	for _, part := range strings.Split(s, "+") {
		if sp := NewSpecies(part); sp != "" {
			out = append(out, sp)
		}
	}
	return out
}

// JoinSpecies renders molecules as "A + B".
func JoinSpecies(m Molecules) string {
	var b strings.Builder
	for i, sp := range m.Items() {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(string(sp))
	}
	return b.String()
}
