package testutil

import (
	"math/rand/v2"
	"testing"

	"github.com/roach88/achemkit/internal/chem"
)

// Rand returns a PCG source for seed. Tests that need reproducible draws
// should take their randomness from here rather than the global source.
func Rand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// CycleText is a two-reaction network where B catalyses A into C and C
// decays back to A.
const CycleText = "A + B\t->\tB + C\nC\t-2.0>\tA"

// PairText has one reaction for every unordered pair over A and B plus a
// C dimerisation, so Enumerate discovers all of it from {A}.
const PairText = "A + A\t->\tB\nA + B\t-2.0>\tC\nB + B\t->\tA\nC + C\t-0.5>\tD"

// Network parses text and fails the test on error.
func Network(t testing.TB, text string) *chem.Network {
	t.Helper()
	n, err := chem.Parse(text)
	if err != nil {
		t.Fatalf("parse network: %v", err)
	}
	return n
}

// Pool builds a species list from name/count pairs in the given order.
//
//	Pool("A", 2, "B", 1) // [A A B]
func Pool(pairs ...any) []chem.Species {
	if len(pairs)%2 != 0 {
		panic("testutil.Pool: odd number of arguments")
	}
	var out []chem.Species
	for i := 0; i < len(pairs); i += 2 {
		name := chem.Species(pairs[i].(string))
		for range pairs[i+1].(int) {
			out = append(out, name)
		}
	}
	return out
}
