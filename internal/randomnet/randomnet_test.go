package randomnet

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/achemkit/internal/chem"
	"github.com/roach88/achemkit/internal/dist"
)

func seeded(seed uint64) *rand.Rand { return rand.New(rand.NewPCG(seed, seed)) }

func uniformParams() UniformParams {
	return UniformParams{
		Species:   Names(5),
		Reactions: dist.Fixed(8),
		Reactants: dist.Fixed(2),
		Products:  dist.Uniform(1, 2),
		Rates:     dist.Uniform(1.0, 2.0),
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, chem.SpeciesOf("M0", "M1", "M2"), Names(3))
}

func TestUniform_Shape(t *testing.T) {
	n, err := Uniform(uniformParams(), seeded(1))
	require.NoError(t, err)

	assert.LessOrEqual(t, n.Len(), 8)
	assert.Positive(t, n.Len())
	for r, rate := range n.All() {
		assert.Equal(t, 2, r.Reactants.Len())
		assert.Contains(t, []int{1, 2}, r.Products.Len())
		assert.Contains(t, []float64{1, 2}, rate)
		assert.False(t, r.Elastic())
	}
	for _, sp := range n.Seen() {
		assert.True(t, slices.Contains(Names(5), sp), "unexpected species %s", sp)
	}
}

func TestUniform_Deterministic(t *testing.T) {
	a, err := Uniform(uniformParams(), seeded(99))
	require.NoError(t, err)
	b, err := Uniform(uniformParams(), seeded(99))
	require.NoError(t, err)

	assert.Equal(t, a.Text(), b.Text())
	assert.True(t, a.Equal(b))
}

func TestUniform_InvalidParams(t *testing.T) {
	p := uniformParams()
	p.Species = nil
	_, err := Uniform(p, seeded(1))
	assert.Error(t, err)

	p = uniformParams()
	p.Rates = dist.Uniform[float64]()
	_, err = Uniform(p, seeded(1))
	assert.ErrorIs(t, err, dist.ErrInvalid)

	p = uniformParams()
	p.Rates = dist.Fixed(-1.0)
	_, err = Uniform(p, seeded(1))
	assert.True(t, chem.IsInvariantViolation(err))
}

func TestAtomName(t *testing.T) {
	assert.Equal(t, "A", AtomName(0))
	assert.Equal(t, "Z", AtomName(25))
	assert.Equal(t, "Aa", AtomName(26))
	assert.Equal(t, "Ab", AtomName(27))
}

func linearParams(directed bool) LinearParams {
	return LinearParams{
		Atoms:     dist.Fixed(2),
		MaxLength: dist.Fixed(2),
		PForm:     dist.Fixed(1.0),
		PBreak:    dist.Fixed(1.0),
		Directed:  directed,
		Rates:     dist.Fixed(1.0),
	}
}

func TestLinear_Directed(t *testing.T) {
	n, err := Linear(linearParams(true), seeded(1))
	require.NoError(t, err)

	assert.Equal(t, 8, n.Len())
	assert.Equal(t, chem.SpeciesOf("A", "AA", "AB", "B", "BA", "BB"), n.Seen())
	assert.True(t, n.Has(chem.NewReaction(chem.SpeciesOf("A", "B"), chem.SpeciesOf("BA"))))
	assert.True(t, n.Has(chem.NewReaction(chem.SpeciesOf("BA"), chem.SpeciesOf("A", "B"))))
}

func TestLinear_Undirected(t *testing.T) {
	n, err := Linear(linearParams(false), seeded(1))
	require.NoError(t, err)

	assert.Equal(t, 6, n.Len())
	assert.Equal(t, chem.SpeciesOf("A", "AA", "AB", "B", "BB"), n.Seen())
}

func TestLinear_Probabilistic(t *testing.T) {
	p := linearParams(true)
	p.Atoms = dist.Fixed(3)
	p.MaxLength = dist.Fixed(4)
	p.PForm = dist.Fixed(0.1)
	p.PBreak = dist.Fixed(0.2)

	a, err := Linear(p, seeded(5))
	require.NoError(t, err)
	b, err := Linear(p, seeded(5))
	require.NoError(t, err)
	assert.Equal(t, a.Text(), b.Text())

	for r := range a.All() {
		for sp := range r.Products.All() {
			assert.LessOrEqual(t, len(sp), 4)
		}
	}
}

func TestLinear_InvalidParams(t *testing.T) {
	p := linearParams(true)
	p.PForm = dist.Fixed(1.5)
	_, err := Linear(p, seeded(1))
	assert.Error(t, err)

	p = linearParams(true)
	p.Atoms = dist.Fixed(0)
	_, err = Linear(p, seeded(1))
	assert.Error(t, err)
}
