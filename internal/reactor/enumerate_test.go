package reactor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

func pairNetwork() *chem.Network {
	return chem.MustNew([]chem.Entry{
		{Reactants: chem.SpeciesOf("A", "A"), Products: chem.SpeciesOf("B"), Rate: 1},
		{Reactants: chem.SpeciesOf("A", "B"), Products: chem.SpeciesOf("C"), Rate: 2},
		{Reactants: chem.SpeciesOf("B", "B"), Products: chem.SpeciesOf("A"), Rate: 1},
		{Reactants: chem.SpeciesOf("C", "C"), Products: chem.SpeciesOf("D"), Rate: 0.5},
	})
}

func TestEnumerate_DiscoversReachableNetwork(t *testing.T) {
	n := pairNetwork()
	r, err := NewEnumerate(achem.NewNetworkChemistry(n), chem.SpeciesOf("A", "A"))
	require.NoError(t, err)

	b, err := Run(r, 100)
	require.NoError(t, err)
	assert.Equal(t, 4, b.Len())
	for _, e := range b.Events() {
		assert.Equal(t, 0.0, e.Time)
		_, explicit := e.RateConstant()
		assert.True(t, explicit)
	}
	assert.Equal(t, chem.SpeciesOf("A", "B", "C", "D"), r.Species())
	assert.Equal(t, StateExhausted, r.State())

	got, err := b.ReactionNet()
	require.NoError(t, err)
	assert.True(t, n.Equal(got))

	assert.Empty(t, collect(t, r, 10))
}

func TestEnumerate_UnboundedBudget(t *testing.T) {
	for _, budget := range []float64{math.Inf(1), math.MaxFloat64, 1 << 63} {
		r, err := NewEnumerate(achem.NewNetworkChemistry(pairNetwork()), chem.SpeciesOf("A"))
		require.NoError(t, err)

		assert.Len(t, collect(t, r, budget), 4)
		assert.Equal(t, StateExhausted, r.State())
		assert.Empty(t, collect(t, r, budget))
	}
}

func TestEnumerate_SpeciesCap(t *testing.T) {
	r, err := NewEnumerate(achem.NewNetworkChemistry(pairNetwork()), chem.SpeciesOf("A"))
	require.NoError(t, err)

	first := collect(t, r, 2)
	require.Len(t, first, 1)
	assert.True(t, first[0].Products.Equal(chem.Mols("B")))
	assert.Equal(t, StateRunning, r.State())

	second := collect(t, r, 1)
	require.Len(t, second, 1)
	assert.True(t, second[0].Products.Equal(chem.Mols("C")))

	rest := collect(t, r, 10)
	require.Len(t, rest, 2)
	assert.True(t, rest[0].Products.Equal(chem.Mols("A")))
	assert.True(t, rest[1].Products.Equal(chem.Mols("D")))
	assert.Equal(t, StateExhausted, r.State())
}

func TestEnumerate_EarlyStopKeepsPendingEvents(t *testing.T) {
	r, err := NewEnumerate(achem.NewNetworkChemistry(pairNetwork()), chem.SpeciesOf("A"))
	require.NoError(t, err)

	for _, err := range r.Do(100) {
		require.NoError(t, err)
		break
	}
	rest := collect(t, r, 0)
	assert.Len(t, rest, 3)
}

func TestEnumerate_ParallelMatchesSequential(t *testing.T) {
	c := &achem.LinearChemistry{PForm: 0.5, PBreak: 0.25, MaxLength: 4, Directed: true}
	run := func(workers int) string {
		r, err := NewEnumerate(c, chem.SpeciesOf("Aa", "Bb"), WithWorkers(workers))
		require.NoError(t, err)
		b, err := Run(r, 1000)
		require.NoError(t, err)
		return b.Text()
	}

	sequential := run(1)
	assert.NotEmpty(t, sequential)
	assert.Equal(t, sequential, run(8))
}

func TestEnumerate_EmptyPool(t *testing.T) {
	r, err := NewEnumerate(achem.Identity{}, nil)
	require.NoError(t, err)

	b, err := bucket.Collect(r.Do(5))
	require.NoError(t, err)
	assert.Zero(t, b.Len())
	assert.Equal(t, StateExhausted, r.State())
}
