package reactor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/achemkit/internal/achem"
	"github.com/roach88/achemkit/internal/bucket"
	"github.com/roach88/achemkit/internal/chem"
)

func TestIterative_IdentityChemistry(t *testing.T) {
	r, err := NewIterative(achem.Identity{}, chem.SpeciesOf("A", "B", "B"), WithSeed(42))
	require.NoError(t, err)

	b, err := Run(r, 5)
	require.NoError(t, err)
	require.Equal(t, 5, b.Len())
	for i, e := range b.Events() {
		assert.Equal(t, float64(i), e.Time)
		assert.True(t, e.Reactants.Equal(e.Products))
		assert.Equal(t, 2, e.Reactants.Len())
	}

	net, err := b.ReactionNet()
	require.NoError(t, err)
	assert.Empty(t, net.Reactions())
	assert.ElementsMatch(t, chem.SpeciesOf("A", "B", "B"), r.Pool())
}

func TestIterative_ResumesAcrossCalls(t *testing.T) {
	r, err := NewIterative(achem.Identity{}, chem.SpeciesOf("A", "B", "C"), WithSeed(1))
	require.NoError(t, err)

	first := collect(t, r, 3)
	assert.Equal(t, StateRunning, r.State())
	second := collect(t, r, 2)

	require.Len(t, first, 3)
	require.Len(t, second, 2)
	assert.Equal(t, 3.0, second[0].Time)
	assert.Equal(t, 5.0, r.Time())
}

func TestIterative_EarlyStopThenResume(t *testing.T) {
	r, err := NewIterative(achem.Identity{}, chem.SpeciesOf("A", "B"), WithSeed(1))
	require.NoError(t, err)

	n := 0
	for _, err := range r.Do(10) {
		require.NoError(t, err)
		n++
		if n == 3 {
			break
		}
	}
	assert.Equal(t, 3.0, r.Time())

	rest := collect(t, r, 0)
	assert.Len(t, rest, 7)
	assert.Equal(t, 3.0, rest[0].Time)
}

func TestIterative_DepletedPoolStillAdvancesTime(t *testing.T) {
	obs := newCountingObserver()
	r, err := NewIterative(achem.Identity{}, chem.SpeciesOf("A"), WithSeed(1), WithObserver(obs))
	require.NoError(t, err)

	events := collect(t, r, 3)
	assert.Empty(t, events)
	assert.Equal(t, 3.0, r.Time())
	assert.Equal(t, 3, obs.skipped[KindIterative])
}

func TestIterative_SameSeedSameEvents(t *testing.T) {
	run := func() string {
		r, err := NewIterative(achem.NewNetworkChemistry(cycleNetwork()),
			repeat(map[string]int{"A": 5, "B": 5, "C": 5}), WithSeed(9), WithSampledArity())
		require.NoError(t, err)
		b, err := Run(r, 50)
		require.NoError(t, err)
		return b.Text()
	}
	assert.Equal(t, run(), run())
}

func TestIterative_ReconstructsDrivingNetwork(t *testing.T) {
	n := cycleNetwork()
	r, err := NewIterative(achem.NewNetworkChemistry(n),
		repeat(map[string]int{"A": 10, "B": 10, "C": 10}), WithSeed(3), WithSampledArity())
	require.NoError(t, err)

	b, err := Run(r, 2000)
	require.NoError(t, err)
	got, err := b.ReactionNet()
	require.NoError(t, err)

	for _, rx := range got.Reactions() {
		assert.True(t, n.Has(rx), "unexpected reaction %s", rx)
	}
	assert.Equal(t, n.Len(), got.Len())
}

func TestIterative_ObserverSeesEvents(t *testing.T) {
	obs := newCountingObserver()
	r, err := NewIterative(achem.Identity{}, chem.SpeciesOf("A", "B"), WithSeed(1), WithObserver(obs))
	require.NoError(t, err)

	_, err = bucket.Collect(r.Do(4))
	require.NoError(t, err)
	assert.Equal(t, 4, obs.events[KindIterative])
}
