package bucket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/achemkit/internal/chem"
)

var (
	ab = chem.Mols("A", "B")
	bc = chem.Mols("B", "C")
	c  = chem.Mols("C")
	a  = chem.Mols("A")
)

func TestNew_SortsStablyByTime(t *testing.T) {
	b := New([]Event{
		NewEvent(2, ab, bc),
		NewEvent(1, c, a),
		NewEvent(2, a, c),
		NewEvent(0, ab, ab),
	})

	events := b.Events()
	require.Len(t, events, 4)
	assert.Equal(t, []float64{0, 1, 2, 2}, []float64{events[0].Time, events[1].Time, events[2].Time, events[3].Time})
	assert.True(t, events[2].Reactants.Equal(ab))
	assert.True(t, events[3].Reactants.Equal(a))
}

func TestEvent_Equality(t *testing.T) {
	e := NewEvent(1, ab, bc)

	assert.True(t, e.Equal(NewEvent(1, chem.Mols("B", "A"), chem.Mols("C", "B")).WithRate(3)))
	assert.False(t, e.Equal(NewEvent(2, ab, bc)))
	assert.True(t, e.Less(NewEvent(2, a, a)))
	assert.False(t, NewEvent(2, a, a).Less(e))
}

func TestReactionNet_CountsOccurrences(t *testing.T) {
	b := New([]Event{
		NewEvent(1, ab, bc),
		NewEvent(2, ab, bc),
		NewEvent(3, a, a),
		NewEvent(4, c, a),
		NewEvent(5, ab, bc),
	})

	net, err := b.ReactionNet()
	require.NoError(t, err)
	assert.Equal(t, 2, net.Len())

	rate, err := net.Rate(ab, bc)
	require.NoError(t, err)
	assert.Equal(t, 3.0, rate)

	rate, err = net.Rate(c, a)
	require.NoError(t, err)
	assert.Equal(t, 1.0, rate)

	again, err := b.ReactionNet()
	require.NoError(t, err)
	assert.Same(t, net, again)
}

func TestReactionNet_Normalized(t *testing.T) {
	b := New([]Event{
		NewEvent(1, ab, bc),
		NewEvent(2, ab, ab),
		NewEvent(3, ab, bc),
		NewEvent(4, ab, ab),
	}, WithEstimator(EstimateNormalized))

	net, err := b.ReactionNet()
	require.NoError(t, err)
	rate, err := net.Rate(ab, bc)
	require.NoError(t, err)
	assert.Equal(t, 0.5, rate)
}

func TestReactionNet_ExplicitRates(t *testing.T) {
	b := New([]Event{
		NewEvent(1, ab, bc).WithRate(2),
		NewEvent(2, ab, bc).WithRate(2),
	})

	net, err := b.ReactionNet()
	require.NoError(t, err)
	rate, err := net.Rate(ab, bc)
	require.NoError(t, err)
	assert.Equal(t, 2.0, rate)
}

func TestReactionNet_ConflictingRates(t *testing.T) {
	tests := []struct {
		name   string
		events []Event
	}{
		{"different constants", []Event{NewEvent(1, ab, bc).WithRate(2), NewEvent(2, ab, bc).WithRate(3)}},
		{"explicit then inferred", []Event{NewEvent(1, ab, bc).WithRate(2), NewEvent(2, ab, bc)}},
		{"inferred then explicit", []Event{NewEvent(1, ab, bc), NewEvent(2, ab, bc).WithRate(1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.events).ReactionNet()
			require.Error(t, err)
			assert.True(t, chem.IsInvariantViolation(err))
			assert.ErrorIs(t, err, chem.ErrConflictingRate)
		})
	}
}

func TestReactionNet_OnlyElastic(t *testing.T) {
	net, err := New([]Event{NewEvent(0, ab, ab), NewEvent(1, a, a)}).ReactionNet()
	require.NoError(t, err)
	assert.Zero(t, net.Len())
	assert.Empty(t, net.Reactions())
}

func TestAfter(t *testing.T) {
	b := New([]Event{NewEvent(0, ab, bc), NewEvent(1, c, a), NewEvent(1.5, a, c), NewEvent(3, ab, bc)})

	later := b.After(1)
	require.Equal(t, 2, later.Len())
	assert.Equal(t, 1.5, later.Events()[0].Time)
	assert.Equal(t, 0, b.After(3).Len())
	assert.Equal(t, 4, b.After(-1).Len())
}

func TestMolCounts(t *testing.T) {
	b := New([]Event{
		NewEvent(0.5, ab, c),
		NewEvent(1.0, c, a),
		NewEvent(2.5, chem.Mols("A", "A"), chem.Mols("D")),
	})

	snaps, err := b.MolCounts(chem.SpeciesOf("A", "A", "B"), 1.0)
	require.NoError(t, err)
	require.Len(t, snaps, 3)

	assert.Equal(t, 0.0, snaps[0].Time)
	assert.Equal(t, map[chem.Species]int{"A": 2, "B": 1}, snaps[0].Counts)

	assert.Equal(t, 1.0, snaps[1].Time)
	assert.Equal(t, map[chem.Species]int{"A": 2, "B": 0, "C": 0}, snaps[1].Counts)

	assert.Equal(t, 3.0, snaps[2].Time)
	assert.Equal(t, map[chem.Species]int{"A": 0, "B": 0, "C": 0, "D": 1}, snaps[2].Counts)

	_, err = b.MolCounts(nil, 0)
	assert.Error(t, err)
}

func TestCollect_StopsAtError(t *testing.T) {
	boom := assert.AnError
	seq := func(yield func(Event, error) bool) {
		if !yield(NewEvent(1, ab, bc), nil) {
			return
		}
		yield(Event{}, boom)
	}

	_, err := Collect(seq)
	assert.ErrorIs(t, err, boom)
}
