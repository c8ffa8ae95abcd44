package bag

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type species string

func TestFrozen_OrderInsensitiveEquality(t *testing.T) {
	a := NewFrozen("B", "A", "B")
	b := NewFrozen("B", "B", "A")

	assert.True(t, a.Equal(b))
	assert.Equal(t, a.Key(), b.Key())
	assert.Equal(t, a.Hash(), b.Hash())
	assert.Equal(t, []string{"A", "B", "B"}, a.Items())
}

func TestFrozen_DifferentMultiplicity(t *testing.T) {
	a := NewFrozen("A", "B")
	b := NewFrozen("A", "B", "B")

	assert.False(t, a.Equal(b))
	assert.NotEqual(t, a.Key(), b.Key())
}

func TestFrozen_CountContains(t *testing.T) {
	b := NewFrozen("C", "A", "C", "C")

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 3, b.Count("C"))
	assert.Equal(t, 1, b.Count("A"))
	assert.Equal(t, 0, b.Count("Z"))
	assert.True(t, b.Contains("A"))
	assert.False(t, b.Contains("B"))
}

func TestFrozen_ZeroValueIsEmpty(t *testing.T) {
	var zero Frozen[string]
	empty := NewFrozen[string]()

	assert.Equal(t, 0, zero.Len())
	assert.Equal(t, empty.Key(), zero.Key())
	assert.True(t, zero.Equal(empty))
}

func TestFrozen_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b []string
		want int
	}{
		{"equal", []string{"A", "B"}, []string{"B", "A"}, 0},
		{"element order", []string{"A", "C"}, []string{"B"}, -1},
		{"prefix shorter first", []string{"A"}, []string{"A", "A"}, -1},
		{"greater", []string{"C"}, []string{"A", "B"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewFrozen(tt.a...).Compare(NewFrozen(tt.b...)))
		})
	}
}

func TestFrozen_NamedAndIntegerElements(t *testing.T) {
	s := NewFrozen[species]("B", "A")
	plain := NewFrozen("A", "B")
	assert.Equal(t, plain.Key(), s.Key())

	ints := NewFrozen(3, 1, 2)
	assert.Equal(t, "[1,2,3]", ints.Key())
}

func TestOrdered_KeepsInsertionOrder(t *testing.T) {
	b := NewOrdered("B", "A", "B")

	assert.Equal(t, []string{"B", "A", "B"}, b.Items())
	assert.Equal(t, []string{"B", "A", "B"}, slices.Collect(b.All()))
	assert.Equal(t, "A", b.At(1))
	assert.Equal(t, 0, b.Index("B"))
	assert.Equal(t, []string{"A", "B", "B"}, b.Sorted().Items())
}

func TestOrdered_HashIgnoresOrder(t *testing.T) {
	permutations := [][]string{
		{"A", "B", "C", "A"},
		{"C", "A", "A", "B"},
		{"A", "A", "B", "C"},
		{"B", "A", "C", "A"},
	}
	first := NewOrdered(permutations[0]...)
	for _, p := range permutations[1:] {
		other := NewOrdered(p...)
		assert.True(t, first.Equal(other), "%v", p)
		assert.Equal(t, first.Hash(), other.Hash(), "%v", p)
		assert.Equal(t, first.Key(), other.Key(), "%v", p)
		assert.Equal(t, 0, first.Compare(other))
	}
	assert.Equal(t, first.Key(), NewFrozen(permutations[0]...).Key())
}

func TestOrdered_UsableAsMapKey(t *testing.T) {
	seen := map[string]int{}
	seen[NewOrdered("A", "B").Key()]++
	seen[NewOrdered("B", "A").Key()]++

	require.Len(t, seen, 1)
	assert.Equal(t, 2, seen[NewFrozen("A", "B").Key()])
}

func TestOrdered_ItemsIsCopy(t *testing.T) {
	b := NewOrdered("A", "B")
	items := b.Items()
	items[0] = "Z"
	assert.Equal(t, "A", b.At(0))
}

func TestBag_Mutations(t *testing.T) {
	b := NewBag("C", "A")
	b.Add("B")
	b.Add("A")

	assert.Equal(t, 4, b.Len())
	assert.Equal(t, []string{"A", "A", "B", "C"}, slices.Collect(b.All()))
	assert.Equal(t, 2, b.Count("A"))

	assert.True(t, b.Remove("A"))
	assert.False(t, b.Remove("Z"))
	assert.True(t, b.Contains("A"))

	frozen := b.Freeze()
	b.Add("D")
	assert.Equal(t, NewFrozen("A", "B", "C").Key(), frozen.Key())
}

func TestOrderedBag_PoolOperations(t *testing.T) {
	pool := NewOrderedBag("A", "B", "B")
	pool.Add("C")

	assert.Equal(t, 4, pool.Len())
	assert.Equal(t, 2, pool.Count("B"))

	taken := pool.Take(2)
	assert.Equal(t, []string{"A", "B"}, taken)
	assert.Equal(t, []string{"B", "C"}, pool.Items())

	assert.Nil(t, pool.Take(3))
	assert.Equal(t, 2, pool.Len())

	assert.True(t, pool.Remove("C"))
	assert.False(t, pool.Contains("C"))
}

func TestOrderedBag_ShuffleDeterministic(t *testing.T) {
	items := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	a := NewOrderedBag(items...)
	b := NewOrderedBag(items...)

	a.Shuffle(rand.New(rand.NewPCG(1, 2)))
	b.Shuffle(rand.New(rand.NewPCG(1, 2)))

	assert.Equal(t, a.Items(), b.Items())
	assert.True(t, a.Freeze().Equal(NewOrdered(items...)))
}

func TestFrozen_EqualKeysMeanEqualBags(t *testing.T) {
	decomposed := NewFrozen("é")
	composed := NewFrozen("é")

	assert.Equal(t, decomposed.Key(), composed.Key())
	assert.True(t, decomposed.Equal(composed))
	assert.Zero(t, decomposed.Compare(composed))
	assert.Equal(t, []string{"é"}, decomposed.Items())
	assert.Equal(t, 1, composed.Count("é"))
}

func TestMutableBags_NormalizeStrings(t *testing.T) {
	b := NewBag[string]()
	b.Add("é")
	assert.True(t, b.Freeze().Equal(NewFrozen("é")))
	assert.True(t, b.Remove("é"))

	pool := NewOrderedBag("é")
	pool.Add("é")
	assert.Equal(t, []string{"é", "é"}, pool.Items())
	assert.True(t, NewOrdered("é").Equal(NewOrdered("é")))
}
