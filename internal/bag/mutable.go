package bag

import (
	"fmt"
	"iter"
	"math/rand/v2"
	"slices"
)

// Bag is a mutable multiset kept in sorted order. It has no Key; call
// Freeze to obtain an immutable snapshot that can be used as one.
type Bag[T Element] struct {
	items []T
}

// NewBag builds a Bag from items.
func NewBag[T Element](items ...T) *Bag[T] {
	sorted := normalize(items)
	slices.Sort(sorted)
	return &Bag[T]{items: sorted}
}

// Add inserts x keeping the bag sorted.
func (b *Bag[T]) Add(x T) {
	x = normalizeOne(x)
	i, _ := slices.BinarySearch(b.items, x)
	b.items = slices.Insert(b.items, i, x)
}

// Remove deletes one occurrence of x and reports whether one was present.
func (b *Bag[T]) Remove(x T) bool {
	x = normalizeOne(x)
	i, found := slices.BinarySearch(b.items, x)
	if !found {
		return false
	}
	b.items = slices.Delete(b.items, i, i+1)
	return true
}

func (b *Bag[T]) Len() int { return len(b.items) }
func (b *Bag[T]) Contains(x T) bool {
	_, ok := slices.BinarySearch(b.items, x)
	return ok
}
func (b *Bag[T]) All() iter.Seq[T] { return slices.Values(b.items) }

// Count returns the multiplicity of x.
func (b *Bag[T]) Count(x T) int {
	n := 0
	for _, item := range b.items {
		if item == x {
			n++
		}
	}
	return n
}

// Freeze returns an immutable snapshot.
func (b *Bag[T]) Freeze() Frozen[T] {
	return Frozen[T]{items: slices.Clone(b.items), key: encodeKey(b.items)}
}

func (b *Bag[T]) String() string { return fmt.Sprint(b.items) }

// OrderedBag is a mutable multiset that keeps insertion order. New items are
// appended at the end. Reactors use it as their molecule pool.
type OrderedBag[T Element] struct {
	order []T
}

// NewOrderedBag builds an OrderedBag from items.
func NewOrderedBag[T Element](items ...T) *OrderedBag[T] {
	return &OrderedBag[T]{order: normalize(items)}
}

// Add appends items at the end.
func (b *OrderedBag[T]) Add(items ...T) {
	b.order = append(b.order, normalize(items)...)
}

// Remove deletes the first occurrence of x and reports whether one was present.
func (b *OrderedBag[T]) Remove(x T) bool {
	i := slices.Index(b.order, normalizeOne(x))
	if i < 0 {
		return false
	}
	b.order = slices.Delete(b.order, i, i+1)
	return true
}

func (b *OrderedBag[T]) Len() int { return len(b.order) }
func (b *OrderedBag[T]) Contains(x T) bool { return slices.Contains(b.order, x) }
func (b *OrderedBag[T]) All() iter.Seq[T] { return slices.Values(b.order) }
func (b *OrderedBag[T]) Items() []T { return slices.Clone(b.order) }

// Count returns the multiplicity of x.
func (b *OrderedBag[T]) Count(x T) int {
	n := 0
	for _, item := range b.order {
		if item == x {
			n++
		}
	}
	return n
}

// Shuffle permutes the bag in place using rng.
func (b *OrderedBag[T]) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(b.order), func(i, j int) {
		b.order[i], b.order[j] = b.order[j], b.order[i]
	})
}

// Take removes and returns the first n items. It returns nil and leaves the
// bag untouched when fewer than n items are present.
func (b *OrderedBag[T]) Take(n int) []T {
	if n > len(b.order) {
		return nil
	}
	taken := slices.Clone(b.order[:n])
	b.order = slices.Delete(b.order, 0, n)
	return taken
}

// Freeze returns an immutable snapshot in the current order.
func (b *OrderedBag[T]) Freeze() Ordered[T] {
	return NewOrdered(b.order...)
}

func (b *OrderedBag[T]) String() string { return fmt.Sprint(b.order) }
