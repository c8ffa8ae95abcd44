package bag

import (
	"fmt"
	"iter"
	"slices"
)

// Ordered is an immutable multiset that remembers insertion order for
// iteration and printing. Equality, ordering and hashing ignore that order:
// Ordered("A","B") equals Ordered("B","A").
type Ordered[T Element] struct {
	order  []T
	frozen Frozen[T]
}

// NewOrdered builds an Ordered bag from items, preserving their order.
func NewOrdered[T Element](items ...T) Ordered[T] {
	order := normalize(items)
	return Ordered[T]{order: order, frozen: NewFrozen(order...)}
}

// OrderedOf builds an Ordered bag from a sequence.
func OrderedOf[T Element](seq iter.Seq[T]) Ordered[T] {
	order := normalize(slices.Collect(seq))
	return Ordered[T]{order: order, frozen: NewFrozen(order...)}
}

func (b Ordered[T]) Len() int { return len(b.order) }
func (b Ordered[T]) Contains(x T) bool { return b.frozen.Contains(x) }
func (b Ordered[T]) Count(x T) int { return b.frozen.Count(x) }
func (b Ordered[T]) Key() string { return b.frozen.Key() }
func (b Ordered[T]) Hash() string { return b.frozen.Hash() }
func (b Ordered[T]) Frozen() Frozen[T] { return b.frozen }
func (b Ordered[T]) All() iter.Seq[T] { return slices.Values(b.order) }
func (b Ordered[T]) Items() []T { return slices.Clone(b.order) }
func (b Ordered[T]) At(i int) T { return b.order[i] }
func (b Ordered[T]) Index(x T) int { return slices.Index(b.order, x) }
func (b Ordered[T]) Equal(o Ordered[T]) bool { return b.frozen.Equal(o.frozen) }

// Compare orders by sorted content, like Frozen.Compare.
func (b Ordered[T]) Compare(other Ordered[T]) int {
	return b.frozen.Compare(other.frozen)
}

// Sorted returns a copy whose insertion order is the canonical sorted order.
func (b Ordered[T]) Sorted() Ordered[T] {
	return Ordered[T]{order: b.frozen.Items(), frozen: b.frozen}
}

func (b Ordered[T]) String() string {
	return fmt.Sprint(b.order)
}
