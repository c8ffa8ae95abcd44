package bag

import (
	"fmt"
	"iter"
	"reflect"
	"slices"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/achemkit/internal/canon"
)

// Element constrains bag members to types that are both hashable and totally
// ordered. Floats are excluded so keys never depend on float formatting.
type Element interface {
	~string | ~int | ~int32 | ~int64
}

const emptyKey = "[]"

// Frozen is an immutable multiset that iterates in sorted order.
// The zero value is the empty bag.
type Frozen[T Element] struct {
	items []T
	key   string
}

// NewFrozen builds a Frozen bag from items. Construction is O(n log n).
func NewFrozen[T Element](items ...T) Frozen[T] {
	sorted := normalize(items)
	slices.Sort(sorted)
	return Frozen[T]{items: sorted, key: encodeKey(sorted)}
}

// FrozenOf builds a Frozen bag from a sequence.
func FrozenOf[T Element](seq iter.Seq[T]) Frozen[T] {
	return NewFrozen(slices.Collect(seq)...)
}

// Len returns the number of elements, counting repeats.
func (b Frozen[T]) Len() int { return len(b.items) }

// Contains reports whether x occurs at least once.
func (b Frozen[T]) Contains(x T) bool {
	_, found := slices.BinarySearch(b.items, normalizeOne(x))
	return found
}

// Count returns the multiplicity of x.
func (b Frozen[T]) Count(x T) int {
	x = normalizeOne(x)
	i, found := slices.BinarySearch(b.items, x)
	if !found {
		return 0
	}
	n := 0
	for ; i < len(b.items) && b.items[i] == x; i++ {
		n++
	}
	return n
}

// All iterates over the elements in sorted order.
func (b Frozen[T]) All() iter.Seq[T] { return slices.Values(b.items) }

// Items returns a sorted copy of the elements.
func (b Frozen[T]) Items() []T { return slices.Clone(b.items) }

// Key returns the canonical encoding of the content.
func (b Frozen[T]) Key() string {
	if b.key == "" {
		return emptyKey
	}
	return b.key
}

// Hash returns a stable SHA-256 digest of the content.
func (b Frozen[T]) Hash() string {
	return canon.HashWithDomain(canon.DomainBag, []byte(b.Key()))
}

// Equal reports whether both bags hold the same elements with the same multiplicities.
func (b Frozen[T]) Equal(other Frozen[T]) bool {
	return slices.Equal(b.items, other.items)
}

// Compare orders bags like tuples of their sorted content: element by
// element, then shorter first.
func (b Frozen[T]) Compare(other Frozen[T]) int {
	return slices.Compare(b.items, other.items)
}

func (b Frozen[T]) String() string {
	return fmt.Sprint(b.items)
}

// normalize returns a copy of items with string elements in NFC, the form
// canon encodes keys in, so equal keys always mean equal items.
func normalize[T Element](items []T) []T {
	out := slices.Clone(items)
	for i := range out {
		out[i] = normalizeOne(out[i])
	}
	return out
}

func normalizeOne[T Element](x T) T {
	v := reflect.ValueOf(&x).Elem()
	if v.Kind() == reflect.String {
		if s := v.String(); !norm.NFC.IsNormalString(s) {
			v.SetString(norm.NFC.String(s))
		}
	}
	return x
}

// encodeKey renders sorted items as canonical JSON. Elements are reduced to
// their underlying kind so named string types encode like plain strings.
func encodeKey[T Element](sorted []T) string {
	vals := make([]any, len(sorted))
	for i, item := range sorted {
		v := reflect.ValueOf(item)
		switch v.Kind() {
		case reflect.String:
			vals[i] = v.String()
		default:
			vals[i] = v.Int()
		}
	}
	data, err := canon.Marshal(vals)
	if err != nil {
		// Unreachable: Element only admits strings and integers.
		panic(fmt.Sprintf("bag: encode key: %v", err))
	}
	return string(data)
}
