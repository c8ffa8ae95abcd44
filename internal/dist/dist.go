// Package dist provides small discrete distributions sampled with an
// injected random source.
//
// A distribution is one of three shapes: a fixed value, a uniform choice
// over a sequence (repeats weight a value), or a weighted mapping from
// value to relative weight. Reactors use them for reaction arity and the
// random-network generators use them for every parameter.
package dist

import (
	"cmp"
	"errors"
	"fmt"
	"maps"
	"math"
	"math/rand/v2"
	"slices"
)

// ErrInvalid is returned for a distribution that cannot be sampled.
var ErrInvalid = errors.New("invalid distribution")

// Kind identifies the shape of a distribution.
type Kind int

const (
	KindInvalid Kind = iota
	KindFixed
	KindUniform
	KindWeighted
)

func (k Kind) String() string {
	switch k {
	case KindFixed:
		return "fixed"
	case KindUniform:
		return "uniform"
	case KindWeighted:
		return "weighted"
	default:
		return "invalid"
	}
}

// Dist is an immutable discrete distribution over T.
// The zero value is invalid.
type Dist[T cmp.Ordered] struct {
	kind    Kind
	values  []T
	weights []float64
	total   float64
}

// Fixed always samples v.
func Fixed[T cmp.Ordered](v T) Dist[T] {
	return Dist[T]{kind: KindFixed, values: []T{v}}
}

// Uniform samples one of values with equal probability per position.
func Uniform[T cmp.Ordered](values ...T) Dist[T] {
	return Dist[T]{kind: KindUniform, values: slices.Clone(values)}
}

// Weighted samples keys of w in proportion to their weights. Keys are
// visited in sorted order so a seed always maps to the same value.
func Weighted[T cmp.Ordered](w map[T]float64) Dist[T] {
	d := Dist[T]{kind: KindWeighted}
	for _, k := range slices.Sorted(maps.Keys(w)) {
		d.values = append(d.values, k)
		d.weights = append(d.weights, w[k])
		d.total += w[k]
	}
	return d
}

// Kind returns the shape of d.
func (d Dist[T]) Kind() Kind { return d.kind }

// Validate reports whether d can be sampled.
func (d Dist[T]) Validate() error {
	if d.kind == KindInvalid {
		return fmt.Errorf("%w: not a fixed value, sequence or weighted mapping", ErrInvalid)
	}
	if len(d.values) == 0 {
		return fmt.Errorf("%w: %s distribution is empty", ErrInvalid, d.kind)
	}
	if d.kind == KindWeighted {
		for i, w := range d.weights {
			if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return fmt.Errorf("%w: weight %v for %v", ErrInvalid, w, d.values[i])
			}
		}
		if !(d.total > 0) {
			return fmt.Errorf("%w: weights sum to %v", ErrInvalid, d.total)
		}
	}
	return nil
}

// Sample draws one value. Sampling an invalid distribution returns the
// zero value of T; call Validate first.
func (d Dist[T]) Sample(rng *rand.Rand) T {
	var zero T
	switch {
	case len(d.values) == 0:
		return zero
	case d.kind == KindFixed:
		return d.values[0]
	case d.kind == KindUniform:
		return d.values[rng.IntN(len(d.values))]
	case d.kind == KindWeighted:
		target := rng.Float64() * d.total
		score := 0.0
		for i, w := range d.weights {
			score += w
			if score >= target && w > 0 {
				return d.values[i]
			}
		}
		return d.values[len(d.values)-1]
	}
	return zero
}

// Support returns the distinct values d can produce, sorted.
func (d Dist[T]) Support() []T {
	var out []T
	for i, v := range d.values {
		if d.kind == KindWeighted && d.weights[i] <= 0 {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Values returns the raw values of d in construction order. For weighted
// distributions the order is sorted by key.
func (d Dist[T]) Values() []T { return slices.Clone(d.values) }

func (d Dist[T]) String() string {
	switch d.kind {
	case KindFixed:
		return fmt.Sprint(d.values[0])
	case KindUniform:
		return fmt.Sprint(d.values)
	case KindWeighted:
		return fmt.Sprintf("%v:%v", d.values, d.weights)
	}
	return "<invalid>"
}
