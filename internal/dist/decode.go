package dist

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Ints decodes an integer distribution from a value produced by a YAML,
// JSON or CUE decoder: a number, a list of numbers, or a mapping from
// number to weight.
func Ints(v any) (Dist[int], error) {
	return decode(v, toInt)
}

// Floats decodes a float distribution the same way Ints does.
func Floats(v any) (Dist[float64], error) {
	return decode(v, toFloat)
}

func decode[T int | float64](v any, conv func(any) (T, error)) (Dist[T], error) {
	var d Dist[T]
	switch val := v.(type) {
	case nil:
		return d, fmt.Errorf("%w: missing", ErrInvalid)
	case []any:
		values := make([]T, len(val))
		for i, item := range val {
			x, err := conv(item)
			if err != nil {
				return d, fmt.Errorf("item %d: %w", i, err)
			}
			values[i] = x
		}
		d = Uniform(values...)
	case map[string]any:
		weights := make(map[T]float64, len(val))
		for k, w := range val {
			if err := addWeight(weights, k, w, conv); err != nil {
				return d, err
			}
		}
		d = Weighted(weights)
	case map[any]any:
		weights := make(map[T]float64, len(val))
		for k, w := range val {
			if err := addWeight(weights, k, w, conv); err != nil {
				return d, err
			}
		}
		d = Weighted(weights)
	default:
		x, err := conv(val)
		if err != nil {
			return d, err
		}
		d = Fixed(x)
	}
	return d, d.Validate()
}

func addWeight[T int | float64](weights map[T]float64, k, w any, conv func(any) (T, error)) error {
	key, err := conv(k)
	if err != nil {
		return fmt.Errorf("key %v: %w", k, err)
	}
	weight, err := toFloat(w)
	if err != nil {
		return fmt.Errorf("weight for %v: %w", k, err)
	}
	weights[key] += weight
	return nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		return x.Float64()
	case string:
		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not a number", ErrInvalid, x)
		}
		return f, nil
	}
	return 0, fmt.Errorf("%w: unsupported value %v (%T)", ErrInvalid, v, v)
}

func toInt(v any) (int, error) {
	f, err := toFloat(v)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%w: %v is not an integer", ErrInvalid, v)
	}
	return int(f), nil
}
