package eval

import "golang.org/x/exp/constraints"

// clamp bounds v to [lo, hi].
func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// lerp blends a toward b as t runs from total down to zero.
func lerp[T constraints.Integer](a, b, t, total T) T {
	return (a*t + b*(total-t)) / total
}
