package mathx

import "golang.org/x/exp/constraints"

// Clamp pins v into [lo, hi]; swapped bounds are tolerated. Used to keep
// config-supplied sample and stability counts inside hardware limits.
func Clamp[T constraints.Ordered](v, lo, hi T) T {
	if hi < lo {
		lo, hi = hi, lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Min returns the smaller of a and b.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}
