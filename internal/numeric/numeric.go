package numeric

import "golang.org/x/exp/constraints"

// Min returns the smaller of the two provided values.
func Min[T constraints.Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of the two provided values.
func Max[T constraints.Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Majority returns the smallest count that is strictly more than half of total.
// The result is computed over the configured membership, so members that are
// currently stopped still count towards the denominator.
func Majority[T constraints.Integer](total T) T {
	return total/2 + 1
}
