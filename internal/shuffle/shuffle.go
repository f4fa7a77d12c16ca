// Package shuffle produces uniformly sampled permutations.
package shuffle

import "math/rand/v2"

// Indexed pairs a value with its position in the input sequence.
type Indexed[T any] struct {
	Index int
	Value T
}

// Sequence returns one uniformly sampled permutation of values, each entry
// carrying its original index. The input is not modified.
// A nil source uses the global generator.
func Sequence[T any](r *rand.Rand, values []T) []Indexed[T] {
	out := make([]Indexed[T], len(values))
	for i, v := range values {
		out[i] = Indexed[T]{Index: i, Value: v}
	}
	intN := rand.IntN
	if r != nil {
		intN = r.IntN
	}
	// Fisher-Yates, drawing j from [0, i].
	for i := len(out) - 1; i > 0; i-- {
		j := intN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Values strips the indices from a permutation.
func Values[T any](seq []Indexed[T]) []T {
	out := make([]T, len(seq))
	for i, entry := range seq {
		out[i] = entry.Value
	}
	return out
}
