// internal/shuffle/shuffle.go
//
// Slice helpers used by the session engine to reorder the card layout.
//
// Notes:
//   - Shuffle never mutates its input; callers always get a fresh slice.
//   - A nil Source uses the process-global generator from math/rand/v2.

package shuffle

import "math/rand/v2"

// Source yields uniform integers in [0, n). *rand.Rand satisfies it.
type Source interface {
	IntN(n int) int
}

type globalSource struct{}

func (globalSource) IntN(n int) int { return rand.IntN(n) }

// Shuffle returns a uniformly random permutation of in (Fisher-Yates),
// walking i from len-1 down to 1 and swapping with a j in [0, i].
func Shuffle[T any](src Source, in []T) []T {
	if src == nil {
		src = globalSource{}
	}
	out := Clone(in)
	for i := len(out) - 1; i > 0; i-- {
		j := src.IntN(i + 1)
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// Clone returns an independent copy of in. A nil input yields an empty,
// non-nil slice so callers can range and encode it uniformly.
func Clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
