package munin

import (
	"iter"

	muninerrors "github.com/tamirms/munin/errors"
)

const (
	// DefaultSlidingSize and DefaultSlidingStep are the conventional
	// SlidingWindow arguments: pairs, advancing one element at a time.
	DefaultSlidingSize = 2
	DefaultSlidingStep = 1

	// DefaultCenteringSize is the conventional CenteringWindow size:
	// two elements from each half.
	DefaultCenteringSize = 4
)

// SlidingWindow returns a sequence of windows over s, one for every
// step-th position. The window for position idx spans [idx-n/2, idx+n/2).
//
// Windows that start before the beginning of s wrap around: they are made
// of the trailing elements of s followed by its head. The end of s does not
// wrap; windows near the end are simply shorter.
//
// Windows are views of s and are not copied. The returned sequence can be
// ranged over more than once.
func SlidingWindow[T any](s []T, n, step int) (iter.Seq[iter.Seq[T]], error) {
	if step <= 0 {
		return nil, muninerrors.ErrInvalidStep
	}
	if n < 0 {
		return nil, muninerrors.ErrInvalidWindowSize
	}
	half := n / 2

	return func(yield func(iter.Seq[T]) bool) {
		for idx := 0; idx < len(s); idx += step {
			lo, hi := idx-half, min(idx+half, len(s))
			var w iter.Seq[T]
			if lo < 0 {
				w = concat(s[max(len(s)+lo, 0):], s[:hi])
			} else {
				w = concat(s[lo:hi], nil)
			}
			if !yield(w) {
				return
			}
		}
	}, nil
}

// CenteringWindow splits s at its midpoint into a lean half s[:mid] and a
// mean half, then pairs n/2 elements of each half per window, advancing
// n/2 elements at a time.
//
// With parallel set the mean half is s[mid:] read forwards. Otherwise it is
// read backwards from the last element, so windows move from both ends of s
// towards the middle.
func CenteringWindow[T any](s []T, n int, parallel bool) (iter.Seq[iter.Seq[T]], error) {
	half := n / 2
	if half <= 0 {
		return nil, muninerrors.ErrInvalidWindowSize
	}
	mid := len(s) / 2
	lean := s[:mid]
	mean := s[mid:]

	return func(yield func(iter.Seq[T]) bool) {
		for idx := 0; idx < mid; idx += half {
			hi := min(idx+half, len(mean))
			var w iter.Seq[T]
			if parallel {
				w = concat(lean[idx:min(idx+half, mid)], mean[idx:hi])
			} else {
				w = concatReversedTail(lean[idx:min(idx+half, mid)], mean, idx, hi)
			}
			if !yield(w) {
				return
			}
		}
	}, nil
}

// concat yields the elements of a followed by those of b.
func concat[T any](a, b []T) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range a {
			if !yield(v) {
				return
			}
		}
		for _, v := range b {
			if !yield(v) {
				return
			}
		}
	}
}

// concatReversedTail yields head, then positions [from, to) of tail counted
// from its last element backwards.
func concatReversedTail[T any](head, tail []T, from, to int) iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, v := range head {
			if !yield(v) {
				return
			}
		}
		for i := from; i < to; i++ {
			if !yield(tail[len(tail)-1-i]) {
				return
			}
		}
	}
}
