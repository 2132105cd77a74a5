package munin

import "math"

// epsilon is the difference between 1 and the next representable float64.
const epsilon = 0x1p-52

// AlmostEqual reports whether a and b differ by less than machine epsilon.
// The tolerance is absolute, so it is only meaningful for values near 1.
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < epsilon
}
