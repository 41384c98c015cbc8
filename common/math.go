package common

import "math"

func Lerp(a, b, t float64) float64 {
	return a + t*(b-a)
}

// Sign returns -1, 0 or 1.
func Sign(v float64) float64 {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// SameSign reports whether a and b are both positive or both negative.
// Zero never shares a sign.
func SameSign(a, b float64) bool {
	return (a > 0 && b > 0) || (a < 0 && b < 0)
}

// Opposing reports whether a and b have strictly opposite signs.
func Opposing(a, b float64) bool {
	return (a > 0 && b < 0) || (a < 0 && b > 0)
}

// ClampAbs limits the magnitude of v to max while keeping its sign.
func ClampAbs(v, max float64) float64 {
	return math.Min(math.Abs(v), max) * signOrOne(v)
}

// Shrink moves v toward zero by amount without crossing zero.
func Shrink(v, amount float64) float64 {
	if math.Abs(v) <= amount {
		return 0
	}
	return v - amount*Sign(v)
}

func signOrOne(v float64) float64 {
	if v < 0 {
		return -1
	}
	return 1
}
