package valueobjects

import "math"

// Clamp bounds v to [lo, hi]. NaN and -Inf map to lo, +Inf maps to hi.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, -1) {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampPercent bounds v to [0, 100]
func ClampPercent(v float64) float64 {
	return Clamp(v, 0, 100)
}

// Round2 rounds to two decimals for display payloads
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
