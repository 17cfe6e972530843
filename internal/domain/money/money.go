// Package money centralizes cent arithmetic on float64 amounts.
//
// Amounts stay float64 end to end because the payment gateway SDK takes
// float64; every boundary value passes through Round or Truncate so the
// cent invariants hold regardless of intermediate float noise.
package money

import "math"

// Round rounds to the nearest cent, half away from zero.
func Round(v float64) float64 {
	return math.Round(v*100) / 100
}

// Truncate drops everything below the cent. Applied at the point of
// submission to the gateway, never earlier.
func Truncate(v float64) float64 {
	return math.Trunc(v*100) / 100
}

// WithinCent reports whether two amounts agree to one cent.
func WithinCent(a, b float64) bool {
	return math.Abs(a-b) < 0.01+1e-9
}
