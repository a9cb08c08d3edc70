package math

import "math"

// Mod returns the non-negative remainder of a / b for b > 0.
func Mod(a, b float32) float32 {
	r := float32(math.Mod(float64(a), float64(b)))
	if r < 0 {
		r += b
	}
	return r
}
