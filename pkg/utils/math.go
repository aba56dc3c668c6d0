package utils

import "math"

// L2Norm returns the Euclidean length of x, accumulated in float64.
func L2Norm(x []float32) float64 {
	var sum float64
	for _, v := range x {
		sum += float64(v) * float64(v)
	}
	return math.Sqrt(sum)
}

// UnitVector scales x in place to length one and reports whether it could.
// A zero vector is left as is.
func UnitVector(x []float32) bool {
	n := L2Norm(x)
	if n == 0 {
		return false
	}
	for i := range x {
		x[i] = float32(float64(x[i]) / n)
	}
	return true
}
