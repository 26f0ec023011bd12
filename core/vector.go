package core

import "math"

// NormalizeL2 normalizes v to unit length in place.
// Returns false if v is empty or has zero norm, in which case v is unchanged.
func NormalizeL2(v []float32) bool {
	if len(v) == 0 {
		return false
	}

	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return false
	}

	inv := 1 / math.Sqrt(sum)
	for i := range v {
		v[i] = float32(float64(v[i]) * inv)
	}
	return true
}

// DotProduct computes the dot product of two equal-length vectors.
// Accumulation is done in float64 to keep scores stable across summation order.
// For L2-normalized vectors this equals their cosine similarity.
func DotProduct(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var sum float64
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return float32(sum)
}
