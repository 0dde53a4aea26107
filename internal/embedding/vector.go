package embedding

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// It is 0 when either vector is all zeros or the lengths differ.
func Cosine(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := floats.Norm(a, 2)
	nb := floats.Norm(b, 2)
	if na == 0 || nb == 0 {
		return 0
	}
	sim := floats.Dot(a, b) / (na * nb)
	if math.IsNaN(sim) {
		return 0
	}
	return math.Max(-1, math.Min(1, sim))
}

// MaxCosine returns the highest cosine similarity between target and any of vs, or 0 when vs is empty
func MaxCosine(target []float64, vs [][]float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	best := math.Inf(-1)
	for _, v := range vs {
		best = math.Max(best, Cosine(target, v))
	}
	return best
}

// Mean returns the element-wise mean of vs. Vectors must share a length.
func Mean(vs [][]float64) []float64 {
	if len(vs) == 0 {
		return nil
	}
	sum := make([]float64, len(vs[0]))
	for _, v := range vs {
		if len(v) != len(sum) {
			continue
		}
		floats.Add(sum, v)
	}
	floats.Scale(1/float64(len(vs)), sum)
	return sum
}

// Normalize scales v to unit length in place; zero vectors are left alone
func Normalize(v []float64) {
	n := floats.Norm(v, 2)
	if n == 0 {
		return
	}
	floats.Scale(1/n, v)
}
