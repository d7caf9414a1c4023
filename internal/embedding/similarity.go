package embedding

import "math"

// Cosine computes the cosine similarity of two vectors. Mismatched lengths are
// truncated to the shorter vector; a zero norm on either side yields 0. The
// result lives in the natural [-1, 1] range of cosine similarity.
func Cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	if n == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
