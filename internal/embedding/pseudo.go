package embedding

import "hash/fnv"

// pseudoVectorDims is the dimensionality of fallback vectors. Real provider
// vectors are much wider; 64 dimensions give enough spread for threshold
// comparisons while staying cheap.
const pseudoVectorDims = 64

// PseudoVector deterministically maps text to a vector derived from a stable
// content hash. Identical texts always produce identical vectors, so exact
// duplicates still score 1.0 under the degraded path.
func PseudoVector(text string) []float32 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	x := h.Sum64()
	if x == 0 {
		x = 0xcbf29ce484222325 // FNV offset basis; keeps the generator moving
	}

	vec := make([]float32, pseudoVectorDims)
	for i := range vec {
		// xorshift64 expansion of the seed hash
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
		vec[i] = float32(x&0xFF) / 255.0
	}
	return vec
}
