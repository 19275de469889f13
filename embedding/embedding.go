package embedding

import (
	"fmt"
	"math"
)

// Dim is the expected length of a speaker embedding vector. The ECAPA-TDNN
// speaker recognition model emits 192-dimensional embeddings; any vector of
// a different length is invalid and must be rejected before use.
const Dim = 192

// Embedding is a fixed-length vector summarizing a speaker's vocal
// characteristics.
type Embedding []float32

// Validate checks the embedding length invariant.
func (e Embedding) Validate() error {
	if len(e) != Dim {
		return fmt.Errorf("embedding: expected %d dimensions, got %d", Dim, len(e))
	}
	return nil
}

// CosineDistance returns 1 - cosine_similarity between a and b: 0 for
// identical direction, 1 for orthogonal, up to 2 for opposite vectors.
// It fails on mismatched lengths and on zero-norm vectors, where the
// similarity is undefined.
func CosineDistance(a, b Embedding) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("embedding: length mismatch: %d vs %d", len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		av := float64(a[i])
		bv := float64(b[i])
		dot += av * bv
		normA += av * av
		normB += bv * bv
	}
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("embedding: zero-norm vector")
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)), nil
}
