package domain

import "math"

// Cosine returns the cosine of the angle between two vectors, in [-1, 1].
// Vectors must be non-empty, of equal length, and non-zero; violating any of
// these preconditions yields 0 and callers are expected to have rejected such
// vectors upstream (providers never emit the zero vector for non-blank text).
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
