package classify

import "math"

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float32
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}

	denominator := float32(math.Sqrt(float64(normA))) * float32(math.Sqrt(float64(normB)))
	if denominator == 0 {
		return 0
	}

	return dot / denominator
}

// maxSimilarity returns the highest cosine similarity between the query
// vector and any of the label's keyword vectors.
func maxSimilarity(query []float32, vectors [][]float32) float32 {
	var best float32 = -1
	for _, v := range vectors {
		if sim := CosineSimilarity(query, v); sim > best {
			best = sim
		}
	}
	if len(vectors) == 0 {
		return 0
	}
	return best
}
