// Package embedding provides vector embedding generation for patent text.
//
// Three providers are available: a local ONNX BERT-for-Patents session, a
// local Ollama server, and an OpenAI-compatible HTTP API. All implement
// Provider and produce vectors suitable for cosine similarity.
package embedding

import (
	"errors"
	"math"
)

// ErrProviderUnavailable indicates the embedding backend cannot be reached
// or loaded. Callers treat this as the signal to fall back to keyword
// matching rather than as a fatal error.
var ErrProviderUnavailable = errors.New("embedding provider unavailable")

// Embedding represents a vector embedding of text.
type Embedding struct {
	Vector []float32
}

// Dimensions returns the dimensionality of the embedding.
func (e Embedding) Dimensions() int {
	return len(e.Vector)
}

// Normalize scales the vector to unit length in place and returns the
// embedding. Matches the L2 normalization applied after BERT mean pooling.
func (e Embedding) Normalize() Embedding {
	var sum float64
	for _, v := range e.Vector {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return e
	}
	inv := float32(1.0 / math.Sqrt(sum))
	for i := range e.Vector {
		e.Vector[i] *= inv
	}
	return e
}
