package embedding

import "context"

// Provider generates embeddings from text.
type Provider interface {
	// Embed generates an embedding for the given text.
	Embed(ctx context.Context, text string) (Embedding, error)

	// ModelName returns the name of the embedding model.
	ModelName() string

	// Dimensions returns the expected vector dimensions.
	Dimensions() int
}

// Prober is implemented by providers that can cheaply check backend
// availability before a batch run. A probe failure puts classification
// into keyword-only degraded mode.
type Prober interface {
	IsAvailable(ctx context.Context) error
}

// Probe checks provider availability when the provider supports it.
// Providers without a probe are assumed available; the first Embed call
// will surface any real failure.
func Probe(ctx context.Context, p Provider) error {
	if prober, ok := p.(Prober); ok {
		return prober.IsAvailable(ctx)
	}
	return nil
}
