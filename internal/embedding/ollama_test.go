package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
)

// newTestServer returns an httptest server that serves the tags endpoint
// and a fixed embedding vector.
func newTestServer(t *testing.T, vector []float32, models ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case apiPathTags:
			resp := ollamaTagsResponse{}
			for _, m := range models {
				resp.Models = append(resp.Models, ollamaModel{Name: m})
			}
			json.NewEncoder(w).Encode(resp)
		case apiPathEmbeddings:
			var req ollamaEmbedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(ollamaEmbedResponse{Embedding: vector})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaEmbed(t *testing.T) {
	vector := make([]float32, DefaultOllamaDimensions)
	vector[0] = 3
	vector[1] = 4
	srv := newTestServer(t, vector, DefaultOllamaModel)
	defer srv.Close()

	p := NewOllamaProvider(WithOllamaURL(srv.URL))

	emb, err := p.Embed(context.Background(), "a microprocessor with on-die cache")
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	if emb.Dimensions() != DefaultOllamaDimensions {
		t.Errorf("Dimensions = %d, want %d", emb.Dimensions(), DefaultOllamaDimensions)
	}

	// Provider normalizes output.
	if math.Abs(float64(emb.Vector[0])-0.6) > 1e-6 {
		t.Errorf("Vector[0] = %v, want 0.6", emb.Vector[0])
	}
}

func TestOllamaEmbedDimensionMismatch(t *testing.T) {
	srv := newTestServer(t, []float32{1, 2, 3}, DefaultOllamaModel)
	defer srv.Close()

	p := NewOllamaProvider(WithOllamaURL(srv.URL))
	if _, err := p.Embed(context.Background(), "text"); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestOllamaIsAvailable(t *testing.T) {
	srv := newTestServer(t, nil, DefaultOllamaModel)
	defer srv.Close()

	p := NewOllamaProvider(WithOllamaURL(srv.URL))
	if err := p.IsAvailable(context.Background()); err != nil {
		t.Errorf("IsAvailable failed: %v", err)
	}
}

func TestOllamaIsAvailableModelMissing(t *testing.T) {
	srv := newTestServer(t, nil, "some-other-model")
	defer srv.Close()

	p := NewOllamaProvider(WithOllamaURL(srv.URL))
	err := p.IsAvailable(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOllamaIsAvailableServerDown(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.Close() // immediately close so requests fail

	p := NewOllamaProvider(WithOllamaURL(srv.URL))
	err := p.IsAvailable(context.Background())
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Errorf("expected ErrProviderUnavailable, got %v", err)
	}
}

func TestOllamaModelOption(t *testing.T) {
	p := NewOllamaProvider(WithOllamaModel("all-minilm:l6-v2", 384))
	if p.ModelName() != "all-minilm:l6-v2" {
		t.Errorf("ModelName = %q", p.ModelName())
	}
	if p.Dimensions() != 384 {
		t.Errorf("Dimensions = %d, want 384", p.Dimensions())
	}
}

func TestProbeWithoutProber(t *testing.T) {
	// A provider that does not implement Prober is assumed available.
	if err := Probe(context.Background(), staticProvider{}); err != nil {
		t.Errorf("Probe = %v, want nil", err)
	}
}

// staticProvider is a minimal Provider without a probe.
type staticProvider struct{}

func (staticProvider) Embed(ctx context.Context, text string) (Embedding, error) {
	return Embedding{Vector: []float32{1}}, nil
}
func (staticProvider) ModelName() string { return "static" }
func (staticProvider) Dimensions() int   { return 1 }
