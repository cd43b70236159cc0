package classify

import (
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/patentstack/patentstack/internal/embedding"
	"github.com/patentstack/patentstack/internal/taxonomy"
)

// Errors returned by label index operations.
var (
	ErrIndexNotFound      = errors.New("label index not found")
	ErrUnsupportedVersion = errors.New("unsupported label index version")
	ErrIndexStale         = errors.New("label index is stale")
)

const (
	// IndexFileName is the name of the label embedding index file.
	IndexFileName = "labels.gob"

	// CurrentIndexVersion is the format version for compatibility checking.
	// Increment this when making breaking changes to the index format.
	CurrentIndexVersion = 1
)

// LabelEmbeddings holds the embedded keyword vectors for one taxonomy label.
// Vectors are ordered the same as the label's keywords.
type LabelEmbeddings struct {
	Key         string
	Category    string
	Subcategory string
	Vectors     [][]float32
}

// LabelIndex caches keyword embeddings for every label in a taxonomy.
// Labels preserve the taxonomy's declaration order, which decides ties
// when two labels score equally against a patent.
type LabelIndex struct {
	Version      int
	ModelName    string
	Dimensions   int
	TaxonomyHash string
	CreatedAt    time.Time

	Labels []LabelEmbeddings
}

// IndexPath returns the path to the label index inside a workspace cache dir.
func IndexPath(cacheDir string) string {
	return filepath.Join(cacheDir, IndexFileName)
}

// BuildLabelIndex embeds every label's keywords using the given provider.
// Keywords beyond the per-label cap are ignored; blank keywords are skipped.
func BuildLabelIndex(ctx context.Context, provider embedding.Provider, tax *taxonomy.Taxonomy) (*LabelIndex, error) {
	idx := &LabelIndex{
		Version:      CurrentIndexVersion,
		ModelName:    provider.ModelName(),
		Dimensions:   provider.Dimensions(),
		TaxonomyHash: tax.Hash(),
		CreatedAt:    time.Now(),
	}

	for _, label := range tax.Flatten() {
		le := LabelEmbeddings{
			Key:         label.Key(),
			Category:    label.Category,
			Subcategory: label.Subcategory,
		}
		for _, kw := range label.EmbedKeywords() {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			emb, err := provider.Embed(ctx, kw)
			if err != nil {
				return nil, fmt.Errorf("embedding keyword %q for %s: %w", kw, label.Key(), err)
			}
			le.Vectors = append(le.Vectors, emb.Vector)
		}
		idx.Labels = append(idx.Labels, le)
	}

	return idx, nil
}

// Matches reports whether the index was built for the given taxonomy and model.
func (idx *LabelIndex) Matches(taxonomyHash, modelName string) bool {
	return idx.TaxonomyHash == taxonomyHash && idx.ModelName == modelName
}

// Save persists the label index using GOB encoding. The write is atomic:
// a temp file is renamed into place.
func (idx *LabelIndex) Save(cacheDir string) error {
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	indexPath := IndexPath(cacheDir)
	tempPath := indexPath + ".tmp"
	f, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	if err := gob.NewEncoder(f).Encode(idx); err != nil {
		f.Close()
		os.Remove(tempPath)
		return fmt.Errorf("encoding label index: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tempPath, indexPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}

// LoadIndex reads the label index from a workspace cache dir.
// Returns ErrUnsupportedVersion if the index format is incompatible.
func LoadIndex(cacheDir string) (*LabelIndex, error) {
	f, err := os.Open(IndexPath(cacheDir))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrIndexNotFound
		}
		return nil, fmt.Errorf("opening label index: %w", err)
	}
	defer f.Close()

	var idx LabelIndex
	if err := gob.NewDecoder(f).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding label index: %w", err)
	}
	if idx.Version != CurrentIndexVersion {
		return nil, fmt.Errorf("%w: got version %d, want %d", ErrUnsupportedVersion, idx.Version, CurrentIndexVersion)
	}

	return &idx, nil
}
