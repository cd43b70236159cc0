// Package classify assigns patents to taxonomy labels.
//
// Classification prefers embedding similarity: the patent's title+abstract
// is embedded and compared against each label's keyword embeddings, and the
// best label wins if its similarity clears the threshold. When embeddings
// are unavailable or inconclusive, a keyword substring fallback runs instead.
package classify

import (
	"context"
	"time"

	"github.com/patentstack/patentstack/internal/embedding"
	"github.com/patentstack/patentstack/internal/patent"
	"github.com/patentstack/patentstack/internal/taxonomy"
)

const (
	// DefaultThreshold is the minimum cosine similarity for an embedding
	// match to be accepted.
	DefaultThreshold = 0.30

	// MinTextLength is the minimum title+abstract length (in characters)
	// worth classifying. Shorter records go straight to unclassified.
	MinTextLength = 10
)

// Classifier assigns patents to taxonomy labels. A nil provider or index
// puts the classifier in keyword-only mode.
type Classifier struct {
	labels    []taxonomy.Label
	index     *LabelIndex
	provider  embedding.Provider
	threshold float32
	modelName string
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithThreshold sets the minimum similarity for embedding matches.
func WithThreshold(threshold float32) Option {
	return func(c *Classifier) {
		c.threshold = threshold
	}
}

// NewClassifier creates a classifier backed by an embedding provider and a
// prebuilt label index. The index must have been built from the same taxonomy.
func NewClassifier(tax *taxonomy.Taxonomy, idx *LabelIndex, provider embedding.Provider, opts ...Option) *Classifier {
	c := &Classifier{
		labels:    tax.Flatten(),
		index:     idx,
		provider:  provider,
		threshold: DefaultThreshold,
	}
	if idx != nil {
		c.modelName = idx.ModelName
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewKeywordClassifier creates a classifier that only uses keyword matching.
// Used when no embedding provider is available.
func NewKeywordClassifier(tax *taxonomy.Taxonomy, opts ...Option) *Classifier {
	return NewClassifier(tax, nil, nil, opts...)
}

// Threshold returns the similarity threshold in effect.
func (c *Classifier) Threshold() float32 { return c.threshold }

// KeywordOnly reports whether the classifier runs without embeddings.
func (c *Classifier) KeywordOnly() bool {
	return c.provider == nil || c.index == nil
}

// Classify assigns one patent to a label. Classification is deterministic:
// the same patent and taxonomy always produce the same result. Ties between
// equally scoring labels go to the label declared first in the taxonomy.
//
// An error is returned only when embedding the patent text fails; the
// caller may then retry in keyword-only mode.
func (c *Classifier) Classify(ctx context.Context, p *patent.Patent) (patent.Classification, error) {
	text := p.Text()
	if len(text) < MinTextLength || len(c.labels) == 0 {
		return patent.Unclassified(p.ID, 0, c.threshold), nil
	}

	var bestSim float32
	if !c.KeywordOnly() {
		emb, err := c.provider.Embed(ctx, text)
		if err != nil {
			return patent.Classification{}, err
		}

		var best *LabelEmbeddings
		for i := range c.index.Labels {
			// Strictly greater keeps the first-declared label on ties.
			if sim := maxSimilarity(emb.Vector, c.index.Labels[i].Vectors); sim > bestSim {
				bestSim = sim
				best = &c.index.Labels[i]
			}
		}

		if best != nil && bestSim >= c.threshold {
			return patent.Classification{
				PatentID:     p.ID,
				Category:     best.Category,
				Subcategory:  best.Subcategory,
				Confidence:   bestSim,
				Method:       patent.MethodEmbedding,
				ModelName:    c.modelName,
				Threshold:    c.threshold,
				ClassifiedAt: time.Now(),
			}, nil
		}
	}

	if match, ok := bestKeywordMatch(text, c.labels); ok {
		return patent.Classification{
			PatentID:     p.ID,
			Category:     match.label.Category,
			Subcategory:  match.label.Subcategory,
			Confidence:   match.confidence(),
			Method:       patent.MethodKeyword,
			Threshold:    c.threshold,
			ClassifiedAt: time.Now(),
		}, nil
	}

	return patent.Unclassified(p.ID, bestSim, c.threshold), nil
}

// RunStats summarizes a batch classification run.
type RunStats struct {
	Total        int           `json:"total"`
	ByEmbedding  int           `json:"by_embedding"`
	ByKeyword    int           `json:"by_keyword"`
	Unclassified int           `json:"unclassified"`
	Errors       int           `json:"errors"`
	KeywordOnly  bool          `json:"keyword_only"`
	Duration     time.Duration `json:"-"`
	DurationMs   int64         `json:"duration_ms"`
}

// Run classifies a batch of patents. A failed embedding for one patent
// degrades that patent to keyword matching rather than aborting the batch.
func (c *Classifier) Run(ctx context.Context, patents []patent.Patent) ([]patent.Classification, RunStats, error) {
	start := time.Now()
	stats := RunStats{Total: len(patents), KeywordOnly: c.KeywordOnly()}

	results := make([]patent.Classification, 0, len(patents))
	for i := range patents {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		p := &patents[i]
		cls, err := c.Classify(ctx, p)
		if err != nil {
			stats.Errors++
			if match, ok := bestKeywordMatch(p.Text(), c.labels); ok {
				cls = patent.Classification{
					PatentID:     p.ID,
					Category:     match.label.Category,
					Subcategory:  match.label.Subcategory,
					Confidence:   match.confidence(),
					Method:       patent.MethodKeyword,
					Threshold:    c.threshold,
					ClassifiedAt: time.Now(),
				}
			} else {
				cls = patent.Unclassified(p.ID, 0, c.threshold)
			}
		}

		switch cls.Method {
		case patent.MethodEmbedding:
			stats.ByEmbedding++
		case patent.MethodKeyword:
			stats.ByKeyword++
		default:
			stats.Unclassified++
		}
		results = append(results, cls)
	}

	stats.Duration = time.Since(start)
	stats.DurationMs = stats.Duration.Milliseconds()
	return results, stats, nil
}
