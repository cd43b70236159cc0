package patent

import "time"

// Classification methods. Embedding means the label came from semantic
// similarity; keyword means it came from the substring-matching fallback.
const (
	MethodEmbedding    = "embedding"
	MethodKeyword      = "keyword"
	MethodUnclassified = "unclassified"
)

// Classification is the outcome of classifying one patent against a
// taxonomy. Every patent in a run receives exactly one Classification,
// possibly unclassified. Re-running classification replaces prior results.
type Classification struct {
	PatentID string `json:"patent_id"`

	// Category and Subcategory are the assigned tier-1/tier-2 labels.
	// Both are empty when Method is "unclassified".
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`

	// Confidence is the cosine similarity for embedding matches, or a
	// keyword-count score in [0, 1] for keyword matches. For unclassified
	// records it records the best similarity seen (useful for threshold
	// tuning).
	Confidence float32 `json:"confidence"`

	Method    string  `json:"method"`
	ModelName string  `json:"model_name,omitempty"`
	Threshold float32 `json:"threshold"`

	ClassifiedAt time.Time `json:"classified_at"`
}

// Classified reports whether the patent received a label.
func (c Classification) Classified() bool {
	return c.Method == MethodEmbedding || c.Method == MethodKeyword
}

// Unclassified returns a Classification marking the patent as unmatched.
// bestSimilarity records the highest similarity observed, if any.
func Unclassified(patentID string, bestSimilarity, threshold float32) Classification {
	return Classification{
		PatentID:     patentID,
		Confidence:   bestSimilarity,
		Method:       MethodUnclassified,
		Threshold:    threshold,
		ClassifiedAt: time.Now(),
	}
}
