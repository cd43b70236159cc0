package classify

import (
	"strings"

	"github.com/patentstack/patentstack/internal/taxonomy"
)

// keywordMatchDivisor scales keyword match counts to a confidence score.
// Five matching keywords saturate confidence at 1.0.
const keywordMatchDivisor = 5

// keywordMatch is the outcome of keyword matching one patent against one label.
type keywordMatch struct {
	label taxonomy.Label
	count int
}

// confidence converts the match count into a 0..1 score.
func (m keywordMatch) confidence() float32 {
	c := float32(m.count) / keywordMatchDivisor
	if c > 1 {
		return 1
	}
	return c
}

// matchKeywords counts how many of the label's keywords appear in the text
// as case-insensitive substrings. The text must already be lowercased.
func matchKeywords(lowerText string, label taxonomy.Label) int {
	count := 0
	for _, kw := range label.Keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if strings.Contains(lowerText, kw) {
			count++
		}
	}
	return count
}

// bestKeywordMatch finds the label with the most keyword hits in the text.
// Ties go to the label declared first in the taxonomy. Returns ok=false when
// no label has any matching keyword.
func bestKeywordMatch(text string, labels []taxonomy.Label) (keywordMatch, bool) {
	lower := strings.ToLower(text)

	var best keywordMatch
	for _, label := range labels {
		if count := matchKeywords(lower, label); count > best.count {
			best = keywordMatch{label: label, count: count}
		}
	}
	return best, best.count > 0
}
