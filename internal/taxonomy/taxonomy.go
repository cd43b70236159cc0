// Package taxonomy defines the two-tier technology taxonomy used for
// classification: tier-1 categories containing tier-2 subcategories, each
// subcategory carrying a keyword list.
package taxonomy

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Errors returned by taxonomy operations.
var (
	ErrEmptyCategoryName    = errors.New("category name cannot be empty")
	ErrEmptySubcategoryName = errors.New("subcategory name cannot be empty")
	ErrDuplicateLabel       = errors.New("duplicate category/subcategory pair")
)

// MaxKeywordEmbeddings caps how many keywords per subcategory are embedded.
// Keywords beyond the cap still participate in substring matching.
const MaxKeywordEmbeddings = 10

// Subcategory is a tier-2 label with its associated keywords.
type Subcategory struct {
	Name     string   `yaml:"name" json:"name"`
	Keywords []string `yaml:"keywords" json:"keywords"`
}

// Category is a tier-1 label holding an ordered list of subcategories.
type Category struct {
	Name          string        `yaml:"name" json:"name"`
	Subcategories []Subcategory `yaml:"subcategories" json:"subcategories"`
}

// Taxonomy is the user-authored classification hierarchy. Category and
// subcategory order is significant: ties during classification are broken
// by declaration order.
type Taxonomy struct {
	Categories []Category `yaml:"categories" json:"categories"`
}

// Label is a flattened (tier-1, tier-2) pair with its keywords.
type Label struct {
	Category    string
	Subcategory string
	Keywords    []string
}

// Key returns a stable identifier for the label pair.
func (l Label) Key() string {
	return l.Category + "/" + l.Subcategory
}

// EmbedKeywords returns the keywords to embed for this label, capped at
// MaxKeywordEmbeddings and with blank entries dropped.
func (l Label) EmbedKeywords() []string {
	var out []string
	for _, kw := range l.Keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		out = append(out, kw)
		if len(out) == MaxKeywordEmbeddings {
			break
		}
	}
	return out
}

// Load reads a taxonomy from a YAML file. A missing file yields an empty
// taxonomy, not an error: an empty taxonomy is legal and classifies
// everything as unclassified.
func Load(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Taxonomy{}, nil
		}
		return nil, fmt.Errorf("reading taxonomy: %w", err)
	}

	var tax Taxonomy
	if err := yaml.Unmarshal(data, &tax); err != nil {
		return nil, fmt.Errorf("parsing taxonomy: %w", err)
	}

	if err := tax.Validate(); err != nil {
		return nil, err
	}

	return &tax, nil
}

// Save writes the taxonomy to a YAML file.
func (t *Taxonomy) Save(path string) error {
	data, err := yaml.Marshal(t)
	if err != nil {
		return fmt.Errorf("encoding taxonomy: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing taxonomy: %w", err)
	}
	return nil
}

// Validate checks structural invariants: non-empty names and unique
// (category, subcategory) pairs. Empty keyword lists are allowed.
func (t *Taxonomy) Validate() error {
	seen := make(map[string]bool)
	for _, cat := range t.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			return ErrEmptyCategoryName
		}
		for _, sub := range cat.Subcategories {
			if strings.TrimSpace(sub.Name) == "" {
				return fmt.Errorf("%w (category %q)", ErrEmptySubcategoryName, cat.Name)
			}
			key := cat.Name + "/" + sub.Name
			if seen[key] {
				return fmt.Errorf("%w: %s", ErrDuplicateLabel, key)
			}
			seen[key] = true
		}
	}
	return nil
}

// IsEmpty reports whether the taxonomy has no subcategories to classify
// against.
func (t *Taxonomy) IsEmpty() bool {
	for _, cat := range t.Categories {
		if len(cat.Subcategories) > 0 {
			return false
		}
	}
	return true
}

// Flatten returns all (tier-1, tier-2) labels in declaration order.
// Classification iterates this slice in order, so the first label wins
// similarity ties.
func (t *Taxonomy) Flatten() []Label {
	var labels []Label
	for _, cat := range t.Categories {
		for _, sub := range cat.Subcategories {
			labels = append(labels, Label{
				Category:    cat.Name,
				Subcategory: sub.Name,
				Keywords:    sub.Keywords,
			})
		}
	}
	return labels
}

// Hash returns a digest of the taxonomy content, used to detect when a
// cached label index is stale.
func (t *Taxonomy) Hash() string {
	h := sha256.New()
	for _, label := range t.Flatten() {
		fmt.Fprintf(h, "%s\x00", label.Key())
		for _, kw := range label.Keywords {
			fmt.Fprintf(h, "%s\x00", kw)
		}
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
