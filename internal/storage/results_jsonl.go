package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/patentstack/patentstack/internal/patent"
)

// ReadClassifications reads all classification results from a JSONL file.
// A missing file returns an empty slice.
func ReadClassifications(path string) ([]patent.Classification, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var results []patent.Classification
	scanner := newLineScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var c patent.Classification
		if err := json.Unmarshal(line, &c); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		results = append(results, c)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return results, nil
}

// WriteClassifications replaces the results file atomically. Classification
// runs always rewrite the whole file: a run covers every patent, and stale
// results from a previous taxonomy must not survive.
func WriteClassifications(path string, results []patent.Classification) error {
	return writeLinesAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, c := range results {
			if err := enc.Encode(c); err != nil {
				return fmt.Errorf("encoding result %s: %w", c.PatentID, err)
			}
		}
		return nil
	})
}

// ClassificationsByPatent indexes results by patent ID. Later entries win,
// matching append order in the file.
func ClassificationsByPatent(results []patent.Classification) map[string]patent.Classification {
	byID := make(map[string]patent.Classification, len(results))
	for _, c := range results {
		byID[c.PatentID] = c
	}
	return byID
}
