package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/patentstack/patentstack/internal/patent"
)

// ReadPatents reads all patent records from a JSONL file.
// A missing file returns an empty slice.
func ReadPatents(path string) ([]patent.Patent, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	var patents []patent.Patent
	scanner := newLineScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var p patent.Patent
		if err := json.Unmarshal(line, &p); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		patents = append(patents, p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	return patents, nil
}

// AppendPatents appends records to a JSONL file, skipping IDs already
// present. Returns the number of records actually written.
func AppendPatents(path string, patents []patent.Patent) (int, error) {
	existing, err := ReadPatents(path)
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, p := range existing {
		seen[p.ID] = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("opening file for append: %w", err)
	}
	defer f.Close()

	written := 0
	for _, p := range patents {
		if p.ID == "" || seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		data, err := json.Marshal(p)
		if err != nil {
			return written, fmt.Errorf("encoding record %s: %w", p.ID, err)
		}
		if _, err := f.Write(append(data, '\n')); err != nil {
			return written, fmt.Errorf("writing record %s: %w", p.ID, err)
		}
		written++
	}

	return written, nil
}

// WritePatents replaces the JSONL file with the given records atomically.
func WritePatents(path string, patents []patent.Patent) error {
	return writeLinesAtomic(path, func(w io.Writer) error {
		enc := json.NewEncoder(w)
		for _, p := range patents {
			if err := enc.Encode(p); err != nil {
				return fmt.Errorf("encoding record %s: %w", p.ID, err)
			}
		}
		return nil
	})
}
