package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/patentstack/patentstack/internal/patent"
)

func samplePatents() []patent.Patent {
	return []patent.Patent{
		{
			ID:              "11000001",
			Title:           "Quantum error correction circuit",
			Abstract:        "A circuit for correcting qubit errors.",
			PublicationDate: "2021-05-04",
			Assignee:        "IBM",
			CPCCodes:        []string{"G06N10/70"},
			RecordType:      patent.RecordTypeGranted,
			Source:          patent.SourceUSPTOPatents,
			FetchedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
		{
			ID:              "20230123456",
			Title:           "Photonic interconnect",
			PublicationDate: "2023-04-20",
			Assignee:        "Intel",
			RecordType:      patent.RecordTypePublication,
			Source:          patent.SourceUSPTOPublications,
			FetchedAt:       time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		},
	}
}

func TestReadPatentsMissing(t *testing.T) {
	patents, err := ReadPatents(filepath.Join(t.TempDir(), "patents.jsonl"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if patents != nil {
		t.Errorf("got %v, want nil", patents)
	}
}

func TestWriteReadPatents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patents.jsonl")

	if err := WritePatents(path, samplePatents()); err != nil {
		t.Fatalf("WritePatents failed: %v", err)
	}

	loaded, err := ReadPatents(path)
	if err != nil {
		t.Fatalf("ReadPatents failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d records, want 2", len(loaded))
	}
	if loaded[0].ID != "11000001" || loaded[0].CPCCodes[0] != "G06N10/70" {
		t.Errorf("first record = %+v", loaded[0])
	}
}

func TestAppendPatentsDedupes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "patents.jsonl")

	written, err := AppendPatents(path, samplePatents())
	if err != nil {
		t.Fatalf("AppendPatents failed: %v", err)
	}
	if written != 2 {
		t.Errorf("written = %d, want 2", written)
	}

	// Appending the same records again plus one new one.
	more := append(samplePatents(), patent.Patent{
		ID:    "11000099",
		Title: "New record",
	})
	written, err = AppendPatents(path, more)
	if err != nil {
		t.Fatalf("AppendPatents failed: %v", err)
	}
	if written != 1 {
		t.Errorf("written = %d, want 1 (duplicates skipped)", written)
	}

	loaded, err := ReadPatents(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded) != 3 {
		t.Errorf("got %d records, want 3", len(loaded))
	}
}

func TestWriteReadClassifications(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.jsonl")

	results := []patent.Classification{
		{PatentID: "11000001", Category: "Hardware", Subcategory: "processors", Confidence: 0.8, Method: patent.MethodEmbedding},
		{PatentID: "20230123456", Method: patent.MethodUnclassified},
	}
	if err := WriteClassifications(path, results); err != nil {
		t.Fatalf("WriteClassifications failed: %v", err)
	}

	loaded, err := ReadClassifications(path)
	if err != nil {
		t.Fatalf("ReadClassifications failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("got %d results, want 2", len(loaded))
	}

	byID := ClassificationsByPatent(loaded)
	if byID["11000001"].Category != "Hardware" {
		t.Errorf("classification = %+v", byID["11000001"])
	}
}

func TestComputeJSONLHash(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "patents.jsonl")

	missing, err := ComputeJSONLHash(path)
	if err != nil {
		t.Fatalf("hash of missing file failed: %v", err)
	}

	if err := WritePatents(path, samplePatents()); err != nil {
		t.Fatal(err)
	}
	written, err := ComputeJSONLHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if written == missing {
		t.Error("hash should change when content is written")
	}

	again, err := ComputeJSONLHash(path)
	if err != nil {
		t.Fatal(err)
	}
	if again != written {
		t.Error("hash should be stable for unchanged content")
	}
}
