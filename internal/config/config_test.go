package config

import (
	"os"
	"path/filepath"
	"testing"
)

// newWorkspace creates a temp directory with a .patentstack dir inside.
func newWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(WorkspacePath(root), 0755); err != nil {
		t.Fatal(err)
	}
	return root
}

func TestConfigRoundTrip(t *testing.T) {
	root := newWorkspace(t)

	cfg := &Config{
		Companies: []string{"IBM", "Google"},
		StartDate: "2020-01-01",
		EndDate:   "2023-12-31",
		Threshold: 0.35,
	}
	if err := cfg.Save(root); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(root)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(loaded.Companies) != 2 || loaded.Companies[0] != "IBM" {
		t.Errorf("Companies = %v", loaded.Companies)
	}
	if loaded.Threshold != 0.35 {
		t.Errorf("Threshold = %v, want 0.35", loaded.Threshold)
	}
}

func TestFindWorkspace(t *testing.T) {
	root := newWorkspace(t)
	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindWorkspace(nested)
	if err != nil {
		t.Fatalf("FindWorkspace failed: %v", err)
	}
	// Resolve symlinks for comparison (macOS /tmp is a symlink).
	wantRoot, _ := filepath.EvalSymlinks(root)
	gotRoot, _ := filepath.EvalSymlinks(found)
	if gotRoot != wantRoot {
		t.Errorf("FindWorkspace = %q, want %q", gotRoot, wantRoot)
	}
}

func TestFindWorkspaceNotFound(t *testing.T) {
	if _, err := FindWorkspace(t.TempDir()); err == nil {
		t.Error("expected error outside a workspace")
	}
}

func TestPathHelpers(t *testing.T) {
	root := "/some/root"
	tests := []struct {
		got  string
		want string
	}{
		{ConfigPath(root), "/some/root/.patentstack/config.json"},
		{TaxonomyPath(root), "/some/root/.patentstack/taxonomy.yml"},
		{DomainsPath(root), "/some/root/.patentstack/domains.yml"},
		{PatentsPath(root), "/some/root/.patentstack/patents.jsonl"},
		{ResultsPath(root), "/some/root/.patentstack/results.jsonl"},
		{DBPath(root), "/some/root/.patentstack/cache/patents.db"},
	}
	for _, tt := range tests {
		if tt.got != filepath.FromSlash(tt.want) {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}

func TestConfigGetSet(t *testing.T) {
	cfg := &Config{}

	tests := []struct {
		key   string
		value string
	}{
		{"companies", "IBM,Google"},
		{"start_date", "2020-01-01"},
		{"end_date", "2023-12-31"},
		{"threshold", "0.35"},
		{"provider", "ollama"},
		{"max_records", "500"},
	}
	for _, tt := range tests {
		if err := cfg.Set(tt.key, tt.value); err != nil {
			t.Errorf("Set(%s, %s) failed: %v", tt.key, tt.value, err)
			continue
		}
		got, err := cfg.Get(tt.key)
		if err != nil {
			t.Errorf("Get(%s) failed: %v", tt.key, err)
			continue
		}
		if got != tt.value {
			t.Errorf("Get(%s) = %q, want %q", tt.key, got, tt.value)
		}
	}
}

func TestConfigSetInvalid(t *testing.T) {
	cfg := &Config{}

	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"unknown key", "nope", "x"},
		{"bad date", "start_date", "01/02/2020"},
		{"threshold above one", "threshold", "1.5"},
		{"threshold not a number", "threshold", "high"},
		{"bad provider", "provider", "bert-as-a-service"},
		{"bad source", "sources", "carrier_pigeon"},
		{"negative max_records", "max_records", "-1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cfg.Set(tt.key, tt.value); err == nil {
				t.Errorf("Set(%s, %s) should fail", tt.key, tt.value)
			}
		})
	}
}

func TestEffectiveSources(t *testing.T) {
	cfg := &Config{}
	if got := cfg.EffectiveSources(); len(got) != 2 {
		t.Errorf("default sources = %v, want the two USPTO endpoints", got)
	}

	cfg.Sources = []string{"bigquery"}
	if got := cfg.EffectiveSources(); len(got) != 1 || got[0] != "bigquery" {
		t.Errorf("sources = %v", got)
	}
}

func TestValidateDate(t *testing.T) {
	valid := []string{"", "2020-01-01", "1999-12-31"}
	for _, d := range valid {
		if err := ValidateDate(d); err != nil {
			t.Errorf("ValidateDate(%q) = %v, want nil", d, err)
		}
	}
	invalid := []string{"2020-1-1", "20200101", "2020/01/01", "202a-01-01"}
	for _, d := range invalid {
		if err := ValidateDate(d); err == nil {
			t.Errorf("ValidateDate(%q) should fail", d)
		}
	}
}
