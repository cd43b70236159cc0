package main

import (
	"testing"
	"time"
)

func TestTruncateString(t *testing.T) {
	tests := []struct {
		input  string
		maxLen int
		want   string
	}{
		{"short", 10, "short"},
		{"exactly ten", 11, "exactly ten"},
		{"this is a longer title that gets cut", 20, "this is a longer ..."},
	}

	for _, tt := range tests {
		if got := truncateString(tt.input, tt.maxLen); got != tt.want {
			t.Errorf("truncateString(%q, %d) = %q, want %q", tt.input, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{3500 * time.Millisecond, "3.5s"},
		{90 * time.Second, "1m 30s"},
	}

	for _, tt := range tests {
		if got := formatDuration(tt.d); got != tt.want {
			t.Errorf("formatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"start-date", "start_date"},
		{"START_DATE", "start_date"},
		{"threshold", "threshold"},
	}

	for _, tt := range tests {
		if got := normalizeKey(tt.input); got != tt.want {
			t.Errorf("normalizeKey(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSourceHelpers(t *testing.T) {
	sources := []string{"uspto_patents", "bigquery"}

	if !hasSource(sources, "bigquery") {
		t.Error("hasSource missed bigquery")
	}
	if hasSource(sources, "uspto_publications") {
		t.Error("hasSource false positive")
	}

	trimmed := removeSource(sources, "bigquery")
	if len(trimmed) != 1 || trimmed[0] != "uspto_patents" {
		t.Errorf("removeSource = %v", trimmed)
	}
}
