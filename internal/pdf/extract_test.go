package pdf

import (
	"path/filepath"
	"testing"
	"unicode/utf8"
)

func TestFindPatentNumber(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "granted with commas",
			text: "(10) Patent No.: US 11,000,001 B2",
			want: "11000001",
		},
		{
			name: "granted without commas",
			text: "US 9876543 B1",
			want: "9876543",
		},
		{
			name: "publication number",
			text: "(10) Pub. No.: US 2021/0123456 A1",
			want: "20210123456",
		},
		{
			name: "first match wins",
			text: "US 11,000,001 B2 cites US 9,876,543",
			want: "11000001",
		},
		{
			name: "no number",
			text: "A method for tuning qubit couplers.",
			want: "",
		},
		{
			name: "too short",
			text: "US 123",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := findPatentNumber(tt.text); got != tt.want {
				t.Errorf("findPatentNumber(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsBoilerplateLine(t *testing.T) {
	boilerplate := []string{
		"United States Patent Application Publication",
		"(45) Date of Patent: May 4, 2021",
		"(10) Patent No.: US 11,000,001 B2",
		"Prior Publication Data",
	}
	for _, line := range boilerplate {
		if !isBoilerplateLine(line) {
			t.Errorf("isBoilerplateLine(%q) = false, want true", line)
		}
	}

	if isBoilerplateLine("Superconducting qubit array with tunable couplers") {
		t.Error("title line flagged as boilerplate")
	}
}

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		name string
		in   string
		max  int
		want string
	}{
		{"short stays whole", "abc", 10, "abc"},
		{"ascii cut", "abcdef", 4, "abcd"},
		{"cut inside a rune backs off", "日本語", 4, "日"},
		{"cut on a rune edge", "日本語", 6, "日本"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateRunes(tt.in, tt.max)
			if got != tt.want {
				t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("invalid UTF-8 after truncation: %q", got)
			}
		})
	}
}

func TestImportPatentMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := ImportPatent(path); err == nil {
		t.Error("missing file should error")
	}
}
