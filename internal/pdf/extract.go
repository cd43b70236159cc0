// Package pdf extracts text and metadata from local patent PDFs so they
// can be classified alongside fetched records.
package pdf

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/patentstack/patentstack/internal/patent"
)

// Patent number on the cover sheet, e.g. "US 11,000,001 B2" or
// "US 2021/0123456 A1" for pre-grant publications.
var patentNumberPattern = regexp.MustCompile(
	`US\s*(\d{1,2},?\d{3},?\d{3}|\d{4}/\d{7})\s*([AB]\d)?`)

// ExtractPatentNumber extracts a US patent or publication number from a
// PDF. It searches the first few pages; the number is usually on the
// cover sheet. Returns "" when no number is found (not an error).
func ExtractPatentNumber(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	maxPages := 3
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if num := findPatentNumber(text); num != "" {
			return num, nil
		}
	}

	return "", nil
}

// ExtractTitle attempts to extract the invention title from the first
// page. Best-effort: returns the first substantial non-boilerplate line.
func ExtractTitle(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if r.NumPage() < 1 {
		return "", nil
	}

	page := r.Page(1)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", nil
	}

	lines := strings.Split(text, "\n")
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !isBoilerplateLine(line) {
			return line, nil
		}
	}

	return "", nil
}

// ExtractText extracts all text from the first N pages of a PDF.
// maxPages <= 0 means all pages.
func ExtractText(filePath string, maxPages int) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	return readPages(r, maxPages), nil
}

// ExtractTextReader extracts text from an in-memory PDF.
func ExtractTextReader(r io.ReaderAt, size int64, maxPages int) (string, error) {
	pdfReader, err := pdf.NewReader(r, size)
	if err != nil {
		return "", err
	}

	return readPages(pdfReader, maxPages), nil
}

func readPages(r *pdf.Reader, maxPages int) string {
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	return builder.String()
}

// abstractChars caps how much body text stands in for the abstract.
const abstractChars = 2000

// ImportPatent builds a patent record from a local PDF. The patent
// number becomes the record ID; when the cover sheet has none, the
// file name (without extension) is used instead.
func ImportPatent(filePath string) (*patent.Patent, error) {
	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("reading PDF: %w", err)
	}

	number, err := ExtractPatentNumber(filePath)
	if err != nil {
		return nil, fmt.Errorf("parsing PDF %s: %w", filePath, err)
	}

	title, _ := ExtractTitle(filePath)
	text, err := ExtractText(filePath, 5)
	if err != nil {
		return nil, fmt.Errorf("extracting text from %s: %w", filePath, err)
	}

	id := number
	if id == "" {
		base := filepath.Base(filePath)
		id = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if title == "" {
		title = id
	}

	abstract := truncateRunes(strings.TrimSpace(text), abstractChars)
	if abstract == "" {
		return nil, fmt.Errorf("no text extracted from %s", filePath)
	}

	return &patent.Patent{
		ID:          id,
		Title:       title,
		Abstract:    abstract,
		CountryCode: "US",
		RecordType:  patent.RecordTypeGranted,
		Source:      patent.SourcePDF,
		FetchedAt:   time.Now().UTC(),
	}, nil
}

// truncateRunes cuts s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

// findPatentNumber finds a normalized patent number in text.
func findPatentNumber(text string) string {
	matches := patentNumberPattern.FindAllStringSubmatch(text, -1)
	for _, m := range matches {
		num := strings.ReplaceAll(m[1], ",", "")
		num = strings.ReplaceAll(num, "/", "")
		if len(num) >= 7 {
			return num
		}
	}
	return ""
}

// isBoilerplateLine checks if a line is cover-sheet boilerplate rather
// than the invention title.
func isBoilerplateLine(line string) bool {
	lower := strings.ToLower(line)
	if strings.Contains(lower, "united states") {
		return true
	}
	if strings.Contains(lower, "patent no") || strings.Contains(lower, "pub. no") {
		return true
	}
	if strings.Contains(lower, "date of patent") || strings.Contains(lower, "pub. date") {
		return true
	}
	if strings.Contains(lower, "prior publication") || strings.Contains(lower, "references cited") {
		return true
	}
	return false
}
