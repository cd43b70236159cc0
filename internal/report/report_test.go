package report

import (
	"testing"

	"github.com/patentstack/patentstack/internal/patent"
	"github.com/patentstack/patentstack/internal/storage"
)

func record(id, company, year, category, subcategory, method string) storage.ClassifiedPatent {
	return storage.ClassifiedPatent{
		Patent: patent.Patent{
			ID:              id,
			Title:           "t",
			Assignee:        company,
			PublicationDate: year + "-06-01",
		},
		Category:    category,
		Subcategory: subcategory,
		Method:      method,
	}
}

func sampleRecords() []storage.ClassifiedPatent {
	return []storage.ClassifiedPatent{
		record("1", "IBM", "2021", "Hardware", "processors", patent.MethodEmbedding),
		record("2", "IBM", "2021", "Hardware", "memory", patent.MethodEmbedding),
		record("3", "IBM", "2022", "Software", "compilers", patent.MethodKeyword),
		record("4", "Intel", "2022", "Hardware", "processors", patent.MethodEmbedding),
		record("5", "Intel", "2022", "", "", patent.MethodUnclassified),
	}
}

func TestBuildTotals(t *testing.T) {
	s := Build(sampleRecords())

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	if s.Classified != 4 || s.Unclassified != 1 {
		t.Errorf("Classified/Unclassified = %d/%d, want 4/1", s.Classified, s.Unclassified)
	}
	if s.ByMethod[patent.MethodEmbedding] != 3 {
		t.Errorf("embedding count = %d, want 3", s.ByMethod[patent.MethodEmbedding])
	}
	if s.ByMethod[patent.MethodKeyword] != 1 {
		t.Errorf("keyword count = %d, want 1", s.ByMethod[patent.MethodKeyword])
	}
}

func TestBuildDistributions(t *testing.T) {
	s := Build(sampleRecords())

	if len(s.Categories) != 2 || s.Categories[0].Label != "Hardware" || s.Categories[0].Count != 3 {
		t.Errorf("Categories = %v", s.Categories)
	}
	if s.Subcategories[0].Label != "Hardware/processors" || s.Subcategories[0].Count != 2 {
		t.Errorf("Subcategories = %v", s.Subcategories)
	}
	if s.Companies[0].Label != "IBM" || s.Companies[0].Count != 3 {
		t.Errorf("Companies = %v", s.Companies)
	}
}

func TestBuildYears(t *testing.T) {
	s := Build(sampleRecords())

	if len(s.Years) != 2 {
		t.Fatalf("Years = %v", s.Years)
	}
	// Ascending order.
	if s.Years[0].Year != 2021 || s.Years[0].Count != 2 {
		t.Errorf("Years[0] = %v", s.Years[0])
	}
	if s.Years[1].Year != 2022 || s.Years[1].Count != 3 {
		t.Errorf("Years[1] = %v", s.Years[1])
	}
}

func TestBuildCrossTab(t *testing.T) {
	s := Build(sampleRecords())

	ct := s.CompanyByCategory
	if len(ct.Companies) != 2 || len(ct.Categories) != 2 {
		t.Fatalf("cross-tab axes = %v x %v", ct.Companies, ct.Categories)
	}
	// IBM row: Hardware=2, Software=1.
	if ct.Companies[0] != "IBM" || ct.Counts[0][0] != 2 || ct.Counts[0][1] != 1 {
		t.Errorf("IBM row = %v", ct.Counts[0])
	}
	// Intel row: Hardware=1, Software=0. The unclassified record does
	// not contribute.
	if ct.Counts[1][0] != 1 || ct.Counts[1][1] != 0 {
		t.Errorf("Intel row = %v", ct.Counts[1])
	}
}

func TestBuildDeterministicTieBreak(t *testing.T) {
	records := []storage.ClassifiedPatent{
		record("1", "Zeta", "2021", "B", "x", patent.MethodKeyword),
		record("2", "Alpha", "2021", "A", "y", patent.MethodKeyword),
	}
	s := Build(records)

	// Equal counts sort by label ascending.
	if s.Categories[0].Label != "A" || s.Categories[1].Label != "B" {
		t.Errorf("Categories = %v", s.Categories)
	}
	if s.Companies[0].Label != "ALPHA" {
		t.Errorf("Companies = %v", s.Companies)
	}
}

func TestNormalizeCompany(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"IBM", "IBM"},
		{"IBM Corp.", "IBM"},
		{"ibm corporation", "IBM"},
		{"Toshiba Co., Ltd.", "TOSHIBA"},
		{"Acme   Widgets, Inc.", "ACME WIDGETS"},
		{"Cisco Systems!", "CISCO SYSTEMS"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := normalizeCompany(tt.in); got != tt.want {
			t.Errorf("normalizeCompany(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildMergesCompanyVariants(t *testing.T) {
	records := []storage.ClassifiedPatent{
		record("1", "IBM Corp.", "2021", "Hardware", "processors", patent.MethodEmbedding),
		record("2", "IBM", "2021", "Hardware", "memory", patent.MethodEmbedding),
		record("3", "International Business Machines Corporation", "2022", "Software", "compilers", patent.MethodKeyword),
	}
	s := Build(records)

	// Punctuation and suffix variants collapse into one row; distinct
	// legal names stay separate.
	if len(s.Companies) != 2 {
		t.Fatalf("Companies = %v, want 2 rows", s.Companies)
	}
	if s.Companies[0].Label != "IBM" || s.Companies[0].Count != 2 {
		t.Errorf("Companies[0] = %v, want IBM with 2", s.Companies[0])
	}

	ct := s.CompanyByCategory
	if len(ct.Companies) != 2 || ct.Companies[0] != "IBM" {
		t.Fatalf("cross-tab companies = %v", ct.Companies)
	}
	// IBM row spans both of its records' categories.
	if ct.Counts[0][0]+ct.Counts[0][1] != 2 {
		t.Errorf("IBM row = %v, want 2 total", ct.Counts[0])
	}
}

func TestBuildEmpty(t *testing.T) {
	s := Build(nil)
	if s.Total != 0 || len(s.Categories) != 0 || len(s.Years) != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestBuildMissingAssignee(t *testing.T) {
	s := Build([]storage.ClassifiedPatent{record("1", "", "2021", "A", "x", patent.MethodKeyword)})
	if s.Companies[0].Label != "(unknown)" {
		t.Errorf("Companies = %v", s.Companies)
	}
}
