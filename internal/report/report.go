// Package report aggregates classified patents into portfolio summaries.
// All functions are pure: they take records and return counts, leaving
// presentation to the CLI and viz layers.
package report

import (
	"sort"
	"strings"

	"github.com/patentstack/patentstack/internal/patent"
	"github.com/patentstack/patentstack/internal/storage"
)

// LabelCount is one bucket in a distribution, ordered by count descending.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// YearCount is one year's record count, ordered by year ascending.
type YearCount struct {
	Year  int `json:"year"`
	Count int `json:"count"`
}

// CrossTab counts patents per company per category. Rows follow Companies,
// columns follow Categories.
type CrossTab struct {
	Companies  []string `json:"companies"`
	Categories []string `json:"categories"`
	Counts     [][]int  `json:"counts"`
}

// Summary is the full portfolio report.
type Summary struct {
	Total        int            `json:"total"`
	Classified   int            `json:"classified"`
	Unclassified int            `json:"unclassified"`
	ByMethod     map[string]int `json:"by_method"`

	Categories    []LabelCount `json:"categories"`
	Subcategories []LabelCount `json:"subcategories"`
	Companies     []LabelCount `json:"companies"`
	Years         []YearCount  `json:"years"`

	CompanyByCategory CrossTab `json:"company_by_category"`
}

// topCompanies caps the company axis of the cross-tab; the distributions
// themselves are unbounded.
const topCompanies = 15

// Build aggregates classified patents into a summary.
func Build(records []storage.ClassifiedPatent) *Summary {
	s := &Summary{
		Total:    len(records),
		ByMethod: make(map[string]int),
	}

	categories := make(map[string]int)
	subcategories := make(map[string]int)
	companies := make(map[string]int)
	years := make(map[int]int)
	cross := make(map[string]map[string]int)

	for _, r := range records {
		method := r.Method
		if method == "" {
			method = patent.MethodUnclassified
		}
		s.ByMethod[method]++

		if r.Classified() {
			s.Classified++
			categories[r.Category]++
			subcategories[r.Category+"/"+r.Subcategory]++
		} else {
			s.Unclassified++
		}

		company := normalizeCompany(r.Assignee)
		if company == "" {
			company = "(unknown)"
		}
		companies[company]++

		if year := r.Year(); year > 0 {
			years[year]++
		}

		if r.Classified() {
			if cross[company] == nil {
				cross[company] = make(map[string]int)
			}
			cross[company][r.Category]++
		}
	}

	s.Categories = sortedCounts(categories)
	s.Subcategories = sortedCounts(subcategories)
	s.Companies = sortedCounts(companies)
	s.Years = sortedYears(years)
	s.CompanyByCategory = buildCrossTab(cross, s.Categories, s.Companies)

	return s
}

// companySuffixes are trailing corporate designators dropped during
// normalization, tried in order.
var companySuffixes = []string{
	" INC", " LLC", " LTD", " CORP", " CORPORATION",
	" COMPANY", " CO", " LIMITED", " INCORPORATED",
}

var companyPunctuation = strings.NewReplacer(",", "", ".", "", "!", "")

// normalizeCompany folds assignee name variants into one bucket: uppercase,
// punctuation removed, corporate suffixes stripped, whitespace collapsed.
// "IBM Corp." and "IBM" count as the same company.
func normalizeCompany(name string) string {
	n := companyPunctuation.Replace(strings.ToUpper(name))
	for _, suffix := range companySuffixes {
		n = strings.TrimSuffix(n, suffix)
	}
	return strings.Join(strings.Fields(n), " ")
}

// sortedCounts orders a distribution by count descending, name ascending
// on ties, so reports are deterministic.
func sortedCounts(counts map[string]int) []LabelCount {
	out := make([]LabelCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, LabelCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

func sortedYears(counts map[int]int) []YearCount {
	out := make([]YearCount, 0, len(counts))
	for year, count := range counts {
		out = append(out, YearCount{Year: year, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// buildCrossTab lays the company x category counts onto fixed axes. Only
// the top companies by volume appear as rows.
func buildCrossTab(cross map[string]map[string]int, categories, companies []LabelCount) CrossTab {
	ct := CrossTab{}
	for _, c := range categories {
		ct.Categories = append(ct.Categories, c.Label)
	}
	for i, c := range companies {
		if i >= topCompanies {
			break
		}
		ct.Companies = append(ct.Companies, c.Label)
	}

	for _, company := range ct.Companies {
		row := make([]int, len(ct.Categories))
		for j, category := range ct.Categories {
			row[j] = cross[company][category]
		}
		ct.Counts = append(ct.Counts, row)
	}
	return ct
}
