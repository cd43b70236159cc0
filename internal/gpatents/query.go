package gpatents

import (
	"strings"

	"cloud.google.com/go/bigquery"
)

// publicationsTable is the Google Patents public dataset table queried.
const publicationsTable = "patents-public-data.patents.publications"

// Query describes an international patent fetch.
type Query struct {
	// Companies are assignee names, matched case-insensitively as
	// substrings against harmonized assignee names.
	Companies []string

	// CPCCodes are exact CPC codes (e.g. "G06N10/70") at least one of
	// which must appear on the publication.
	CPCCodes []string

	// StartDate and EndDate bound the filing date, inclusive, YYYY-MM-DD.
	StartDate string
	EndDate   string

	// ExcludeCountries drops publications from these country codes.
	// Defaults to US, which is covered by PatentsView.
	ExcludeCountries []string

	// Limit caps the number of rows. Zero means no LIMIT clause.
	Limit int
}

// dateToInt converts YYYY-MM-DD to the dataset's YYYYMMDD integer form.
func dateToInt(date string) int64 {
	digits := strings.ReplaceAll(date, "-", "")
	var n int64
	for _, r := range digits {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int64(r-'0')
	}
	return n
}

// buildSQL assembles the parameterized query over the publications table.
// Title and abstract take the English localization when present, falling
// back to the first available localization.
func buildSQL(q Query) (string, []bigquery.QueryParameter) {
	exclude := q.ExcludeCountries
	if len(exclude) == 0 {
		exclude = []string{"US"}
	}

	patterns := make([]string, len(q.Companies))
	for i, company := range q.Companies {
		patterns[i] = "%" + strings.ToLower(company) + "%"
	}

	// Without a CPC filter, IN UNNEST([]) matches nothing, so the clause
	// and the narrowed projection only appear when codes are given.
	cpcProjection := "ARRAY(SELECT c.code FROM UNNEST(cpc) c)"
	if len(q.CPCCodes) > 0 {
		cpcProjection = "ARRAY(SELECT c.code FROM UNNEST(cpc) c WHERE c.code IN UNNEST(@cpc_codes))"
	}

	var b strings.Builder
	b.WriteString(`SELECT
  publication_number,
  publication_date,
  filing_date,
  country_code,
  kind_code,
  application_number,
  (SELECT a.name FROM UNNEST(assignee_harmonized) a LIMIT 1) AS assignee,
  (SELECT i.name FROM UNNEST(inventor_harmonized) i LIMIT 1) AS inventor_name,
  ` + cpcProjection + ` AS cpc_codes,
  COALESCE(
    (SELECT t.text FROM UNNEST(title_localized) t WHERE t.language = 'en' LIMIT 1),
    (SELECT t.text FROM UNNEST(title_localized) t LIMIT 1)
  ) AS title,
  COALESCE(
    (SELECT a.text FROM UNNEST(abstract_localized) a WHERE a.language = 'en' LIMIT 1),
    (SELECT a.text FROM UNNEST(abstract_localized) a LIMIT 1)
  ) AS abstract
FROM ` + "`" + publicationsTable + "`" + `
WHERE filing_date >= @start_date
  AND filing_date <= @end_date
  AND country_code NOT IN UNNEST(@exclude_countries)
  AND EXISTS (
    SELECT 1 FROM UNNEST(assignee_harmonized) a, UNNEST(@company_patterns) p
    WHERE LOWER(a.name) LIKE p
  )`)

	if len(q.CPCCodes) > 0 {
		b.WriteString(`
  AND EXISTS (
    SELECT 1 FROM UNNEST(cpc) c WHERE c.code IN UNNEST(@cpc_codes)
  )`)
	}

	b.WriteString("\nORDER BY filing_date DESC")

	if q.Limit > 0 {
		b.WriteString("\nLIMIT @row_limit")
	}

	params := []bigquery.QueryParameter{
		{Name: "start_date", Value: dateToInt(q.StartDate)},
		{Name: "end_date", Value: dateToInt(q.EndDate)},
		{Name: "exclude_countries", Value: exclude},
		{Name: "company_patterns", Value: patterns},
	}
	if len(q.CPCCodes) > 0 {
		params = append(params, bigquery.QueryParameter{Name: "cpc_codes", Value: q.CPCCodes})
	}
	if q.Limit > 0 {
		params = append(params, bigquery.QueryParameter{Name: "row_limit", Value: int64(q.Limit)})
	}

	return b.String(), params
}
