package patentsview

// SearchQuery describes a patent search: which companies, which date range,
// and optionally which CPC codes to restrict to.
type SearchQuery struct {
	// Companies are assignee organization names, matched with full-text OR.
	Companies []string

	// StartDate and EndDate bound the grant/publication date, inclusive,
	// in YYYY-MM-DD form.
	StartDate string
	EndDate   string

	// CPCCodes restricts results to exact CPC group codes at issue
	// (e.g. "G06N10/70"). Empty means no CPC filter.
	CPCCodes []string

	// MaxRecords caps the number of records fetched across pages.
	// Zero means DefaultMaxRecords.
	MaxRecords int
}

// patentFields are the fields requested from the /patent/ endpoint.
var patentFields = []string{
	"patent_id",
	"patent_title",
	"patent_abstract",
	"patent_date",
	"patent_type",
	"application.application_number",
	"application.filing_date",
	"assignees.assignee_organization",
	"assignees.assignee_city",
	"assignees.assignee_state",
	"assignees.assignee_country",
	"inventors.inventor_name_first",
	"inventors.inventor_name_last",
	"cpc_at_issue.cpc_group_id",
}

// publicationFields are the fields requested from the /publication/ endpoint.
var publicationFields = []string{
	"document_number",
	"publication_title",
	"publication_abstract",
	"publication_date",
	"publication_type",
	"assignees.assignee_organization",
	"assignees.assignee_city",
	"assignees.assignee_state",
	"assignees.assignee_country",
	"inventors.inventor_name_first",
	"inventors.inventor_name_last",
	"cpc_at_issue.cpc_group_id",
}

// buildQuery assembles the PatentsView q clause for the given date field.
// Clauses are ANDed: company full-text OR, date bounds, optional CPC OR.
func buildQuery(q SearchQuery, dateField string) map[string]any {
	var clauses []map[string]any

	if len(q.Companies) > 0 {
		var companyOr []map[string]any
		for _, company := range q.Companies {
			companyOr = append(companyOr, map[string]any{
				"_text_any": map[string]any{"assignees.assignee_organization": company},
			})
		}
		clauses = append(clauses, map[string]any{"_or": companyOr})
	}

	if q.StartDate != "" {
		clauses = append(clauses, map[string]any{
			"_gte": map[string]any{dateField: q.StartDate},
		})
	}
	if q.EndDate != "" {
		clauses = append(clauses, map[string]any{
			"_lte": map[string]any{dateField: q.EndDate},
		})
	}

	if len(q.CPCCodes) > 0 {
		var cpcOr []map[string]any
		for _, code := range q.CPCCodes {
			cpcOr = append(cpcOr, map[string]any{
				"cpc_at_issue.cpc_group_id": code,
			})
		}
		clauses = append(clauses, map[string]any{"_or": cpcOr})
	}

	if len(clauses) == 1 {
		return clauses[0]
	}
	return map[string]any{"_and": clauses}
}

// buildRequest assembles the full {q, f, o} request body. A non-empty after
// value continues cursor pagination from the given sort key.
func buildRequest(q SearchQuery, dateField string, fields []string, idField, after string) map[string]any {
	opts := map[string]any{"size": PageSize, "exclude_withdrawn": true}
	if after != "" {
		opts["after"] = after
	}

	return map[string]any{
		"q": buildQuery(q, dateField),
		"f": fields,
		"o": opts,
		"s": []map[string]string{{idField: "asc"}},
	}
}
