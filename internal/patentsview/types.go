// Package patentsview fetches patent records from the USPTO PatentsView
// Search API. Two endpoints are supported: granted patents and pre-grant
// publications, which expose the same data under different field names.
package patentsview

// rawAssignee is an assignee record as returned by the API.
type rawAssignee struct {
	Organization string `json:"assignee_organization"`
	City         string `json:"assignee_city"`
	State        string `json:"assignee_state"`
	Country      string `json:"assignee_country"`
}

// rawInventor is an inventor record as returned by the API.
type rawInventor struct {
	FirstName string `json:"inventor_name_first"`
	LastName  string `json:"inventor_name_last"`
}

// rawCPC is a CPC classification entry as returned by the API.
type rawCPC struct {
	GroupID string `json:"cpc_group_id"`
}

// rawApplication is the nested application record on granted patents.
type rawApplication struct {
	ApplicationNumber string `json:"application_number"`
	FilingDate        string `json:"filing_date"`
}

// rawPatent is a granted patent record from the /patent/ endpoint.
type rawPatent struct {
	PatentID    string           `json:"patent_id"`
	Title       string           `json:"patent_title"`
	Abstract    string           `json:"patent_abstract"`
	Date        string           `json:"patent_date"`
	KindCode    string           `json:"patent_type"`
	Application []rawApplication `json:"application"`
	Assignees   []rawAssignee    `json:"assignees"`
	Inventors   []rawInventor    `json:"inventors"`
	CPCAtIssue  []rawCPC         `json:"cpc_at_issue"`
}

// rawPublication is a pre-grant publication record from the /publication/
// endpoint. Same shape as rawPatent but with publication_* field names.
type rawPublication struct {
	DocumentNumber string        `json:"document_number"`
	Title          string        `json:"publication_title"`
	Abstract       string        `json:"publication_abstract"`
	Date           string        `json:"publication_date"`
	KindCode       string        `json:"publication_type"`
	Assignees      []rawAssignee `json:"assignees"`
	Inventors      []rawInventor `json:"inventors"`
	CPCAtIssue     []rawCPC      `json:"cpc_at_issue"`
}

// patentsResponse is the envelope for /patent/ search responses.
type patentsResponse struct {
	Error     bool        `json:"error"`
	Count     int         `json:"count"`
	TotalHits int         `json:"total_hits"`
	Patents   []rawPatent `json:"patents"`
}

// publicationsResponse is the envelope for /publication/ search responses.
type publicationsResponse struct {
	Error        bool             `json:"error"`
	Count        int              `json:"count"`
	TotalHits    int              `json:"total_hits"`
	Publications []rawPublication `json:"publications"`
}

// FetchStats summarizes one search call.
type FetchStats struct {
	TotalHits int `json:"total_hits"`
	Fetched   int `json:"fetched"`
	Skipped   int `json:"skipped"` // malformed records dropped during mapping
	Pages     int `json:"pages"`
}
