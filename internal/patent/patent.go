// Package patent defines the core patent record and classification types.
package patent

import (
	"strconv"
	"strings"
	"time"
)

// Record types distinguish granted patents from pre-grant publications.
const (
	RecordTypeGranted     = "granted_patent"
	RecordTypePublication = "pre_grant_publication"
)

// Data sources a record can originate from.
const (
	SourceUSPTOPatents      = "uspto_patents"
	SourceUSPTOPublications = "uspto_publications"
	SourceBigQuery          = "bigquery"
	SourcePDF               = "pdf"
)

// Patent is a single patent record. Records are immutable once fetched;
// re-fetching produces a new record rather than mutating an existing one.
type Patent struct {
	// ID is the patent number for granted patents or the document number
	// for pre-grant publications. Unique within a workspace.
	ID string `json:"id"`

	// ApplicationNumber links granted patents and pre-grant publications
	// of the same invention.
	ApplicationNumber string `json:"application_number,omitempty"`

	Title    string `json:"title"`
	Abstract string `json:"abstract,omitempty"`

	// Dates are ISO 8601 (YYYY-MM-DD) strings as returned by the sources.
	FilingDate      string `json:"filing_date,omitempty"`
	PublicationDate string `json:"publication_date,omitempty"`

	Assignee        string `json:"assignee,omitempty"`
	AssigneeCity    string `json:"assignee_city,omitempty"`
	AssigneeState   string `json:"assignee_state,omitempty"`
	AssigneeCountry string `json:"assignee_country,omitempty"`
	Inventors       string `json:"inventors,omitempty"`

	// CPCCodes lists Cooperative Patent Classification group IDs in the
	// order the source reported them.
	CPCCodes []string `json:"cpc_codes,omitempty"`

	CountryCode string `json:"country_code,omitempty"`
	KindCode    string `json:"kind_code,omitempty"`
	RecordType  string `json:"record_type"`
	Source      string `json:"source"`
	URL         string `json:"url,omitempty"`

	FetchedAt time.Time `json:"fetched_at"`
}

// Text returns the text used for classification: title and abstract
// joined by a space.
func (p Patent) Text() string {
	return strings.TrimSpace(p.Title + " " + p.Abstract)
}

// Year returns the year of the filing date, falling back to the
// publication date. Returns 0 when both are missing or malformed.
func (p Patent) Year() int {
	for _, date := range []string{p.FilingDate, p.PublicationDate} {
		if len(date) < 4 {
			continue
		}
		if year, err := strconv.Atoi(date[:4]); err == nil {
			return year
		}
	}
	return 0
}

// IsGranted reports whether the record is a granted patent.
func (p Patent) IsGranted() bool {
	return p.RecordType == RecordTypeGranted
}
