package gpatents

import (
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"

	"github.com/patentstack/patentstack/internal/patent"
)

// row is one result row from the publications query.
type row struct {
	PublicationNumber string              `bigquery:"publication_number"`
	PublicationDate   bigquery.NullInt64  `bigquery:"publication_date"`
	FilingDate        bigquery.NullInt64  `bigquery:"filing_date"`
	CountryCode       bigquery.NullString `bigquery:"country_code"`
	KindCode          bigquery.NullString `bigquery:"kind_code"`
	ApplicationNumber bigquery.NullString `bigquery:"application_number"`
	Assignee          bigquery.NullString `bigquery:"assignee"`
	InventorName      bigquery.NullString `bigquery:"inventor_name"`
	CPCCodes          []string            `bigquery:"cpc_codes"`
	Title             bigquery.NullString `bigquery:"title"`
	Abstract          bigquery.NullString `bigquery:"abstract"`
}

// intToDate converts the dataset's YYYYMMDD integers to ISO dates.
// Zero or malformed values become empty strings.
func intToDate(n int64) string {
	if n < 10000101 || n > 99991231 {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", n/10000, (n/100)%100, n%100)
}

// mapRow converts a result row into a patent record. Rows without a
// publication number or title are dropped.
func mapRow(r *row) (patent.Patent, bool) {
	title := strings.TrimSpace(r.Title.StringVal)
	if r.PublicationNumber == "" || title == "" {
		return patent.Patent{}, false
	}

	return patent.Patent{
		ID:                r.PublicationNumber,
		ApplicationNumber: r.ApplicationNumber.StringVal,
		Title:             title,
		Abstract:          strings.TrimSpace(r.Abstract.StringVal),
		FilingDate:        intToDate(r.FilingDate.Int64),
		PublicationDate:   intToDate(r.PublicationDate.Int64),
		Assignee:          strings.TrimSpace(r.Assignee.StringVal),
		Inventors:         strings.TrimSpace(r.InventorName.StringVal),
		CPCCodes:          r.CPCCodes,
		CountryCode:       r.CountryCode.StringVal,
		KindCode:          r.KindCode.StringVal,
		RecordType:        patent.RecordTypePublication,
		Source:            patent.SourceBigQuery,
		URL:               "https://patents.google.com/patent/" + r.PublicationNumber,
		FetchedAt:         time.Now().UTC(),
	}, true
}
