// Package export writes classified patent records to CSV and JSONL files
// for use in spreadsheets and downstream analysis tools.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/patentstack/patentstack/internal/storage"
)

// csvColumns is the fixed CSV column order. Classification columns come
// last so the patent fields line up with raw fetch exports.
var csvColumns = []string{
	"patent_id",
	"application_number",
	"title",
	"abstract",
	"filing_date",
	"publication_date",
	"country_code",
	"kind_code",
	"record_type",
	"assignee",
	"assignee_city",
	"assignee_state",
	"assignee_country",
	"inventors",
	"cpc_codes",
	"data_source",
	"patent_url",
	"category",
	"subcategory",
	"confidence",
	"method",
}

// WriteCSV writes records as CSV with a header row.
func WriteCSV(w io.Writer, records []storage.ClassifiedPatent) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvColumns); err != nil {
		return fmt.Errorf("writing CSV header: %w", err)
	}

	for _, r := range records {
		if err := cw.Write(csvRow(r)); err != nil {
			return fmt.Errorf("writing CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// csvRow flattens one record into the csvColumns order.
func csvRow(r storage.ClassifiedPatent) []string {
	confidence := ""
	if r.Classified() {
		confidence = strconv.FormatFloat(float64(r.Confidence), 'f', 4, 32)
	}

	return []string{
		r.ID,
		r.ApplicationNumber,
		r.Title,
		r.Abstract,
		r.FilingDate,
		r.PublicationDate,
		r.CountryCode,
		r.KindCode,
		r.RecordType,
		r.Assignee,
		r.AssigneeCity,
		r.AssigneeState,
		r.AssigneeCountry,
		r.Inventors,
		strings.Join(r.CPCCodes, ";"),
		r.Source,
		r.URL,
		r.Category,
		r.Subcategory,
		confidence,
		r.Method,
	}
}

// WriteJSONL writes records as one JSON object per line.
func WriteJSONL(w io.Writer, records []storage.ClassifiedPatent) error {
	enc := json.NewEncoder(w)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("writing JSONL record: %w", err)
		}
	}
	return nil
}

// Formats supported by the export command.
const (
	FormatCSV   = "csv"
	FormatJSONL = "jsonl"
)

// Write dispatches on format.
func Write(w io.Writer, format string, records []storage.ClassifiedPatent) error {
	switch format {
	case FormatCSV:
		return WriteCSV(w, records)
	case FormatJSONL:
		return WriteJSONL(w, records)
	default:
		return fmt.Errorf("unknown export format %q (use csv or jsonl)", format)
	}
}
