package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/patentstack/patentstack/internal/patent"
)

// ErrNotFound indicates the patent is not in the cache.
var ErrNotFound = errors.New("patent not found")

// ClassifiedPatent joins a patent record with its classification, if any.
type ClassifiedPatent struct {
	patent.Patent
	Category    string  `json:"category,omitempty"`
	Subcategory string  `json:"subcategory,omitempty"`
	Confidence  float32 `json:"confidence,omitempty"`
	Method      string  `json:"method,omitempty"`
}

// Classified reports whether the record carries a label.
func (cp ClassifiedPatent) Classified() bool {
	return cp.Category != "" && cp.Subcategory != ""
}

// selectFields is the standard field list for patent SELECT queries.
const selectFields = `p.id, p.application_number, p.title, p.abstract,
	p.filing_date, p.publication_date,
	p.assignee, p.assignee_city, p.assignee_state, p.assignee_country,
	p.inventors, p.cpc_codes_json, p.country_code, p.kind_code,
	p.record_type, p.source, p.url, p.fetched_at,
	c.category, c.subcategory, c.confidence, c.method`

const fromJoined = `FROM patents p LEFT JOIN classifications c ON c.patent_id = p.id`

// ListFilter narrows a patent listing. Zero values mean no filtering.
type ListFilter struct {
	Company      string
	Year         int
	Category     string
	Subcategory  string
	Source       string
	Unclassified bool
	Limit        int
}

// GetPatent fetches one patent with its classification by ID.
func (d *DB) GetPatent(id string) (*ClassifiedPatent, error) {
	row := d.db.QueryRow("SELECT "+selectFields+" "+fromJoined+" WHERE p.id = ?", id)

	cp, err := scanClassifiedPatent(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying patent: %w", err)
	}
	return cp, nil
}

// ListPatents returns patents matching the filter, newest first.
func (d *DB) ListPatents(filter ListFilter) ([]ClassifiedPatent, error) {
	var conds []string
	var args []any

	if filter.Company != "" {
		conds = append(conds, "p.assignee LIKE ?")
		args = append(args, "%"+filter.Company+"%")
	}
	if filter.Year > 0 {
		conds = append(conds, "substr(COALESCE(NULLIF(p.publication_date, ''), p.filing_date), 1, 4) = ?")
		args = append(args, strconv.Itoa(filter.Year))
	}
	if filter.Category != "" {
		conds = append(conds, "c.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Subcategory != "" {
		conds = append(conds, "c.subcategory = ?")
		args = append(args, filter.Subcategory)
	}
	if filter.Source != "" {
		conds = append(conds, "p.source = ?")
		args = append(args, filter.Source)
	}
	if filter.Unclassified {
		conds = append(conds, "(c.category IS NULL OR c.category = '')")
	}

	query := "SELECT " + selectFields + " " + fromJoined
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY p.publication_date DESC, p.id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing patents: %w", err)
	}
	defer rows.Close()

	return scanAll(rows)
}

// SearchPatents runs a full-text search over titles, abstracts, and
// assignees, returning matches joined with their classifications.
func (d *DB) SearchPatents(query string, limit int) ([]ClassifiedPatent, error) {
	fts := PrepareFTSQuery(query)
	if fts == "" {
		return nil, nil
	}
	if limit <= 0 {
		limit = 50
	}

	rows, err := d.db.Query(`
		SELECT `+selectFields+`
		FROM patents_fts f
		JOIN patents p ON p.id = f.id
		LEFT JOIN classifications c ON c.patent_id = p.id
		WHERE patents_fts MATCH ?
		ORDER BY rank
		LIMIT ?`, fts, limit)
	if err != nil {
		return nil, fmt.Errorf("searching patents: %w", err)
	}
	defer rows.Close()

	return scanAll(rows)
}

// CountPatents returns the number of cached patents.
func (d *DB) CountPatents() (int, error) {
	var count int
	if err := d.db.QueryRow("SELECT COUNT(*) FROM patents").Scan(&count); err != nil {
		return 0, fmt.Errorf("counting patents: %w", err)
	}
	return count, nil
}

// scanner abstracts sql.Row and sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanClassifiedPatent(s scanner) (*ClassifiedPatent, error) {
	var cp ClassifiedPatent
	var cpcJSON, fetchedAt string
	var category, subcategory, method sql.NullString
	var confidence sql.NullFloat64

	err := s.Scan(
		&cp.ID, &cp.ApplicationNumber, &cp.Title, &cp.Abstract,
		&cp.FilingDate, &cp.PublicationDate,
		&cp.Assignee, &cp.AssigneeCity, &cp.AssigneeState, &cp.AssigneeCountry,
		&cp.Inventors, &cpcJSON, &cp.CountryCode, &cp.KindCode,
		&cp.RecordType, &cp.Source, &cp.URL, &fetchedAt,
		&category, &subcategory, &confidence, &method,
	)
	if err != nil {
		return nil, err
	}

	cp.CPCCodes = unmarshalCPC(cpcJSON)
	cp.FetchedAt = parseTime(fetchedAt)
	cp.Category = category.String
	cp.Subcategory = subcategory.String
	cp.Confidence = float32(confidence.Float64)
	cp.Method = method.String

	return &cp, nil
}

func scanAll(rows *sql.Rows) ([]ClassifiedPatent, error) {
	var results []ClassifiedPatent
	for rows.Next() {
		cp, err := scanClassifiedPatent(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, *cp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return results, nil
}
