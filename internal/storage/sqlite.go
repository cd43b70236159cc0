package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite cache database.
type DB struct {
	db *sql.DB
}

// OpenDB opens or creates a SQLite database at the given path.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite doesn't support concurrent writes
	db.SetMaxOpenConns(1)

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// createSchema creates the database schema if it doesn't exist.
func createSchema(db *sql.DB) error {
	schema := `
		-- Main patents table
		CREATE TABLE IF NOT EXISTS patents (
			id TEXT PRIMARY KEY,
			application_number TEXT,
			title TEXT NOT NULL,
			abstract TEXT,
			filing_date TEXT,
			publication_date TEXT,
			assignee TEXT,
			assignee_city TEXT,
			assignee_state TEXT,
			assignee_country TEXT,
			inventors TEXT,
			cpc_codes_json TEXT,
			country_code TEXT,
			kind_code TEXT,
			record_type TEXT NOT NULL,
			source TEXT NOT NULL,
			url TEXT,
			fetched_at TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_patents_assignee ON patents(assignee);
		CREATE INDEX IF NOT EXISTS idx_patents_publication_date ON patents(publication_date);

		-- Full-text search virtual table (standalone, not external content)
		CREATE VIRTUAL TABLE IF NOT EXISTS patents_fts USING fts5(
			id,
			title,
			abstract,
			assignee
		);

		-- One classification per patent, rewritten on every classify run
		CREATE TABLE IF NOT EXISTS classifications (
			patent_id TEXT PRIMARY KEY,
			category TEXT,
			subcategory TEXT,
			confidence REAL,
			method TEXT NOT NULL,
			model_name TEXT,
			threshold REAL,
			classified_at TEXT
		);

		CREATE TABLE IF NOT EXISTS _meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);
	`

	_, err := db.Exec(schema)
	return err
}

// RebuildFromJSONL clears the database and rebuilds it from the JSONL
// files. Returns the number of patents loaded.
func (d *DB) RebuildFromJSONL(patentsPath, resultsPath string) (int, error) {
	patents, err := ReadPatents(patentsPath)
	if err != nil {
		return 0, fmt.Errorf("reading patents: %w", err)
	}
	results, err := ReadClassifications(resultsPath)
	if err != nil {
		return 0, fmt.Errorf("reading results: %w", err)
	}

	for _, table := range []string{"patents", "patents_fts", "classifications"} {
		if _, err := d.db.Exec("DELETE FROM " + table); err != nil {
			return 0, fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	patentStmt, err := d.db.Prepare(`
		INSERT INTO patents (
			id, application_number, title, abstract,
			filing_date, publication_date,
			assignee, assignee_city, assignee_state, assignee_country,
			inventors, cpc_codes_json, country_code, kind_code,
			record_type, source, url, fetched_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing patents insert: %w", err)
	}
	defer patentStmt.Close()

	ftsStmt, err := d.db.Prepare(`
		INSERT INTO patents_fts (id, title, abstract, assignee)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing fts insert: %w", err)
	}
	defer ftsStmt.Close()

	for _, p := range patents {
		var cpcJSON []byte
		if len(p.CPCCodes) > 0 {
			cpcJSON, err = json.Marshal(p.CPCCodes)
			if err != nil {
				return 0, fmt.Errorf("marshaling CPC codes for %s: %w", p.ID, err)
			}
		}

		if _, err := patentStmt.Exec(
			p.ID, p.ApplicationNumber, p.Title, p.Abstract,
			p.FilingDate, p.PublicationDate,
			p.Assignee, p.AssigneeCity, p.AssigneeState, p.AssigneeCountry,
			p.Inventors, string(cpcJSON), p.CountryCode, p.KindCode,
			p.RecordType, p.Source, p.URL, p.FetchedAt.Format(time.RFC3339),
		); err != nil {
			return 0, fmt.Errorf("inserting patent %s: %w", p.ID, err)
		}

		if _, err := ftsStmt.Exec(p.ID, p.Title, p.Abstract, p.Assignee); err != nil {
			return 0, fmt.Errorf("indexing patent %s: %w", p.ID, err)
		}
	}

	clsStmt, err := d.db.Prepare(`
		INSERT OR REPLACE INTO classifications (
			patent_id, category, subcategory, confidence,
			method, model_name, threshold, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("preparing classifications insert: %w", err)
	}
	defer clsStmt.Close()

	for _, c := range results {
		if _, err := clsStmt.Exec(
			c.PatentID, c.Category, c.Subcategory, c.Confidence,
			c.Method, c.ModelName, c.Threshold, c.ClassifiedAt.Format(time.RFC3339),
		); err != nil {
			return 0, fmt.Errorf("inserting classification %s: %w", c.PatentID, err)
		}
	}

	return len(patents), nil
}

// GetStoredHash retrieves the JSONL hash from the _meta table.
func (d *DB) GetStoredHash() (string, error) {
	var hash sql.NullString
	err := d.db.QueryRow("SELECT value FROM _meta WHERE key = 'jsonl_hash'").Scan(&hash)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return hash.String, nil
}

// SetStoredHash stores the JSONL hash in the _meta table.
func (d *DB) SetStoredHash(hash string) error {
	_, err := d.db.Exec(`INSERT OR REPLACE INTO _meta (key, value) VALUES ('jsonl_hash', ?)`, hash)
	return err
}

// SourceHash combines the hashes of both JSONL files into one staleness key.
func SourceHash(patentsPath, resultsPath string) (string, error) {
	ph, err := ComputeJSONLHash(patentsPath)
	if err != nil {
		return "", err
	}
	rh, err := ComputeJSONLHash(resultsPath)
	if err != nil {
		return "", err
	}
	return ph + ":" + rh, nil
}

// EnsureFresh rebuilds the cache when the JSONL files have changed since
// the last rebuild. Returns true if a rebuild happened.
func (d *DB) EnsureFresh(patentsPath, resultsPath string) (bool, error) {
	current, err := SourceHash(patentsPath, resultsPath)
	if err != nil {
		return false, err
	}

	stored, err := d.GetStoredHash()
	if err != nil {
		return false, err
	}
	if stored == current {
		return false, nil
	}

	if _, err := d.RebuildFromJSONL(patentsPath, resultsPath); err != nil {
		return false, err
	}
	if err := d.SetStoredHash(current); err != nil {
		return false, err
	}
	return true, nil
}

// PrepareFTSQuery escapes special characters for FTS5 queries.
func PrepareFTSQuery(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	// If query contains special chars, quote it
	if strings.ContainsAny(query, "\"*+-:(){}[]^~") {
		query = strings.ReplaceAll(query, "\"", "\"\"")
		return "\"" + query + "\""
	}

	return query
}

// unmarshalCPC decodes the stored CPC JSON, tolerating empty values.
func unmarshalCPC(cpcJSON string) []string {
	if cpcJSON == "" {
		return nil
	}
	var codes []string
	if err := json.Unmarshal([]byte(cpcJSON), &codes); err != nil {
		return nil
	}
	return codes
}

// parseTime parses an RFC3339 timestamp, tolerating empty values.
func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}
