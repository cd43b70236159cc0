package gpatents

import (
	"strings"
	"testing"

	"cloud.google.com/go/bigquery"

	"github.com/patentstack/patentstack/internal/patent"
)

func TestDateToInt(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"2021-05-04", 20210504},
		{"1999-12-31", 19991231},
		{"", 0},
		{"not-a-date", 0},
	}
	for _, tt := range tests {
		if got := dateToInt(tt.in); got != tt.want {
			t.Errorf("dateToInt(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestIntToDate(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{20210504, "2021-05-04"},
		{19991231, "1999-12-31"},
		{0, ""},
		{123, ""},
	}
	for _, tt := range tests {
		if got := intToDate(tt.in); got != tt.want {
			t.Errorf("intToDate(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildSQL(t *testing.T) {
	q := Query{
		Companies: []string{"Toshiba", "NEC"},
		CPCCodes:  []string{"G06N10/70"},
		StartDate: "2020-01-01",
		EndDate:   "2023-12-31",
		Limit:     500,
	}

	sql, params := buildSQL(q)

	if !strings.Contains(sql, publicationsTable) {
		t.Error("SQL should reference the publications table")
	}
	if !strings.Contains(sql, "LIMIT @row_limit") {
		t.Error("SQL should carry a LIMIT when the query sets one")
	}
	if !strings.Contains(sql, "c.code IN UNNEST(@cpc_codes)") {
		t.Error("SQL should filter on CPC codes when the query sets them")
	}

	byName := make(map[string]bigquery.QueryParameter)
	for _, p := range params {
		byName[p.Name] = p
	}

	if got := byName["start_date"].Value; got != int64(20200101) {
		t.Errorf("start_date = %v, want 20200101", got)
	}
	if got := byName["end_date"].Value; got != int64(20231231) {
		t.Errorf("end_date = %v, want 20231231", got)
	}
	patterns, ok := byName["company_patterns"].Value.([]string)
	if !ok || len(patterns) != 2 || patterns[0] != "%toshiba%" {
		t.Errorf("company_patterns = %v", byName["company_patterns"].Value)
	}
	codes, ok := byName["cpc_codes"].Value.([]string)
	if !ok || len(codes) != 1 || codes[0] != "G06N10/70" {
		t.Errorf("cpc_codes = %v", byName["cpc_codes"].Value)
	}
	exclude, ok := byName["exclude_countries"].Value.([]string)
	if !ok || len(exclude) != 1 || exclude[0] != "US" {
		t.Errorf("exclude_countries = %v, want default [US]", byName["exclude_countries"].Value)
	}
	if got := byName["row_limit"].Value; got != int64(500) {
		t.Errorf("row_limit = %v, want 500", got)
	}
}

func TestBuildSQLNoCPCFilter(t *testing.T) {
	sql, params := buildSQL(Query{
		Companies: []string{"ibm"},
		StartDate: "2020-01-01",
		EndDate:   "2020-12-31",
	})

	// An empty IN UNNEST matches no rows, so the clause must be absent
	// entirely when no codes were requested.
	if strings.Contains(sql, "@cpc_codes") {
		t.Error("SQL should not reference cpc_codes without a CPC filter")
	}
	if !strings.Contains(sql, "ARRAY(SELECT c.code FROM UNNEST(cpc) c)") {
		t.Error("SQL should still project all CPC codes")
	}
	for _, p := range params {
		if p.Name == "cpc_codes" {
			t.Error("cpc_codes parameter should be absent")
		}
	}
}

func TestBuildSQLNoLimit(t *testing.T) {
	sql, params := buildSQL(Query{StartDate: "2020-01-01", EndDate: "2021-01-01"})
	if strings.Contains(sql, "LIMIT") {
		t.Error("SQL should omit LIMIT when none is set")
	}
	for _, p := range params {
		if p.Name == "row_limit" {
			t.Error("row_limit parameter should be absent")
		}
	}
}

func TestEstimateUSD(t *testing.T) {
	tests := []struct {
		name  string
		bytes int64
		want  float64
	}{
		{"within free tier", bytesPerTB / 2, 0},
		{"exactly free tier", bytesPerTB, 0},
		{"one TB over", 2 * bytesPerTB, usdPerTB},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := estimateUSD(tt.bytes); got != tt.want {
				t.Errorf("estimateUSD(%d) = %v, want %v", tt.bytes, got, tt.want)
			}
		})
	}
}

func TestMapRow(t *testing.T) {
	r := &row{
		PublicationNumber: "JP-2021123456-A",
		PublicationDate:   bigquery.NullInt64{Int64: 20211001, Valid: true},
		FilingDate:        bigquery.NullInt64{Int64: 20200115, Valid: true},
		CountryCode:       bigquery.NullString{StringVal: "JP", Valid: true},
		KindCode:          bigquery.NullString{StringVal: "A", Valid: true},
		Assignee:          bigquery.NullString{StringVal: "TOSHIBA CORP", Valid: true},
		InventorName:      bigquery.NullString{StringVal: "Taro Yamada", Valid: true},
		CPCCodes:          []string{"G06N10/70"},
		Title:             bigquery.NullString{StringVal: "Quantum gate device", Valid: true},
		Abstract:          bigquery.NullString{StringVal: "A device implementing quantum gates.", Valid: true},
	}

	p, ok := mapRow(r)
	if !ok {
		t.Fatal("mapRow rejected a valid row")
	}
	if p.ID != "JP-2021123456-A" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.FilingDate != "2020-01-15" || p.PublicationDate != "2021-10-01" {
		t.Errorf("dates = %q / %q", p.FilingDate, p.PublicationDate)
	}
	if p.Source != patent.SourceBigQuery || p.RecordType != patent.RecordTypePublication {
		t.Errorf("Source = %q, RecordType = %q", p.Source, p.RecordType)
	}
	if p.CountryCode != "JP" {
		t.Errorf("CountryCode = %q", p.CountryCode)
	}
	if !strings.HasSuffix(p.URL, "JP-2021123456-A") {
		t.Errorf("URL = %q", p.URL)
	}
}

func TestMapRowMissingTitle(t *testing.T) {
	r := &row{PublicationNumber: "JP-1-A"}
	if _, ok := mapRow(r); ok {
		t.Error("row without a title should be dropped")
	}
}
