package patentsview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/patentstack/patentstack/internal/patent"
)

// capturedRequest records the body of one search request.
type capturedRequest struct {
	Q map[string]any   `json:"q"`
	F []string         `json:"f"`
	O map[string]any   `json:"o"`
	S []map[string]any `json:"s"`
}

func sampleQuery() SearchQuery {
	return SearchQuery{
		Companies: []string{"IBM", "Intel"},
		StartDate: "2020-01-01",
		EndDate:   "2023-12-31",
	}
}

func TestSearchPatents(t *testing.T) {
	var captured capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointPatents {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("X-Api-Key"); got != "test-key" {
			t.Errorf("X-Api-Key = %q, want test-key", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}

		json.NewEncoder(w).Encode(patentsResponse{
			Count:     2,
			TotalHits: 2,
			Patents: []rawPatent{
				{
					PatentID: "11000001",
					Title:    "Quantum error correction circuit",
					Abstract: "A circuit for correcting qubit errors.",
					Date:     "2021-05-04",
					Assignees: []rawAssignee{
						{Organization: "IBM", City: "Armonk", State: "NY", Country: "US"},
					},
					Inventors:  []rawInventor{{FirstName: "Ada", LastName: "Lovelace"}},
					CPCAtIssue: []rawCPC{{GroupID: "G06N10/70"}, {GroupID: "G06N10/70"}},
				},
				{
					// Missing title: dropped by the mapper.
					PatentID: "11000002",
					Date:     "2021-06-01",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL), WithAPIKey("test-key"))
	patents, stats, err := c.SearchPatents(context.Background(), sampleQuery())
	if err != nil {
		t.Fatalf("SearchPatents failed: %v", err)
	}

	if len(patents) != 1 {
		t.Fatalf("got %d patents, want 1", len(patents))
	}
	if stats.Fetched != 1 || stats.Skipped != 1 || stats.Pages != 1 {
		t.Errorf("stats = %+v, want Fetched=1 Skipped=1 Pages=1", stats)
	}

	p := patents[0]
	if p.ID != "11000001" {
		t.Errorf("ID = %q", p.ID)
	}
	if p.RecordType != patent.RecordTypeGranted || p.Source != patent.SourceUSPTOPatents {
		t.Errorf("RecordType = %q, Source = %q", p.RecordType, p.Source)
	}
	if p.Assignee != "IBM" || p.AssigneeState != "NY" {
		t.Errorf("assignee = %q / %q", p.Assignee, p.AssigneeState)
	}
	if p.Inventors != "Ada Lovelace" {
		t.Errorf("Inventors = %q", p.Inventors)
	}
	if len(p.CPCCodes) != 1 || p.CPCCodes[0] != "G06N10/70" {
		t.Errorf("CPCCodes = %v, want deduplicated [G06N10/70]", p.CPCCodes)
	}

	// Request body shape: ANDed clauses, requested fields, page size.
	if captured.Q["_and"] == nil {
		t.Errorf("query missing _and clause: %v", captured.Q)
	}
	if size, ok := captured.O["size"].(float64); !ok || int(size) != PageSize {
		t.Errorf("o.size = %v, want %d", captured.O["size"], PageSize)
	}
	if captured.O["after"] != nil {
		t.Error("first page should not carry an after cursor")
	}
}

func TestSearchPatentsPagination(t *testing.T) {
	page := 0
	var afters []any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req capturedRequest
		json.NewDecoder(r.Body).Decode(&req)
		afters = append(afters, req.O["after"])

		resp := patentsResponse{TotalHits: PageSize + 1}
		if page == 0 {
			for i := 0; i < PageSize; i++ {
				resp.Patents = append(resp.Patents, rawPatent{
					PatentID: fmt.Sprintf("p%03d", i),
					Title:    "Some title",
					Date:     "2021-01-01",
				})
			}
		} else {
			resp.Patents = []rawPatent{{PatentID: "p100", Title: "Last one", Date: "2021-01-02"}}
		}
		page++
		json.NewEncoder(w).Encode(resp)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	patents, stats, err := c.SearchPatents(context.Background(), sampleQuery())
	if err != nil {
		t.Fatalf("SearchPatents failed: %v", err)
	}

	if len(patents) != PageSize+1 {
		t.Errorf("got %d patents, want %d", len(patents), PageSize+1)
	}
	if stats.Pages != 2 {
		t.Errorf("Pages = %d, want 2", stats.Pages)
	}
	if len(afters) != 2 || afters[0] != nil {
		t.Fatalf("afters = %v", afters)
	}
	// Second page resumes after the last ID of the first page.
	if afters[1] != fmt.Sprintf("p%03d", PageSize-1) {
		t.Errorf("after = %v, want p%03d", afters[1], PageSize-1)
	}
}

func TestSearchPatentsInvertedRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected for an inverted date range")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	q := SearchQuery{StartDate: "2023-01-01", EndDate: "2020-01-01"}

	patents, stats, err := c.SearchPatents(context.Background(), q)
	if err != nil {
		t.Fatalf("inverted range should not error: %v", err)
	}
	if len(patents) != 0 || stats.Fetched != 0 {
		t.Errorf("got %d patents, want 0", len(patents))
	}
}

func TestSearchPatentsAuthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, _, err := c.SearchPatents(context.Background(), sampleQuery())
	if !IsAuthError(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func TestSearchPatentsRateLimitRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(patentsResponse{
			Patents: []rawPatent{{PatentID: "1", Title: "t", Date: "2021-01-01"}},
		})
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	patents, _, err := c.SearchPatents(context.Background(), sampleQuery())
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
	if len(patents) != 1 {
		t.Errorf("got %d patents, want 1", len(patents))
	}
}

func TestSearchPatentsRateLimitExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, _, err := c.SearchPatents(context.Background(), sampleQuery())
	if !IsRateLimited(err) {
		t.Errorf("expected rate limit error, got %v", err)
	}
}

func TestSearchPublications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != EndpointPublications {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(publicationsResponse{
			Count:     1,
			TotalHits: 1,
			Publications: []rawPublication{
				{
					DocumentNumber: "20230123456",
					Title:          "Photonic interconnect",
					Abstract:       "Optical links between dies.",
					Date:           "2023-04-20",
				},
			},
		})
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	patents, _, err := c.SearchPublications(context.Background(), sampleQuery())
	if err != nil {
		t.Fatalf("SearchPublications failed: %v", err)
	}
	if len(patents) != 1 {
		t.Fatalf("got %d records, want 1", len(patents))
	}
	if patents[0].RecordType != patent.RecordTypePublication {
		t.Errorf("RecordType = %q", patents[0].RecordType)
	}
	if patents[0].Source != patent.SourceUSPTOPublications {
		t.Errorf("Source = %q", patents[0].Source)
	}
}

func TestSearchPatentsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, _, err := c.SearchPatents(context.Background(), sampleQuery())

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != 500 {
		t.Errorf("StatusCode = %d, want 500", apiErr.StatusCode)
	}
}

func TestBuildQuery(t *testing.T) {
	q := SearchQuery{
		Companies: []string{"IBM"},
		StartDate: "2020-01-01",
		EndDate:   "2021-01-01",
		CPCCodes:  []string{"G06N10/70"},
	}
	built := buildQuery(q, "application.filing_date")

	clauses, ok := built["_and"].([]map[string]any)
	if !ok {
		t.Fatalf("expected _and clause, got %v", built)
	}
	if len(clauses) != 4 {
		t.Errorf("got %d clauses, want 4 (companies, gte, lte, cpc)", len(clauses))
	}
}

func TestBuildQuerySingleClause(t *testing.T) {
	built := buildQuery(SearchQuery{Companies: []string{"IBM"}}, "patent_date")
	if built["_or"] == nil {
		t.Errorf("single clause should not be wrapped in _and: %v", built)
	}
}
