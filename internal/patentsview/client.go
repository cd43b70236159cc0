package patentsview

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/patentstack/patentstack/internal/patent"
)

const (
	// BaseURL is the PatentsView Search API base URL.
	BaseURL = "https://search.patentsview.org/api/v1"

	// EndpointPatents serves granted patents; EndpointPublications serves
	// pre-grant publications.
	EndpointPatents      = "/patent/"
	EndpointPublications = "/publication/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is 45 requests per minute per PatentsView documentation.
	RateLimit = 45.0 / 60.0

	// PageSize is the number of records requested per page.
	PageSize = 100

	// DefaultMaxRecords caps pagination when the caller sets no limit.
	DefaultMaxRecords = 10000
)

// Client is a rate-limited HTTP client for the PatentsView Search API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	baseURL    string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithAPIKey sets the API key for authenticated requests.
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = url
	}
}

// NewClient creates a new PatentsView API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	// Check for API key in environment
	if key := os.Getenv("PATENTSVIEW_API_KEY"); key != "" {
		c.apiKey = key
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, endpoint string) error {
	if resp.StatusCode == 401 || resp.StatusCode == 403 {
		return fmt.Errorf("%w: status %d (check PATENTSVIEW_API_KEY)", ErrAuthError, resp.StatusCode)
	}
	if resp.StatusCode == 429 {
		return fmt.Errorf("%w: status 429", ErrRateLimited)
	}
	if resp.StatusCode >= 400 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		}
	}
	return nil
}

// retryAfter parses a Retry-After header, defaulting to 10 seconds.
func retryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 10 * time.Second
	}
	if secs, err := strconv.Atoi(resp.Header.Get("Retry-After")); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	return 10 * time.Second
}

// post executes one POST against the given endpoint, retrying once after a
// 429 response using the server's Retry-After hint.
func (c *Client) post(ctx context.Context, endpoint string, body map[string]any) ([]byte, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	retried := false
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+endpoint, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-Api-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNetworkError, err)
		}

		if resp.StatusCode == 429 && !retried {
			wait := retryAfter(resp)
			resp.Body.Close()
			retried = true
			select {
			case <-time.After(wait):
				continue
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := checkHTTPErrors(resp, endpoint); err != nil {
			resp.Body.Close()
			return nil, err
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("reading response: %w", err)
		}
		return data, nil
	}
}

// invertedRange reports whether the query's date range is empty by
// construction. Such a search returns zero records without calling the API.
func invertedRange(q SearchQuery) bool {
	return q.StartDate != "" && q.EndDate != "" && q.StartDate > q.EndDate
}

func (q SearchQuery) maxRecords() int {
	if q.MaxRecords > 0 {
		return q.MaxRecords
	}
	return DefaultMaxRecords
}

// SearchPatents fetches granted patents matching the query, following
// cursor pagination until the result set or the record cap is exhausted.
func (c *Client) SearchPatents(ctx context.Context, q SearchQuery) ([]patent.Patent, FetchStats, error) {
	var stats FetchStats
	if invertedRange(q) {
		return nil, stats, nil
	}

	var results []patent.Patent
	after := ""
	for {
		body := buildRequest(q, "application.filing_date", patentFields, "patent_id", after)
		data, err := c.post(ctx, EndpointPatents, body)
		if err != nil {
			return nil, stats, err
		}

		var page patentsResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, stats, fmt.Errorf("%w: parsing patents: %v", ErrInvalidResponse, err)
		}
		if page.Error {
			return nil, stats, fmt.Errorf("%w: server reported query error", ErrInvalidResponse)
		}

		stats.Pages++
		stats.TotalHits = page.TotalHits
		for i := range page.Patents {
			p, ok := mapPatent(&page.Patents[i])
			if !ok {
				stats.Skipped++
				continue
			}
			results = append(results, p)
			stats.Fetched++
		}

		if len(page.Patents) < PageSize || stats.Fetched >= q.maxRecords() {
			break
		}
		after = page.Patents[len(page.Patents)-1].PatentID
	}

	return results, stats, nil
}

// SearchPublications fetches pre-grant publications matching the query.
func (c *Client) SearchPublications(ctx context.Context, q SearchQuery) ([]patent.Patent, FetchStats, error) {
	var stats FetchStats
	if invertedRange(q) {
		return nil, stats, nil
	}

	var results []patent.Patent
	after := ""
	for {
		body := buildRequest(q, "publication_date", publicationFields, "document_number", after)
		data, err := c.post(ctx, EndpointPublications, body)
		if err != nil {
			return nil, stats, err
		}

		var page publicationsResponse
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, stats, fmt.Errorf("%w: parsing publications: %v", ErrInvalidResponse, err)
		}
		if page.Error {
			return nil, stats, fmt.Errorf("%w: server reported query error", ErrInvalidResponse)
		}

		stats.Pages++
		stats.TotalHits = page.TotalHits
		for i := range page.Publications {
			p, ok := mapPublication(&page.Publications[i])
			if !ok {
				stats.Skipped++
				continue
			}
			results = append(results, p)
			stats.Fetched++
		}

		if len(page.Publications) < PageSize || stats.Fetched >= q.maxRecords() {
			break
		}
		after = page.Publications[len(page.Publications)-1].DocumentNumber
	}

	return results, stats, nil
}
