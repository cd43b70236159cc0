// Package gpatents fetches international patent records from the Google
// Patents public dataset on BigQuery. Every query is dry-run first and the
// estimated cost checked against a limit before any bytes are billed.
package gpatents

import (
	"context"
	"errors"
	"fmt"
	"os"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"github.com/patentstack/patentstack/internal/patent"
)

// Errors returned by the BigQuery fetcher.
var (
	// ErrNoProject indicates no BigQuery project ID was configured.
	ErrNoProject = errors.New("BigQuery project ID not configured")

	// ErrCostLimit indicates the dry-run cost estimate exceeded the limit.
	ErrCostLimit = errors.New("query cost exceeds limit")
)

const (
	// DefaultMaxCostUSD is the spending cap applied when the caller sets none.
	DefaultMaxCostUSD = 10.0

	// Pricing model for on-demand queries: the first TB each month is free,
	// the rest is billed per TB.
	freeTB     = 1.0
	usdPerTB   = 5.0
	bytesPerTB = 1 << 40
)

// CostEstimate is the result of a dry run.
type CostEstimate struct {
	BytesProcessed int64   `json:"bytes_processed"`
	TBProcessed    float64 `json:"tb_processed"`
	EstimatedUSD   float64 `json:"estimated_usd"`
	LimitUSD       float64 `json:"limit_usd"`
}

// estimateUSD converts processed bytes to an estimated charge.
func estimateUSD(bytes int64) float64 {
	tb := float64(bytes) / bytesPerTB
	billable := tb - freeTB
	if billable < 0 {
		billable = 0
	}
	return billable * usdPerTB
}

// FetchStats summarizes one BigQuery fetch.
type FetchStats struct {
	Fetched int          `json:"fetched"`
	Skipped int          `json:"skipped"`
	Cost    CostEstimate `json:"cost"`
}

// Client runs patent queries against the public Google Patents dataset.
type Client struct {
	bq         *bigquery.Client
	maxCostUSD float64
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

type clientConfig struct {
	credentialsFile string
	maxCostUSD      float64
}

// WithCredentialsFile points the client at a service account key file.
// Without it, application default credentials are used.
func WithCredentialsFile(path string) ClientOption {
	return func(cfg *clientConfig) {
		cfg.credentialsFile = path
	}
}

// WithMaxCost sets the dry-run spending cap in USD. Zero keeps the default;
// a negative value disables the cap.
func WithMaxCost(usd float64) ClientOption {
	return func(cfg *clientConfig) {
		cfg.maxCostUSD = usd
	}
}

// NewClient creates a BigQuery client for the given project. The project ID
// falls back to the BIGQUERY_PROJECT_ID environment variable.
func NewClient(ctx context.Context, projectID string, opts ...ClientOption) (*Client, error) {
	if projectID == "" {
		projectID = os.Getenv("BIGQUERY_PROJECT_ID")
	}
	if projectID == "" {
		return nil, ErrNoProject
	}

	cfg := clientConfig{maxCostUSD: DefaultMaxCostUSD}
	for _, opt := range opts {
		opt(&cfg)
	}

	var bqOpts []option.ClientOption
	if cfg.credentialsFile != "" {
		bqOpts = append(bqOpts, option.WithCredentialsFile(cfg.credentialsFile))
	}

	bq, err := bigquery.NewClient(ctx, projectID, bqOpts...)
	if err != nil {
		return nil, fmt.Errorf("creating BigQuery client: %w", err)
	}

	return &Client{bq: bq, maxCostUSD: cfg.maxCostUSD}, nil
}

// Close releases the underlying BigQuery client.
func (c *Client) Close() error {
	return c.bq.Close()
}

// EstimateCost dry-runs the query and returns the estimated charge.
func (c *Client) EstimateCost(ctx context.Context, sql string, params []bigquery.QueryParameter) (CostEstimate, error) {
	q := c.bq.Query(sql)
	q.Parameters = params
	q.DryRun = true
	q.DisableQueryCache = true

	job, err := q.Run(ctx)
	if err != nil {
		return CostEstimate{}, fmt.Errorf("dry run: %w", err)
	}

	bytes := job.LastStatus().Statistics.TotalBytesProcessed
	return CostEstimate{
		BytesProcessed: bytes,
		TBProcessed:    float64(bytes) / bytesPerTB,
		EstimatedUSD:   estimateUSD(bytes),
		LimitUSD:       c.maxCostUSD,
	}, nil
}

// Fetch runs the patent query and maps the rows into patent records.
// Returns ErrCostLimit without running the real query when the dry-run
// estimate exceeds the configured cap.
func (c *Client) Fetch(ctx context.Context, q Query) ([]patent.Patent, FetchStats, error) {
	var stats FetchStats

	sql, params := buildSQL(q)

	estimate, err := c.EstimateCost(ctx, sql, params)
	if err != nil {
		return nil, stats, err
	}
	stats.Cost = estimate
	if c.maxCostUSD >= 0 && estimate.EstimatedUSD > c.maxCostUSD {
		return nil, stats, fmt.Errorf("%w: estimated $%.2f, limit $%.2f",
			ErrCostLimit, estimate.EstimatedUSD, c.maxCostUSD)
	}

	query := c.bq.Query(sql)
	query.Parameters = params
	it, err := query.Read(ctx)
	if err != nil {
		return nil, stats, fmt.Errorf("running query: %w", err)
	}

	var results []patent.Patent
	for {
		var r row
		err := it.Next(&r)
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("reading row: %w", err)
		}

		p, ok := mapRow(&r)
		if !ok {
			stats.Skipped++
			continue
		}
		results = append(results, p)
		stats.Fetched++
	}

	return results, stats, nil
}
