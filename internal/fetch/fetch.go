// Package fetch orchestrates patent retrieval across sources. Each
// configured source runs independently; one source failing records an
// error but does not abort the others. Results are deduplicated by ID.
package fetch

import (
	"context"
	"fmt"
	"strconv"

	"github.com/patentstack/patentstack/internal/gpatents"
	"github.com/patentstack/patentstack/internal/patent"
	"github.com/patentstack/patentstack/internal/patentsview"
)

// USPTOSearcher is the PatentsView client surface the orchestrator needs.
type USPTOSearcher interface {
	SearchPatents(ctx context.Context, q patentsview.SearchQuery) ([]patent.Patent, patentsview.FetchStats, error)
	SearchPublications(ctx context.Context, q patentsview.SearchQuery) ([]patent.Patent, patentsview.FetchStats, error)
}

// InternationalFetcher is the BigQuery client surface the orchestrator needs.
type InternationalFetcher interface {
	Fetch(ctx context.Context, q gpatents.Query) ([]patent.Patent, gpatents.FetchStats, error)
}

// Options configures one fetch run.
type Options struct {
	Companies []string
	StartDate string // inclusive, YYYY-MM-DD
	EndDate   string // inclusive, YYYY-MM-DD

	// CPCCodes restricts both sources to exact CPC group codes.
	CPCCodes []string

	// Sources selects which fetchers run, using the patent.Source* values.
	Sources []string

	// MaxRecords caps each source's result count. Zero means source default.
	MaxRecords int

	// MaxCostUSD caps BigQuery spending (passed through to the client).
	MaxCostUSD float64
}

// SourceResult records the outcome for one source.
type SourceResult struct {
	Source  string `json:"source"`
	Fetched int    `json:"fetched"`
	Skipped int    `json:"skipped"`
	Error   string `json:"error,omitempty"`
}

// Result is the combined outcome of a fetch run.
type Result struct {
	Patents []patent.Patent `json:"-"`
	Sources []SourceResult  `json:"sources"`
	Total   int             `json:"total"`
	Deduped int             `json:"deduped"`
}

// Failed reports whether every source errored.
func (r *Result) Failed() bool {
	if len(r.Sources) == 0 {
		return false
	}
	for _, s := range r.Sources {
		if s.Error == "" {
			return false
		}
	}
	return true
}

// Fetcher runs fetches against the configured clients. Either client may
// be nil when its sources are not requested.
type Fetcher struct {
	uspto USPTOSearcher
	intl  InternationalFetcher
}

// NewFetcher creates an orchestrator over the given clients.
func NewFetcher(uspto USPTOSearcher, intl InternationalFetcher) *Fetcher {
	return &Fetcher{uspto: uspto, intl: intl}
}

// yearChunks splits [start, end] into per-year sub-ranges, most recent
// first. Recent years are fetched first so a partial run keeps the data
// users care most about. A range within one year yields a single chunk.
func yearChunks(start, end string) [][2]string {
	startYear, err1 := strconv.Atoi(yearOf(start))
	endYear, err2 := strconv.Atoi(yearOf(end))
	if err1 != nil || err2 != nil || startYear > endYear {
		return [][2]string{{start, end}}
	}

	var chunks [][2]string
	for year := endYear; year >= startYear; year-- {
		chunkStart := fmt.Sprintf("%d-01-01", year)
		chunkEnd := fmt.Sprintf("%d-12-31", year)
		if year == startYear {
			chunkStart = start
		}
		if year == endYear {
			chunkEnd = end
		}
		chunks = append(chunks, [2]string{chunkStart, chunkEnd})
	}
	return chunks
}

func yearOf(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}

// Run fetches from every requested source and merges the results.
func (f *Fetcher) Run(ctx context.Context, opts Options) (*Result, error) {
	sources := opts.Sources
	if len(sources) == 0 {
		sources = []string{patent.SourceUSPTOPatents, patent.SourceUSPTOPublications}
	}

	result := &Result{}
	seen := make(map[string]bool)

	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		sr := SourceResult{Source: source}
		patents, err := f.runSource(ctx, source, opts, &sr)
		if err != nil {
			sr.Error = err.Error()
		}
		for _, p := range patents {
			if seen[p.ID] {
				result.Deduped++
				continue
			}
			seen[p.ID] = true
			result.Patents = append(result.Patents, p)
		}
		result.Sources = append(result.Sources, sr)
	}

	result.Total = len(result.Patents)
	return result, nil
}

// runSource fetches all year chunks for one source.
func (f *Fetcher) runSource(ctx context.Context, source string, opts Options, sr *SourceResult) ([]patent.Patent, error) {
	var all []patent.Patent

	switch source {
	case patent.SourceUSPTOPatents, patent.SourceUSPTOPublications:
		if f.uspto == nil {
			return nil, fmt.Errorf("no PatentsView client configured")
		}
		for _, chunk := range yearChunks(opts.StartDate, opts.EndDate) {
			q := patentsview.SearchQuery{
				Companies:  opts.Companies,
				StartDate:  chunk[0],
				EndDate:    chunk[1],
				CPCCodes:   opts.CPCCodes,
				MaxRecords: opts.MaxRecords,
			}

			var patents []patent.Patent
			var stats patentsview.FetchStats
			var err error
			if source == patent.SourceUSPTOPatents {
				patents, stats, err = f.uspto.SearchPatents(ctx, q)
			} else {
				patents, stats, err = f.uspto.SearchPublications(ctx, q)
			}
			if err != nil {
				// Keep what earlier chunks already fetched.
				return all, err
			}
			all = append(all, patents...)
			sr.Fetched += stats.Fetched
			sr.Skipped += stats.Skipped
		}
		return all, nil

	case patent.SourceBigQuery:
		if f.intl == nil {
			return nil, fmt.Errorf("no BigQuery client configured")
		}
		patents, stats, err := f.intl.Fetch(ctx, gpatents.Query{
			Companies: opts.Companies,
			CPCCodes:  opts.CPCCodes,
			StartDate: opts.StartDate,
			EndDate:   opts.EndDate,
			Limit:     opts.MaxRecords,
		})
		if err != nil {
			return nil, err
		}
		sr.Fetched = stats.Fetched
		sr.Skipped = stats.Skipped
		return patents, nil

	default:
		return nil, fmt.Errorf("unknown source: %s", source)
	}
}
