package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/config"
	"github.com/patentstack/patentstack/internal/fetch"
	"github.com/patentstack/patentstack/internal/gpatents"
	"github.com/patentstack/patentstack/internal/patent"
	"github.com/patentstack/patentstack/internal/patentsview"
	"github.com/patentstack/patentstack/internal/storage"
)

var (
	fetchCompanies  []string
	fetchDomains    []string
	fetchStartYear  int
	fetchEndYear    int
	fetchMaxResults int
	fetchSource     string
	fetchMaxCost    float64
)

func init() {
	fetchCmd.Flags().StringArrayVar(&fetchCompanies, "company", nil, "Company to fetch (repeatable; default from config)")
	fetchCmd.Flags().StringArrayVar(&fetchDomains, "domain", nil, "Technology domain from domains.yml (repeatable)")
	fetchCmd.Flags().IntVar(&fetchStartYear, "start-year", 0, "First filing year to fetch")
	fetchCmd.Flags().IntVar(&fetchEndYear, "end-year", 0, "Last filing year to fetch")
	fetchCmd.Flags().IntVar(&fetchMaxResults, "max-results", 0, "Per-source record cap (0 = source default)")
	fetchCmd.Flags().StringVar(&fetchSource, "source", "", "Source selection: us, intl, or all (default from config)")
	fetchCmd.Flags().Float64Var(&fetchMaxCost, "max-cost", gpatents.DefaultMaxCostUSD, "BigQuery cost limit in USD (negative disables)")
	rootCmd.AddCommand(fetchCmd)
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch patent records into the workspace",
	Long: `Fetch patent records from the configured sources into patents.jsonl.

USPTO PatentsView covers granted patents and pre-grant publications and
needs PATENTSVIEW_API_KEY. BigQuery adds international coverage and needs
BIGQUERY_PROJECT_ID; its queries are cost-gated by --max-cost.

Examples:
  patentstack fetch --company IBM --start-year 2020 --end-year 2023
  patentstack fetch --company "International Business Machines" --domain quantum_computing
  patentstack fetch --source all --max-cost 5`,
	RunE: runFetch,
}

// FetchResponse is the fetch command's JSON output.
type FetchResponse struct {
	Status  string               `json:"status"`
	Sources []fetch.SourceResult `json:"sources"`
	Fetched int                  `json:"fetched"`
	Deduped int                  `json:"deduped"`
	Written int                  `json:"written"`
}

func runFetch(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	opts := buildFetchOptions(cfg)
	if len(opts.Companies) == 0 {
		exitWithError(ExitError, "no companies specified\n\nUse --company or set a default: patentstack config companies \"IBM,Intel\"")
	}
	if opts.StartDate == "" || opts.EndDate == "" {
		exitWithError(ExitError, "no date range specified\n\nUse --start-year/--end-year or set start_date/end_date in config")
	}

	resolveDomains(root, cfg, opts)

	ctx := context.Background()
	fetcher := fetch.NewFetcher(buildClients(ctx, opts))

	result, err := fetcher.Run(ctx, *opts)
	if err != nil {
		exitWithError(ExitError, "fetch: %v", err)
	}
	if result.Failed() {
		for _, s := range result.Sources {
			outputNotice("source %s failed: %s", s.Source, s.Error)
		}
		exitWithError(ExitDataError, "all sources failed")
	}

	written, err := storage.AppendPatents(config.PatentsPath(root), result.Patents)
	if err != nil {
		exitWithError(ExitError, "writing patents.jsonl: %v", err)
	}

	if humanOutput {
		for _, s := range result.Sources {
			if s.Error != "" {
				fmt.Printf("  %-20s failed: %s\n", s.Source, s.Error)
			} else {
				fmt.Printf("  %-20s %d fetched, %d skipped\n", s.Source, s.Fetched, s.Skipped)
			}
		}
		fmt.Printf("Fetched %d records (%d duplicates), %d new\n",
			result.Total, result.Deduped, written)
	} else {
		outputJSON(FetchResponse{
			Status:  "fetched",
			Sources: result.Sources,
			Fetched: result.Total,
			Deduped: result.Deduped,
			Written: written,
		})
	}

	return nil
}

// buildFetchOptions merges flags over config defaults.
func buildFetchOptions(cfg *config.Config) *fetch.Options {
	opts := &fetch.Options{
		Companies:  cfg.Companies,
		StartDate:  cfg.StartDate,
		EndDate:    cfg.EndDate,
		Sources:    cfg.EffectiveSources(),
		MaxRecords: cfg.MaxRecords,
		MaxCostUSD: fetchMaxCost,
	}

	if len(fetchCompanies) > 0 {
		opts.Companies = fetchCompanies
	}
	if fetchStartYear > 0 {
		opts.StartDate = fmt.Sprintf("%d-01-01", fetchStartYear)
	}
	if fetchEndYear > 0 {
		opts.EndDate = fmt.Sprintf("%d-12-31", fetchEndYear)
	}
	if fetchMaxResults > 0 {
		opts.MaxRecords = fetchMaxResults
	}

	switch fetchSource {
	case "":
		// keep config sources
	case "us":
		opts.Sources = []string{patent.SourceUSPTOPatents, patent.SourceUSPTOPublications}
	case "intl":
		opts.Sources = []string{patent.SourceBigQuery}
	case "all":
		opts.Sources = []string{patent.SourceUSPTOPatents, patent.SourceUSPTOPublications, patent.SourceBigQuery}
	default:
		exitWithError(ExitError, "invalid --source %q (use us, intl, or all)", fetchSource)
	}

	return opts
}

// resolveDomains translates domain names into CPC filters.
func resolveDomains(root string, cfg *config.Config, opts *fetch.Options) {
	domains := fetchDomains
	if len(domains) == 0 {
		domains = cfg.Domains
	}
	if len(domains) == 0 {
		return
	}

	dc, err := config.LoadDomains(config.DomainsPath(root))
	if err != nil {
		exitWithError(ExitConfigError, "loading domains.yml: %v", err)
	}

	codes, err := dc.CodesFor(domains)
	if err != nil {
		exitWithError(ExitError, "%v\n\nKnown domains: %v", err, dc.Names())
	}
	opts.CPCCodes = codes
}

// buildClients constructs the source clients the requested sources need.
// A missing BigQuery setup downgrades to USPTO-only with a notice instead
// of failing the run.
func buildClients(ctx context.Context, opts *fetch.Options) (fetch.USPTOSearcher, fetch.InternationalFetcher) {
	var uspto fetch.USPTOSearcher
	var intl fetch.InternationalFetcher

	if hasSource(opts.Sources, patent.SourceUSPTOPatents) || hasSource(opts.Sources, patent.SourceUSPTOPublications) {
		apiKey := config.GetPatentsViewAPIKey()
		if apiKey == "" {
			exitWithError(ExitAuthError, "%s", config.HelpfulAPIKeyMessage())
		}
		uspto = patentsview.NewClient(patentsview.WithAPIKey(apiKey))
	}

	if hasSource(opts.Sources, patent.SourceBigQuery) {
		projectID := config.GetBigQueryProjectID()
		if projectID == "" {
			outputNotice("BigQuery project not configured; continuing with USPTO only")
			opts.Sources = removeSource(opts.Sources, patent.SourceBigQuery)
		} else {
			var clientOpts []gpatents.ClientOption
			if creds := config.GetBigQueryCredentialsFile(); creds != "" {
				clientOpts = append(clientOpts, gpatents.WithCredentialsFile(creds))
			}
			clientOpts = append(clientOpts, gpatents.WithMaxCost(opts.MaxCostUSD))

			client, err := gpatents.NewClient(ctx, projectID, clientOpts...)
			if err != nil {
				outputNotice("BigQuery unavailable (%v); continuing with USPTO only", err)
				opts.Sources = removeSource(opts.Sources, patent.SourceBigQuery)
			} else {
				intl = client
			}
		}
	}

	return uspto, intl
}

func hasSource(sources []string, source string) bool {
	for _, s := range sources {
		if s == source {
			return true
		}
	}
	return false
}

func removeSource(sources []string, source string) []string {
	var out []string
	for _, s := range sources {
		if s != source {
			out = append(out, s)
		}
	}
	return out
}
