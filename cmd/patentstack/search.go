package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/storage"
)

var searchLimit int

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", DefaultSearchLimit, "Maximum results to return")
	rootCmd.AddCommand(searchCmd)
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Full-text search over stored patents",
	Long: `Search patent titles, abstracts, and assignees with full-text search.

Examples:
  patentstack search "qubit coupler"
  patentstack search superconducting --limit 10`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func runSearch(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	query := strings.Join(args, " ")
	records, err := db.SearchPatents(query, searchLimit)
	if err != nil {
		exitWithError(ExitError, "searching: %v", err)
	}

	if humanOutput {
		if len(records) == 0 {
			fmt.Printf("No patents match %q\n", query)
			return nil
		}
		fmt.Printf("%d results for %q:\n\n", len(records), query)
		for i, r := range records {
			fmt.Printf("%d. %s  %s\n", i+1, r.ID, truncateString(r.Title, SearchTitleMaxLen))
			if r.Assignee != "" {
				fmt.Printf("   %s\n", r.Assignee)
			}
		}
	} else {
		if records == nil {
			records = []storage.ClassifiedPatent{}
		}
		outputJSON(records)
	}

	return nil
}
