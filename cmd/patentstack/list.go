package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/storage"
)

var (
	listCompany      string
	listYear         int
	listCategory     string
	listSubcategory  string
	listSource       string
	listUnclassified bool
	listLimit        int
)

func init() {
	listCmd.Flags().StringVar(&listCompany, "company", "", "Filter by assignee substring")
	listCmd.Flags().IntVar(&listYear, "year", 0, "Filter by publication year")
	listCmd.Flags().StringVar(&listCategory, "category", "", "Filter by tier-1 category")
	listCmd.Flags().StringVar(&listSubcategory, "subcategory", "", "Filter by tier-2 subcategory")
	listCmd.Flags().StringVar(&listSource, "source", "", "Filter by fetch source")
	listCmd.Flags().BoolVar(&listUnclassified, "unclassified", false, "Show only unclassified patents")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum results to return (0 = all)")
	rootCmd.AddCommand(listCmd)
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored patents",
	Long: `List stored patents with optional filters.

Examples:
  patentstack list
  patentstack list --company IBM --year 2022
  patentstack list --category Hardware --limit 20
  patentstack list --unclassified`,
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	records, err := db.ListPatents(storage.ListFilter{
		Company:      listCompany,
		Year:         listYear,
		Category:     listCategory,
		Subcategory:  listSubcategory,
		Source:       listSource,
		Unclassified: listUnclassified,
		Limit:        listLimit,
	})
	if err != nil {
		exitWithError(ExitError, "listing patents: %v", err)
	}

	total, _ := db.CountPatents()

	if humanOutput {
		if len(records) == 0 {
			fmt.Println("No patents match")
			return nil
		}
		if listLimit > 0 && listLimit < total {
			fmt.Printf("%d patents (showing first %d):\n\n", total, len(records))
		} else {
			fmt.Printf("%d patents:\n\n", len(records))
		}
		for _, r := range records {
			label := "-"
			if r.Classified() {
				label = r.Category + "/" + r.Subcategory
			}
			fmt.Printf("  %-14s %-28s %s\n", r.ID, label, truncateString(r.Title, ListTitleMaxLen))
		}
	} else {
		if records == nil {
			records = []storage.ClassifiedPatent{}
		}
		outputJSON(records)
	}

	return nil
}
