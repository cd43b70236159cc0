package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/report"
	"github.com/patentstack/patentstack/internal/storage"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarize the classified portfolio",
	Long: `Aggregate stored patents into a portfolio summary: category and
subcategory distributions, top companies, a company-by-category
cross-tab, and the per-year trend.

Example:
  patentstack report --human`,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	records, err := db.ListPatents(storage.ListFilter{})
	if err != nil {
		exitWithError(ExitError, "reading patents: %v", err)
	}

	summary := report.Build(records)

	if !humanOutput {
		return outputJSON(summary)
	}

	fmt.Printf("%d patents, %d classified, %d unclassified\n\n",
		summary.Total, summary.Classified, summary.Unclassified)

	printDistribution("Categories", summary.Categories)
	printDistribution("Subcategories", summary.Subcategories)
	printDistribution("Companies", summary.Companies)

	if len(summary.Years) > 0 {
		fmt.Println("Per year:")
		for _, y := range summary.Years {
			fmt.Printf("  %d  %d\n", y.Year, y.Count)
		}
	}

	return nil
}

func printDistribution(title string, counts []report.LabelCount) {
	if len(counts) == 0 {
		return
	}
	fmt.Printf("%s:\n", title)
	for _, c := range counts {
		fmt.Printf("  %-40s %d\n", c.Label, c.Count)
	}
	fmt.Println()
}
