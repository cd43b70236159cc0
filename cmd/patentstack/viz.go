package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/report"
	"github.com/patentstack/patentstack/internal/storage"
	"github.com/patentstack/patentstack/internal/viz"
)

var (
	vizOutput  string
	vizTitle   string
	vizOffline bool
)

func init() {
	vizCmd.Flags().StringVarP(&vizOutput, "output", "o", "portfolio.html", "Output HTML file")
	vizCmd.Flags().StringVar(&vizTitle, "title", "", "Report page title")
	vizCmd.Flags().BoolVar(&vizOffline, "offline", false, "Embed Chart.js instead of using the CDN")
	rootCmd.AddCommand(vizCmd)
}

var vizCmd = &cobra.Command{
	Use:   "viz",
	Short: "Render the portfolio as an HTML chart report",
	Long: `Render a self-contained HTML page with portfolio charts: category
pie, subcategory bars, company-by-category stacked bars, and the
per-year trend line.

Example:
  patentstack viz -o portfolio.html --title "Quantum Portfolio"`,
	RunE: runViz,
}

func runViz(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	records, err := db.ListPatents(storage.ListFilter{})
	if err != nil {
		exitWithError(ExitError, "reading patents: %v", err)
	}

	opts := viz.DefaultOptions()
	if vizTitle != "" {
		opts.Title = vizTitle
	}
	opts.Offline = vizOffline

	html, err := viz.GenerateHTML(report.Build(records), opts)
	if errors.Is(err, viz.ErrNoOfflineBundle) {
		exitWithError(ExitError, "%v\n\nRerun without --offline to use the Chart.js CDN.", err)
	}
	if err != nil {
		exitWithError(ExitError, "generating HTML: %v", err)
	}

	if err := os.WriteFile(vizOutput, []byte(html), 0644); err != nil {
		exitWithError(ExitError, "writing %s: %v", vizOutput, err)
	}

	if humanOutput {
		fmt.Printf("Wrote %s (%d patents)\n", vizOutput, len(records))
	} else {
		outputJSON(StatusResponse{Status: "generated", Path: vizOutput})
	}

	return nil
}
