package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/export"
	"github.com/patentstack/patentstack/internal/storage"
)

var (
	exportFormat string
	exportOutput string
)

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", export.FormatCSV, "Output format: csv or jsonl")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default stdout)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export classified patents to CSV or JSONL",
	Long: `Export every stored patent with its classification.

Examples:
  patentstack export -o patents.csv
  patentstack export --format jsonl > patents.jsonl`,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	records, err := db.ListPatents(storage.ListFilter{})
	if err != nil {
		exitWithError(ExitError, "reading patents: %v", err)
	}

	out := os.Stdout
	if exportOutput != "" {
		f, err := os.Create(exportOutput)
		if err != nil {
			exitWithError(ExitError, "creating %s: %v", exportOutput, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.Write(out, exportFormat, records); err != nil {
		exitWithError(ExitError, "exporting: %v", err)
	}

	if exportOutput != "" {
		if humanOutput {
			fmt.Printf("Exported %d patents to %s\n", len(records), exportOutput)
		} else {
			outputJSON(StatusResponse{Status: "exported", Path: exportOutput})
		}
	}

	return nil
}
