package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/config"
	"github.com/patentstack/patentstack/internal/patent"
	"github.com/patentstack/patentstack/internal/pdf"
	"github.com/patentstack/patentstack/internal/storage"
)

func init() {
	importCmd.AddCommand(importPDFCmd)
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import patents from local files",
}

var importPDFCmd = &cobra.Command{
	Use:   "pdf <file>...",
	Short: "Import local patent PDFs as records",
	Long: `Extract text from local patent PDFs and add them as records.

The patent number is read from the cover sheet when present; otherwise
the file name becomes the record ID. Imported records are classified
alongside fetched ones on the next 'patentstack classify' run.

Example:
  patentstack import pdf US11000001.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: runImportPDF,
}

// ImportResponse is the import command's JSON output.
type ImportResponse struct {
	Status   string   `json:"status"`
	Imported int      `json:"imported"`
	IDs      []string `json:"ids"`
	Errors   []string `json:"errors,omitempty"`
}

func runImportPDF(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()

	resp := ImportResponse{Status: "imported"}
	for _, path := range args {
		p, err := pdf.ImportPatent(path)
		if err != nil {
			resp.Errors = append(resp.Errors, err.Error())
			continue
		}

		written, err := storage.AppendPatents(config.PatentsPath(root), []patent.Patent{*p})
		if err != nil {
			exitWithError(ExitError, "writing patents.jsonl: %v", err)
		}
		if written > 0 {
			resp.Imported++
			resp.IDs = append(resp.IDs, p.ID)
		} else {
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: already imported", p.ID))
		}
	}

	if resp.Imported == 0 && len(resp.Errors) > 0 {
		exitWithError(ExitDataError, "no PDFs imported: %v", resp.Errors)
	}

	if humanOutput {
		fmt.Printf("Imported %d PDFs\n", resp.Imported)
		for _, id := range resp.IDs {
			fmt.Printf("  %s\n", id)
		}
		for _, e := range resp.Errors {
			outputNotice("skipped: %s", e)
		}
	} else {
		outputJSON(resp)
	}

	return nil
}
