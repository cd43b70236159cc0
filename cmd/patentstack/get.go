package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/storage"
)

func init() {
	rootCmd.AddCommand(getCmd)
}

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Get a single patent by ID",
	Long: `Get a single patent by its patent or publication number.

Example:
  patentstack get 11000001`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func runGet(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	db := mustOpenDatabase(root)
	defer db.Close()

	id := args[0]
	record, err := db.GetPatent(id)
	if err == storage.ErrNotFound {
		exitWithError(ExitError, "patent not found: %s", id)
	}
	if err != nil {
		exitWithError(ExitError, "getting patent: %v", err)
	}

	if humanOutput {
		printPatentDetail(record)
	} else {
		outputJSON(record)
	}

	return nil
}

// printPatentDetail prints a full patent record for human readers.
func printPatentDetail(r *storage.ClassifiedPatent) {
	fmt.Printf("%s  %s\n", r.ID, r.Title)
	if r.Assignee != "" {
		fmt.Printf("  Assignee:   %s\n", r.Assignee)
	}
	if r.Inventors != "" {
		fmt.Printf("  Inventors:  %s\n", r.Inventors)
	}
	if r.PublicationDate != "" {
		fmt.Printf("  Published:  %s\n", r.PublicationDate)
	}
	if r.FilingDate != "" {
		fmt.Printf("  Filed:      %s\n", r.FilingDate)
	}
	if len(r.CPCCodes) > 0 {
		fmt.Printf("  CPC:        %s\n", strings.Join(r.CPCCodes, ", "))
	}
	fmt.Printf("  Source:     %s\n", r.Source)
	if r.Classified() {
		fmt.Printf("  Label:      %s/%s (%.2f, %s)\n", r.Category, r.Subcategory, r.Confidence, r.Method)
	} else {
		fmt.Println("  Label:      unclassified")
	}
	if r.Abstract != "" {
		fmt.Printf("\n  %s\n", r.Abstract)
	}
	if r.URL != "" {
		fmt.Printf("\n  %s\n", r.URL)
	}
}
