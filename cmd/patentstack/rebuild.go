package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/config"
	"github.com/patentstack/patentstack/internal/storage"
)

func init() {
	rootCmd.AddCommand(rebuildCmd)
}

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the query layer from source data",
	Long: `Rebuild the SQLite query database from the JSONL source files.

Use this after pulling changes from git or if the database becomes corrupted.`,
	RunE: runRebuild,
}

// RebuildResult is the response for the rebuild command.
type RebuildResult struct {
	Status  string `json:"status"`
	Patents int    `json:"patents"`
}

func runRebuild(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()

	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	defer db.Close()

	patentsPath := config.PatentsPath(root)
	resultsPath := config.ResultsPath(root)
	count, err := db.RebuildFromJSONL(patentsPath, resultsPath)
	if err != nil {
		exitWithError(ExitDataError, "rebuilding database: %v", err)
	}

	hash, err := storage.SourceHash(patentsPath, resultsPath)
	if err == nil {
		_ = db.SetStoredHash(hash)
	}

	if humanOutput {
		fmt.Printf("Rebuilt query database with %d patents\n", count)
	} else {
		outputJSON(RebuildResult{
			Status:  "rebuilt",
			Patents: count,
		})
	}

	return nil
}
