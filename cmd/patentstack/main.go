// Package main provides the patentstack CLI entry point.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/config"
	"github.com/patentstack/patentstack/internal/storage"
	"github.com/patentstack/patentstack/internal/taxonomy"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

func main() {
	// .env keeps API keys out of shell history
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		// Print the error since we have SilenceErrors: true
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "patentstack",
	Short: "Patent portfolio fetching and classification CLI",
	Long: `patentstack fetches patent records and classifies them into a
user-defined two-tier taxonomy.

Core features:
  - USPTO PatentsView fetching (granted patents and pre-grant publications)
  - Optional international coverage via Google Patents on BigQuery
  - Embedding-based classification with keyword fallback
  - Local patent PDF ingestion
  - Reports, CSV export, and HTML chart visualization

Data is stored in git-versionable JSONL with ephemeral SQLite for queries.
All commands output JSON by default for scripting and agent integration.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.Version = Version
}

// getStartingDirectory returns the directory to start searching for a
// workspace. PATENTSTACK_ROOT overrides the current working directory.
func getStartingDirectory() (string, int) {
	if root := os.Getenv("PATENTSTACK_ROOT"); root != "" {
		return root, 0
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", outputError(ExitError, "getting current directory: %v", err)
	}
	return cwd, 0
}

// mustFindWorkspace finds and validates the workspace, exits on error.
// Returns the workspace root path.
func mustFindWorkspace() string {
	start, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	root, err := config.FindWorkspace(start)
	if err != nil {
		exitWithError(ExitConfigError, "no patentstack workspace found\n\nRun 'patentstack init' to create one.")
	}
	return root
}

// mustLoadConfig loads workspace configuration, exits on error.
func mustLoadConfig(root string) *config.Config {
	cfg, err := config.Load(root)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// mustLoadTaxonomy loads the workspace taxonomy, exits on error.
func mustLoadTaxonomy(root string) *taxonomy.Taxonomy {
	tax, err := taxonomy.Load(config.TaxonomyPath(root))
	if err != nil {
		exitWithError(ExitDataError, "loading taxonomy: %v", err)
	}
	return tax
}

// mustOpenDatabase opens the SQLite cache and syncs it with the JSONL
// source files, exits on error. The caller must Close() the returned DB.
func mustOpenDatabase(root string) *storage.DB {
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	db, err := storage.OpenDB(config.DBPath(root))
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}

	if _, err := db.EnsureFresh(config.PatentsPath(root), config.ResultsPath(root)); err != nil {
		db.Close()
		exitWithError(ExitDataError, "syncing database: %v", err)
	}
	return db
}
