package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/classify"
	"github.com/patentstack/patentstack/internal/config"
)

func init() {
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new patentstack workspace",
	Long: `Initialize a new patentstack workspace in the current directory.

Creates:
  .patentstack/
  ├── patents.jsonl   # Empty file
  ├── taxonomy.yml    # Skeleton taxonomy to edit
  ├── config.json     # Default config
  └── cache/          # Empty directory (gitignored)`,
	RunE: runInit,
}

// taxonomySkeleton is written on init for the user to edit.
const taxonomySkeleton = `# Two-tier classification taxonomy.
# Category and subcategory order decides ties: earlier wins.
categories: []
# Example:
# categories:
#   - name: Hardware
#     subcategories:
#       - name: processors
#         keywords: [CPU, microprocessor, instruction pipeline]
#       - name: memory
#         keywords: [DRAM, cache hierarchy, memory controller]
`

func runInit(cmd *cobra.Command, args []string) error {
	root, exitCode := getStartingDirectory()
	if exitCode != 0 {
		os.Exit(exitCode)
	}

	if config.IsWorkspace(root) {
		exitWithError(ExitError, "directory already contains a patentstack workspace")
	}

	if err := os.MkdirAll(config.WorkspacePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating .patentstack directory: %v", err)
	}
	if err := os.MkdirAll(config.CachePath(root), 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	patentsFile, err := os.Create(config.PatentsPath(root))
	if err != nil {
		exitWithError(ExitError, "creating patents.jsonl: %v", err)
	}
	patentsFile.Close()

	if err := os.WriteFile(config.TaxonomyPath(root), []byte(taxonomySkeleton), 0644); err != nil {
		exitWithError(ExitError, "creating taxonomy.yml: %v", err)
	}

	cfg := &config.Config{
		Threshold: classify.DefaultThreshold,
		Provider:  "ollama",
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "creating config.json: %v", err)
	}

	if humanOutput {
		fmt.Printf("Initialized patentstack workspace in %s\n", root)
		fmt.Println("Edit .patentstack/taxonomy.yml to define your taxonomy.")
	} else {
		outputJSON(StatusResponse{
			Status: "initialized",
			Path:   root,
		})
	}

	return nil
}
