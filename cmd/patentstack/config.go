package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

// configKeys lists keys in display order for the no-arg form.
var configKeys = []string{
	"companies", "start_date", "end_date", "domains", "sources",
	"threshold", "provider", "model", "max_cost", "max_records",
}

var configCmd = &cobra.Command{
	Use:   "config [key] [value]",
	Short: "Get or set workspace configuration values",
	Long: `Get or set workspace configuration values.

Usage:
  patentstack config                       # Show all config
  patentstack config companies             # Get specific value
  patentstack config companies "IBM,Intel" # Set value
  patentstack config threshold 0.35       # Set classification threshold

Keys:
  companies    Comma-separated default company list
  start_date   Default range start (YYYY-MM-DD)
  end_date     Default range end (YYYY-MM-DD)
  domains      Comma-separated domain names from domains.yml
  sources      Comma-separated sources (uspto_patents, uspto_publications, bigquery)
  threshold    Classification similarity threshold (0..1)
  provider     Embedding provider (ollama, openai, onnx)
  model        Embedding model override
  max_cost     BigQuery cost limit in USD
  max_records  Per-source fetch cap`,
	Args: cobra.MaximumNArgs(2),
	RunE: runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	// No args: show all config
	if len(args) == 0 {
		if humanOutput {
			for _, key := range configKeys {
				value, _ := cfg.Get(key)
				fmt.Printf("%-12s %s\n", key+":", value)
			}
		} else {
			outputJSON(cfg)
		}
		return nil
	}

	key := normalizeKey(args[0])

	// One arg: get specific value
	if len(args) == 1 {
		value, err := cfg.Get(key)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		if humanOutput {
			fmt.Println(value)
		} else {
			outputJSON(map[string]string{key: value})
		}
		return nil
	}

	// Two args: set value
	value := args[1]
	if err := cfg.Set(key, value); err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if err := cfg.Save(root); err != nil {
		exitWithError(ExitError, "saving config: %v", err)
	}

	if humanOutput {
		fmt.Printf("Updated %s to %s\n", key, value)
	} else {
		outputJSON(UpdateResponse{
			Status: "updated",
			Key:    key,
			Value:  value,
		})
	}

	return nil
}

// normalizeKey converts key formats (start-date, start_date) to the
// canonical underscore form.
func normalizeKey(key string) string {
	key = strings.ToLower(key)
	return strings.ReplaceAll(key, "-", "_")
}
