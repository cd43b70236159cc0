package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patentstack/patentstack/internal/classify"
	"github.com/patentstack/patentstack/internal/config"
	"github.com/patentstack/patentstack/internal/embedding"
	"github.com/patentstack/patentstack/internal/storage"
	"github.com/patentstack/patentstack/internal/taxonomy"
)

var (
	classifyThreshold     float64
	classifyProvider      string
	classifyModel         string
	classifyRebuildLabels bool
)

func init() {
	classifyCmd.Flags().Float64Var(&classifyThreshold, "threshold", 0, "Similarity threshold (default from config, 0.3 initially)")
	classifyCmd.Flags().StringVar(&classifyProvider, "provider", "", "Embedding provider: ollama, openai, onnx, or keyword")
	classifyCmd.Flags().StringVar(&classifyModel, "model", "", "Embedding model override")
	classifyCmd.Flags().BoolVar(&classifyRebuildLabels, "rebuild-labels", false, "Rebuild the label embedding index")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Classify stored patents against the taxonomy",
	Long: `Classify every stored patent into the two-tier taxonomy.

Each patent's title and abstract are embedded and compared against the
taxonomy's keyword embeddings; matches below the threshold fall back to
keyword substring matching. Results are written to results.jsonl,
replacing any previous run.

When the embedding provider is unavailable the whole run degrades to
keyword-only matching with a notice. Use --provider keyword to force it.

Examples:
  patentstack classify
  patentstack classify --threshold 0.35
  patentstack classify --provider keyword`,
	RunE: runClassify,
}

// ClassifyResponse is the classify command's JSON output.
type ClassifyResponse struct {
	Status string            `json:"status"`
	Stats  classify.RunStats `json:"stats"`
}

func runClassify(cmd *cobra.Command, args []string) error {
	root := mustFindWorkspace()
	cfg := mustLoadConfig(root)

	tax := mustLoadTaxonomy(root)
	if tax.IsEmpty() {
		outputNotice("taxonomy is empty; all records will be unclassified")
	}

	patents, err := storage.ReadPatents(config.PatentsPath(root))
	if err != nil {
		exitWithError(ExitDataError, "reading patents.jsonl: %v", err)
	}
	if len(patents) == 0 {
		exitWithError(ExitError, "no patents to classify\n\nRun 'patentstack fetch' first.")
	}

	threshold := cfg.Threshold
	if classifyThreshold > 0 {
		if err := config.ValidateThreshold(float32(classifyThreshold)); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		threshold = float32(classifyThreshold)
	}
	if threshold == 0 {
		threshold = classify.DefaultThreshold
	}

	ctx := context.Background()
	classifier := buildClassifier(ctx, root, cfg, tax, threshold)

	results, stats, err := classifier.Run(ctx, patents)
	if err != nil {
		exitWithError(ExitError, "classifying: %v", err)
	}

	if err := storage.WriteClassifications(config.ResultsPath(root), results); err != nil {
		exitWithError(ExitError, "writing results.jsonl: %v", err)
	}

	if humanOutput {
		fmt.Printf("Classified %d patents in %s\n", stats.Total, formatDuration(stats.Duration))
		fmt.Printf("  embedding:    %d\n", stats.ByEmbedding)
		fmt.Printf("  keyword:      %d\n", stats.ByKeyword)
		fmt.Printf("  unclassified: %d\n", stats.Unclassified)
		if stats.Errors > 0 {
			fmt.Printf("  errors:       %d\n", stats.Errors)
		}
		if stats.KeywordOnly {
			fmt.Println("  (keyword-only mode)")
		}
	} else {
		outputJSON(ClassifyResponse{Status: "classified", Stats: stats})
	}

	return nil
}

// buildClassifier assembles the classifier for the selected provider,
// degrading to keyword-only mode when the provider is unavailable.
func buildClassifier(ctx context.Context, root string, cfg *config.Config, tax *taxonomy.Taxonomy, threshold float32) *classify.Classifier {
	providerName := cfg.Provider
	if classifyProvider != "" {
		providerName = classifyProvider
	}
	if providerName == "" {
		providerName = "ollama"
	}

	if providerName == "keyword" {
		return classify.NewKeywordClassifier(tax, classify.WithThreshold(threshold))
	}

	provider := newProvider(providerName, cfg)
	if err := embedding.Probe(ctx, provider); err != nil {
		outputNotice("embedding provider unavailable (%v); falling back to keyword matching", err)
		return classify.NewKeywordClassifier(tax, classify.WithThreshold(threshold))
	}

	idx := ensureLabelIndex(ctx, root, provider, tax)
	return classify.NewClassifier(tax, idx, provider, classify.WithThreshold(threshold))
}

// newProvider constructs the named embedding provider, exits on error.
func newProvider(name string, cfg *config.Config) embedding.Provider {
	model := cfg.Model
	if classifyModel != "" {
		model = classifyModel
	}

	switch name {
	case "ollama":
		opts := []embedding.OllamaOption{}
		if url := config.GetOllamaURL(); url != "" {
			opts = append(opts, embedding.WithOllamaURL(url))
		}
		if model != "" {
			opts = append(opts, embedding.WithOllamaModel(model, 0))
		}
		return embedding.NewOllamaProvider(opts...)

	case "openai":
		apiKey := config.GetOpenAIAPIKey()
		if apiKey == "" {
			exitWithError(ExitAuthError, "OPENAI_API_KEY not set\n\nSet it in the environment, a .env file, or the global config.")
		}
		return embedding.NewOpenAIProvider(embedding.OpenAIConfig{
			APIKey:  apiKey,
			BaseURL: config.GetOpenAIBaseURL(),
			Model:   model,
		})

	case "onnx":
		modelDir := config.GetONNXModelDir()
		if modelDir == "" {
			exitWithError(ExitModelNotFound, "ONNX model directory not configured\n\nSet onnx_model_dir in the global config.")
		}
		provider, err := embedding.NewONNXProvider(modelDir, model)
		if err != nil {
			exitWithError(ExitModelNotFound, "loading ONNX model: %v", err)
		}
		return provider

	default:
		exitWithError(ExitError, "unknown provider %q (use ollama, openai, onnx, or keyword)", name)
		return nil
	}
}

// ensureLabelIndex loads the cached label index, rebuilding it when the
// taxonomy or model changed, --rebuild-labels was given, or no index
// exists yet.
func ensureLabelIndex(ctx context.Context, root string, provider embedding.Provider, tax *taxonomy.Taxonomy) *classify.LabelIndex {
	cacheDir := config.CachePath(root)
	if err := os.MkdirAll(cacheDir, 0755); err != nil {
		exitWithError(ExitError, "creating cache directory: %v", err)
	}

	if !classifyRebuildLabels {
		idx, err := classify.LoadIndex(cacheDir)
		if err == nil && idx.Matches(tax.Hash(), provider.ModelName()) {
			return idx
		}
		if err != nil && err != classify.ErrIndexNotFound {
			outputNotice("label index unreadable (%v); rebuilding", err)
		}
	}

	idx, err := classify.BuildLabelIndex(ctx, provider, tax)
	if err != nil {
		exitWithError(ExitError, "building label index: %v", err)
	}
	if err := idx.Save(cacheDir); err != nil {
		exitWithError(ExitError, "saving label index: %v", err)
	}
	return idx
}
