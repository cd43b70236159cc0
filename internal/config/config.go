// Package config handles workspace configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/patentstack/patentstack/internal/patent"
)

// Config represents workspace configuration stored in .patentstack/config.json.
type Config struct {
	Companies  []string `json:"companies"`             // Assignee names to fetch
	StartDate  string   `json:"start_date"`            // Inclusive, YYYY-MM-DD
	EndDate    string   `json:"end_date"`              // Inclusive, YYYY-MM-DD
	Domains    []string `json:"domains,omitempty"`     // Domain names from domains.yml
	Sources    []string `json:"sources,omitempty"`     // Which fetchers to run
	Threshold  float32  `json:"threshold,omitempty"`   // Classifier similarity threshold
	Provider   string   `json:"provider,omitempty"`    // Embedding provider: ollama, openai, onnx
	Model      string   `json:"model,omitempty"`       // Embedding model name override
	MaxCost    float64  `json:"max_cost,omitempty"`    // BigQuery cost cap in USD
	MaxRecords int      `json:"max_records,omitempty"` // Per-source record cap
}

const (
	WorkspaceDir = ".patentstack"
	ConfigFile   = "config.json"
	TaxonomyFile = "taxonomy.yml"
	DomainsFile  = "domains.yml"
	PatentsFile  = "patents.jsonl"
	ResultsFile  = "results.jsonl"
	CacheDir     = "cache"
	DBFile       = "patents.db"
)

// ValidSources lists the supported fetch source values.
var ValidSources = []string{
	patent.SourceUSPTOPatents,
	patent.SourceUSPTOPublications,
	patent.SourceBigQuery,
}

// ValidProviders lists the supported embedding provider values.
var ValidProviders = []string{"ollama", "openai", "onnx"}

// WorkspacePath returns the path to the .patentstack directory from a root path.
func WorkspacePath(root string) string {
	return filepath.Join(root, WorkspaceDir)
}

// ConfigPath returns the path to config.json from a root path.
func ConfigPath(root string) string {
	return filepath.Join(root, WorkspaceDir, ConfigFile)
}

// TaxonomyPath returns the path to taxonomy.yml from a root path.
func TaxonomyPath(root string) string {
	return filepath.Join(root, WorkspaceDir, TaxonomyFile)
}

// DomainsPath returns the path to domains.yml from a root path.
func DomainsPath(root string) string {
	return filepath.Join(root, WorkspaceDir, DomainsFile)
}

// PatentsPath returns the path to patents.jsonl from a root path.
func PatentsPath(root string) string {
	return filepath.Join(root, WorkspaceDir, PatentsFile)
}

// ResultsPath returns the path to results.jsonl from a root path.
func ResultsPath(root string) string {
	return filepath.Join(root, WorkspaceDir, ResultsFile)
}

// CachePath returns the path to the cache directory from a root path.
func CachePath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir)
}

// DBPath returns the path to patents.db from a root path.
func DBPath(root string) string {
	return filepath.Join(root, WorkspaceDir, CacheDir, DBFile)
}

// IsWorkspace checks if the given path contains a patentstack workspace.
func IsWorkspace(root string) bool {
	info, err := os.Stat(WorkspacePath(root))
	return err == nil && info.IsDir()
}

// FindWorkspace walks up from the given path to find a patentstack workspace.
// Returns the workspace root path or an error if not found.
func FindWorkspace(start string) (string, error) {
	abs, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	for {
		if IsWorkspace(abs) {
			return abs, nil
		}

		parent := filepath.Dir(abs)
		if parent == abs {
			return "", fmt.Errorf("not in a patentstack workspace (no .patentstack directory found)")
		}
		abs = parent
	}
}

// Load reads configuration from the workspace at the given root.
func Load(root string) (*Config, error) {
	data, err := os.ReadFile(ConfigPath(root))
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return &cfg, nil
}

// Save writes configuration to the workspace at the given root.
func (c *Config) Save(root string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(ConfigPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// EffectiveSources returns the configured sources, defaulting to the two
// USPTO endpoints when none are set.
func (c *Config) EffectiveSources() []string {
	if len(c.Sources) > 0 {
		return c.Sources
	}
	return []string{patent.SourceUSPTOPatents, patent.SourceUSPTOPublications}
}

// ValidateSources checks that every source value is supported.
func ValidateSources(sources []string) error {
	for _, s := range sources {
		if !contains(ValidSources, s) {
			return fmt.Errorf("invalid source: %s (valid: %v)", s, ValidSources)
		}
	}
	return nil
}

// ValidateProvider checks that the provider value is valid.
func ValidateProvider(provider string) error {
	if provider == "" {
		return nil // Empty defaults to "ollama"
	}
	if !contains(ValidProviders, provider) {
		return fmt.Errorf("invalid provider: %s (valid: %v)", provider, ValidProviders)
	}
	return nil
}

// ValidateThreshold checks that the threshold is in [0, 1].
func ValidateThreshold(threshold float32) error {
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("threshold must be between 0 and 1, got %v", threshold)
	}
	return nil
}

// ValidateDate checks that a date is empty or in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if date == "" {
		return nil
	}
	if len(date) != 10 || date[4] != '-' || date[7] != '-' {
		return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", date)
	}
	for i, r := range date {
		if i == 4 || i == 7 {
			continue
		}
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", date)
		}
	}
	return nil
}

// Get returns the value of a config key as a display string.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case "companies":
		return strings.Join(c.Companies, ","), nil
	case "start_date":
		return c.StartDate, nil
	case "end_date":
		return c.EndDate, nil
	case "domains":
		return strings.Join(c.Domains, ","), nil
	case "sources":
		return strings.Join(c.Sources, ","), nil
	case "threshold":
		return strconv.FormatFloat(float64(c.Threshold), 'g', -1, 32), nil
	case "provider":
		return c.Provider, nil
	case "model":
		return c.Model, nil
	case "max_cost":
		return strconv.FormatFloat(c.MaxCost, 'g', -1, 64), nil
	case "max_records":
		return strconv.Itoa(c.MaxRecords), nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

// Set updates a config key from its string form, validating the value.
func (c *Config) Set(key, value string) error {
	switch key {
	case "companies":
		c.Companies = splitList(value)
	case "start_date":
		if err := ValidateDate(value); err != nil {
			return err
		}
		c.StartDate = value
	case "end_date":
		if err := ValidateDate(value); err != nil {
			return err
		}
		c.EndDate = value
	case "domains":
		c.Domains = splitList(value)
	case "sources":
		sources := splitList(value)
		if err := ValidateSources(sources); err != nil {
			return err
		}
		c.Sources = sources
	case "threshold":
		f, err := strconv.ParseFloat(value, 32)
		if err != nil {
			return fmt.Errorf("invalid threshold: %s", value)
		}
		if err := ValidateThreshold(float32(f)); err != nil {
			return err
		}
		c.Threshold = float32(f)
	case "provider":
		if err := ValidateProvider(value); err != nil {
			return err
		}
		c.Provider = value
	case "model":
		c.Model = value
	case "max_cost":
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid max_cost: %s", value)
		}
		c.MaxCost = f
	case "max_records":
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid max_records: %s", value)
		}
		c.MaxRecords = n
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func contains(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}
