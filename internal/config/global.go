// Package config handles workspace and global configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/patentstack/config.yml.
type GlobalConfig struct {
	PatentsViewAPIKey       string `yaml:"patentsview_api_key,omitempty"`
	BigQueryProjectID       string `yaml:"bigquery_project_id,omitempty"`
	BigQueryCredentialsFile string `yaml:"bigquery_credentials_file,omitempty"`
	OpenAIAPIKey            string `yaml:"openai_api_key,omitempty"`
	OpenAIBaseURL           string `yaml:"openai_base_url,omitempty"`
	OllamaURL               string `yaml:"ollama_url,omitempty"`
	ONNXModelDir            string `yaml:"onnx_model_dir,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "patentstack"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/patentstack/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	// Expand tilde in the credentials and model paths
	if cfg.BigQueryCredentialsFile != "" {
		cfg.BigQueryCredentialsFile = ExpandPath(cfg.BigQueryCredentialsFile)
	}
	if cfg.ONNXModelDir != "" {
		cfg.ONNXModelDir = ExpandPath(cfg.ONNXModelDir)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetPatentsViewAPIKey returns the PatentsView API key. The environment
// variable PATENTSVIEW_API_KEY takes precedence over the config file.
func GetPatentsViewAPIKey() string {
	if key := os.Getenv("PATENTSVIEW_API_KEY"); key != "" {
		return key
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.PatentsViewAPIKey
}

// GetBigQueryProjectID returns the BigQuery project ID. The environment
// variable BIGQUERY_PROJECT_ID takes precedence over the config file.
func GetBigQueryProjectID() string {
	if id := os.Getenv("BIGQUERY_PROJECT_ID"); id != "" {
		return id
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.BigQueryProjectID
}

// GetBigQueryCredentialsFile returns the service account key file path.
func GetBigQueryCredentialsFile() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.BigQueryCredentialsFile
}

// GetOpenAIAPIKey returns the OpenAI API key. The environment variable
// OPENAI_API_KEY takes precedence over the config file.
func GetOpenAIAPIKey() string {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}
	cfg, _ := LoadGlobalConfig()
	return cfg.OpenAIAPIKey
}

// GetOpenAIBaseURL returns the OpenAI-compatible endpoint override, if any.
func GetOpenAIBaseURL() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.OpenAIBaseURL
}

// GetOllamaURL returns the configured Ollama base URL, if any.
func GetOllamaURL() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.OllamaURL
}

// GetONNXModelDir returns the configured ONNX model directory, if any.
func GetONNXModelDir() string {
	cfg, _ := LoadGlobalConfig()
	return cfg.ONNXModelDir
}

// HelpfulAPIKeyMessage returns a helpful message when the PatentsView API
// key is not configured.
func HelpfulAPIKeyMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No PatentsView API key configured.

Tip: Request a free key at https://patentsview.org/apis/keyrequest, then
either export PATENTSVIEW_API_KEY or create %s:
  mkdir -p %s
  echo 'patentsview_api_key: YOUR_KEY' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
