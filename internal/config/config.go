// Package config loads runtime settings for the receipted CLI.
//
// Settings live in an optional receipted.jsonc file. The file format is
// JSONC (JSON with Comments), so this package uses github.com/tidwall/jsonc
// to strip comments before parsing with the standard encoding/json library.
// Every setting has a sensible default; a missing config file is not an
// error, only an explicitly requested file that does not exist is.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/jsonc"
)

// Default values applied when a setting is absent from the config file.
const (
	// DefaultModel is the vision-language model used for extraction.
	DefaultModel = "meta-llama/llama-4-maverick-17b-128e-instruct"

	// DefaultBaseURL is Groq's OpenAI-compatible API endpoint.
	DefaultBaseURL = "https://api.groq.com/openai/v1"

	// DefaultTemperature keeps sampling low for consistent extraction.
	DefaultTemperature float32 = 0.2

	// DefaultMaxTokens bounds the completion length. Receipt documents
	// are small; 1000 tokens is ample for the full field set.
	DefaultMaxTokens = 1000

	// DefaultTimeoutSeconds is the HTTP client timeout for one inference
	// call. Zero in the config restores the library default (no timeout).
	DefaultTimeoutSeconds = 60

	// DefaultEnvFile is the dotenv file holding the API credential.
	DefaultEnvFile = ".env"
)

// Config holds the effective runtime settings after merging the config
// file (if any) over the defaults.
type Config struct {
	// Model is the inference model identifier sent with every request.
	Model string

	// BaseURL is the OpenAI-compatible API endpoint.
	BaseURL string

	// Temperature is the sampling temperature for the completion.
	Temperature float32

	// MaxTokens bounds the completion length.
	MaxTokens int

	// TimeoutSeconds is the HTTP client timeout for a single inference
	// call. Zero means no explicit timeout (library default).
	TimeoutSeconds int

	// EnvFile is the path to the dotenv file holding the credential.
	EnvFile string

	// SchemaFile optionally names a YAML file overriding the built-in
	// extraction field schema. Empty means use the built-in schema.
	SchemaFile string
}

// rawConfig mirrors the receipted.jsonc structure. Numeric fields are
// pointers so that an explicit zero in the file (e.g., "timeoutSeconds": 0
// to disable the timeout) is distinguishable from an absent field.
// encoding/json silently ignores unknown fields, which is the desired
// behavior for forward compatibility.
type rawConfig struct {
	Model          string   `json:"model,omitempty"`
	BaseURL        string   `json:"baseUrl,omitempty"`
	Temperature    *float32 `json:"temperature,omitempty"`
	MaxTokens      *int     `json:"maxTokens,omitempty"`
	TimeoutSeconds *int     `json:"timeoutSeconds,omitempty"`
	EnvFile        string   `json:"envFile,omitempty"`
	SchemaFile     string   `json:"schemaFile,omitempty"`
}

// Default returns a Config populated entirely from the default values.
func Default() *Config {
	return &Config{
		Model:          DefaultModel,
		BaseURL:        DefaultBaseURL,
		Temperature:    DefaultTemperature,
		MaxTokens:      DefaultMaxTokens,
		TimeoutSeconds: DefaultTimeoutSeconds,
		EnvFile:        DefaultEnvFile,
	}
}

// Load resolves the effective configuration.
//
// When explicitPath is non-empty the file must exist — a user who passed
// --config expects it to be honored, so a missing file is an error.
// Otherwise the standard locations (receipted.jsonc, .receipted.jsonc in
// the current directory) are searched and absence falls back to defaults.
func Load(explicitPath string) (*Config, error) {
	path := explicitPath
	if path == "" {
		path = findConfigFile()
		if path == "" {
			return Default(), nil
		}
	}
	return loadFile(path)
}

// findConfigFile searches the standard config locations in priority order
// and returns the first that exists, or "" when none does.
func findConfigFile() string {
	candidates := []string{
		"receipted.jsonc",
		".receipted.jsonc",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFile reads a config file, strips JSONC comments, parses it, and
// merges the parsed values over the defaults.
func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	// Strip // and /* */ comments plus trailing commas before handing
	// the bytes to encoding/json.
	cleanJSON := jsonc.ToJSON(data)

	var raw rawConfig
	if err := json.Unmarshal(cleanJSON, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg := Default()
	if raw.Model != "" {
		cfg.Model = raw.Model
	}
	if raw.BaseURL != "" {
		cfg.BaseURL = raw.BaseURL
	}
	if raw.Temperature != nil {
		cfg.Temperature = *raw.Temperature
	}
	if raw.MaxTokens != nil {
		cfg.MaxTokens = *raw.MaxTokens
	}
	if raw.TimeoutSeconds != nil {
		cfg.TimeoutSeconds = *raw.TimeoutSeconds
	}
	if raw.EnvFile != "" {
		cfg.EnvFile = raw.EnvFile
	}
	if raw.SchemaFile != "" {
		// Schema paths are resolved relative to the config file, so a
		// project-local receipted.jsonc can reference a sibling schema.yaml
		// regardless of the invocation directory.
		if filepath.IsAbs(raw.SchemaFile) {
			cfg.SchemaFile = raw.SchemaFile
		} else {
			cfg.SchemaFile = filepath.Join(filepath.Dir(path), raw.SchemaFile)
		}
	}

	return cfg, nil
}
