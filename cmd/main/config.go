package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/CTAG07/markovdot/pkg/corpus"
	"github.com/natefinch/atomic"
	"gopkg.in/yaml.v3"
)

// CorpusConfig holds settings for reading and tokenizing input files.
type CorpusConfig struct {
	MinTokens  int    `json:"min_tokens" yaml:"min_tokens"`
	TokenRegex string `json:"token_regex" yaml:"token_regex"`
	SQLQuery   string `json:"sql_query" yaml:"sql_query"`
}

// GenerateConfig holds settings for the generate and export commands.
type GenerateConfig struct {
	GraphPath   string  `json:"graph_path" yaml:"graph_path"`
	Count       int     `json:"count" yaml:"count"`
	MaxLength   int     `json:"max_length" yaml:"max_length"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	TopK        int     `json:"top_k" yaml:"top_k"`
	Separator   string  `json:"separator" yaml:"separator"`
}

// ServerConfig holds the configuration for the HTTP API.
type ServerConfig struct {
	ApiAddr            string `json:"api_addr" yaml:"api_addr"`
	MaxLength          int    `json:"max_length" yaml:"max_length"`
	MaxCount           int    `json:"max_count" yaml:"max_count"`
	ShutdownTimeoutSec int    `json:"shutdown_timeout_sec" yaml:"shutdown_timeout_sec"`
}

// Config is the top-level configuration struct that aggregates all other configs.
type Config struct {
	LogLevel string          `json:"log_level" yaml:"log_level"`
	Corpus   *CorpusConfig   `json:"corpus_config" yaml:"corpus_config"`
	Generate *GenerateConfig `json:"generate_config" yaml:"generate_config"`
	Server   *ServerConfig   `json:"server_config" yaml:"server_config"`
}

// DefaultConfig creates a configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Corpus: &CorpusConfig{
			MinTokens:  corpus.DefaultMinTokens,
			TokenRegex: `\S+`,
			SQLQuery:   corpus.DefaultSQLQuery,
		},
		Generate: &GenerateConfig{
			GraphPath:   "markov.dot",
			Count:       0,
			MaxLength:   0,
			Temperature: 1.0,
			TopK:        0,
			Separator:   "-------------------",
		},
		Server: &ServerConfig{
			ApiAddr:            ":7278",
			MaxLength:          1000,
			MaxCount:           100,
			ShutdownTimeoutSec: 10,
		},
	}
}

// isYAML reports whether path names a YAML config file.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

// LoadConfig reads the configuration from a JSON or YAML file at the given path.
// If the file doesn't exist, it creates one with default values.
func LoadConfig(path string) (*Config, error) {
	// Initialize with default configurations
	config := DefaultConfig()

	file, err := os.ReadFile(path)
	if err != nil {
		// If the file doesn't exist, create it with the default config.
		if os.IsNotExist(err) {
			var data []byte
			if isYAML(path) {
				data, err = yaml.Marshal(config)
			} else {
				data, err = json.MarshalIndent(config, "", "  ")
			}
			if err != nil {
				return nil, fmt.Errorf("failed to marshal default config: %w", err)
			}
			if err = atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
				// Log a warning instead of failing, as the program can still run with defaults.
				fmt.Fprintf(os.Stderr, "warning: failed to write default config file: %v\n", err)
			}
			return config, nil
		}
		// For other errors (e.g., permission denied), return the error.
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if isYAML(path) {
		err = yaml.Unmarshal(file, config)
	} else {
		err = json.Unmarshal(file, config)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.fillDefaults()
	return config, nil
}

// fillDefaults restores sections a config file set to null or omitted.
func (c *Config) fillDefaults() {
	defaults := DefaultConfig()
	if c.Corpus == nil {
		c.Corpus = defaults.Corpus
	}
	if c.Generate == nil {
		c.Generate = defaults.Generate
	}
	if c.Server == nil {
		c.Server = defaults.Server
	}
}

// Validate checks the settings that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if c.Corpus.MinTokens < 0 {
		return fmt.Errorf("corpus_config.min_tokens must not be negative, got %d", c.Corpus.MinTokens)
	}
	if c.Corpus.TokenRegex != "" {
		if _, err := regexp.Compile(c.Corpus.TokenRegex); err != nil {
			return fmt.Errorf("corpus_config.token_regex is invalid: %w", err)
		}
	}
	if c.Generate.Count < 0 {
		return fmt.Errorf("generate_config.count must not be negative, got %d", c.Generate.Count)
	}
	if c.Generate.MaxLength < 0 {
		return fmt.Errorf("generate_config.max_length must not be negative, got %d", c.Generate.MaxLength)
	}
	if math.IsNaN(c.Generate.Temperature) || math.IsInf(c.Generate.Temperature, 0) {
		return fmt.Errorf("generate_config.temperature must be a finite number, got %v", c.Generate.Temperature)
	}
	if c.Generate.TopK < 0 {
		return fmt.Errorf("generate_config.top_k must not be negative, got %d", c.Generate.TopK)
	}
	if c.Server.MaxLength <= 0 || c.Server.MaxCount <= 0 || c.Server.ShutdownTimeoutSec <= 0 {
		return fmt.Errorf("server_config.max_length, server_config.max_count and server_config.shutdown_timeout_sec must be positive")
	}
	return nil
}

// newLoader builds a corpus loader from the corpus settings.
func (c *CorpusConfig) newLoader(opts ...corpus.LoaderOption) *corpus.Loader {
	var tokenizer corpus.Tokenizer
	if c.TokenRegex != "" {
		tokenizer = corpus.NewDefaultTokenizer(corpus.WithTokenRegex(c.TokenRegex))
	}
	opts = append([]corpus.LoaderOption{corpus.WithMinTokens(c.MinTokens)}, opts...)
	if c.SQLQuery != "" {
		opts = append(opts, corpus.WithSQLQuery(c.SQLQuery))
	}
	return corpus.NewLoader(tokenizer, opts...)
}
