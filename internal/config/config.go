// Package config loads and validates the service configuration.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	yamlv3 "gopkg.in/yaml.v3"
)

// ProviderType identifies an external capability provider.
type ProviderType string

const (
	ProviderOllama ProviderType = "ollama"
	ProviderOpenAI ProviderType = "openai"
	ProviderNone   ProviderType = "none"
)

// TenantConfig is one tenant's identity and its static API key.
type TenantConfig struct {
	ID     string `yaml:"id" koanf:"id"`
	APIKey string `yaml:"api_key" koanf:"api_key"`
}

// Config is the top-level configuration, corresponding to .ragsearch.yml.
type Config struct {
	DataDir string `yaml:"data_dir" koanf:"data_dir"`
	DBPath  string `yaml:"db_path" koanf:"db_path"`
	Port    int    `yaml:"port" koanf:"port"`

	Provider ProviderType `yaml:"provider" koanf:"provider"`
	Model    string       `yaml:"model" koanf:"model"`

	EmbeddingProvider ProviderType `yaml:"embedding_provider" koanf:"embedding_provider"`
	EmbeddingModel    string       `yaml:"embedding_model" koanf:"embedding_model"`

	OllamaBaseURL string `yaml:"ollama_base_url" koanf:"ollama_base_url"`

	ChunkSize      int      `yaml:"chunk_size" koanf:"chunk_size"`
	ChunkOverlap   int      `yaml:"chunk_overlap" koanf:"chunk_overlap"`
	TopK           int      `yaml:"top_k" koanf:"top_k"`
	MinScore       float64  `yaml:"min_score" koanf:"min_score"`
	MaxConcurrency int      `yaml:"max_concurrency" koanf:"max_concurrency"`
	Include        []string `yaml:"include" koanf:"include"`

	Tenants []TenantConfig `yaml:"tenants" koanf:"tenants"`
}

// DefaultConfig returns a Config with the service defaults.
func DefaultConfig() *Config {
	return &Config{
		DataDir:           "data",
		DBPath:            "data/ragsearch.db",
		Port:              8000,
		Provider:          ProviderOllama,
		Model:             "mistral",
		EmbeddingProvider: ProviderOllama,
		EmbeddingModel:    "mistral",
		ChunkSize:         420,
		ChunkOverlap:      80,
		TopK:              3,
		MinScore:          0.12,
		MaxConcurrency:    4,
		Include:           []string{"*.txt"},
	}
}

// Load reads configuration from the given YAML file on top of the
// defaults, then overlays environment variable overrides (RAGSEARCH_*).
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	cfg := DefaultConfig()

	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("accessing config %s: %w", path, err)
	}

	// RAGSEARCH_DATA_DIR -> data_dir, etc.
	if err := k.Load(env.Provider("RAGSEARCH_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "RAGSEARCH_"))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading env overrides: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to the given YAML file path.
func (c *Config) Save(path string) error {
	data, err := yamlv3.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

var validProviders = map[ProviderType]bool{
	ProviderOllama: true,
	ProviderOpenAI: true,
	ProviderNone:   true,
	"":             true,
}

// Validate checks that the configuration contains workable values. In
// particular it rejects a chunk overlap that is not strictly smaller than
// the chunk size, which would make the chunking loop non-terminating.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", c.ChunkSize)
	}
	if c.ChunkOverlap < 0 {
		return fmt.Errorf("chunk_overlap must be non-negative, got %d", c.ChunkOverlap)
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("chunk_overlap %d must be smaller than chunk_size %d", c.ChunkOverlap, c.ChunkSize)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	if c.MinScore < 0 {
		return fmt.Errorf("min_score must be non-negative, got %v", c.MinScore)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", c.MaxConcurrency)
	}
	if !validProviders[c.Provider] {
		return fmt.Errorf("invalid provider %q: must be one of ollama, openai, none", c.Provider)
	}
	if !validProviders[c.EmbeddingProvider] {
		return fmt.Errorf("invalid embedding_provider %q: must be one of ollama, openai, none", c.EmbeddingProvider)
	}

	seen := make(map[string]string, len(c.Tenants))
	for _, tenant := range c.Tenants {
		if tenant.ID == "" || tenant.APIKey == "" {
			return fmt.Errorf("tenants entries require both id and api_key")
		}
		if other, ok := seen[tenant.APIKey]; ok {
			return fmt.Errorf("api key shared between tenants %s and %s", other, tenant.ID)
		}
		seen[tenant.APIKey] = tenant.ID
	}
	return nil
}

// TenantIDs returns the configured tenant ids in declaration order.
func (c *Config) TenantIDs() []string {
	ids := make([]string, len(c.Tenants))
	for i, t := range c.Tenants {
		ids[i] = t.ID
	}
	return ids
}
