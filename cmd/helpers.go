package cmd

import (
	"fmt"

	"github.com/FirasKoutari/RAG-multi-tenant/internal/chunker"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/config"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/embeddings"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/index"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/llm"
	"github.com/FirasKoutari/RAG-multi-tenant/internal/registry"
)

// loadConfig loads and validates the config, providing a user-friendly error.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w\nRun `ragsearch init` to create a config file", err)
	}
	return cfg, nil
}

// buildRegistry assembles the tenant index registry from config. The
// embedder may end up nil, in which case every index is lexical.
func buildRegistry(cfg *config.Config) (*registry.Registry, error) {
	splitter, err := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, fmt.Errorf("configuring chunker: %w", err)
	}

	embedder, err := embeddings.NewProvider(
		string(cfg.EmbeddingProvider), cfg.EmbeddingModel, cfg.OllamaBaseURL, cfg.MaxConcurrency)
	if err != nil {
		return nil, fmt.Errorf("creating embedding provider: %w", err)
	}

	return registry.New(cfg.DataDir, index.BuildOptions{
		Splitter: splitter,
		Embedder: embedder,
		Include:  cfg.Include,
	}), nil
}

// createLLMFromConfig creates the generation provider. A nil provider
// means answers are extractive only.
func createLLMFromConfig(cfg *config.Config) (llm.Provider, error) {
	return llm.NewProvider(string(cfg.Provider), cfg.Model, cfg.OllamaBaseURL)
}
