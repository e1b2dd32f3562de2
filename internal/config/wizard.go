package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
)

// RunWizard runs an interactive configuration wizard, saves the result to
// .ragsearch.yml and returns it. Each tenant entered gets a generated API
// key printed once at the end.
func RunWizard() (*Config, error) {
	fmt.Println("Welcome to ragsearch! Let's configure your service.")
	fmt.Println()

	cfg := DefaultConfig()

	dataPrompt := promptui.Prompt{
		Label:   "Data directory (one subdirectory per tenant)",
		Default: cfg.DataDir,
	}
	dataDir, err := dataPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("data dir: %w", err)
	}
	cfg.DataDir = dataDir

	portPrompt := promptui.Prompt{
		Label:   "HTTP port",
		Default: strconv.Itoa(cfg.Port),
		Validate: func(s string) error {
			p, err := strconv.Atoi(s)
			if err != nil || p <= 0 || p > 65535 {
				return fmt.Errorf("enter a port between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("port: %w", err)
	}
	cfg.Port, _ = strconv.Atoi(portStr)

	providerPrompt := promptui.Select{
		Label: "LLM provider for answer generation",
		Items: []string{"ollama", "openai", "none (extractive answers only)"},
	}
	providerIdx, _, err := providerPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("provider selection: %w", err)
	}
	providers := []ProviderType{ProviderOllama, ProviderOpenAI, ProviderNone}
	cfg.Provider = providers[providerIdx]

	if cfg.Provider != ProviderNone {
		modelPrompt := promptui.Prompt{
			Label:   "Generation model",
			Default: defaultModelFor(cfg.Provider),
		}
		model, err := modelPrompt.Run()
		if err != nil {
			return nil, fmt.Errorf("model: %w", err)
		}
		cfg.Model = model
	} else {
		cfg.Model = ""
	}

	embedPrompt := promptui.Select{
		Label: "Embedding provider for dense retrieval",
		Items: []string{"ollama", "openai", "none (TF-IDF only)"},
	}
	embedIdx, _, err := embedPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("embedding provider selection: %w", err)
	}
	cfg.EmbeddingProvider = providers[embedIdx]
	switch cfg.EmbeddingProvider {
	case ProviderOpenAI:
		cfg.EmbeddingModel = "text-embedding-3-small"
	case ProviderOllama:
		cfg.EmbeddingModel = "mistral"
	default:
		cfg.EmbeddingModel = ""
	}

	tenantsPrompt := promptui.Prompt{
		Label:   "Tenant IDs (comma-separated)",
		Default: "default",
	}
	tenantsStr, err := tenantsPrompt.Run()
	if err != nil {
		return nil, fmt.Errorf("tenants: %w", err)
	}
	for _, id := range strings.Split(tenantsStr, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		cfg.Tenants = append(cfg.Tenants, TenantConfig{
			ID:     id,
			APIKey: uuid.New().String(),
		})
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Save(".ragsearch.yml"); err != nil {
		return nil, err
	}

	fmt.Println("\nConfiguration saved to .ragsearch.yml")
	for _, t := range cfg.Tenants {
		fmt.Printf("  tenant %-20s api key: %s\n", t.ID, t.APIKey)
	}
	fmt.Printf("\nPut each tenant's .txt documents under %s/<tenant-id>/ and run `ragsearch serve`.\n", cfg.DataDir)
	return cfg, nil
}

func defaultModelFor(p ProviderType) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	default:
		return "mistral"
	}
}
