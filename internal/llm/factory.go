package llm

import (
	"fmt"
	"os"
)

// NewProvider creates an LLM provider based on the given provider type.
// Supported types: "ollama", "openai", "none". The "none" provider disables
// generation, forcing extractive answers.
func NewProvider(providerType, model, baseURL string) (Provider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(model, baseURL), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "none", "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider type: %s", providerType)
	}
}
