package embeddings

import (
	"fmt"
	"os"
)

// NewProvider creates an embedding provider based on the given provider type.
// Supported types: "ollama", "openai", "none". The "none" provider disables
// dense indexing entirely, forcing lexical search.
func NewProvider(providerType, model, baseURL string, concurrency int) (Provider, error) {
	switch providerType {
	case "ollama":
		return NewOllamaProvider(model, baseURL, concurrency), nil

	case "openai":
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, model), nil

	case "none", "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unsupported embedding provider type: %s", providerType)
	}
}
