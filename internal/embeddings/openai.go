package embeddings

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const maxBatchSize = 100

const openaiProbeTimeout = 5 * time.Second

// OpenAIProvider generates embeddings using OpenAI's API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI embedding provider with the given
// API key and model (e.g. "text-embedding-3-small").
func NewOpenAIProvider(apiKey, model string) *OpenAIProvider {
	return &OpenAIProvider{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (p *OpenAIProvider) Name() string {
	return "openai/" + p.model
}

// IsAvailable verifies the API key by listing models with a short timeout.
func (p *OpenAIProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, openaiProbeTimeout)
	defer cancel()

	_, err := p.client.ListModels(ctx)
	return err == nil
}

func (p *OpenAIProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(p.model),
	})
	if err != nil {
		return nil, fmt.Errorf("openai embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("openai returned no embeddings")
	}
	return resp.Data[0].Embedding, nil
}

// EmbedBatch embeds texts in API batches of up to maxBatchSize. A failed
// batch leaves nil entries for its texts rather than aborting the attempt.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	for i := 0; i < len(texts); i += maxBatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := i + maxBatchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := texts[i:end]

		resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: batch,
			Model: openai.EmbeddingModel(p.model),
		})
		if err != nil || len(resp.Data) != len(batch) {
			continue
		}
		for j, emb := range resp.Data {
			results[i+j] = emb.Embedding
		}
	}
	return results, nil
}
