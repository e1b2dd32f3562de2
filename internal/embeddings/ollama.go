package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

const defaultOllamaBaseURL = "http://localhost:11434"

const (
	ollamaProbeTimeout = 5 * time.Second
	ollamaEmbedTimeout = 30 * time.Second
)

// OllamaProvider generates embeddings using a local Ollama instance.
type OllamaProvider struct {
	baseURL     string
	model       string
	concurrency int
	httpClient  *http.Client
}

// NewOllamaProvider creates an Ollama embedding provider. baseURL defaults
// to http://localhost:11434 if empty. concurrency caps the number of
// in-flight calls during batch generation.
func NewOllamaProvider(model, baseURL string, concurrency int) *OllamaProvider {
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	if concurrency < 1 {
		concurrency = 1
	}
	return &OllamaProvider{
		baseURL:     baseURL,
		model:       model,
		concurrency: concurrency,
		httpClient:  &http.Client{},
	}
}

func (p *OllamaProvider) Name() string {
	return "ollama/" + p.model
}

// IsAvailable checks the Ollama tags endpoint with a short timeout.
func (p *OllamaProvider) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, ollamaProbeTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// EmbedText generates a single embedding with a fixed per-call timeout.
func (p *OllamaProvider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, ollamaEmbedTimeout)
	defer cancel()

	body, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("marshal ollama request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create ollama request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode ollama response: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("ollama returned an empty embedding")
	}
	return result.Embedding, nil
}

// EmbedBatch embeds texts through a bounded worker pool. Individual call
// failures leave a nil entry at that position; the batch as a whole fails
// only when the context is cancelled.
func (p *OllamaProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	results := make([][]float32, len(texts))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup

	for i, text := range texts {
		// A plain select would pick the semaphore at random when the
		// context is already done, letting a cancelled batch slip
		// through as an all-nil success.
		if err := ctx.Err(); err != nil {
			wg.Wait()
			return nil, err
		}
		select {
		case <-ctx.Done():
			wg.Wait()
			return nil, ctx.Err()
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := p.EmbedText(ctx, text)
			if err != nil {
				// Missing vector for this entry, not a hard failure.
				return
			}
			results[i] = vec
		}(i, text)
	}

	wg.Wait()
	return results, nil
}
