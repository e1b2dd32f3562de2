package llm

import (
	"context"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const openaiProbeTimeout = 5 * time.Second

// OpenAIProvider implements Provider using the OpenAI Chat Completions API.
type OpenAIProvider struct {
	client *openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI LLM provider.
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

func (p *OpenAIProvider) Generate(ctx context.Context, prompt, system string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if system != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.3,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
