// Package llm abstracts external text generation services and the
// retrieval-augmented prompt they are driven with.
package llm

import "context"

// Provider defines the interface for LLM providers.
type Provider interface {
	// IsAvailable probes the provider with a short timeout.
	IsAvailable(ctx context.Context) bool

	// Generate produces a completion for prompt under the optional system
	// instructions. An empty string with a nil error is a valid "no
	// output" result; callers treat both error and empty output as a
	// signal to fall back.
	Generate(ctx context.Context, prompt, system string) (string, error)

	// Name returns the name of this provider.
	Name() string
}
