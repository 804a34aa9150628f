package generation

import (
	"context"
)

// Provider is one external generative-model service. The size policy
// (single-call threshold and chunk window) travels with the provider since
// context limits differ per model family.
type Provider interface {
	Name() string
	SingleCallChars() int
	ChunkChars() int
	SupportsFileInput() bool
	GenerateText(ctx context.Context, system, prompt string, maxTokens int) (string, error)
	GenerateFromFile(ctx context.Context, system, prompt string, data []byte, mimeType string, maxTokens int) (string, error)
}
