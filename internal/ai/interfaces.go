package ai

import (
	"context"
	"errors"
)

// ErrNoContent is returned when a provider answers without any generated text
var ErrNoContent = errors.New("no content in model response")

// GenerationConfig holds per-provider text generation settings
type GenerationConfig struct {
	Model           string
	Temperature     *float32 // nil keeps the provider default
	MaxOutputTokens int32    // 0 keeps the provider default
}

// TextGenerator defines the interface for single-prompt text generation.
// The returned text is the model output verbatim; any failure is reported
// through the error and never through the text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// TextGeneratorFunc adapts a function to TextGenerator
type TextGeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f TextGeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}
