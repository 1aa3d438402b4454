// Package llm talks to a chat-completions text generation API.
package llm

import "context"

//go:generate mockgen -source=generator.go -destination=mocks/mock_generator.go -package=mocks

// Generator turns a prompt into free text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
