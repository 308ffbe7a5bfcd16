// Package llm defines the text generation contract consumed by the bot
package llm

import (
	"context"
	"errors"
)

// ErrGeneration marks failed or empty LLM generations
var ErrGeneration = errors.New("llm generation failed")

// Tier selects between the fast and the large model
type Tier string

const (
	// TierFast is used for short analyses
	TierFast Tier = "fast"
	// TierLarge is used for chat and pull request reviews
	TierLarge Tier = "large"
)

// Request is a single-turn generation request. Zero sampling values leave
// the provider defaults in place.
type Request struct {
	Tier            Tier
	System          string
	Prompt          string
	Temperature     float64
	TopP            float64
	MaxOutputTokens int
}

// Generator produces text for a prompt
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
