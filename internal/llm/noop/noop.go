package noop

import (
	"context"
	"fmt"

	"newspulse/internal/logger"
	"newspulse/internal/types"
)

// Generator is a fallback used when no text-generation provider is configured
type Generator struct{}

// NewGenerator returns a generator that never touches the network
func NewGenerator() *Generator {
	return &Generator{}
}

// Generate returns a fixed notice. It needs no credential.
func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	logger.Debug(ctx, "Noop generator called", "prompt_chars", len(req.Prompt))
	return fmt.Sprintf("AI narrative is disabled (provider NOOP). The prompt had %d characters and %d prior turns.",
		len(req.Prompt), len(req.History)), nil
}
