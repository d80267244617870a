// Package llm selects and decorates the configured text-generation provider.
package llm

import (
	"fmt"

	"newspulse/internal/interfaces"
	"newspulse/internal/llm/claude"
	"newspulse/internal/llm/gemini"
	"newspulse/internal/llm/llmobs"
	"newspulse/internal/llm/noop"
	"newspulse/internal/llm/openai"
	"newspulse/internal/store"
)

// New returns the provider named by cfg.LLM.Provider, wrapped with logging and tracing.
func New(cfg *store.Config) (interfaces.Generator, error) {
	var gen interfaces.Generator
	switch cfg.LLM.Provider {
	case "GEMINI":
		gen = gemini.NewGenerator(cfg)
	case "OPENAI":
		gen = openai.NewGenerator(cfg)
	case "CLAUDE":
		gen = claude.NewGenerator(cfg)
	case "NOOP", "":
		gen = noop.NewGenerator()
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
	}
	return llmobs.Wrap(gen, cfg.LLM.Provider), nil
}
