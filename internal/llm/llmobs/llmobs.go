package llmobs

import (
	"context"

	"newspulse/internal/interfaces"
	"newspulse/internal/logger"
	"newspulse/internal/trace"
	"newspulse/internal/types"
)

// observableGenerator wraps a Generator with observability (logging & tracing)
type observableGenerator struct {
	gen      interfaces.Generator
	provider string
}

// Compile-time interface check
var _ interfaces.Generator = (*observableGenerator)(nil)

// Wrap wraps a generator with observability middleware
func Wrap(gen interfaces.Generator, provider string) interfaces.Generator {
	return &observableGenerator{gen: gen, provider: provider}
}

// Generate never logs the credential or the prompt text, only their sizes
func (og *observableGenerator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "llm.Generate")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting generation",
		"provider", og.provider,
		"model", req.Model,
		"history_turns", len(req.History),
	)

	out, err := og.gen.Generate(ctx, req)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Generation failed", err,
			"provider", og.provider,
			"model", req.Model,
		)
		return "", err
	}

	logger.Generation(ctx, og.provider, req.Model, len(req.Prompt), len(out),
		"history_turns", len(req.History))
	return out, nil
}
