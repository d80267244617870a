package openai

import (
	"context"
	"errors"
	"strings"

	"newspulse/internal/api"
	"newspulse/internal/interfaces"
	"newspulse/internal/store"
	"newspulse/internal/trace"
	"newspulse/internal/types"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Generator implements interfaces.Generator with the chat-completions API.
type Generator struct {
	cfg    *store.Config
	client *api.Client
}

var _ interfaces.Generator = (*Generator)(nil)

func NewGenerator(cfg *store.Config, opts ...api.ClientOption) *Generator {
	base := cfg.LLM.Endpoint
	if base == "" {
		base = defaultBaseURL
	}
	opts = append([]api.ClientOption{
		api.WithBaseURL(base),
		api.WithLogging(true),
		api.WithRetry(api.DefaultRetryConfig()),
	}, opts...)
	return &Generator{cfg: cfg, client: api.NewClient(opts...)}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "openai-api-call")
	defer span.End()

	if req.APIKey == "" {
		return "", interfaces.ErrMissingCredential
	}

	msgs := make([]message, 0, len(req.History)+1)
	for _, t := range req.History {
		msgs = append(msgs, message{Role: string(t.Role), Content: t.Text})
	}
	msgs = append(msgs, message{Role: "user", Content: req.Prompt})

	body := map[string]any{
		"model":       req.Model,
		"messages":    msgs,
		"temperature": g.cfg.LLM.Temperature,
		"max_tokens":  g.cfg.LLM.MaxTokens,
	}

	resp, err := g.client.POST(ctx, "/chat/completions", body, map[string]string{
		"Authorization": "Bearer " + req.APIKey,
	})
	if err != nil {
		return "", err
	}

	var r struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := resp.ParseJSON(&r); err != nil {
		return "", err
	}
	if len(r.Choices) == 0 {
		return "", errors.New("no choices")
	}

	out := strings.TrimSpace(r.Choices[0].Message.Content)
	if out == "" {
		return "", errors.New("empty completion")
	}
	return out, nil
}
