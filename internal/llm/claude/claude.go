package claude

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"newspulse/internal/api"
	"newspulse/internal/interfaces"
	"newspulse/internal/store"
	"newspulse/internal/trace"
	"newspulse/internal/types"
)

const (
	defaultBaseURL   = "https://api.anthropic.com/v1"
	anthropicVersion = "2023-06-01"
)

// Generator implements interfaces.Generator using the Anthropic messages API
type Generator struct {
	cfg    *store.Config
	client *api.Client
}

var _ interfaces.Generator = (*Generator)(nil)

// NewGenerator creates a Claude-based generator. If you use a proxy, set llm.endpoint.
func NewGenerator(cfg *store.Config, opts ...api.ClientOption) *Generator {
	base := cfg.LLM.Endpoint
	if base == "" {
		base = defaultBaseURL
	}
	opts = append([]api.ClientOption{
		api.WithBaseURL(base),
		api.WithHeader("anthropic-version", anthropicVersion),
		api.WithLogging(true),
		api.WithRetry(api.DefaultRetryConfig()),
	}, opts...)
	return &Generator{cfg: cfg, client: api.NewClient(opts...)}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generate sends the history and prompt as alternating messages
func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "claude-api-call")
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
		"max_tokens":  g.cfg.LLM.MaxTokens,
		"temperature": g.cfg.LLM.Temperature,
	}

	resp, err := g.client.POST(ctx, "/messages", body, map[string]string{"x-api-key": req.APIKey})
	if err != nil {
		return "", err
	}
	return extractText(resp.Body)
}

// extractText reads the content blocks of a messages response, falling back to the
// older completion field some proxies still return.
func extractText(body []byte) (string, error) {
	var r struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		Completion string `json:"completion"`
	}
	if err := json.Unmarshal(body, &r); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, c := range r.Content {
		if c.Type == "text" || c.Type == "" {
			sb.WriteString(c.Text)
		}
	}
	out := strings.TrimSpace(sb.String())
	if out == "" {
		out = strings.TrimSpace(r.Completion)
	}
	if out == "" {
		return "", errors.New("claude returned no text")
	}
	return out, nil
}
