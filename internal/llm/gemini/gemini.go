package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"newspulse/internal/interfaces"
	"newspulse/internal/store"
	"newspulse/internal/trace"
	"newspulse/internal/types"
)

// Generator implements interfaces.Generator on the Gemini API via the genai SDK.
type Generator struct {
	baseURL     string
	maxTokens   int32
	temperature float32
}

var _ interfaces.Generator = (*Generator)(nil)

// NewGenerator creates a Gemini generator. cfg.LLM.Endpoint, when set, replaces the
// public API base URL.
func NewGenerator(cfg *store.Config) *Generator {
	return &Generator{
		baseURL:     cfg.LLM.Endpoint,
		maxTokens:   int32(cfg.LLM.MaxTokens),
		temperature: cfg.LLM.Temperature,
	}
}

// Generate sends the prior turns followed by the prompt. The client is built per call
// because the credential travels with the request.
func (g *Generator) Generate(ctx context.Context, req types.GenerateRequest) (string, error) {
	ctx, span := trace.StartSpan(ctx, "gemini-generate")
	defer span.End()

	if req.APIKey == "" {
		return "", interfaces.ErrMissingCredential
	}

	cc := &genai.ClientConfig{
		APIKey:  req.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if g.baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: g.baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return "", fmt.Errorf("gemini client: %w", err)
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, t := range req.History {
		role := genai.Role(genai.RoleUser)
		if t.Role == types.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(t.Text, role))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	gc := &genai.GenerateContentConfig{MaxOutputTokens: g.maxTokens}
	if g.temperature > 0 {
		gc.Temperature = genai.Ptr(g.temperature)
	}

	resp, err := client.Models.GenerateContent(ctx, req.Model, contents, gc)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", errors.New("gemini returned no text")
	}
	return out, nil
}
