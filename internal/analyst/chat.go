package analyst

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"newspulse/internal/interfaces"
	"newspulse/internal/logger"
	"newspulse/internal/narrative"
	"newspulse/internal/store"
	"newspulse/internal/types"
)

// ErrEmptyQuestion is returned for a blank question.
var ErrEmptyQuestion = errors.New("question is empty")

// AskRequest is one follow-up question.
type AskRequest struct {
	Model       string
	APIKey      string
	ChatContext string
	Question    string
}

// Chat answers questions one at a time. A second Ask waits until the first resolves.
type Chat struct {
	gen        interfaces.Generator
	timeout    time.Duration
	maxHistory int
	sem        *semaphore.Weighted
}

func NewChat(gen interfaces.Generator, cfg *store.Config) *Chat {
	return &Chat{
		gen:        gen,
		timeout:    cfg.Timeout(),
		maxHistory: cfg.LLM.MaxHistoryTurns,
		sem:        semaphore.NewWeighted(1),
	}
}

// NewConversation starts an empty transcript with a fresh correlation ID.
func NewConversation() types.Conversation {
	return types.Conversation{ID: uuid.NewString()}
}

// Ask returns the conversation extended with the question and answer. On any error the
// conversation comes back unchanged.
func (c *Chat) Ask(ctx context.Context, conv types.Conversation, req AskRequest) (types.Conversation, error) {
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return conv, ErrEmptyQuestion
	}

	if err := c.sem.Acquire(ctx, 1); err != nil {
		return conv, err
	}
	defer c.sem.Release(1)

	op := logger.StartOperation(ctx, "analyst.Ask", "conversation", conv.ID, "model", req.Model, "turns", len(conv.Turns))
	ctx, cancel := context.WithTimeout(op.Context(), c.timeout)
	defer cancel()

	answer, err := c.gen.Generate(ctx, types.GenerateRequest{
		Model:   req.Model,
		APIKey:  req.APIKey,
		Prompt:  narrative.QuestionPrompt(req.ChatContext, question),
		History: c.window(conv.Turns),
	})
	if err != nil {
		err = classify(ctx, err)
		op.EndWithError(err)
		return conv, err
	}
	op.End("output_chars", len(answer))

	next := types.Conversation{ID: conv.ID, Turns: slices.Clone(conv.Turns)}
	next.Turns = append(next.Turns,
		types.Turn{Role: types.RoleUser, Text: question},
		types.Turn{Role: types.RoleAssistant, Text: answer},
	)
	return next, nil
}

// window keeps the last maxHistory turns, starting on a user turn.
func (c *Chat) window(turns []types.Turn) []types.Turn {
	if c.maxHistory > 0 && len(turns) > c.maxHistory {
		turns = turns[len(turns)-c.maxHistory:]
	}
	for len(turns) > 0 && turns[0].Role != types.RoleUser {
		turns = turns[1:]
	}
	return slices.Clone(turns)
}
