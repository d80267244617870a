// Package analyst runs the AI panel: the one-shot executive report and the
// follow-up chat. Failures here never touch the metrics panels.
package analyst

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"newspulse/internal/interfaces"
	"newspulse/internal/logger"
	"newspulse/internal/narrative"
	"newspulse/internal/store"
	"newspulse/internal/types"
)

// ErrTimeout wraps a generation that ran past its deadline.
var ErrTimeout = errors.New("text generation timed out")

// Report is one successfully generated executive briefing.
type Report struct {
	Sector      string    `json:"sector"`
	Model       string    `json:"model"`
	Text        string    `json:"text"`
	GeneratedAt time.Time `json:"generated_at"`
}

// ReportRequest selects the model and credential for one report.
type ReportRequest struct {
	Model   string
	APIKey  string
	Context narrative.ReportContext
}

// ReportPanel keeps the last good report. A failed Generate leaves it untouched.
type ReportPanel struct {
	gen      interfaces.Generator
	timeout  time.Duration
	language string

	mu      sync.Mutex
	last    *Report
	lastErr error
}

func NewReportPanel(gen interfaces.Generator, cfg *store.Config) *ReportPanel {
	return &ReportPanel{
		gen:      gen,
		timeout:  cfg.Timeout(),
		language: cfg.LLM.ReportLanguage,
	}
}

// Generate builds the prompt, calls the provider under the panel timeout and stores the
// result on success.
func (p *ReportPanel) Generate(ctx context.Context, req ReportRequest) (*Report, error) {
	op := logger.StartOperation(ctx, "analyst.Report", "sector", req.Context.Sector, "model", req.Model)
	ctx, cancel := context.WithTimeout(op.Context(), p.timeout)
	defer cancel()

	prompt := narrative.ReportPrompt(req.Context, p.language)
	text, err := p.gen.Generate(ctx, types.GenerateRequest{
		Model:  req.Model,
		APIKey: req.APIKey,
		Prompt: prompt,
	})
	if err != nil {
		err = classify(ctx, err)
		p.mu.Lock()
		p.lastErr = err
		p.mu.Unlock()
		op.EndWithError(err)
		return nil, err
	}

	r := &Report{Sector: req.Context.Sector, Model: req.Model, Text: text, GeneratedAt: time.Now()}
	p.mu.Lock()
	p.last = r
	p.lastErr = nil
	p.mu.Unlock()
	op.End("output_chars", len(text))
	return r, nil
}

// Report returns the last successful report, if any.
func (p *ReportPanel) Report() (*Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.last != nil
}

// LastError is the error of the most recent Generate, nil after a success.
func (p *ReportPanel) LastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}

func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return err
}
