package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"

	"github.com/joho/godotenv"

	"newspulse/internal/analyst"
	"newspulse/internal/dashboard"
	"newspulse/internal/dataset"
	"newspulse/internal/filter"
	"newspulse/internal/interfaces"
	"newspulse/internal/llm"
	"newspulse/internal/logger"
	"newspulse/internal/store"
	"newspulse/internal/trace"
	"newspulse/internal/types"
)

const defaultConfigPath = "config.yaml"

// initializeSystem initializes environment, logger and tracer
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func shutdownSystem(ctx context.Context) {
	if err := trace.Shutdown(context.WithoutCancel(ctx)); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to flush traces: %v\n", err)
	}
}

// loadConfig reads the YAML config. A missing default config.yaml falls back to the
// built-in defaults; an explicitly named file must exist.
func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) && path == defaultConfigPath {
		logger.Info(ctx, "No config.yaml found, using defaults")
		cfg = store.Default()
		err = cfg.Validate()
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg    *store.Config
	tables *dataset.Tables
	gen    interfaces.Generator
	model  string
	apiKey string
}

func newApp(ctx context.Context, opts *options) (*app, error) {
	cfg, err := loadConfig(ctx, opts.configPath)
	if err != nil {
		return nil, err
	}

	model := cfg.LLM.Model
	if opts.model != "" {
		if !slices.Contains(cfg.LLM.Models, opts.model) {
			return nil, fmt.Errorf("model %q is not one of %v", opts.model, cfg.LLM.Models)
		}
		model = opts.model
	}
	apiKey := opts.apiKey
	if apiKey == "" {
		apiKey = cfg.APIKey()
	}

	st, err := dataset.NewStoreFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	tables, err := st.Load(ctx)
	if err != nil {
		return nil, err
	}

	gen, err := llm.New(cfg)
	if err != nil {
		return nil, err
	}

	return &app{cfg: cfg, tables: tables, gen: gen, model: model, apiKey: apiKey}, nil
}

// selection turns the filter flags into a FilterSelection, defaulting each unset
// control the way the dashboard does on first load.
func (a *app) selection(opts *options) (types.FilterSelection, error) {
	sector := opts.sector
	if sector == "" {
		sectors := a.tables.Sectors()
		if len(sectors) == 0 {
			return types.FilterSelection{}, errors.New("weekly table has no sectors")
		}
		sector = sectors[0]
	}

	sel := filter.DefaultSelection(a.tables, sector)
	if opts.from != "" {
		d, err := types.ParseDate(opts.from)
		if err != nil {
			return sel, fmt.Errorf("--from: %w", err)
		}
		sel.Range.Start = d
	}
	if opts.to != "" {
		d, err := types.ParseDate(opts.to)
		if err != nil {
			return sel, fmt.Errorf("--to: %w", err)
		}
		sel.Range.End = d
	}
	if len(opts.domains) > 0 {
		sel.Domains = slices.Clone(opts.domains)
	}
	return sel, nil
}

func (a *app) render(opts *options) (*dashboard.ViewModel, error) {
	sel, err := a.selection(opts)
	if err != nil {
		return nil, err
	}
	return dashboard.Render(a.tables, sel)
}

func (a *app) runReport(ctx context.Context, w io.Writer, opts *options) error {
	vm, err := a.render(opts)
	if err != nil {
		return err
	}
	if vm.Empty {
		fmt.Fprintln(w, vm.Notice)
		return nil
	}

	panel := analyst.NewReportPanel(a.gen, a.cfg)
	report, err := panel.Generate(ctx, analyst.ReportRequest{
		Model:   a.model,
		APIKey:  a.apiKey,
		Context: *vm.ReportContext,
	})
	if err != nil {
		return fmt.Errorf("AI error: %w", err)
	}
	return writeReport(w, vm.Selection.Object, report.Model, report.Text, report.GeneratedAt)
}

// runAsk answers one question per input line. A failed answer is reported and the
// conversation continues from its last good state.
func (a *app) runAsk(ctx context.Context, r io.Reader, w io.Writer, opts *options) error {
	vm, err := a.render(opts)
	if err != nil {
		return err
	}
	if vm.Empty {
		fmt.Fprintln(w, vm.Notice)
		return nil
	}

	chat := analyst.NewChat(a.gen, a.cfg)
	conv := analyst.NewConversation()
	logger.Info(ctx, "Chat session started", "conversation", conv.ID, "sector", vm.Selection.Object, "model", a.model)

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		question := strings.TrimSpace(sc.Text())
		if question == "" {
			continue
		}
		next, err := chat.Ask(ctx, conv, analyst.AskRequest{
			Model:       a.model,
			APIKey:      a.apiKey,
			ChatContext: vm.ChatContext,
			Question:    question,
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(w, "Error: %v\n\n", err)
			continue
		}
		conv = next
		if err := writeMarkdown(w, conv.Turns[len(conv.Turns)-1].Text); err != nil {
			return err
		}
	}
	return sc.Err()
}
