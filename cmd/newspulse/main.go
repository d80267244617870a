package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

type options struct {
	configPath string
	model      string
	apiKey     string

	sector  string
	from    string
	to      string
	domains []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := execute(ctx, newRootCmd()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(1)
	}
}

// shutdown runs after every command, failed ones included.
var shutdown = shutdownSystem

func execute(ctx context.Context, root *cobra.Command) error {
	defer shutdown(ctx)
	return root.ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "newspulse",
		Short:         "Policy-maturity dashboard over classified news and weekly PMI statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return initializeSystem()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "config.yaml", "path to the YAML config")
	pf.StringVar(&opts.model, "model", "", "text-generation model (must be one of llm.models)")
	pf.StringVar(&opts.apiKey, "api-key", "", "provider credential (defaults to the llm.api_key_env variable)")

	root.AddCommand(
		newSectorsCmd(opts),
		newViewCmd(opts),
		newReportCmd(opts),
		newAskCmd(opts),
	)
	return root
}

func addSelectionFlags(cmd *cobra.Command, opts *options) {
	f := cmd.Flags()
	f.StringVar(&opts.sector, "sector", "", "sector to analyse (default: first sector)")
	f.StringVar(&opts.from, "from", "", "range start, YYYY-MM-DD (default: first week of the sector)")
	f.StringVar(&opts.to, "to", "", "range end, YYYY-MM-DD (default: last week of the sector)")
	f.StringArrayVar(&opts.domains, "domain", nil, "issue domain to include, repeatable (default: all)")
}

func newSectorsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "sectors",
		Short: "List the sectors present in the weekly table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			for _, s := range app.tables.Sectors() {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func newViewCmd(opts *options) *cobra.Command {
	var asJSON bool
	var limit int
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Show KPI cards, chart series, composition and the news table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			vm, err := app.render(opts)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), vm)
			}
			return writeView(cmd.OutOrStdout(), vm, app.model, limit)
		},
	}
	addSelectionFlags(cmd, opts)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the view model as JSON")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum news rows to print (0 for all)")
	return cmd
}

func newReportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Generate the five-section executive briefing for the selection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return app.runReport(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	addSelectionFlags(cmd, opts)
	return cmd
}

func newAskCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask",
		Short: "Answer follow-up questions read line by line from stdin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := newApp(cmd.Context(), opts)
			if err != nil {
				return err
			}
			return app.runAsk(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), opts)
		},
	}
	addSelectionFlags(cmd, opts)
	return cmd
}
