package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"newspulse/internal/dashboard"
	"newspulse/internal/kpi"
)

var (
	accent   = lipgloss.Color("#29B5E8")
	good     = lipgloss.Color("#8BC34A")
	bad      = lipgloss.Color("#E57373")
	muted    = lipgloss.Color("#9E9E9E")
	titleSty = lipgloss.NewStyle().Bold(true).Foreground(accent)
	cardSty  = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(0, 1).
			Width(26)
	helpSty = lipgloss.NewStyle().Foreground(muted).Italic(true)
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// writeMarkdown renders model output for the terminal, falling back to the raw text.
func writeMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err == nil {
		var out string
		if out, err = r.Render(md); err == nil {
			_, err = io.WriteString(w, out)
			return err
		}
	}
	_, err = fmt.Fprintln(w, md)
	return err
}

func writeReport(w io.Writer, sector, model, text string, at time.Time) error {
	return writeMarkdown(w, fmt.Sprintf("# Sovereign Briefing: %s\n\n_by %s, %s_\n\n%s",
		sector, model, at.UTC().Format("02 Jan 2006 15:04 MST"), text))
}

// deltaStyle colours a delta: for DeltaInverse an increase is drawn as bad.
func deltaStyle(c kpi.Card) lipgloss.Style {
	up := c.RawDelta > 0
	if c.RawDelta == 0 {
		return lipgloss.NewStyle().Foreground(muted)
	}
	favourable := up == (c.DeltaColor == kpi.DeltaNormal)
	if favourable {
		return lipgloss.NewStyle().Foreground(good)
	}
	return lipgloss.NewStyle().Foreground(bad)
}

func renderCard(c kpi.Card) string {
	arrow := "▲"
	if c.RawDelta < 0 {
		arrow = "▼"
	}
	body := strings.Join([]string{
		titleSty.Render(c.Label),
		lipgloss.NewStyle().Bold(true).Render(c.Value),
		deltaStyle(c).Render(arrow + " " + c.Delta),
		helpSty.Render(c.Help),
	}, "\n")
	return cardSty.Render(body)
}

func writeView(w io.Writer, vm *dashboard.ViewModel, model string, limit int) error {
	sel := vm.Selection
	fmt.Fprintln(w, titleSty.Render(sel.Object+" Intelligence"))
	fmt.Fprintf(w, "Period: %s - %s | AI Engine: %s\n",
		sel.Range.Start.Format("02 Jan 2006"), sel.Range.End.Format("02 Jan 2006"), model)
	fmt.Fprintf(w, "Domains: %s\n\n", strings.Join(sel.Domains, ", "))

	if vm.Empty {
		fmt.Fprintln(w, lipgloss.NewStyle().Foreground(bad).Render(vm.Notice))
		return nil
	}

	m := vm.Metrics
	cards := m.Cards
	fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top,
		renderCard(cards.PMI), renderCard(cards.Volatility), renderCard(cards.Risk), renderCard(cards.Consensus)))
	fmt.Fprintf(w, "Volatility state: %s\n\n", m.VolatilityState)

	fmt.Fprintln(w, titleSty.Render("Policy Maturity Trend"))
	fmt.Fprintf(w, "%-12s %10s %14s %16s\n", "week", m.Trend.PMI.Name, m.Trend.Trend.Name, m.RiskMomentum.Risk.Name)
	for i, p := range m.Trend.PMI.Points {
		fmt.Fprintf(w, "%-12s %10.2f %14.2f %16.1f\n",
			p.Week, p.Value, m.Trend.Trend.Points[i].Value, m.RiskMomentum.Risk.Points[i].Value)
	}
	fmt.Fprintf(w, "(saturation line at %.1f)\n\n", m.Trend.Saturation)

	fmt.Fprintln(w, titleSty.Render("Issue Composition"))
	if m.Composition.Empty() {
		fmt.Fprintln(w, helpSty.Render("Not enough data to visualise the composition."))
	}
	for _, dom := range m.Composition.Domains {
		fmt.Fprintf(w, "%s (%d)\n", dom.Domain, dom.Count)
		for _, l := range dom.Labels {
			fmt.Fprintf(w, "  %-20s %d\n", l.Label, l.Count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, titleSty.Render("Data Explorer"))
	rows := m.Table
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %-14s %-16s %-12s pmi=%.1f rs=%.1f  %s\n",
			r.Date, r.Source, r.Domain, r.Label, r.PMI, r.RS, r.Title)
	}
	if len(rows) < len(m.Table) {
		fmt.Fprintln(w, helpSty.Render(fmt.Sprintf("... %d more rows", len(m.Table)-len(rows))))
	}
	return nil
}
