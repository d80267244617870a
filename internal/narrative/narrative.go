// Package narrative builds the bounded text context handed to a text generator.
// Nothing here performs I/O.
package narrative

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"newspulse/internal/types"
)

const (
	// MaxHeadlines caps the headlines included in a report context.
	MaxHeadlines = 8
	// MaxTitleRunes caps a single headline.
	MaxTitleRunes = 200
	// NotAvailable stands in for the dominant domain when there is no news.
	NotAvailable = "N/A"
	// DefaultLanguage is the report language when none is configured.
	DefaultLanguage = "Bahasa Indonesia"
)

// Headline is one news title with its outlet.
type Headline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// Snapshot is the numeric state of a sector at its latest week.
type Snapshot struct {
	Week          types.Date `json:"week"`
	PMILevel      float64    `json:"pmi_level"`
	MarketStatus  string     `json:"market_status"`
	Volatility    float64    `json:"volatility"`
	StructuralRS  float64    `json:"structural_risk"`
	UniqueSources int        `json:"unique_sources"`
}

// ReportContext is the full context used for an executive report.
type ReportContext struct {
	Sector         string     `json:"sector"`
	Snapshot       Snapshot   `json:"snapshot"`
	DominantDomain string     `json:"dominant_domain"`
	Headlines      []Headline `json:"headlines"`
}

// BuildReportContext takes news already sorted newest first.
func BuildReportContext(sector string, latest types.WeeklyStat, news []types.NewsRecord) ReportContext {
	n := min(len(news), MaxHeadlines)
	headlines := make([]Headline, n)
	for i := 0; i < n; i++ {
		headlines[i] = Headline{Title: truncate(news[i].Title, MaxTitleRunes), Source: news[i].Source}
	}

	return ReportContext{
		Sector: sector,
		Snapshot: Snapshot{
			Week:          latest.Week,
			PMILevel:      latest.PMILevel,
			MarketStatus:  latest.MarketStatus,
			Volatility:    latest.RollingStd,
			StructuralRS:  latest.TotalRS,
			UniqueSources: latest.UniqueSources,
		},
		DominantDomain: DominantDomain(news),
		Headlines:      headlines,
	}
}

// DominantDomain returns the most frequent domain. On a tie the domain seen first wins,
// which for newest-first input is the most recently reported one.
func DominantDomain(news []types.NewsRecord) string {
	if len(news) == 0 {
		return NotAvailable
	}
	counts := make(map[string]int)
	var order []string
	for _, n := range news {
		if counts[n.Domain] == 0 {
			order = append(order, n.Domain)
		}
		counts[n.Domain]++
	}
	best := order[0]
	for _, dom := range order[1:] {
		if counts[dom] > counts[best] {
			best = dom
		}
	}
	return best
}

// ReportPrompt renders the five-section executive briefing request.
func ReportPrompt(rc ReportContext, language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}

	var headlines strings.Builder
	for _, h := range rc.Headlines {
		fmt.Fprintf(&headlines, "- %s (Src: %s)\n", h.Title, h.Source)
	}
	if len(rc.Headlines) == 0 {
		headlines.WriteString("- (no headlines in the selected window)\n")
	}

	s := rc.Snapshot
	return fmt.Sprintf(`ROLE: Senior Policy Strategist & Market Intelligence.
CONTEXT: Sector %s | Date: %s

METRICS:
- PMI: %.2f (Status: %s)
- Volatility: %.2f
- Structural Risk: %.1f
- Consensus: %d Sources

TOPIC: Dominant Domain '%s'
HEADLINES:
%s
OUTPUT: Executive Summary (%s) with 5 Sections:
1. **Market Health:** interpret the PMI score and status.
2. **Consensus Check:** media validity (Strong or Echo Chamber).
3. **Risk Profile:** volatility and structural risk.
4. **Narrative Driver:** what is moving the headlines.
5. **Strategic Action:** concrete recommendations.
`,
		rc.Sector, s.Week, s.PMILevel, s.MarketStatus, s.Volatility, s.StructuralRS, s.UniqueSources,
		rc.DominantDomain, headlines.String(), language)
}

// BuildChatContext is the one-line summary used for follow-up questions.
func BuildChatContext(sector string, latest types.WeeklyStat) string {
	return fmt.Sprintf("Sector: %s, PMI: %g, Risk: %g, Vol: %g",
		sector, latest.PMILevel, latest.TotalRS, latest.RollingStd)
}

// QuestionPrompt wraps a follow-up question with the analyst instruction and chat context.
func QuestionPrompt(chatContext, question string) string {
	return fmt.Sprintf("System: You are an expert analyst. Context: %s\nQuestion: %s", chatContext, question)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}
