// Package kpi turns a filtered view into the values shown on cards, charts and tables.
package kpi

import (
	"errors"
	"fmt"

	"newspulse/internal/types"
)

// ErrNoRows is returned when Prepare is given no weekly rows.
var ErrNoRows = errors.New("kpi: at least one weekly row is required")

// VolatilityThreshold separates "High" from "Stable". Exactly 0.4 is Stable.
const VolatilityThreshold = 0.4

// SaturationLevel is the PMI reference line drawn on the trend chart.
const SaturationLevel = 4.5

// DeltaColor tells the presentation layer which delta direction reads as good.
type DeltaColor string

const (
	// DeltaNormal: increase is favourable.
	DeltaNormal DeltaColor = "normal"
	// DeltaInverse: increase is unfavourable.
	DeltaInverse DeltaColor = "inverse"
)

// Card is one KPI metric.
type Card struct {
	Label      string     `json:"label"`
	Value      string     `json:"value"`
	Delta      string     `json:"delta"`
	DeltaColor DeltaColor `json:"delta_color"`
	Help       string     `json:"help"`

	RawValue float64 `json:"raw_value"`
	RawDelta float64 `json:"raw_delta"`
}

// Cards is the fixed row of four KPI cards.
type Cards struct {
	PMI        Card `json:"pmi"`
	Volatility Card `json:"volatility"`
	Risk       Card `json:"risk"`
	Consensus  Card `json:"consensus"`
}

// Dashboard is everything the metrics panels need for one selection.
type Dashboard struct {
	Latest          types.WeeklyStat  `json:"latest"`
	Cards           Cards             `json:"cards"`
	VolatilityState string            `json:"volatility_state"`
	Trend           TrendChart        `json:"trend"`
	RiskMomentum    RiskMomentumChart `json:"risk_momentum"`
	Composition     Composition       `json:"composition"`
	Table           []NewsRow         `json:"table"`
}

// VolatilityState classifies a rolling standard deviation.
func VolatilityState(rollingStd float64) string {
	if rollingStd > VolatilityThreshold {
		return "High"
	}
	return "Stable"
}

// RiskDeltaColor: a falling or flat structural risk is favourable.
func RiskDeltaColor(delta float64) DeltaColor {
	if delta <= 0 {
		return DeltaNormal
	}
	return DeltaInverse
}

// BuildCards computes the four KPI cards from the latest row of the window.
func BuildCards(latest types.WeeklyStat) Cards {
	return Cards{
		PMI: Card{
			Label:      "PMI Score",
			Value:      fmt.Sprintf("%.2f", latest.PMILevel),
			Delta:      fmt.Sprintf("%.2f", latest.PMIDelta),
			DeltaColor: DeltaNormal,
			Help:       "1.0 (discourse) -> 5.0 (execution)",
			RawValue:   latest.PMILevel,
			RawDelta:   latest.PMIDelta,
		},
		Volatility: Card{
			Label:      "Volatility Index",
			Value:      fmt.Sprintf("%.2f", latest.RollingStd),
			Delta:      fmt.Sprintf("%.2f", latest.VolDelta),
			DeltaColor: DeltaInverse,
			Help:       "Narrative instability indicator",
			RawValue:   latest.RollingStd,
			RawDelta:   latest.VolDelta,
		},
		Risk: Card{
			Label:      "Structural Risk",
			Value:      fmt.Sprintf("%.1f", latest.TotalRS),
			Delta:      fmt.Sprintf("%.1f", latest.RiskDelta),
			DeltaColor: RiskDeltaColor(latest.RiskDelta),
			Help:       "Regulatory and physical obstacles",
			RawValue:   latest.TotalRS,
			RawDelta:   latest.RiskDelta,
		},
		Consensus: Card{
			Label:      "Media Consensus",
			Value:      fmt.Sprintf("%d Sources", latest.UniqueSources),
			Delta:      fmt.Sprintf("%d Articles", latest.Count),
			DeltaColor: DeltaNormal,
			Help:       "Unique sources vs total news volume",
			RawValue:   float64(latest.UniqueSources),
			RawDelta:   float64(latest.Count),
		},
	}
}

// Prepare builds the metrics panels from a non-empty weekly window (oldest first) and
// the filtered news (newest first).
func Prepare(weekly []types.WeeklyStat, news []types.NewsRecord) (*Dashboard, error) {
	if len(weekly) == 0 {
		return nil, ErrNoRows
	}
	latest := weekly[len(weekly)-1]

	return &Dashboard{
		Latest:          latest,
		Cards:           BuildCards(latest),
		VolatilityState: VolatilityState(latest.RollingStd),
		Trend:           BuildTrend(weekly),
		RiskMomentum:    BuildRiskMomentum(weekly),
		Composition:     BuildComposition(news),
		Table:           BuildTable(news),
	}, nil
}
