package kpi

import (
	"sort"

	"newspulse/internal/types"
)

// Point is one (week, value) sample of a time series.
type Point struct {
	Week  types.Date `json:"week"`
	Value float64    `json:"value"`
}

// Series is a named, time-ordered list of points.
type Series struct {
	Name   string  `json:"name"`
	Kind   string  `json:"kind"` // line, area, bar
	Points []Point `json:"points"`
}

// TrendChart is the policy-maturity trend with its rolling-mean overlay.
type TrendChart struct {
	PMI        Series  `json:"pmi"`
	Trend      Series  `json:"trend"`
	Saturation float64 `json:"saturation"`
}

// RiskMomentumChart overlays structural risk bars with the PMI line.
type RiskMomentumChart struct {
	Risk Series `json:"risk"`
	PMI  Series `json:"pmi"`
}

// LabelCount is one leaf of the composition sunburst.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// DomainNode is one ring segment of the composition sunburst.
type DomainNode struct {
	Domain string       `json:"domain"`
	Count  int          `json:"count"`
	Labels []LabelCount `json:"labels"`
}

// Composition is the (domain, label) hierarchy of the filtered news.
type Composition struct {
	Total   int          `json:"total"`
	Domains []DomainNode `json:"domains"`
}

// Empty reports whether there is nothing to draw.
func (c Composition) Empty() bool {
	return c.Total == 0
}

// NewsRow is one line of the data explorer table.
type NewsRow struct {
	Date            string  `json:"date"`
	Source          string  `json:"source"`
	Title           string  `json:"title"`
	Domain          string  `json:"domain"`
	Label           string  `json:"label"`
	PMI             float64 `json:"pmi"`
	Confidence      float64 `json:"confidence"`
	RS              float64 `json:"rs"`
	ConsensusWeight float64 `json:"consensus_weight"`
}

func series(name, kind string, weekly []types.WeeklyStat, value func(types.WeeklyStat) float64) Series {
	points := make([]Point, len(weekly))
	for i, w := range weekly {
		points[i] = Point{Week: w.Week, Value: value(w)}
	}
	return Series{Name: name, Kind: kind, Points: points}
}

// BuildTrend returns the PMI area and the rolling-mean line.
func BuildTrend(weekly []types.WeeklyStat) TrendChart {
	return TrendChart{
		PMI:        series("PMI Score", "area", weekly, func(w types.WeeklyStat) float64 { return w.PMILevel }),
		Trend:      series("Trend (4W Avg)", "line", weekly, func(w types.WeeklyStat) float64 { return w.RollingMean }),
		Saturation: SaturationLevel,
	}
}

// BuildRiskMomentum returns the structural-risk bars and PMI line.
func BuildRiskMomentum(weekly []types.WeeklyStat) RiskMomentumChart {
	return RiskMomentumChart{
		Risk: series("Structural Risk", "bar", weekly, func(w types.WeeklyStat) float64 { return w.TotalRS }),
		PMI:  series("PMI Level", "line", weekly, func(w types.WeeklyStat) float64 { return w.PMILevel }),
	}
}

// BuildComposition counts news by domain and then label, both sorted by name.
func BuildComposition(news []types.NewsRecord) Composition {
	counts := make(map[string]map[string]int)
	for _, n := range news {
		if counts[n.Domain] == nil {
			counts[n.Domain] = make(map[string]int)
		}
		counts[n.Domain][n.Label]++
	}

	domains := make([]string, 0, len(counts))
	for dom := range counts {
		domains = append(domains, dom)
	}
	sort.Strings(domains)

	c := Composition{Total: len(news), Domains: make([]DomainNode, 0, len(domains))}
	for _, dom := range domains {
		labels := make([]string, 0, len(counts[dom]))
		for l := range counts[dom] {
			labels = append(labels, l)
		}
		sort.Strings(labels)

		node := DomainNode{Domain: dom, Labels: make([]LabelCount, 0, len(labels))}
		for _, l := range labels {
			node.Labels = append(node.Labels, LabelCount{Label: l, Count: counts[dom][l]})
			node.Count += counts[dom][l]
		}
		c.Domains = append(c.Domains, node)
	}
	return c
}

// BuildTable projects the filtered news into explorer rows, keeping their order.
func BuildTable(news []types.NewsRecord) []NewsRow {
	rows := make([]NewsRow, len(news))
	for i, n := range news {
		rows[i] = NewsRow{
			Date:            n.Date.Format("02 Jan 06"),
			Source:          n.Source,
			Title:           n.Title,
			Domain:          n.Domain,
			Label:           n.Label,
			PMI:             n.PMI,
			Confidence:      n.Confidence,
			RS:              n.RS,
			ConsensusWeight: n.ConsensusWeight,
		}
	}
	return rows
}
