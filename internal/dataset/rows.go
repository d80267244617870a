package dataset

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"newspulse/internal/types"
)

// ErrBadValue marks a numeric cell that is blank, not a number, or out of range.
var ErrBadValue = errors.New("invalid value")

// Column names of the two source tables.
var (
	NewsColumns   = []string{"date", "object", "domain", "label", "source", "title", "pmi", "confidence", "rs", "consensus_weight"}
	WeeklyColumns = []string{"object", "week", "pmi_level", "rolling_mean", "rolling_std", "total_rs", "unique_sources", "count", "market_status"}
)

// newsRow is the on-disk shape of a news record. Numeric cells stay text until
// validated so a blank cell is never read as zero.
type newsRow struct {
	Date            types.Date `csv:"date"`
	Object          string     `csv:"object"`
	Domain          string     `csv:"domain"`
	Label           string     `csv:"label"`
	Source          string     `csv:"source"`
	Title           string     `csv:"title"`
	PMI             string     `csv:"pmi"`
	Confidence      string     `csv:"confidence"`
	RS              string     `csv:"rs"`
	ConsensusWeight string     `csv:"consensus_weight"`
}

// weeklyRow is the on-disk shape of a weekly aggregate.
type weeklyRow struct {
	Object        string     `csv:"object"`
	Week          types.Date `csv:"week"`
	PMILevel      string     `csv:"pmi_level"`
	RollingMean   string     `csv:"rolling_mean"`
	RollingStd    string     `csv:"rolling_std"`
	TotalRS       string     `csv:"total_rs"`
	UniqueSources string     `csv:"unique_sources"`
	Count         string     `csv:"count"`
	MarketStatus  string     `csv:"market_status"`
}

// cellParser collects the first bad cell of a row.
type cellParser struct {
	err error
}

func (p *cellParser) number(col, s string) float64 {
	if p.err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	if s == "" {
		p.err = fmt.Errorf("column %s: %w: empty", col, ErrBadValue)
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w: %q", col, ErrBadValue, s)
		return 0
	}
	p.err = checkFinite(col, f)
	return f
}

// count reads a non-negative integer. Aggregating writers often emit "3.0", so a
// float spelling is accepted when it has no fractional part.
func (p *cellParser) count(col, s string) int {
	f := p.number(col, s)
	if p.err != nil {
		return 0
	}
	n, err := toCount(col, f)
	p.err = err
	return n
}

func checkFinite(col string, f float64) error {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("column %s: %w: %v", col, ErrBadValue, f)
	}
	return nil
}

func toCount(col string, f float64) (int, error) {
	if err := checkFinite(col, f); err != nil {
		return 0, err
	}
	if f < 0 || f != math.Trunc(f) {
		return 0, fmt.Errorf("column %s: %w: %v is not a non-negative integer", col, ErrBadValue, f)
	}
	return int(f), nil
}

func (r newsRow) record() (types.NewsRecord, error) {
	var p cellParser
	rec := types.NewsRecord{
		Date:            r.Date,
		Object:          r.Object,
		Domain:          r.Domain,
		Label:           r.Label,
		Source:          r.Source,
		Title:           r.Title,
		PMI:             p.number("pmi", r.PMI),
		Confidence:      p.number("confidence", r.Confidence),
		RS:              p.number("rs", r.RS),
		ConsensusWeight: p.number("consensus_weight", r.ConsensusWeight),
	}
	return rec, p.err
}

func (r weeklyRow) stat() (types.WeeklyStat, error) {
	var p cellParser
	w := types.WeeklyStat{
		Object:        r.Object,
		Week:          r.Week,
		PMILevel:      p.number("pmi_level", r.PMILevel),
		RollingMean:   p.number("rolling_mean", r.RollingMean),
		RollingStd:    p.number("rolling_std", r.RollingStd),
		TotalRS:       p.number("total_rs", r.TotalRS),
		UniqueSources: p.count("unique_sources", r.UniqueSources),
		Count:         p.count("count", r.Count),
		MarketStatus:  r.MarketStatus,
	}
	return w, p.err
}
