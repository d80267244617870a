package types

import (
	"fmt"
	"strings"
	"time"
)

// dateLayouts are tried in order when parsing calendar fields.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
}

// Date is a calendar day. The time-of-day part is always zero and the location is UTC,
// so two Dates compare equal whenever they name the same day.
type Date struct {
	time.Time
}

// NewDate builds a Date from year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses s using the supported layouts.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateOf(t), nil
		}
	}
	return Date{}, fmt.Errorf("unparsable date %q", s)
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// UnmarshalCSV implements gocsv.TypeUnmarshaller.
func (d *Date) UnmarshalCSV(s string) error {
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// String renders the day as YYYY-MM-DD.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// DateRange is an inclusive span of calendar days.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

// Contains reports whether d lies within [Start, End].
func (r DateRange) Contains(d Date) bool {
	return !d.Before(r.Start.Time) && !d.After(r.End.Time)
}

// NewsRecord is one classified news item.
type NewsRecord struct {
	Date            Date    `json:"date"`
	Object          string  `json:"object"`
	Domain          string  `json:"domain"`
	Label           string  `json:"label"`
	Source          string  `json:"source"`
	Title           string  `json:"title"`
	PMI             float64 `json:"pmi"`
	Confidence      float64 `json:"confidence"`
	RS              float64 `json:"rs"`
	ConsensusWeight float64 `json:"consensus_weight"`
}

// WeeklyStat is one (object, week) aggregate. The delta fields are derived, never loaded.
type WeeklyStat struct {
	Object        string  `json:"object"`
	Week          Date    `json:"week"`
	PMILevel      float64 `json:"pmi_level"`
	RollingMean   float64 `json:"rolling_mean"`
	RollingStd    float64 `json:"rolling_std"`
	TotalRS       float64 `json:"total_rs"`
	UniqueSources int     `json:"unique_sources"`
	Count         int     `json:"count"`
	MarketStatus  string  `json:"market_status"`

	PMIDelta  float64 `json:"pmi_delta"`
	VolDelta  float64 `json:"vol_delta"`
	RiskDelta float64 `json:"risk_delta"`
}

// FilterSelection is the user's current choice of sector, range and domains.
// Domains is matched literally: an empty set selects no news.
type FilterSelection struct {
	Object  string    `json:"object"`
	Range   DateRange `json:"range"`
	Domains []string  `json:"domains"`
}

// Role identifies the speaker of a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation transcript.
type Turn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// Conversation is a caller-owned transcript. ID only correlates logs and spans.
type Conversation struct {
	ID    string `json:"id"`
	Turns []Turn `json:"turns"`
}

// GenerateRequest is one call to a text-generation provider.
type GenerateRequest struct {
	Model   string
	APIKey  string
	Prompt  string
	History []Turn
}
