// Package filter narrows the loaded tables to one sector, date range and domain set.
//
// Every function here is pure: inputs are never modified and results are fresh slices.
package filter

import (
	"errors"
	"sort"

	"newspulse/internal/dataset"
	"newspulse/internal/types"
)

// ErrEmptySelection means the selection matched no weekly rows. It is recoverable: the
// caller shows a "no data" state and stops before the KPI and report stages.
var ErrEmptySelection = errors.New("no data for selection")

// View is the filtered pair of tables for one selection.
type View struct {
	// Weekly rows of the sector within the range, oldest first.
	Weekly []types.WeeklyStat
	// News rows of the sector within the range and domain set, newest first.
	News []types.NewsRecord
}

// Latest returns the most recent weekly row of the view.
func (v View) Latest() (types.WeeklyStat, bool) {
	if len(v.Weekly) == 0 {
		return types.WeeklyStat{}, false
	}
	return v.Weekly[len(v.Weekly)-1], true
}

// Apply filters both tables by sel. When no weekly row matches it returns the view
// together with ErrEmptySelection.
func Apply(t *dataset.Tables, sel types.FilterSelection) (View, error) {
	v := View{
		Weekly: Weekly(t.Weekly, sel.Object, sel.Range),
		News:   News(t.News, sel.Object, sel.Range, sel.Domains),
	}
	if len(v.Weekly) == 0 {
		return v, ErrEmptySelection
	}
	return v, nil
}

// Weekly returns rows of object whose week lies in r, sorted by week ascending.
func Weekly(rows []types.WeeklyStat, object string, r types.DateRange) []types.WeeklyStat {
	out := make([]types.WeeklyStat, 0)
	for _, w := range rows {
		if w.Object == object && r.Contains(w.Week) {
			out = append(out, w)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Week.Before(out[j].Week.Time)
	})
	return out
}

// News returns rows of object dated within r whose domain is in domains, sorted by
// date descending. Rows sharing a date keep their source order.
func News(rows []types.NewsRecord, object string, r types.DateRange, domains []string) []types.NewsRecord {
	allowed := make(map[string]bool, len(domains))
	for _, d := range domains {
		allowed[d] = true
	}

	out := make([]types.NewsRecord, 0)
	for _, n := range rows {
		if n.Object == object && r.Contains(n.Date) && allowed[n.Domain] {
			out = append(out, n)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date.Time)
	})
	return out
}

// DomainOptions returns the distinct domains of object's news across all dates, sorted.
func DomainOptions(t *dataset.Tables, object string) []string {
	seen := make(map[string]bool)
	out := make([]string, 0)
	for _, n := range t.News {
		if n.Object == object && !seen[n.Domain] {
			seen[n.Domain] = true
			out = append(out, n.Domain)
		}
	}
	sort.Strings(out)
	return out
}

// DateBounds returns the earliest and latest week observed for object.
func DateBounds(t *dataset.Tables, object string) (types.DateRange, bool) {
	var r types.DateRange
	found := false
	for _, w := range t.Weekly {
		if w.Object != object {
			continue
		}
		if !found || w.Week.Before(r.Start.Time) {
			r.Start = w.Week
		}
		if !found || w.Week.After(r.End.Time) {
			r.End = w.Week
		}
		found = true
	}
	return r, found
}

// DefaultSelection is the initial state of the controls for object: the full week span
// and every domain offered.
func DefaultSelection(t *dataset.Tables, object string) types.FilterSelection {
	r, _ := DateBounds(t, object)
	return types.FilterSelection{
		Object:  object,
		Range:   r,
		Domains: DomainOptions(t, object),
	}
}
