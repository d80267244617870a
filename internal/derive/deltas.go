// Package derive computes the week-over-week metrics shown on the KPI cards.
package derive

import (
	"sort"

	"newspulse/internal/types"
)

// Deltas returns a copy of rows sorted by (object, week) with PMIDelta, VolDelta and
// RiskDelta filled in. Each delta is the difference from the previous week of the same
// object; the first week of every object gets 0. The input slice is left untouched.
func Deltas(rows []types.WeeklyStat) []types.WeeklyStat {
	out := make([]types.WeeklyStat, len(rows))
	copy(out, rows)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Object != out[j].Object {
			return out[i].Object < out[j].Object
		}
		return out[i].Week.Before(out[j].Week.Time)
	})

	for i := range out {
		if i == 0 || out[i].Object != out[i-1].Object {
			out[i].PMIDelta, out[i].VolDelta, out[i].RiskDelta = 0, 0, 0
			continue
		}
		prev := out[i-1]
		out[i].PMIDelta = out[i].PMILevel - prev.PMILevel
		out[i].VolDelta = out[i].RollingStd - prev.RollingStd
		out[i].RiskDelta = out[i].TotalRS - prev.TotalRS
	}
	return out
}
