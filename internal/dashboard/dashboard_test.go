package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"newspulse/internal/dataset"
	"newspulse/internal/derive"
	"newspulse/internal/filter"
	"newspulse/internal/types"
)

func d(s string) types.Date { return types.MustParseDate(s) }

func tables() *dataset.Tables {
	return &dataset.Tables{
		News: []types.NewsRecord{
			{Date: d("2024-01-03"), Object: "Energy", Domain: "Regulation", Label: "Discourse", Title: "draft", Source: "Reuters"},
			{Date: d("2024-01-09"), Object: "Energy", Domain: "Regulation", Label: "Execution", Title: "consultation", Source: "Kompas"},
			{Date: d("2024-01-05"), Object: "Energy", Domain: "Infrastructure", Label: "Discourse", Title: "tender", Source: "Antara"},
		},
		Weekly: derive.Deltas([]types.WeeklyStat{
			{Object: "Energy", Week: d("2024-01-01"), PMILevel: 2.0, RollingStd: 0.2, TotalRS: 4, UniqueSources: 1, Count: 1, MarketStatus: "Discourse"},
			{Object: "Energy", Week: d("2024-01-08"), PMILevel: 2.8, RollingStd: 0.5, TotalRS: 3, UniqueSources: 3, Count: 2, MarketStatus: "Emerging"},
			{Object: "Mining", Week: d("2024-02-05"), PMILevel: 1.5},
		}),
	}
}

func TestRenderFullSelection(t *testing.T) {
	tb := tables()
	vm, err := Render(tb, filter.DefaultSelection(tb, "Energy"))
	require.NoError(t, err)

	assert.False(t, vm.Empty)
	assert.Equal(t, []string{"Energy", "Mining"}, vm.Controls.Sectors)
	assert.Equal(t, []string{"Infrastructure", "Regulation"}, vm.Controls.DomainOptions)
	assert.Equal(t, "2024-01-08", vm.Controls.Bounds.End.String())

	require.NotNil(t, vm.Metrics)
	assert.Equal(t, "2.80", vm.Metrics.Cards.PMI.Value)
	assert.Equal(t, "High", vm.Metrics.VolatilityState)
	assert.Equal(t, 2, vm.Metrics.Composition.Total, "news after the last week is outside the range")
	assert.Equal(t, "tender", vm.Metrics.Table[0].Title)

	require.NotNil(t, vm.ReportContext)
	assert.Equal(t, "Infrastructure", vm.ReportContext.DominantDomain, "tie goes to the newest domain")
	assert.Len(t, vm.ReportContext.Headlines, 2)
	assert.Equal(t, "Sector: Energy, PMI: 2.8, Risk: 3, Vol: 0.5", vm.ChatContext)
}

func TestRenderEmptySelectionStopsEarly(t *testing.T) {
	vm, err := Render(tables(), types.FilterSelection{
		Object:  "Energy",
		Range:   types.DateRange{Start: d("2024-01-02"), End: d("2024-01-07")},
		Domains: []string{"Regulation"},
	})
	require.NoError(t, err)
	assert.True(t, vm.Empty)
	assert.Equal(t, EmptyNotice, vm.Notice)
	assert.Nil(t, vm.Metrics)
	assert.Nil(t, vm.ReportContext)
	assert.Empty(t, vm.ChatContext)
	assert.Equal(t, []string{"Infrastructure", "Regulation"}, vm.Controls.DomainOptions, "controls stay usable")
}

func TestRenderNoDomainsStillHasMetrics(t *testing.T) {
	tb := tables()
	sel := filter.DefaultSelection(tb, "Energy")
	sel.Domains = nil

	vm, err := Render(tb, sel)
	require.NoError(t, err)
	require.NotNil(t, vm.Metrics)
	assert.True(t, vm.Metrics.Composition.Empty())
	assert.Equal(t, "N/A", vm.ReportContext.DominantDomain)
}

func TestRenderUnknownSector(t *testing.T) {
	_, err := Render(tables(), types.FilterSelection{Object: "Fisheries"})
	require.ErrorIs(t, err, ErrUnknownSector)
}
