// Package dashboard composes one full render of the dashboard for a selection.
package dashboard

import (
	"errors"
	"fmt"

	"newspulse/internal/dataset"
	"newspulse/internal/filter"
	"newspulse/internal/kpi"
	"newspulse/internal/narrative"
	"newspulse/internal/types"
)

// ErrUnknownSector is returned when the selection names a sector with no weekly data.
var ErrUnknownSector = errors.New("unknown sector")

// EmptyNotice is shown in place of the panels when a selection matches nothing.
const EmptyNotice = "No data is available for the selected parameters."

// Controls are the selectable options for the current sector.
type Controls struct {
	Sectors       []string        `json:"sectors"`
	DomainOptions []string        `json:"domain_options"`
	Bounds        types.DateRange `json:"bounds"`
}

// ViewModel is everything a front end draws for one selection.
type ViewModel struct {
	Selection types.FilterSelection `json:"selection"`
	Controls  Controls              `json:"controls"`

	Empty  bool   `json:"empty"`
	Notice string `json:"notice,omitempty"`

	// Set only when Empty is false.
	Metrics       *kpi.Dashboard           `json:"metrics,omitempty"`
	ReportContext *narrative.ReportContext `json:"report_context,omitempty"`
	ChatContext   string                   `json:"chat_context,omitempty"`
}

// Render filters the tables by sel and prepares every panel. An empty selection is not
// an error: the view model comes back with Empty set.
func Render(t *dataset.Tables, sel types.FilterSelection) (*ViewModel, error) {
	if !t.HasSector(sel.Object) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSector, sel.Object)
	}

	bounds, _ := filter.DateBounds(t, sel.Object)
	vm := &ViewModel{
		Selection: sel,
		Controls: Controls{
			Sectors:       t.Sectors(),
			DomainOptions: filter.DomainOptions(t, sel.Object),
			Bounds:        bounds,
		},
	}

	view, err := filter.Apply(t, sel)
	if errors.Is(err, filter.ErrEmptySelection) {
		vm.Empty = true
		vm.Notice = EmptyNotice
		return vm, nil
	}
	if err != nil {
		return nil, err
	}

	metrics, err := kpi.Prepare(view.Weekly, view.News)
	if err != nil {
		return nil, err
	}
	rc := narrative.BuildReportContext(sel.Object, metrics.Latest, view.News)

	vm.Metrics = metrics
	vm.ReportContext = &rc
	vm.ChatContext = narrative.BuildChatContext(sel.Object, metrics.Latest)
	return vm, nil
}
