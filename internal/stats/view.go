package stats

import (
	"fmt"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
)

// View is the filter state machine behind the stats screen.
type View struct {
	filters Filters
}

// NewView starts from f, or from [DefaultFilters] when f has empty fields.
func NewView(f Filters) *View {
	d := DefaultFilters()
	if !f.Tab.Valid() {
		f.Tab = d.Tab
	}
	if !f.TimeRange.Valid() {
		f.TimeRange = d.TimeRange
	}
	if !models.ValidLimit(f.Limit) {
		f.Limit = d.Limit
	}
	if !f.Layout.Valid() {
		f.Layout = d.Layout
	}
	return &View{filters: f}
}

func (v *View) Filters() Filters { return v.filters }

// Key is the list fetch for the current selection.
func (v *View) Key() Key { return v.filters.Key() }

// SelectTab switches the visible list. The returned bool is false when t is
// already selected.
func (v *View) SelectTab(t models.Tab) (Key, bool, error) {
	if !t.Valid() {
		return Key{}, false, fmt.Errorf("%w: tab %q", shared.ErrInvalidArgument, t)
	}
	if v.filters.Tab == t {
		return v.Key(), false, nil
	}
	v.filters.Tab = t
	return v.Key(), true, nil
}

// SetTimeRange changes the window of the active list.
func (v *View) SetTimeRange(r models.TimeRange) (Key, bool, error) {
	if !r.Valid() {
		return Key{}, false, fmt.Errorf("%w: time range %q", shared.ErrInvalidArgument, r)
	}
	if v.filters.TimeRange == r {
		return v.Key(), false, nil
	}
	v.filters.TimeRange = r
	return v.Key(), true, nil
}

// SetLimit changes the number of items of the active list.
func (v *View) SetLimit(n int) (Key, bool, error) {
	if !models.ValidLimit(n) {
		return Key{}, false, fmt.Errorf("%w: limit %d", shared.ErrInvalidArgument, n)
	}
	if v.filters.Limit == n {
		return v.Key(), false, nil
	}
	v.filters.Limit = n
	return v.Key(), true, nil
}

// SetLayout changes how the list is drawn. It never requires a fetch.
func (v *View) SetLayout(l models.Layout) error {
	if !l.Valid() {
		return fmt.Errorf("%w: view %q", shared.ErrInvalidArgument, l)
	}
	v.filters.Layout = l
	return nil
}

// Reset returns to the defaults, as after logout.
func (v *View) Reset() {
	v.filters = DefaultFilters()
}
