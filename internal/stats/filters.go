package stats

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/desertthunder/soundslate/internal/models"
	"github.com/desertthunder/soundslate/internal/shared"
)

// Filters is the user's selection for the stats view.
type Filters struct {
	Tab       models.Tab       `json:"tab"`
	TimeRange models.TimeRange `json:"time_range"`
	Limit     int              `json:"limit"`
	Layout    models.Layout    `json:"view"`
}

// DefaultFilters is the selection shown right after login.
func DefaultFilters() Filters {
	return Filters{
		Tab:       models.TracksTab,
		TimeRange: models.MediumTerm,
		Limit:     models.DefaultLimit,
		Layout:    models.CardLayout,
	}
}

// ParseFilters reads tab, time_range, limit and view from q. Absent values
// keep their defaults. Invalid values are reported together; the returned
// Filters then holds the defaults for those fields.
func ParseFilters(q url.Values) (Filters, error) {
	f := DefaultFilters()
	var errs []error

	if v := q.Get("tab"); v != "" {
		if tab, err := models.ParseTab(v); err != nil {
			errs = append(errs, err)
		} else {
			f.Tab = tab
		}
	}
	if v := q.Get("time_range"); v != "" {
		if r, err := models.ParseTimeRange(v); err != nil {
			errs = append(errs, err)
		} else {
			f.TimeRange = r
		}
	}
	if v := q.Get("limit"); v != "" {
		if n, err := models.ParseLimit(v); err != nil {
			errs = append(errs, err)
		} else {
			f.Limit = n
		}
	}
	if v := q.Get("view"); v != "" {
		if l, err := models.ParseLayout(v); err != nil {
			errs = append(errs, err)
		} else {
			f.Layout = l
		}
	}

	if len(errs) > 0 {
		return f, fmt.Errorf("%w: %w", shared.ErrInvalidInput, errors.Join(errs...))
	}
	return f, nil
}

// Query encodes f as URL query values, the inverse of [ParseFilters].
func (f Filters) Query() url.Values {
	return url.Values{
		"tab":        {string(f.Tab)},
		"time_range": {string(f.TimeRange)},
		"limit":      {strconv.Itoa(f.Limit)},
		"view":       {string(f.Layout)},
	}
}

// Key identifies the list fetch the filters require.
func (f Filters) Key() Key {
	return Key{Resource: ResourceFor(f.Tab), TimeRange: f.TimeRange, Limit: f.Limit}
}

func (f Filters) WithTab(t models.Tab) Filters {
	f.Tab = t
	return f
}

func (f Filters) WithLayout(l models.Layout) Filters {
	f.Layout = l
	return f
}
