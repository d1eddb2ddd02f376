// package models defines the data model for the top tracks and artists viewer
package models

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeRange is the listening window used by the top items endpoints.
type TimeRange string

const (
	ShortTerm  TimeRange = "short_term"
	MediumTerm TimeRange = "medium_term"
	LongTerm   TimeRange = "long_term"
)

// TimeRanges lists every [TimeRange] in display order.
var TimeRanges = []TimeRange{ShortTerm, MediumTerm, LongTerm}

// Label returns the human readable name of the window.
func (r TimeRange) Label() string {
	switch r {
	case ShortTerm:
		return "Last 4 Weeks"
	case MediumTerm:
		return "Last 6 Months"
	case LongTerm:
		return "All Time"
	default:
		return string(r)
	}
}

func (r TimeRange) Valid() bool {
	return r == ShortTerm || r == MediumTerm || r == LongTerm
}

// Next returns the following window, wrapping around.
func (r TimeRange) Next() TimeRange {
	return next(TimeRanges, r)
}

// ParseTimeRange validates s as a [TimeRange].
func ParseTimeRange(s string) (TimeRange, error) {
	r := TimeRange(strings.TrimSpace(s))
	if !r.Valid() {
		return "", fmt.Errorf("invalid time range %q: must be one of short_term, medium_term, long_term", s)
	}
	return r, nil
}

// Tab selects which list is shown.
type Tab string

const (
	TracksTab  Tab = "tracks"
	ArtistsTab Tab = "artists"
)

var Tabs = []Tab{TracksTab, ArtistsTab}

func (t Tab) Label() string {
	switch t {
	case ArtistsTab:
		return "Top Artists"
	default:
		return "Top Tracks"
	}
}

func (t Tab) Valid() bool {
	return t == TracksTab || t == ArtistsTab
}

func (t Tab) Next() Tab {
	return next(Tabs, t)
}

func ParseTab(s string) (Tab, error) {
	t := Tab(strings.TrimSpace(s))
	if !t.Valid() {
		return "", fmt.Errorf("invalid tab %q: must be tracks or artists", s)
	}
	return t, nil
}

// Layout selects how a list is drawn. Changing it never requires a fetch.
type Layout string

const (
	CardLayout   Layout = "card"
	SimpleLayout Layout = "simple"
)

var Layouts = []Layout{CardLayout, SimpleLayout}

func (l Layout) Valid() bool {
	return l == CardLayout || l == SimpleLayout
}

func (l Layout) Next() Layout {
	return next(Layouts, l)
}

func (l Layout) Label() string {
	switch l {
	case SimpleLayout:
		return "Simple"
	default:
		return "Cards"
	}
}

func ParseLayout(s string) (Layout, error) {
	l := Layout(strings.TrimSpace(s))
	if !l.Valid() {
		return "", fmt.Errorf("invalid view %q: must be card or simple", s)
	}
	return l, nil
}

// Limits are the result counts a user may choose from.
var Limits = []int{5, 10, 15, 20}

const DefaultLimit = 10

// ValidLimit reports whether n is one of [Limits].
func ValidLimit(n int) bool {
	for _, l := range Limits {
		if l == n {
			return true
		}
	}
	return false
}

// NextLimit returns the limit after n, wrapping around.
func NextLimit(n int) int {
	return next(Limits, n)
}

func ParseLimit(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !ValidLimit(n) {
		return 0, fmt.Errorf("invalid limit %q: must be one of 5, 10, 15, 20", s)
	}
	return n, nil
}

func next[T comparable](values []T, v T) T {
	for i, candidate := range values {
		if candidate == v {
			return values[(i+1)%len(values)]
		}
	}
	return values[0]
}
