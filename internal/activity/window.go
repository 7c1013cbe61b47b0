package activity

import (
	"strings"
	"time"
)

type RangeWindow string

const (
	RangeWeek  RangeWindow = "week"
	RangeMonth RangeWindow = "month"
	RangeYear  RangeWindow = "year"
)

// ParseRange maps a query value to a window. Anything unrecognised is a month.
func ParseRange(s string) RangeWindow {
	switch RangeWindow(strings.ToLower(strings.TrimSpace(s))) {
	case RangeWeek:
		return RangeWeek
	case RangeYear:
		return RangeYear
	default:
		return RangeMonth
	}
}

// Start returns the first calendar day included in the window ending at now.
func (r RangeWindow) Start(now time.Time) time.Time {
	var start time.Time
	switch r {
	case RangeWeek:
		start = now.AddDate(0, 0, -7)
	case RangeYear:
		start = now.AddDate(-1, 0, 0)
	default:
		start = now.AddDate(0, -1, 0)
	}
	return Day(start)
}

func StartOfMonth(now time.Time) time.Time {
	y, m, _ := now.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
