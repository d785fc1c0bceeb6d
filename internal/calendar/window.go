package calendar

import (
	"time"

	"bookey/internal/models"
)

// WindowMode says how a window is laid out around its focus date.
type WindowMode int

const (
	// Forward windows start at the focus date: [f, f+1, ..., f+n-1].
	// The list, delete and 1-day views use them.
	Forward WindowMode = iota
	// Centered windows surround the focus date: [f-1, f, f+1].
	// The 3-day grid view uses it.
	Centered
)

// ModeFor returns the window mode used for a window of the given length.
func ModeFor(days int) WindowMode {
	if days == 3 {
		return Centered
	}
	return Forward
}

// Window returns the consecutive dates, at midnight in loc, that a window of
// the given length around focus covers. Lengths below one are treated as one.
func Window(focus time.Time, days int, loc *time.Location) []time.Time {
	if days < 1 {
		days = 1
	}
	first := models.StartOfDay(focus, loc)
	if ModeFor(days) == Centered {
		first = first.AddDate(0, 0, -(days / 2))
	}
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = first.AddDate(0, 0, i)
	}
	return dates
}

// Bounds returns the time range a backend query for dates must cover:
// 00:00:00 of the first date to 23:59:59 of the last.
func Bounds(dates []time.Time) (time.Time, time.Time) {
	if len(dates) == 0 {
		return time.Time{}, time.Time{}
	}
	first, last := dates[0], dates[len(dates)-1]
	end := time.Date(last.Year(), last.Month(), last.Day(), 23, 59, 59, 0, last.Location())
	return first, end
}
