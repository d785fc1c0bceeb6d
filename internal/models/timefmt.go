package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

const (
	// DateLayout is the ISO calendar date used for day keys and all-day events.
	DateLayout = "2006-01-02"
	// DateTimeLayout is the zone-less ISO timestamp sent by the add flows.
	DateTimeLayout = "2006-01-02T15:04:05"
)

// DateKey formats t as YYYY-MM-DD in its own location.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay truncates t to midnight in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ParseISO parses either a date-only value (YYYY-MM-DD) or a timestamp.
// Timestamps without an offset are interpreted in loc. The boolean result is
// true for date-only values.
func ParseISO(s string, loc *time.Location) (time.Time, bool, error) {
	s = strings.TrimSpace(s)
	if len(s) == len(DateLayout) {
		t, err := time.ParseInLocation(DateLayout, s, loc)
		if err != nil {
			return time.Time{}, false, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return t, true, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.In(loc), false, nil
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	return t, false, nil
}

// SortTasks orders tasks by due date ascending, tasks without a due date last.
// The sort is stable so equal keys keep backend order.
func SortTasks(tasks []Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i].Due, tasks[j].Due
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
}
