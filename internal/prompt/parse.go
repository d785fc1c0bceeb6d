package prompt

import (
	"fmt"
	"strings"
	"time"
)

// Input formats accepted from the user.
const (
	DayMonthYear = "dd/mm/yyyy"
	ISODate      = "yyyy-mm-dd"
	Clock        = "hh:mm"
)

// ValidationError reports user input that does not match the expected format.
// The action that asked for it is abandoned without touching the backend.
type ValidationError struct {
	Field  string
	Value  string
	Format string
}

func (e *ValidationError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("Invalid %s %q", e.Field, e.Value)
	}
	return fmt.Sprintf("Invalid %s format. Use %s", e.Field, e.Format)
}

// ParseDayMonthYear parses a dd/mm/yyyy date at midnight in loc.
func ParseDayMonthYear(field, s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("02/01/2006", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: s, Format: DayMonthYear}
	}
	return t, nil
}

// ParseISODate parses a yyyy-mm-dd date at midnight in loc.
func ParseISODate(field, s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(s), loc)
	if err != nil {
		return time.Time{}, &ValidationError{Field: field, Value: s, Format: ISODate}
	}
	return t, nil
}

// ParseClock parses an hh:mm time of day. Single-digit hours are accepted.
func ParseClock(field, s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, &ValidationError{Field: field, Value: s, Format: Clock}
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// FormatClock renders a time-of-day offset as hh:mm.
func FormatClock(d time.Duration) string {
	return fmt.Sprintf("%02d:%02d", int(d.Hours()), int(d.Minutes())%60)
}

// TimeRange combines a date with start and end clock times, checking that
// the range is not empty.
func TimeRange(date time.Time, startText, endText string) (time.Time, time.Time, error) {
	start, err := ParseClock("start time", startText)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseClock("end time", endText)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end <= start {
		return time.Time{}, time.Time{}, &ValidationError{Field: "end time", Value: endText}
	}
	return At(date, start), At(date, end), nil
}

// At returns the wall-clock time offset into date's day.
func At(date time.Time, offset time.Duration) time.Time {
	h, m := int(offset/time.Hour), int(offset%time.Hour/time.Minute)
	return time.Date(date.Year(), date.Month(), date.Day(), h, m, 0, 0, date.Location())
}
