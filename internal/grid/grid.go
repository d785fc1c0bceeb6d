// Package grid lays calendar events out on a fixed 30-minute schedule.
package grid

import (
	"fmt"
	"strings"
	"time"

	"bookey/internal/calendar"
	"bookey/internal/models"
)

const (
	// SlotMinutes is the resolution of the grid.
	SlotMinutes = 30
	// SlotsPerDay is 24 hours * 2 slots per hour.
	SlotsPerDay = 24 * 60 / SlotMinutes
)

// Slot is one 30-minute cell of a day.
type Slot struct {
	Hour       int
	Minute     int
	Occupied   bool
	EventStart bool   // The owning event starts inside this slot
	EventID    string // Owning event, empty when free
	Title      string // Owning event title, empty when free
}

// Label returns the slot time as HH:MM.
func (s Slot) Label() string {
	return fmt.Sprintf("%02d:%02d", s.Hour, s.Minute)
}

// Day is the rendered schedule of one date.
type Day struct {
	Date   time.Time
	Key    string // YYYY-MM-DD
	Label  string // e.g. "SAT JUN 15", with "  (TODAY)" appended for today
	Today  bool
	AllDay []models.Event
	Slots  [SlotsPerDay]Slot
}

// Builder turns day buckets into Days. The zero value uses time.Local and time.Now.
type Builder struct {
	Location *time.Location
	Now      func() time.Time // Injectable for testing
}

func (b Builder) location() *time.Location {
	if b.Location == nil {
		return time.Local
	}
	return b.Location
}

func (b Builder) now() time.Time {
	if b.Now == nil {
		return time.Now()
	}
	return b.Now()
}

// Build lays out every bucket of the window.
//
// All-day events of a bucket become that day's banner and never occupy slots.
// Timed events are taken from all buckets in window order, so an event that
// crosses midnight occupies slots on both days. Events carried in from before
// the window come first. When several events overlap a
// slot, the first one in input order owns it; events are not stacked.
func (b Builder) Build(buckets calendar.Buckets) ([]Day, error) {
	loc := b.location()
	today := models.DateKey(b.now().In(loc))

	var timed []models.Event
	for _, bucket := range buckets {
		timed = append(timed, bucket.Carried...)
	}
	for _, bucket := range buckets {
		for _, e := range bucket.Events {
			if !e.AllDay {
				timed = append(timed, e)
			}
		}
	}

	days := make([]Day, 0, len(buckets))
	for _, bucket := range buckets {
		date, err := time.ParseInLocation(models.DateLayout, bucket.Date, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid bucket date %q: %w", bucket.Date, err)
		}
		day := Day{
			Date:  date,
			Key:   bucket.Date,
			Today: bucket.Date == today,
		}
		day.Label = HeaderLabel(date, day.Today)
		for _, e := range bucket.Events {
			if e.AllDay {
				day.AllDay = append(day.AllDay, e)
			}
		}
		fillSlots(&day, timed, loc)
		days = append(days, day)
	}
	return days, nil
}

// HeaderLabel formats a day header such as "SAT JUN 15  (TODAY)".
func HeaderLabel(date time.Time, today bool) string {
	label := strings.ToUpper(date.Format("Mon Jan 02"))
	if today {
		label += "  (TODAY)"
	}
	return label
}

func fillSlots(day *Day, timed []models.Event, loc *time.Location) {
	for i := range day.Slots {
		hour, minute := i*SlotMinutes/60, i*SlotMinutes%60
		slotStart := time.Date(day.Date.Year(), day.Date.Month(), day.Date.Day(), hour, minute, 0, 0, loc)
		slotEnd := slotStart.Add(SlotMinutes * time.Minute)
		day.Slots[i] = Slot{Hour: hour, Minute: minute}

		for _, e := range timed {
			if !(e.Start.Before(slotEnd) && e.End.After(slotStart)) {
				continue
			}
			start := e.Start.In(loc)
			day.Slots[i].Occupied = true
			day.Slots[i].EventID = e.ID
			day.Slots[i].Title = e.Title
			day.Slots[i].EventStart = !start.Before(slotStart) && start.Before(slotEnd)
			break
		}
	}
}

// SlotIndex returns the index of the slot containing t's time of day.
func SlotIndex(t time.Time) int {
	return (t.Hour()*60 + t.Minute()) / SlotMinutes
}

// AllDayBanner joins the titles of the day's all-day events.
func (d Day) AllDayBanner() string {
	if len(d.AllDay) == 0 {
		return ""
	}
	titles := make([]string, len(d.AllDay))
	for i, e := range d.AllDay {
		titles[i] = e.Title
	}
	return strings.Join(titles, " │ ")
}
