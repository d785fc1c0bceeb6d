package calendar

import (
	"time"

	"bookey/internal/models"
)

// DayBucket holds the events starting on one date, in backend order.
type DayBucket struct {
	Date   string // YYYY-MM-DD
	Events []models.Event
	// Carried holds timed events that started on an earlier date and are
	// still running when this one begins. Only the first bucket of a window
	// carries any.
	Carried []models.Event
}

// Buckets is the ordered list of day buckets of a window.
type Buckets []DayBucket

// Bucketize assigns events to the window date they start on. Every date of
// the window gets a bucket, empty or not. Timed events starting before the
// window but ending inside it are carried by the first bucket; everything
// else starting outside the window is dropped.
func Bucketize(dates []time.Time, events []models.Event) Buckets {
	buckets := make(Buckets, len(dates))
	index := make(map[string]int, len(dates))
	for i, d := range dates {
		key := models.DateKey(d)
		buckets[i] = DayBucket{Date: key, Events: []models.Event{}}
		index[key] = i
	}
	if len(dates) == 0 {
		return buckets
	}
	first := dates[0]
	for _, e := range events {
		key := models.DateKey(e.Start.In(first.Location()))
		if i, ok := index[key]; ok {
			buckets[i].Events = append(buckets[i].Events, e)
			continue
		}
		if !e.AllDay && e.Start.Before(first) && e.End.After(first) {
			buckets[0].Carried = append(buckets[0].Carried, e)
		}
	}
	return buckets
}

// Events flattens the buckets back into a single list, window order first.
// Carried events are left out since they belong to an earlier window.
func (b Buckets) Events() []models.Event {
	var out []models.Event
	for _, day := range b {
		out = append(out, day.Events...)
	}
	return out
}

// Dates returns the bucket keys in order.
func (b Buckets) Dates() []string {
	out := make([]string, len(b))
	for i, day := range b {
		out[i] = day.Date
	}
	return out
}
