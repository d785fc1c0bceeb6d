package caldav

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"

	"bookey/internal/models"
)

// maxOccurrences caps the expansion of a single recurring event.
const maxOccurrences = 1000

const (
	statusCompleted   = "COMPLETED"
	statusNeedsAction = "NEEDS-ACTION"
)

var errNoStart = errors.New("event has no DTSTART")

// parsedEvent is a VEVENT before recurrence expansion.
type parsedEvent struct {
	models.Event
	rule    string
	exDates []time.Time
	// recurrenceID is set on an override of one instance of a series.
	recurrenceID *time.Time
}

// parseEvent reads a VEVENT stored at path. All-day ends are converted from
// the exclusive DTEND to the last covered day.
func parseEvent(path string, ev ical.Event, loc *time.Location) (parsedEvent, error) {
	startProp := ev.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return parsedEvent{}, errNoStart
	}
	start, err := startProp.DateTime(loc)
	if err != nil {
		return parsedEvent{}, fmt.Errorf("invalid DTSTART: %w", err)
	}
	allDay := startProp.ValueType() == ical.ValueDate

	end := start
	if endProp := ev.Props.Get(ical.PropDateTimeEnd); endProp != nil {
		if end, err = endProp.DateTime(loc); err != nil {
			return parsedEvent{}, fmt.Errorf("invalid DTEND: %w", err)
		}
	} else if allDay {
		end = start.AddDate(0, 0, 1)
	}
	if allDay {
		end = end.AddDate(0, 0, -1)
		if end.Before(start) {
			end = start
		}
	}

	summary, _ := ev.Props.Text(ical.PropSummary)
	description, _ := ev.Props.Text(ical.PropDescription)
	parsed := parsedEvent{Event: models.Event{
		ID:          path,
		Title:       summary,
		Description: description,
		Start:       start.In(loc),
		End:         end.In(loc),
		AllDay:      allDay,
	}}

	if rule := ev.Props.Get(ical.PropRecurrenceRule); rule != nil {
		parsed.rule = rule.Value
	}
	if rid := ev.Props.Get(ical.PropRecurrenceID); rid != nil {
		t, err := rid.DateTime(loc)
		if err != nil {
			return parsedEvent{}, fmt.Errorf("invalid RECURRENCE-ID: %w", err)
		}
		parsed.recurrenceID = &t
	}
	for _, prop := range ev.Props[ical.PropExceptionDates] {
		for _, value := range strings.Split(prop.Value, ",") {
			single := ical.Prop{Name: prop.Name, Params: prop.Params, Value: value}
			if t, err := single.DateTime(loc); err == nil {
				parsed.exDates = append(parsed.exDates, t)
			}
		}
	}
	return parsed, nil
}

// objectOccurrences expands the VEVENTs of one calendar object. Instances
// replaced by an override carrying a RECURRENCE-ID are taken from the
// override, not from the master's RRULE. Unreadable VEVENTs are returned as
// errors and skipped.
func objectOccurrences(path string, events []ical.Event, from, to time.Time, loc *time.Location) ([]models.Event, []error) {
	var (
		parsed    []parsedEvent
		overrides []time.Time
		errs      []error
	)
	for _, ev := range events {
		p, err := parseEvent(path, ev, loc)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if p.recurrenceID != nil {
			overrides = append(overrides, *p.recurrenceID)
		}
		parsed = append(parsed, p)
	}

	var out []models.Event
	for _, p := range parsed {
		if p.rule != "" {
			p.exDates = append(p.exDates, overrides...)
		}
		out = append(out, p.occurrences(from, to, loc)...)
	}
	return out, errs
}

// occurrences returns the instances of the event overlapping [from, to].
// Events without an RRULE yield themselves.
func (p parsedEvent) occurrences(from, to time.Time, loc *time.Location) []models.Event {
	if p.rule == "" {
		if p.End.Before(from) || p.Start.After(to) {
			return nil
		}
		return []models.Event{p.Event}
	}

	r, err := rrule.StrToRRule(p.rule)
	if err != nil {
		return []models.Event{p.Event}
	}
	r.DTStart(p.Start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range p.exDates {
		set.ExDate(ex.In(p.Start.Location()))
	}

	duration := p.End.Sub(p.Start)
	spanDays := daysBetween(p.Start, p.End)
	starts := set.Between(from.Add(-duration).In(p.Start.Location()), to.In(p.Start.Location()), true)
	if len(starts) > maxOccurrences {
		starts = starts[:maxOccurrences]
	}

	out := make([]models.Event, 0, len(starts))
	for _, start := range starts {
		occ := p.Event
		if p.AllDay {
			occ.Start = models.StartOfDay(start, loc)
			occ.End = occ.Start.AddDate(0, 0, spanDays)
		} else {
			occ.Start = start.In(loc)
			occ.End = start.Add(duration).In(loc)
		}
		out = append(out, occ)
	}
	return out
}

// toVEvent converts an event to a VEVENT with the given UID. Timed values are
// written in UTC; all-day events get an exclusive DTEND date.
func toVEvent(uid string, event models.Event, now time.Time) *ical.Component {
	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, uid)
	ve.Props.SetText(ical.PropSummary, event.Title)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	if event.AllDay {
		ve.Props.SetDate(ical.PropDateTimeStart, event.Start)
		ve.Props.SetDate(ical.PropDateTimeEnd, event.End.AddDate(0, 0, 1))
	} else {
		ve.Props.SetDateTime(ical.PropDateTimeStart, event.Start.UTC())
		ve.Props.SetDateTime(ical.PropDateTimeEnd, event.End.UTC())
	}
	if event.Description != "" {
		ve.Props.SetText(ical.PropDescription, event.Description)
	}
	return ve
}

// parseTask reads a VTODO stored at path.
func parseTask(path string, comp *ical.Component, loc *time.Location) models.Task {
	title, _ := comp.Props.Text(ical.PropSummary)
	notes, _ := comp.Props.Text(ical.PropDescription)
	status, _ := comp.Props.Text(ical.PropStatus)
	task := models.Task{
		ID:        path,
		Title:     title,
		Notes:     notes,
		Completed: strings.EqualFold(status, statusCompleted),
	}
	if dueProp := comp.Props.Get(ical.PropDue); dueProp != nil {
		if due, err := dueProp.DateTime(loc); err == nil {
			d := models.StartOfDay(due, loc)
			task.Due = &d
		}
	}
	return task
}

func toVTodo(uid string, task models.Task, now time.Time) *ical.Component {
	todo := ical.NewComponent(ical.CompToDo)
	todo.Props.SetText(ical.PropUID, uid)
	todo.Props.SetText(ical.PropSummary, task.Title)
	todo.Props.SetDateTime(ical.PropDateTimeStamp, now.UTC())
	todo.Props.SetText(ical.PropStatus, statusNeedsAction)
	if task.Notes != "" {
		todo.Props.SetText(ical.PropDescription, task.Notes)
	}
	if task.Due != nil {
		todo.Props.SetDate(ical.PropDue, *task.Due)
	}
	return todo
}

// markCompleted flags every VTODO of cal as completed at now. It reports
// whether any was found.
func markCompleted(cal *ical.Calendar, now time.Time) bool {
	found := false
	for _, child := range cal.Children {
		if child.Name != ical.CompToDo {
			continue
		}
		child.Props.SetText(ical.PropStatus, statusCompleted)
		child.Props.SetDateTime(ical.PropCompleted, now.UTC())
		found = true
	}
	return found
}

func sortEvents(events []models.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

func daysBetween(start, end time.Time) int {
	a := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
