package calendar

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"bookey/internal/models"
)

// ErrNotFound is returned by Memory for unknown event or task IDs.
var ErrNotFound = errors.New("not found")

// Memory is a Backend that keeps everything in process memory. It backs the
// "memory" backend setting and the tests.
type Memory struct {
	logger   *slog.Logger
	location *time.Location
	events   []models.Event
	tasks    []models.Task
}

// NewMemory creates an empty in-memory backend that interprets zone-less
// timestamps in loc.
func NewMemory(logger *slog.Logger, loc *time.Location) *Memory {
	if loc == nil {
		loc = time.Local
	}
	return &Memory{logger: logger, location: loc}
}

// ListSlots returns the events of the window, sorted by start time.
func (m *Memory) ListSlots(_ context.Context, focus time.Time, days int) (Buckets, error) {
	dates := Window(focus, days, m.location)
	from, to := Bounds(dates)

	var inRange []models.Event
	for _, e := range m.events {
		if e.Start.After(to) || e.End.Before(from) {
			continue
		}
		inRange = append(inRange, e)
	}
	sort.SliceStable(inRange, func(i, j int) bool {
		return inRange[i].Start.Before(inRange[j].Start)
	})
	m.logger.Debug("Listed memory events", "from", from, "to", to, "count", len(inRange))
	return Bucketize(dates, inRange), nil
}

// ListTasks returns the incomplete tasks, due date ascending.
func (m *Memory) ListTasks(_ context.Context) ([]models.Task, error) {
	var open []models.Task
	for _, t := range m.tasks {
		if !t.Completed {
			open = append(open, t)
		}
	}
	models.SortTasks(open)
	return open, nil
}

// CreateEvent stores a new event.
func (m *Memory) CreateEvent(_ context.Context, title, startISO, endISO, description string) (models.Event, error) {
	start, allDay, err := models.ParseISO(startISO, m.location)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse event start: %w", err)
	}
	end, _, err := models.ParseISO(endISO, m.location)
	if err != nil {
		return models.Event{}, fmt.Errorf("failed to parse event end: %w", err)
	}
	if end.Before(start) {
		return models.Event{}, fmt.Errorf("event ends before it starts: %s < %s", endISO, startISO)
	}
	event := models.Event{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(title),
		Description: description,
		Start:       start,
		End:         end,
		AllDay:      allDay,
	}
	m.events = append(m.events, event)
	m.logger.Info("Created memory event", "id", event.ID, "title", event.Title)
	return event, nil
}

// DeleteEvent removes the event with the given ID.
func (m *Memory) DeleteEvent(_ context.Context, id string) error {
	for i, e := range m.events {
		if e.ID == id {
			m.events = append(m.events[:i], m.events[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("event %s: %w", id, ErrNotFound)
}

// CreateTask stores a new, incomplete task.
func (m *Memory) CreateTask(_ context.Context, title, notes string, due *time.Time) (models.Task, error) {
	task := models.Task{
		ID:    uuid.New().String(),
		Title: strings.TrimSpace(title),
		Notes: notes,
	}
	if due != nil {
		d := models.StartOfDay(*due, m.location)
		task.Due = &d
	}
	m.tasks = append(m.tasks, task)
	return task, nil
}

// CompleteTask marks the task with the given ID as completed.
func (m *Memory) CompleteTask(_ context.Context, id string) error {
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks[i].Completed = true
			return nil
		}
	}
	return fmt.Errorf("task %s: %w", id, ErrNotFound)
}
