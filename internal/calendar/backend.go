// Package calendar defines the backend contract the terminal UI consumes,
// the date windows it asks for, and an in-memory implementation.
package calendar

import (
	"context"
	"fmt"
	"time"

	"bookey/internal/models"
)

// Backend is the calendar and task service the UI reads from and mutates.
// Implementations live in internal/google and internal/caldav; Memory is the
// offline implementation.
type Backend interface {
	// ListSlots returns one bucket per date of the window selected by focus and days.
	ListSlots(ctx context.Context, focus time.Time, days int) (Buckets, error)
	// ListTasks returns incomplete tasks ordered by due date, undated tasks last.
	ListTasks(ctx context.Context) ([]models.Task, error)
	// CreateEvent creates an event. Date-only start and end create an all-day event.
	CreateEvent(ctx context.Context, title, startISO, endISO, description string) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CreateTask(ctx context.Context, title, notes string, due *time.Time) (models.Task, error)
	CompleteTask(ctx context.Context, id string) error
}

// BackendError reports a failed remote call. The UI shows it and keeps the
// data it already has.
type BackendError struct {
	Op  string
	Err error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
