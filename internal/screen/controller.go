package screen

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"bookey/internal/calendar"
	"bookey/internal/models"
)

// Outcome is the result a modal hands back to the calendar view. A nil
// Outcome means the modal was dismissed without a change.
type Outcome interface {
	outcome()
}

// NewEvent asks for an event to be created.
type NewEvent struct {
	Title       string
	StartISO    string
	EndISO      string
	Description string
}

// NewTask asks for a task to be created.
type NewTask struct {
	Title string
	Notes string
	Due   *time.Time
}

// DeleteEvent asks for an event to be deleted.
type DeleteEvent struct {
	ID    string
	Title string
}

// CompleteTask asks for a task to be marked completed.
type CompleteTask struct {
	ID    string
	Title string
}

func (NewEvent) outcome()     {}
func (NewTask) outcome()      {}
func (DeleteEvent) outcome()  {}
func (CompleteTask) outcome() {}

// Controller is the only place the UI talks to the backend.
type Controller struct {
	Backend calendar.Backend
	Logger  *slog.Logger
}

// Load fetches the window of frame and the open tasks.
func (c *Controller) Load(ctx context.Context, frame Frame) (calendar.Buckets, []models.Task, error) {
	buckets, err := c.Backend.ListSlots(ctx, frame.Focus, frame.Days)
	if err != nil {
		c.Logger.Error("Failed to load events", "focus", models.DateKey(frame.Focus), "days", frame.Days, "error", err)
		return nil, nil, &calendar.BackendError{Op: "load events", Err: err}
	}
	tasks, err := c.Backend.ListTasks(ctx)
	if err != nil {
		c.Logger.Error("Failed to load tasks", "error", err)
		return nil, nil, &calendar.BackendError{Op: "load tasks", Err: err}
	}
	return buckets, tasks, nil
}

// Dispatch applies an outcome and returns the confirmation to show. A nil
// outcome does nothing. Failures are returned as *calendar.BackendError.
func (c *Controller) Dispatch(ctx context.Context, o Outcome) (string, error) {
	switch o := o.(type) {
	case nil:
		return "", nil
	case NewEvent:
		if _, err := c.Backend.CreateEvent(ctx, o.Title, o.StartISO, o.EndISO, o.Description); err != nil {
			return "", c.fail("add event", err)
		}
		return fmt.Sprintf("✓ Event %q added", o.Title), nil
	case NewTask:
		if _, err := c.Backend.CreateTask(ctx, o.Title, o.Notes, o.Due); err != nil {
			return "", c.fail("add task", err)
		}
		return fmt.Sprintf("✓ Task %q added", o.Title), nil
	case DeleteEvent:
		if err := c.Backend.DeleteEvent(ctx, o.ID); err != nil {
			return "", c.fail("delete event", err)
		}
		return fmt.Sprintf("✓ Deleted %q", o.Title), nil
	case CompleteTask:
		if err := c.Backend.CompleteTask(ctx, o.ID); err != nil {
			return "", c.fail("complete task", err)
		}
		return fmt.Sprintf("✓ Completed %q", o.Title), nil
	default:
		return "", fmt.Errorf("unknown outcome %T", o)
	}
}

func (c *Controller) fail(op string, err error) error {
	c.Logger.Error("Backend call failed", "op", op, "error", err)
	return &calendar.BackendError{Op: op, Err: err}
}
