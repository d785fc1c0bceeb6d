// Package flows implements the one-shot add, delete and list commands. They
// reuse the interactive prompts but print their result and exit instead of
// running the full-screen UI.
package flows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"bookey/internal/calendar"
	"bookey/internal/grid"
	"bookey/internal/models"
	"bookey/internal/prompt"
)

// upcomingDays is the forward window of the delete and list commands.
const upcomingDays = 7

// Runner holds what every flow needs.
type Runner struct {
	Prompter *prompt.Prompter
	Backend  calendar.Backend
	Logger   *slog.Logger
	Location *time.Location
	Now      func() time.Time // Injectable for testing
}

func (r *Runner) today() time.Time {
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	return models.StartOfDay(now, r.Location)
}

// invalid prints a validation failure inline. The flow then ends without
// touching the backend.
func (r *Runner) invalid(err error) error {
	var validation *prompt.ValidationError
	if !errors.As(err, &validation) {
		return err
	}
	r.Logger.Debug("Rejected input", "field", validation.Field, "value", validation.Value)
	r.Prompter.Say("  %s", r.Prompter.Theme.Error(validation.Error()))
	return nil
}

func (r *Runner) success(format string, args ...any) {
	th := r.Prompter.Theme
	r.Prompter.Say("\n  %s %s", th.Success("✓"), fmt.Sprintf(format, args...))
}

func (r *Runner) quoted(s string) string {
	return r.Prompter.Theme.Bold(`"` + s + `"`)
}

// Add asks whether to add an event or a task and creates it.
func (r *Runner) Add(ctx context.Context) error {
	choice, err := r.Prompter.Select("What would you like to add?", []string{"Event", "Task"})
	if err != nil {
		return err
	}
	if choice == 0 {
		return r.addEvent(ctx)
	}
	return r.addTask(ctx)
}

func (r *Runner) addEvent(ctx context.Context) error {
	p := r.Prompter
	name, err := p.Ask("Name", prompt.AskOptions{Required: true})
	if err != nil {
		return err
	}
	dateText, err := p.Ask("Date (dd/mm/yyyy)", prompt.AskOptions{Required: true})
	if err != nil {
		return err
	}
	startText, err := p.Ask("Start time (hh:mm, or 'a' for all day)", prompt.AskOptions{Required: true})
	if err != nil {
		return err
	}
	allDay := strings.EqualFold(startText, "a")
	var endText string
	if !allDay {
		if endText, err = p.Ask("End time (hh:mm)", prompt.AskOptions{Required: true}); err != nil {
			return err
		}
	}
	desc, err := p.Ask("Description", prompt.AskOptions{})
	if err != nil {
		return err
	}

	date, err := prompt.ParseDayMonthYear("date", dateText, r.Location)
	if err != nil {
		return r.invalid(err)
	}
	day := date.Format("Jan 02, 2006")

	if allDay {
		iso := models.DateKey(date)
		if _, err := r.Backend.CreateEvent(ctx, name, iso, iso, desc); err != nil {
			return &calendar.BackendError{Op: "add event", Err: err}
		}
		r.success("Event %s added for %s (all day)", r.quoted(name), day)
		return nil
	}

	start, end, err := prompt.TimeRange(date, startText, endText)
	if err != nil {
		return r.invalid(err)
	}
	if _, err := r.Backend.CreateEvent(ctx, name, start.Format(models.DateTimeLayout), end.Format(models.DateTimeLayout), desc); err != nil {
		return &calendar.BackendError{Op: "add event", Err: err}
	}
	r.success("Event %s added for %s %s-%s", r.quoted(name), day, start.Format("15:04"), end.Format("15:04"))
	return nil
}

func (r *Runner) addTask(ctx context.Context) error {
	p := r.Prompter
	name, err := p.Ask("Name", prompt.AskOptions{Required: true})
	if err != nil {
		return err
	}
	dateText, err := p.Ask("Date (dd/mm/yyyy)", prompt.AskOptions{Hint: "[enter to skip]"})
	if err != nil {
		return err
	}
	desc, err := p.Ask("Description", prompt.AskOptions{})
	if err != nil {
		return err
	}

	var due *time.Time
	if dateText != "" {
		date, err := prompt.ParseDayMonthYear("date", dateText, r.Location)
		if err != nil {
			return r.invalid(err)
		}
		due = &date
	}

	if _, err := r.Backend.CreateTask(ctx, name, desc, due); err != nil {
		return &calendar.BackendError{Op: "add task", Err: err}
	}
	if due != nil {
		r.success("Task %s added for %s", r.quoted(name), due.Format("Jan 02, 2006"))
	} else {
		r.success("Task %s added", r.quoted(name))
	}
	return nil
}

// Delete asks whether to delete an upcoming event or complete a task.
func (r *Runner) Delete(ctx context.Context) error {
	choice, err := r.Prompter.Select("What would you like to remove?", []string{"Event", "Task"})
	if err != nil {
		return err
	}
	if choice == 0 {
		return r.deleteEvent(ctx)
	}
	return r.completeTask(ctx)
}

func (r *Runner) deleteEvent(ctx context.Context) error {
	p, th := r.Prompter, r.Prompter.Theme
	buckets, err := r.Backend.ListSlots(ctx, r.today(), upcomingDays)
	if err != nil {
		return &calendar.BackendError{Op: "list events", Err: err}
	}
	events := buckets.Events()
	if len(events) == 0 {
		p.Say("\n  %s", th.Dim("No events in the next 7 days."))
		return nil
	}

	p.Say("\n  %s", th.Highlight("Events for the next 7 days:"))
	labels := make([]string, len(events))
	for i, e := range events {
		when := e.Start.Format("15:04")
		if e.AllDay {
			when = "all day"
		}
		labels[i] = fmt.Sprintf("%s | %s (%s)", e.Start.Format("Mon, Jan 02"), e.Title, when)
	}

	idx, err := p.Select("Select event to delete:", labels)
	if err != nil {
		return err
	}
	event := events[idx]
	if err := r.Backend.DeleteEvent(ctx, event.ID); err != nil {
		return &calendar.BackendError{Op: "delete event", Err: err}
	}
	p.Say("  %s Deleted %s", th.Success("✓"), r.quoted(event.Title))
	return nil
}

func (r *Runner) completeTask(ctx context.Context) error {
	p, th := r.Prompter, r.Prompter.Theme
	tasks, err := r.Backend.ListTasks(ctx)
	if err != nil {
		return &calendar.BackendError{Op: "list tasks", Err: err}
	}
	if len(tasks) == 0 {
		p.Say("\n  %s", th.Dim("No tasks to complete."))
		return nil
	}

	p.Say("\n  %s", th.Highlight("Your tasks:"))
	labels := make([]string, len(tasks))
	for i, t := range tasks {
		if t.Due != nil {
			labels[i] = fmt.Sprintf("%s | %s", t.Due.Format("Jan 02"), t.Title)
		} else {
			labels[i] = t.Title
		}
	}

	idx, err := p.Select("Select task to complete:", labels)
	if err != nil {
		return err
	}
	task := tasks[idx]
	if err := r.Backend.CompleteTask(ctx, task.ID); err != nil {
		return &calendar.BackendError{Op: "complete task", Err: err}
	}
	p.Say("  %s Completed %s", th.Success("✓"), r.quoted(task.Title))
	return nil
}

// List prints the next seven days, one block per day.
func (r *Runner) List(ctx context.Context) error {
	p, th := r.Prompter, r.Prompter.Theme
	buckets, err := r.Backend.ListSlots(ctx, r.today(), upcomingDays)
	if err != nil {
		return &calendar.BackendError{Op: "list events", Err: err}
	}
	days, err := grid.Builder{Location: r.Location, Now: r.Now}.Build(buckets)
	if err != nil {
		return err
	}

	for i, day := range days {
		if day.Today {
			p.Say("\n%s", th.Selected(day.Label))
		} else {
			p.Say("\n%s", th.Highlight(day.Label))
		}
		if banner := day.AllDayBanner(); banner != "" {
			p.Say("  %s", th.Success(banner))
		}
		timed := 0
		for _, e := range buckets[i].Events {
			if e.AllDay {
				continue
			}
			timed++
			p.Say("  %s  %s", th.Dim(e.Start.Format("15:04")+"-"+e.End.Format("15:04")), th.Text(e.Title))
		}
		if timed == 0 && len(day.AllDay) == 0 {
			p.Say("  %s", th.Dim("No events"))
		}
	}
	return nil
}
