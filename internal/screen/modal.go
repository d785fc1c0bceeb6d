package screen

import (
	"errors"
	"fmt"
	"time"

	"bookey/internal/models"
	"bookey/internal/prompt"
)

// addModal asks for a new event on the focus date or a new task. Cancelling
// any prompt returns a nil Outcome; unparsable times return a
// *prompt.ValidationError and no Outcome.
func addModal(p *prompt.Prompter, focus time.Time) (Outcome, error) {
	choice, err := p.Select("Add New...", []string{"Event", "Task"})
	if err != nil {
		return cancelled(err)
	}
	if choice == 0 {
		return addEventModal(p, focus)
	}
	return addTaskModal(p, focus.Location())
}

func addEventModal(p *prompt.Prompter, focus time.Time) (Outcome, error) {
	title, err := p.Ask("Event title", prompt.AskOptions{Required: true})
	if err != nil {
		return cancelled(err)
	}
	startText, err := p.Ask("Start time (HH:MM)", prompt.AskOptions{Required: true})
	if err != nil {
		return cancelled(err)
	}
	endText, err := p.Ask("End time (HH:MM)", prompt.AskOptions{Required: true})
	if err != nil {
		return cancelled(err)
	}
	details, err := p.Ask("Details", prompt.AskOptions{Hint: "(optional)"})
	if err != nil {
		return cancelled(err)
	}

	start, end, err := prompt.TimeRange(focus, startText, endText)
	if err != nil {
		return nil, err
	}
	return NewEvent{
		Title:       title,
		StartISO:    start.Format(models.DateTimeLayout),
		EndISO:      end.Format(models.DateTimeLayout),
		Description: details,
	}, nil
}

func addTaskModal(p *prompt.Prompter, loc *time.Location) (Outcome, error) {
	title, err := p.Ask("Task title", prompt.AskOptions{Required: true})
	if err != nil {
		return cancelled(err)
	}
	notes, err := p.Ask("Notes", prompt.AskOptions{Hint: "(optional)"})
	if err != nil {
		return cancelled(err)
	}
	dueText, err := p.Ask("Due date YYYY-MM-DD", prompt.AskOptions{Hint: "[enter to skip]"})
	if err != nil {
		return cancelled(err)
	}

	task := NewTask{Title: title, Notes: notes}
	if dueText != "" {
		due, err := prompt.ParseISODate("due date", dueText, loc)
		if err != nil {
			return nil, err
		}
		task.Due = &due
	}
	return task, nil
}

// deleteModal offers the window's events for deletion and the open tasks
// for completion.
func deleteModal(p *prompt.Prompter, events []models.Event, tasks []models.Task) (Outcome, error) {
	if len(events) == 0 && len(tasks) == 0 {
		p.Say("  %s", p.Theme.Dim("No events or tasks to manage."))
		return nil, nil
	}

	options := make([]string, 0, len(events)+len(tasks))
	for _, e := range events {
		options = append(options, fmt.Sprintf("[Event] %s  (%s)", e.Title, shortStart(e)))
	}
	for _, t := range tasks {
		options = append(options, fmt.Sprintf("[Task] %s", t.Title))
	}

	idx, err := p.Select("Delete Event / Complete Task", options)
	if err != nil {
		return cancelled(err)
	}
	if idx < len(events) {
		return DeleteEvent{ID: events[idx].ID, Title: events[idx].Title}, nil
	}
	task := tasks[idx-len(events)]
	return CompleteTask{ID: task.ID, Title: task.Title}, nil
}

func shortStart(e models.Event) string {
	if e.AllDay {
		return e.Date()
	}
	return e.Start.Format("2006-01-02T15:04")
}

// cancelled turns a prompt cancellation into a nil Outcome and passes any
// other error through.
func cancelled(err error) (Outcome, error) {
	if errors.Is(err, prompt.ErrCancelled) {
		return nil, nil
	}
	return nil, err
}
