package screen

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"bookey/internal/calendar"
	"bookey/internal/grid"
	"bookey/internal/models"
	"bookey/internal/prompt"
	"bookey/internal/terminal"
	"bookey/internal/theme"
)

// App runs the interactive UI until the main menu is left.
type App struct {
	Keys     terminal.Opener
	Out      io.Writer
	Theme    *theme.Theme
	Backend  calendar.Backend
	Logger   *slog.Logger
	Location *time.Location
	Now      func() time.Time  // Injectable for testing
	Size     func() (int, int) // Terminal width and height

	region *prompt.Region
	ctrl   *Controller
	cal    calendarState
}

func (a *App) now() time.Time {
	if a.Now == nil {
		return time.Now().In(a.Location)
	}
	return a.Now().In(a.Location)
}

func (a *App) size() (int, int) {
	if a.Size == nil {
		return 80, 24
	}
	return a.Size()
}

// Run shows the main menu and processes keys until the user quits, which
// returns nil, or presses Ctrl-C, which returns terminal.ErrInterrupted after
// the terminal was restored. End of input also quits.
func (a *App) Run(ctx context.Context) error {
	if a.Location == nil {
		a.Location = time.Local
	}
	a.region = prompt.NewRegion(a.Out)
	a.ctrl = &Controller{Backend: a.Backend, Logger: a.Logger}
	stack := NewStack(Frame{Screen: MainMenu})

	err := a.loop(ctx, stack)
	if clearErr := a.region.Draw(nil); clearErr != nil && err == nil {
		err = clearErr
	}
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func (a *App) loop(ctx context.Context, stack *Stack) error {
	for stack.Len() > 0 {
		top := stack.Top()
		a.Logger.Debug("Showing screen", "screen", top.Screen, "depth", stack.Len())

		var err error
		switch top.Screen {
		case MainMenu:
			err = a.mainMenu(stack)
		case CalendarView:
			err = a.calendarView(ctx, stack)
		case AddModal, DeleteModal:
			err = a.modal(ctx, stack)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (a *App) mainMenu(stack *Stack) error {
	keys, err := a.Keys.Open()
	if err != nil {
		return err
	}
	defer keys.Close()

	sel := prompt.NewSelector(menuOptions)
	for {
		if err := a.region.Draw(renderMenu(a.Theme, sel)); err != nil {
			return err
		}
		k, err := keys.NextKey()
		if err != nil {
			return err
		}
		switch {
		case k.Is('c'):
			a.openCalendar(stack)
			return nil
		case k.Is('q'), k.Type == terminal.KeyEscape:
			stack.Pop()
			return nil
		}
		sel.Handle(k)
		if sel.State == prompt.Confirmed {
			if sel.Cursor == 0 {
				a.openCalendar(stack)
			} else {
				stack.Pop()
			}
			return nil
		}
	}
}

func (a *App) openCalendar(stack *Stack) {
	a.cal = calendarState{stale: true}
	stack.Push(Frame{Screen: CalendarView, Focus: models.StartOfDay(a.now(), a.Location), Days: 3})
}

func (a *App) calendarView(ctx context.Context, stack *Stack) error {
	frame := stack.Top()
	if a.cal.stale {
		a.reload(ctx, *frame)
	}
	if err := a.drawCalendar(*frame); err != nil {
		return err
	}

	keys, err := a.Keys.Open()
	if err != nil {
		return err
	}
	defer keys.Close()

	for {
		k, err := keys.NextKey()
		if err != nil {
			return err
		}
		switch {
		case k.Type == terminal.KeyEscape:
			stack.Pop()
			return nil
		case k.Is('a'):
			stack.Push(Frame{Screen: AddModal, Focus: frame.Focus, Days: frame.Days})
			return nil
		case k.Is('d'):
			stack.Push(Frame{Screen: DeleteModal, Focus: frame.Focus, Days: frame.Days})
			return nil
		case k.Type == terminal.KeyDigit && (k.Digit == 1 || k.Digit == 3):
			if frame.Days != k.Digit {
				frame.Days = k.Digit
				a.cal.stale = true
				return nil
			}
		case k.Is('n'), k.Is('p'), k.Is('t'):
			focus := models.StartOfDay(a.now(), a.Location)
			if k.Is('n') {
				focus = frame.Focus.AddDate(0, 0, 1)
			} else if k.Is('p') {
				focus = frame.Focus.AddDate(0, 0, -1)
			}
			if !focus.Equal(frame.Focus) {
				frame.Focus = focus
				a.cal.stale = true
				return nil
			}
		case k.Type == terminal.KeyUp, k.Type == terminal.KeyDown:
			a.scroll(k.Type == terminal.KeyDown)
			if err := a.drawCalendar(*frame); err != nil {
				return err
			}
		}
	}
}

func (a *App) scroll(down bool) {
	_, h := a.size()
	rows := slotRows(h, hasBanner(a.cal.days))
	a.cal.scroll = clampScroll(a.cal.scroll, rows)
	if down {
		a.cal.scroll = clampScroll(a.cal.scroll+1, rows)
	} else {
		a.cal.scroll = clampScroll(a.cal.scroll-1, rows)
	}
}

// reload fetches the frame's window and tasks. On failure the error is shown
// and the previous data stays on screen.
func (a *App) reload(ctx context.Context, frame Frame) {
	a.cal.stale = false
	status, kind := a.cal.status, a.cal.statusKind
	a.cal.setStatus(statusInfo, "Loading…")
	if err := a.drawCalendar(frame); err != nil {
		a.Logger.Warn("Failed to draw", "error", err)
	}
	a.cal.status, a.cal.statusKind = status, kind

	buckets, tasks, err := a.ctrl.Load(ctx, frame)
	if err != nil {
		a.cal.setStatus(statusError, "%v", err)
		return
	}
	days, err := grid.Builder{Location: a.Location, Now: a.now}.Build(buckets)
	if err != nil {
		a.cal.setStatus(statusError, "%v", err)
		return
	}
	a.cal.days, a.cal.events, a.cal.tasks = days, buckets.Events(), tasks
	a.cal.scroll = max(0, grid.SlotIndex(a.now())-2)
}

func (a *App) drawCalendar(frame Frame) error {
	w, h := a.size()
	return a.region.Draw(renderCalendar(a.Theme, frame, &a.cal, w, h))
}

// modal runs the modal on top of the stack, pops it and hands its outcome
// to the controller. Only a successful mutation reloads the calendar.
func (a *App) modal(ctx context.Context, stack *Stack) error {
	frame, _ := stack.Pop()
	p := &prompt.Prompter{Keys: a.Keys, Out: a.Out, Theme: a.Theme}

	var (
		outcome Outcome
		err     error
	)
	if frame.Screen == AddModal {
		outcome, err = addModal(p, frame.Focus)
	} else {
		outcome, err = deleteModal(p, a.cal.events, a.cal.tasks)
	}
	a.region.Extend(p.Printed())

	var validation *prompt.ValidationError
	switch {
	case errors.As(err, &validation):
		a.cal.setStatus(statusError, "%v", validation)
		return nil
	case err != nil:
		return err
	case outcome == nil:
		return nil
	}

	a.cal.setStatus(statusInfo, "Saving…")
	if err := a.drawCalendar(*stack.Top()); err != nil {
		return err
	}
	msg, err := a.ctrl.Dispatch(ctx, outcome)
	if err != nil {
		a.cal.setStatus(statusError, "%v", err)
		return nil
	}
	a.cal.setStatus(statusOK, "%s", msg)
	a.cal.stale = true
	return nil
}
