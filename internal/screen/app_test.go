package screen

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookey/internal/calendar"
	"bookey/internal/models"
	"bookey/internal/terminal"
	"bookey/internal/terminal/termtest"
	"bookey/internal/theme"
)

var fixedNow = time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

// recorder wraps a backend and logs every call by name.
type recorder struct {
	calendar.Backend
	calls []string
	fail  error
}

func (r *recorder) ListSlots(ctx context.Context, focus time.Time, days int) (calendar.Buckets, error) {
	r.calls = append(r.calls, "ListSlots "+models.DateKey(focus)+" "+string(rune('0'+days)))
	return r.Backend.ListSlots(ctx, focus, days)
}

func (r *recorder) ListTasks(ctx context.Context) ([]models.Task, error) {
	r.calls = append(r.calls, "ListTasks")
	return r.Backend.ListTasks(ctx)
}

func (r *recorder) CreateEvent(ctx context.Context, title, startISO, endISO, description string) (models.Event, error) {
	r.calls = append(r.calls, "CreateEvent")
	if r.fail != nil {
		return models.Event{}, r.fail
	}
	return r.Backend.CreateEvent(ctx, title, startISO, endISO, description)
}

func (r *recorder) DeleteEvent(ctx context.Context, id string) error {
	r.calls = append(r.calls, "DeleteEvent")
	return r.Backend.DeleteEvent(ctx, id)
}

func (r *recorder) CreateTask(ctx context.Context, title, notes string, due *time.Time) (models.Task, error) {
	r.calls = append(r.calls, "CreateTask")
	return r.Backend.CreateTask(ctx, title, notes, due)
}

func (r *recorder) CompleteTask(ctx context.Context, id string) error {
	r.calls = append(r.calls, "CompleteTask")
	return r.Backend.CompleteTask(ctx, id)
}

func (r *recorder) mutations() []string {
	var out []string
	for _, c := range r.calls {
		if !strings.HasPrefix(c, "List") {
			out = append(out, c)
		}
	}
	return out
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newApp(t *testing.T, keys ...string) (*App, *recorder, *calendar.Memory, *bytes.Buffer) {
	t.Helper()
	mem := calendar.NewMemory(discardLogger(), time.UTC)
	rec := &recorder{Backend: mem}
	out := &bytes.Buffer{}
	app := &App{
		Keys:     termtest.Console(keys...),
		Out:      out,
		Theme:    theme.Plain(out),
		Backend:  rec,
		Logger:   discardLogger(),
		Location: time.UTC,
		Now:      func() time.Time { return fixedNow },
		Size:     func() (int, int) { return 120, 40 },
	}
	return app, rec, mem, out
}

func TestRun_QuitFromMainMenu(t *testing.T) {
	app, rec, _, out := newApp(t, "q")

	require.NoError(t, app.Run(context.Background()))
	assert.Contains(t, out.String(), "Your calendar, in the terminal.")
	assert.Contains(t, out.String(), "❯ 1. Calendar")
	assert.Empty(t, rec.calls)
}

func TestRun_MenuExitOption(t *testing.T) {
	app, rec, _, _ := newApp(t, termtest.Down, termtest.Enter)

	require.NoError(t, app.Run(context.Background()))
	assert.Empty(t, rec.calls)
}

func TestRun_InterruptAtMainMenu(t *testing.T) {
	app, _, _, _ := newApp(t, termtest.Interrupt)
	assert.ErrorIs(t, app.Run(context.Background()), terminal.ErrInterrupted)
}

func TestRun_EndOfInputQuits(t *testing.T) {
	app, _, _, _ := newApp(t, "c")
	assert.NoError(t, app.Run(context.Background()))
}

func TestRun_CalendarShowsCenteredWindow(t *testing.T) {
	app, rec, mem, out := newApp(t, "c", termtest.Escape, "q")
	_, err := mem.CreateEvent(context.Background(), "Standup", "2024-06-15T10:00:00", "2024-06-15T10:30:00", "")
	require.NoError(t, err)
	_, err = mem.CreateTask(context.Background(), "Pay rent", "", nil)
	require.NoError(t, err)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{"ListSlots 2024-06-15 3", "ListTasks"}, rec.calls)
	rendered := out.String()
	assert.Contains(t, rendered, "3-Day View │ Jun 15, 2024")
	assert.Contains(t, rendered, "FRI JUN 14")
	assert.Contains(t, rendered, "SAT JUN 15  (TODAY)")
	assert.Contains(t, rendered, "SUN JUN 16")
	assert.Contains(t, rendered, "10:00 │ Standup")
	assert.Contains(t, rendered, "Pay rent │ no date")
	assert.Contains(t, rendered, "Loading…")
}

func TestRun_WindowToggleAndNavigation(t *testing.T) {
	app, rec, _, out := newApp(t, "c", "1", "1", "n", "t", "3", termtest.Escape, "q")

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{
		"ListSlots 2024-06-15 3", "ListTasks",
		"ListSlots 2024-06-15 1", "ListTasks",
		"ListSlots 2024-06-16 1", "ListTasks",
		"ListSlots 2024-06-15 1", "ListTasks",
		"ListSlots 2024-06-15 3", "ListTasks",
	}, rec.calls)
	assert.Contains(t, out.String(), "1-Day View │ Jun 16, 2024")
}

func TestRun_CancelledAddModalIssuesNoBackendCall(t *testing.T) {
	app, rec, _, _ := newApp(t, "c", "a", termtest.Interrupt, termtest.Escape, "q")

	require.NoError(t, app.Run(context.Background()))
	assert.Empty(t, rec.mutations())
	// The calendar is redrawn from what it had, without a reload.
	assert.Equal(t, []string{"ListSlots 2024-06-15 3", "ListTasks"}, rec.calls)
}

func TestRun_EscapeOnAddSelectorReturnsToCalendar(t *testing.T) {
	app, rec, _, _ := newApp(t, "c", "a", termtest.Escape, "1", termtest.Escape, "q")

	require.NoError(t, app.Run(context.Background()))
	assert.Empty(t, rec.mutations())
	// The "1" after the cancelled modal reaches the calendar's window toggle.
	assert.Equal(t, []string{
		"ListSlots 2024-06-15 3", "ListTasks",
		"ListSlots 2024-06-15 1", "ListTasks",
	}, rec.calls)
}

func TestRun_CancelledDeleteModalIssuesNoBackendCall(t *testing.T) {
	for name, cancel := range map[string]string{
		"escape":    termtest.Escape,
		"interrupt": termtest.Interrupt,
	} {
		t.Run(name, func(t *testing.T) {
			app, rec, mem, _ := newApp(t, "c", "d", cancel, "1", termtest.Escape, "q")
			_, err := mem.CreateTask(context.Background(), "Pay rent", "", nil)
			require.NoError(t, err)

			require.NoError(t, app.Run(context.Background()))
			assert.Empty(t, rec.mutations())
			assert.Equal(t, []string{
				"ListSlots 2024-06-15 3", "ListTasks",
				"ListSlots 2024-06-15 1", "ListTasks",
			}, rec.calls)

			tasks, err := mem.ListTasks(context.Background())
			require.NoError(t, err)
			assert.Len(t, tasks, 1)
		})
	}
}

func TestRun_CancelledTextPromptIssuesNoBackendCall(t *testing.T) {
	app, rec, _, _ := newApp(t, "c", "a", "1", "Demo", termtest.Enter, termtest.Escape, termtest.Escape, "q")

	require.NoError(t, app.Run(context.Background()))
	assert.Empty(t, rec.mutations())
}

func TestRun_AddEventOnFocusDate(t *testing.T) {
	app, rec, mem, out := newApp(t,
		"c", "a", "1",
		"Demo", termtest.Enter,
		"10:00", termtest.Enter,
		"11:00", termtest.Enter,
		termtest.Enter,
		termtest.Escape, "q",
	)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{"CreateEvent"}, rec.mutations())
	buckets, err := mem.ListSlots(context.Background(), fixedNow, 1)
	require.NoError(t, err)
	require.Len(t, buckets[0].Events, 1)
	ev := buckets[0].Events[0]
	assert.Equal(t, "Demo", ev.Title)
	assert.Equal(t, time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), ev.Start)
	assert.Contains(t, out.String(), `✓ Event "Demo" added`)
	assert.Contains(t, out.String(), "10:00 │ Demo")
}

func TestRun_InvalidTimeAbortsWithoutMutation(t *testing.T) {
	app, rec, _, out := newApp(t,
		"c", "a", "1",
		"Demo", termtest.Enter,
		"25:00", termtest.Enter,
		"11:00", termtest.Enter,
		termtest.Enter,
		termtest.Escape, "q",
	)

	require.NoError(t, app.Run(context.Background()))
	assert.Empty(t, rec.mutations())
	assert.Contains(t, out.String(), "Invalid start time format. Use hh:mm")
}

func TestRun_AddTaskWithDueDate(t *testing.T) {
	app, rec, mem, _ := newApp(t,
		"c", "a", "2",
		"Pay rent", termtest.Enter,
		termtest.Enter,
		"2024-06-20", termtest.Enter,
		termtest.Escape, "q",
	)

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, []string{"CreateTask"}, rec.mutations())

	tasks, err := mem.ListTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "2024-06-20", tasks[0].DueKey())
}

func TestRun_DeleteModal(t *testing.T) {
	app, rec, mem, out := newApp(t, "c", "d", "2", termtest.Escape, "q")
	_, err := mem.CreateEvent(context.Background(), "Standup", "2024-06-15T10:00:00", "2024-06-15T10:30:00", "")
	require.NoError(t, err)
	_, err = mem.CreateTask(context.Background(), "Pay rent", "", nil)
	require.NoError(t, err)

	require.NoError(t, app.Run(context.Background()))

	assert.Equal(t, []string{"CompleteTask"}, rec.mutations())
	assert.Contains(t, out.String(), "[Event] Standup  (2024-06-15T10:00)")
	assert.Contains(t, out.String(), "[Task] Pay rent")
	assert.Contains(t, out.String(), `✓ Completed "Pay rent"`)

	tasks, err := mem.ListTasks(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestRun_DeleteModalWithNothingToManage(t *testing.T) {
	app, rec, _, out := newApp(t, "c", "d", termtest.Escape, "q")

	require.NoError(t, app.Run(context.Background()))
	assert.Empty(t, rec.mutations())
	assert.Contains(t, out.String(), "No events or tasks to manage.")
}

func TestRun_BackendErrorKeepsScreen(t *testing.T) {
	app, rec, _, out := newApp(t,
		"c", "a", "1",
		"Demo", termtest.Enter,
		"10:00", termtest.Enter,
		"11:00", termtest.Enter,
		termtest.Enter,
		termtest.Escape, "q",
	)
	rec.fail = errors.New("quota exceeded")

	require.NoError(t, app.Run(context.Background()))
	assert.Equal(t, []string{"CreateEvent"}, rec.mutations())
	assert.Contains(t, out.String(), "add event failed: quota exceeded")
	// No reload after the failed call.
	assert.Equal(t, 1, strings.Count(strings.Join(rec.calls, ","), "ListSlots"))
}
