package screen

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"bookey/internal/grid"
	"bookey/internal/models"
	"bookey/internal/prompt"
	"bookey/internal/theme"
)

var logo = []string{
	" ██████╗  ██████╗  ██████╗ ██╗  ██╗███████╗██╗   ██╗",
	" ██╔══██╗██╔═══██╗██╔═══██╗██║ ██╔╝██╔════╝╚██╗ ██╔╝",
	" ██████╔╝██║   ██║██║   ██║█████╔╝ █████╗   ╚████╔╝ ",
	" ██╔══██╗██║   ██║██║   ██║██╔═██╗ ██╔══╝    ╚██╔╝  ",
	" ██████╔╝╚██████╔╝╚██████╔╝██║  ██╗███████╗   ██║   ",
	" ╚═════╝  ╚═════╝  ╚═════╝ ╚═╝  ╚═╝╚══════╝   ╚═╝   ",
}

const (
	tagline    = "Your calendar, in the terminal."
	menuHint   = "press 'q' to quit  |  'c' for calendar"
	footerHelp = " [a] Add  [d] Delete/Complete  [1] 1-Day  [3] 3-Day  [n/p] Next/Prev  [t] Today  [↑/↓] Scroll  [esc] Back"

	// tasksPanelWidth is used when the terminal is at least minPanelTerminal wide.
	tasksPanelWidth  = 32
	minPanelTerminal = 72
)

var menuOptions = []string{"Calendar", "Exit"}

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusError
)

// calendarState is what the calendar view shows between reloads.
type calendarState struct {
	days       []grid.Day
	events     []models.Event
	tasks      []models.Task
	scroll     int // First visible slot
	status     string
	statusKind statusKind
	stale      bool // Reload before the next draw
}

func (s *calendarState) setStatus(kind statusKind, format string, args ...any) {
	s.statusKind = kind
	s.status = fmt.Sprintf(format, args...)
}

func renderMenu(th *theme.Theme, sel *prompt.Selector) []string {
	lines := make([]string, 0, len(logo)+8)
	for _, l := range logo {
		lines = append(lines, th.Accent(l))
	}
	lines = append(lines, "", "  "+th.Text(tagline), "")
	lines = append(lines, prompt.OptionLines(th, sel)...)
	lines = append(lines, "", "  "+th.Dim(menuHint))
	return lines
}

// slotRows returns how many slot rows fit in height next to the fixed lines
// of the calendar view.
func slotRows(height int, banner bool) int {
	fixed := 6 // header, blank, day headers, rule, status, footer
	if banner {
		fixed++
	}
	rows := height - fixed - 1 // keep the cursor line on screen
	return max(1, min(rows, grid.SlotsPerDay))
}

func hasBanner(days []grid.Day) bool {
	for _, d := range days {
		if len(d.AllDay) > 0 {
			return true
		}
	}
	return false
}

// clampScroll keeps the first visible slot inside the day.
func clampScroll(scroll, rows int) int {
	return max(0, min(scroll, grid.SlotsPerDay-rows))
}

func renderCalendar(th *theme.Theme, frame Frame, st *calendarState, width, height int) []string {
	banner := hasBanner(st.days)
	rows := slotRows(height, banner)
	scroll := clampScroll(st.scroll, rows)

	panelW := 0
	if width >= minPanelTerminal {
		panelW = tasksPanelWidth
	}
	colW := max(1, (width-panelW)/max(1, len(st.days)))
	gridW := colW * len(st.days)

	panel := taskPanel(th, st.tasks, panelW)
	panelRow := 0
	nextPanel := func() string {
		if panelW == 0 {
			return ""
		}
		var s string
		if panelRow < len(panel) {
			s = panel[panelRow]
		} else {
			s = th.Dim("│") + strings.Repeat(" ", panelW-1)
		}
		panelRow++
		return s
	}

	header := fmt.Sprintf("  %d-Day View │ %s", frame.Days, frame.Focus.Format("Jan 02, 2006"))
	lines := []string{th.Selected(fit(header, width)), ""}

	var b strings.Builder
	for _, d := range st.days {
		label := fit(" "+d.Label, colW)
		if d.Today {
			b.WriteString(th.Selected(label))
		} else {
			b.WriteString(th.Highlight(label))
		}
	}
	lines = append(lines, b.String()+nextPanel())

	if banner {
		b.Reset()
		for _, d := range st.days {
			b.WriteString(th.Success(fit(" "+d.AllDayBanner(), colW)))
		}
		lines = append(lines, b.String()+nextPanel())
	}

	lines = append(lines, th.Dim(strings.Repeat("─", gridW))+nextPanel())

	for i := scroll; i < scroll+rows; i++ {
		b.Reset()
		for _, d := range st.days {
			b.WriteString(slotCell(th, d.Slots[i], colW))
		}
		lines = append(lines, b.String()+nextPanel())
	}

	switch st.statusKind {
	case statusError:
		lines = append(lines, th.Error(fit(" "+st.status, width)))
	case statusOK:
		lines = append(lines, th.Success(fit(" "+st.status, width)))
	default:
		lines = append(lines, th.Dim(fit(" "+st.status, width)))
	}
	lines = append(lines, th.Dim(fit(footerHelp, width)))
	return lines
}

func slotCell(th *theme.Theme, s grid.Slot, width int) string {
	switch {
	case s.Occupied && s.EventStart:
		return th.Accent(fit(fmt.Sprintf(" %s │ %s", s.Label(), s.Title), width))
	case s.Occupied:
		return th.Dim(fit(fmt.Sprintf(" %s │   …", s.Label()), width))
	default:
		return th.Text(fit(fmt.Sprintf(" %s │", s.Label()), width))
	}
}

func taskPanel(th *theme.Theme, tasks []models.Task, width int) []string {
	if width == 0 {
		return nil
	}
	border := th.Dim("│")
	lines := []string{border + th.Bold(fit(" Tasks", width-1))}
	if len(tasks) == 0 {
		return append(lines, border+th.Dim(fit(" No tasks", width-1)))
	}
	for _, t := range tasks {
		due := t.DueKey()
		if due == "" {
			due = "no date"
		}
		lines = append(lines, border+th.Text(fit(fmt.Sprintf(" %s │ %s", t.Title, due), width-1)))
	}
	return lines
}

// fit truncates s to width cells and pads it with spaces to exactly width.
func fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, "…"), width)
}
