package prompt

import (
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Region is a block of lines that is redrawn in place: each Draw moves the
// cursor back to the first line of the previous drawing and overwrites it.
type Region struct {
	w     io.Writer
	lines int
}

// NewRegion creates an empty Region on w. The first Draw starts at the
// current cursor position.
func NewRegion(w io.Writer) *Region {
	return &Region{w: w}
}

// Draw replaces the previously drawn lines with lines.
func (r *Region) Draw(lines []string) error {
	var b strings.Builder
	if r.lines > 0 {
		b.WriteString(ansi.CursorUp(r.lines))
		b.WriteString("\r")
	}
	for _, line := range lines {
		b.WriteString(ansi.EraseLineRight)
		b.WriteString(line)
		b.WriteString("\r\n")
	}
	if len(lines) < r.lines {
		b.WriteString(ansi.EraseScreenBelow)
	}
	r.lines = len(lines)
	_, err := io.WriteString(r.w, b.String())
	return err
}

// Lines returns the number of lines currently drawn.
func (r *Region) Lines() int {
	return r.lines
}

// Extend accounts for n lines printed below the region since the last Draw,
// so the next Draw overwrites them too.
func (r *Region) Extend(n int) {
	r.lines += n
}

// Forget detaches the region from what it drew, so the next Draw starts
// below it instead of overwriting it.
func (r *Region) Forget() {
	r.lines = 0
}
