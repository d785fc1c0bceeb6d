package prompt

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/mattn/go-runewidth"

	"bookey/internal/terminal"
	"bookey/internal/theme"
)

var (
	// ErrCancelled is returned when the user aborts a prompt with Ctrl-C or Escape.
	ErrCancelled = errors.New("prompt cancelled")
	// ErrNoOptions is returned by Select when there is nothing to choose from.
	ErrNoOptions = errors.New("no options to select")
)

// Prompter runs prompts against one terminal and output.
type Prompter struct {
	Keys  terminal.Opener
	Out   io.Writer
	Theme *theme.Theme

	printed int
}

// Printed returns the number of lines the prompts have left on screen below
// the position they started at. Screens redrawn in place add it to their
// own height.
func (p *Prompter) Printed() int {
	return p.printed
}

// Select asks the user to pick one of options and returns its index.
// The list is redrawn in place after every key until the user confirms with
// Enter or a digit, or cancels with Escape or Ctrl-C (ErrCancelled).
func (p *Prompter) Select(title string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, ErrNoOptions
	}
	fmt.Fprintf(p.Out, "\r\n%s %s\r\n", p.Theme.Accent("?"), p.Theme.Bold(title))
	p.printed += 2

	keys, err := p.Keys.Open()
	if err != nil {
		return -1, err
	}
	defer keys.Close()

	sel := NewSelector(options)
	region := NewRegion(p.Out)
	defer func() { p.printed += region.Lines() }()
	if err := region.Draw(OptionLines(p.Theme, sel)); err != nil {
		return -1, err
	}
	for {
		k, err := keys.NextKey()
		if err != nil && !errors.Is(err, terminal.ErrInterrupted) {
			return -1, err
		}
		if k.Type == terminal.KeyEscape {
			p.newline()
			return -1, ErrCancelled
		}
		sel.Handle(k)
		switch sel.State {
		case Confirmed:
			p.newline()
			return sel.Cursor, nil
		case Cancelled:
			p.newline()
			return -1, ErrCancelled
		}
		if err := region.Draw(OptionLines(p.Theme, sel)); err != nil {
			return -1, err
		}
	}
}

// OptionLines renders the rows of a selector, marking the cursor row.
func OptionLines(th *theme.Theme, sel *Selector) []string {
	lines := make([]string, len(sel.Options))
	for i, opt := range sel.Options {
		if i == sel.Cursor {
			lines[i] = th.Selected(fmt.Sprintf("  ❯ %d. %s", i+1, opt))
		} else {
			lines[i] = th.Dim(fmt.Sprintf("    %d. %s", i+1, opt))
		}
	}
	return lines
}

// AskOptions tune a text prompt.
type AskOptions struct {
	Required bool
	Hint     string // Shown dimmed after the label, e.g. "[enter to skip]"
}

// Ask reads one line of text. Enter submits; a required prompt repeats until
// the answer is non-blank. Escape or Ctrl-C returns ErrCancelled.
func (p *Prompter) Ask(label string, opts AskOptions) (string, error) {
	keys, err := p.Keys.Open()
	if err != nil {
		return "", err
	}
	defer keys.Close()

	prefix := fmt.Sprintf("%s %s", p.Theme.Accent("?"), p.Theme.Bold(label))
	if opts.Hint != "" {
		prefix += " " + p.Theme.Dim(opts.Hint)
	}
	prefix += ": "

	for {
		fmt.Fprint(p.Out, "\r"+ansi.EraseLineRight+prefix)
		var buf []rune
	read:
		for {
			k, err := keys.NextKey()
			if errors.Is(err, terminal.ErrInterrupted) {
				p.newline()
				return "", ErrCancelled
			}
			if err != nil {
				return "", err
			}
			switch k.Type {
			case terminal.KeyRune, terminal.KeyDigit:
				buf = append(buf, k.Rune)
				fmt.Fprint(p.Out, string(k.Rune))
			case terminal.KeyBackspace:
				if len(buf) == 0 {
					continue
				}
				last := buf[len(buf)-1]
				buf = buf[:len(buf)-1]
				fmt.Fprint(p.Out, strings.Repeat("\b \b", max(1, runewidth.RuneWidth(last))))
			case terminal.KeyEscape:
				p.newline()
				return "", ErrCancelled
			case terminal.KeyEnter:
				p.newline()
				break read
			}
		}

		val := strings.TrimSpace(string(buf))
		if val != "" || !opts.Required {
			return val, nil
		}
		p.Say("  %s", p.Theme.Error("This field is required."))
	}
}

// Say prints one line of output.
func (p *Prompter) Say(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	fmt.Fprint(p.Out, strings.ReplaceAll(line, "\n", "\r\n")+"\r\n")
	p.printed += strings.Count(line, "\n") + 1
}

func (p *Prompter) newline() {
	fmt.Fprint(p.Out, "\r\n")
	p.printed++
}
