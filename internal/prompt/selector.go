// Package prompt implements the interactive prompts every flow is built
// from: the arrow-key option selector and single-line text input.
package prompt

import "bookey/internal/terminal"

// State is the phase of a Selector.
type State int

const (
	Active State = iota
	Confirmed
	Cancelled
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Confirmed:
		return "confirmed"
	case Cancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Selector is the single-choice list state machine. It knows nothing about
// what is being selected or how it is drawn.
type Selector struct {
	Options []string
	Cursor  int
	State   State
}

// NewSelector returns an Active selector with the cursor on the first option.
func NewSelector(options []string) *Selector {
	return &Selector{Options: options}
}

// Done reports whether the selector reached a terminal state.
func (s *Selector) Done() bool {
	return s.State != Active
}

// Handle applies one key. Keys are ignored once the selector is done.
//
//	Up         cursor > 0          -> cursor-1
//	Down       cursor < len-1      -> cursor+1
//	Digit d    1 <= d <= len       -> Confirmed(d-1)
//	Enter      options non-empty   -> Confirmed(cursor)
//	Interrupt                      -> Cancelled
//	anything else                  -> unchanged
func (s *Selector) Handle(k terminal.Key) {
	if s.Done() {
		return
	}
	switch k.Type {
	case terminal.KeyUp:
		if s.Cursor > 0 {
			s.Cursor--
		}
	case terminal.KeyDown:
		if s.Cursor < len(s.Options)-1 {
			s.Cursor++
		}
	case terminal.KeyDigit:
		if k.Digit >= 1 && k.Digit <= len(s.Options) {
			s.Cursor = k.Digit - 1
			s.State = Confirmed
		}
	case terminal.KeyEnter:
		if len(s.Options) > 0 {
			s.State = Confirmed
		}
	case terminal.KeyInterrupt:
		s.State = Cancelled
	}
}
