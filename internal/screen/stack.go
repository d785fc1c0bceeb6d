// Package screen drives the interactive terminal UI: a stack of screens, the
// modals pushed on top of the calendar view, and the controller applying
// their results to the backend.
package screen

import (
	"fmt"
	"time"
)

// ScreenID identifies what a frame shows.
type ScreenID int

const (
	MainMenu ScreenID = iota
	CalendarView
	AddModal
	DeleteModal
)

func (s ScreenID) String() string {
	switch s {
	case MainMenu:
		return "main menu"
	case CalendarView:
		return "calendar"
	case AddModal:
		return "add modal"
	case DeleteModal:
		return "delete modal"
	default:
		return fmt.Sprintf("ScreenID(%d)", int(s))
	}
}

// Frame is one entry of the navigation stack: the screen and what it needs
// to be redrawn.
type Frame struct {
	Screen ScreenID
	Focus  time.Time // Focus date, midnight in the configured zone
	Days   int       // Window length of calendar frames
}

// Stack is the navigation stack. The top frame is the visible screen.
type Stack struct {
	frames []Frame
}

// NewStack returns a stack holding the initial frame.
func NewStack(initial Frame) *Stack {
	return &Stack{frames: []Frame{initial}}
}

// Push makes f the visible screen.
func (s *Stack) Push(f Frame) {
	s.frames = append(s.frames, f)
}

// Pop removes the top frame and returns it. Popping an empty stack returns
// false.
func (s *Stack) Pop() (Frame, bool) {
	if len(s.frames) == 0 {
		return Frame{}, false
	}
	top := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return top, true
}

// Top returns the visible frame for in-place changes, or nil when the stack
// is empty.
func (s *Stack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return &s.frames[len(s.frames)-1]
}

// Len returns the number of frames.
func (s *Stack) Len() int {
	return len(s.frames)
}
