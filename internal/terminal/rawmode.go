// Package terminal owns the controlling terminal: raw mode switching and
// decoding of key presses.
package terminal

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrRawModeHeld is returned by Acquire while another ScopedRawMode is held.
var ErrRawModeHeld = errors.New("raw mode already acquired")

// Swapped out by tests.
var (
	makeRaw     = term.MakeRaw
	restoreTerm = term.Restore
	isTerminal  = func(fd int) bool { return isatty.IsTerminal(uintptr(fd)) }
)

var (
	heldMu sync.Mutex
	held   *ScopedRawMode
)

// ScopedRawMode is an acquired raw terminal mode. Release restores the
// previous terminal attributes exactly once.
type ScopedRawMode struct {
	fd    int
	state *term.State
	once  sync.Once
	err   error
}

// Acquire switches fd into raw mode: no line buffering, no echo, no signal
// keys. Only one ScopedRawMode can be held at a time. When fd is not a
// terminal the mode switch is skipped and Release does nothing.
func Acquire(fd int) (*ScopedRawMode, error) {
	heldMu.Lock()
	defer heldMu.Unlock()
	if held != nil {
		return nil, ErrRawModeHeld
	}

	m := &ScopedRawMode{fd: fd}
	if isTerminal(fd) {
		state, err := makeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("failed to enter raw mode: %w", err)
		}
		m.state = state
	}
	held = m
	return m, nil
}

// Release restores the terminal. It is safe to call more than once and from
// deferred cleanup after an earlier explicit release.
func (m *ScopedRawMode) Release() error {
	m.once.Do(func() {
		if m.state != nil {
			if err := restoreTerm(m.fd, m.state); err != nil {
				m.err = fmt.Errorf("failed to restore terminal: %w", err)
			}
		}
		heldMu.Lock()
		if held == m {
			held = nil
		}
		heldMu.Unlock()
	})
	return m.err
}

// releaseHeld restores whatever mode is currently held, if any.
func releaseHeld() {
	heldMu.Lock()
	m := held
	heldMu.Unlock()
	if m != nil {
		_ = m.Release()
	}
}

// RestoreOnSignal restores a held raw mode when the process receives SIGTERM
// or SIGHUP, then exits. Ctrl-C never arrives as a signal while raw mode is
// held; it is decoded as KeyInterrupt instead. The returned func stops the
// watcher.
func RestoreOnSignal(logger *slog.Logger) func() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGHUP)
	done := make(chan struct{})

	go func() {
		select {
		case sig := <-sigChan:
			releaseHeld()
			logger.Warn("Terminated by signal", "signal", sig.String())
			os.Exit(1)
		case <-done:
		}
	}()

	return func() {
		signal.Stop(sigChan)
		close(done)
	}
}
