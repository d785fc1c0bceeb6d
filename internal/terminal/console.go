package terminal

import (
	"errors"
	"io"
	"log/slog"
	"time"

	"golang.org/x/term"
)

// ErrInterrupted is returned with KeyInterrupt after the raw mode was released.
var ErrInterrupted = errors.New("interrupted")

// KeyReader delivers key presses while raw mode is held.
type KeyReader interface {
	NextKey() (Key, error)
	Close() error
}

// Opener acquires the terminal for one interactive prompt or screen.
type Opener interface {
	Open() (KeyReader, error)
}

// Console is the process's input terminal. One decoder is shared by every
// Channel it opens so type-ahead is not lost between prompts.
type Console struct {
	fd     int
	dec    *Decoder
	logger *slog.Logger
}

// NewConsole creates a Console reading keys from in. fd is the descriptor
// switched into raw mode; pass -1 for input that is not a terminal.
func NewConsole(in io.Reader, fd int, logger *slog.Logger) *Console {
	dec := NewDecoder(in)
	if fd >= 0 {
		dec.Wait = func(d time.Duration) bool { return inputReady(fd, d) }
	}
	return &Console{fd: fd, dec: dec, logger: logger}
}

// Open acquires raw mode and returns a Channel. Closing the channel releases it.
func (c *Console) Open() (KeyReader, error) {
	mode, err := Acquire(c.fd)
	if err != nil {
		return nil, err
	}
	return &Channel{mode: mode, dec: c.dec, logger: c.logger}, nil
}

// Channel reads keys while holding a ScopedRawMode.
type Channel struct {
	mode   *ScopedRawMode
	dec    *Decoder
	logger *slog.Logger
}

// NextKey blocks until a key is decoded, dropping undecodable input. On
// Ctrl-C the raw mode is released before ErrInterrupted is returned.
func (c *Channel) NextKey() (Key, error) {
	for {
		key, err := c.dec.Next()
		var decodeErr *DecodeError
		if errors.As(err, &decodeErr) {
			c.logger.Debug("Dropped input", "error", decodeErr)
			continue
		}
		if err != nil {
			return Key{}, err
		}
		if key.Type == KeyInterrupt {
			if err := c.mode.Release(); err != nil {
				c.logger.Error("Failed to restore terminal", "error", err)
			}
			return key, ErrInterrupted
		}
		return key, nil
	}
}

// Close releases the raw mode.
func (c *Channel) Close() error {
	return c.mode.Release()
}

// Size returns the width and height of the terminal on fd, or 80x24 when it
// cannot be determined.
func Size(fd int) (int, int) {
	w, h, err := term.GetSize(fd)
	if err != nil || w <= 0 || h <= 0 {
		return 80, 24
	}
	return w, h
}
