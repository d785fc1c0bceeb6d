// Package termtest provides scripted key input for tests of interactive code.
package termtest

import (
	"io"
	"log/slog"

	"bookey/internal/terminal"
)

// Escape sequences for the keys tests script most often.
const (
	Up        = "\x1b[A"
	Down      = "\x1b[B"
	Escape    = "\x1b"
	Enter     = "\r"
	Interrupt = "\x03"
	Backspace = "\x7f"
)

// Reader returns each chunk from a separate Read call, the way a terminal
// delivers one key press at a time.
type Reader struct {
	chunks [][]byte
}

// Keys builds a Reader from key chunks.
func Keys(chunks ...string) *Reader {
	r := &Reader{}
	for _, c := range chunks {
		r.chunks = append(r.chunks, []byte(c))
	}
	return r
}

func (r *Reader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if len(r.chunks[0]) == 0 {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}

// Console returns a terminal.Console fed by the given key chunks. It never
// switches a real terminal into raw mode.
func Console(chunks ...string) *terminal.Console {
	return terminal.NewConsole(Keys(chunks...), -1, slog.New(slog.NewTextHandler(io.Discard, nil)))
}
