package terminal

import (
	"bufio"
	"fmt"
	"io"
	"time"
	"unicode/utf8"
)

// KeyType identifies a decoded key press.
type KeyType int

const (
	KeyRune KeyType = iota
	KeyDigit
	KeyEnter
	KeyUp
	KeyDown
	KeyEscape
	KeyBackspace
	KeyInterrupt
)

func (k KeyType) String() string {
	switch k {
	case KeyRune:
		return "rune"
	case KeyDigit:
		return "digit"
	case KeyEnter:
		return "enter"
	case KeyUp:
		return "up"
	case KeyDown:
		return "down"
	case KeyEscape:
		return "escape"
	case KeyBackspace:
		return "backspace"
	case KeyInterrupt:
		return "interrupt"
	default:
		return fmt.Sprintf("KeyType(%d)", int(k))
	}
}

// Key is one decoded key press.
type Key struct {
	Type  KeyType
	Rune  rune // Set for KeyRune and KeyDigit
	Digit int  // 1-9, set for KeyDigit
}

// Is reports whether k is the printable rune r. Digits count as runes too.
func (k Key) Is(r rune) bool {
	return (k.Type == KeyRune || k.Type == KeyDigit) && k.Rune == r
}

// DecodeError reports bytes that do not form a key. The bytes are consumed
// and no key is produced for them.
type DecodeError struct {
	Bytes []byte
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable input %q", e.Bytes)
}

const (
	ctrlC     = 0x03
	backspace = 0x08
	esc       = 0x1b
	del       = 0x7f
)

// EscapeDelay is how long the decoder waits for the rest of an escape
// sequence before it reports a lone Escape.
const EscapeDelay = 50 * time.Millisecond

// Decoder turns a raw byte stream into keys.
type Decoder struct {
	r *bufio.Reader

	// Wait blocks for at most the given duration and reports whether more
	// input arrived. Nil means input already read is all there is.
	Wait func(time.Duration) bool
}

// NewDecoder creates a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: bufio.NewReader(r)}
}

// Next blocks until one key is decoded. A *DecodeError means some input was
// dropped and the caller should simply ask again.
//
// Arrow keys arrive as the 3-byte sequence ESC '[' A|B. An ESC with nothing
// behind it within EscapeDelay is a lone Escape press.
func (d *Decoder) Next() (Key, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	switch {
	case b == ctrlC:
		return Key{Type: KeyInterrupt}, nil
	case b == '\r':
		d.skipByte('\n')
		return Key{Type: KeyEnter}, nil
	case b == '\n':
		return Key{Type: KeyEnter}, nil
	case b == del || b == backspace:
		return Key{Type: KeyBackspace}, nil
	case b == esc:
		return d.escape()
	case b >= '1' && b <= '9':
		return Key{Type: KeyDigit, Rune: rune(b), Digit: int(b - '0')}, nil
	case b >= 0x20 && b < del:
		return Key{Type: KeyRune, Rune: rune(b)}, nil
	case b >= utf8.RuneSelf:
		_ = d.r.UnreadByte()
		r, size, err := d.r.ReadRune()
		if err != nil {
			return Key{}, err
		}
		if r == utf8.RuneError && size == 1 {
			return Key{}, &DecodeError{Bytes: []byte{b}}
		}
		return Key{Type: KeyRune, Rune: r}, nil
	default:
		return Key{}, &DecodeError{Bytes: []byte{b}}
	}
}

func (d *Decoder) escape() (Key, error) {
	if !d.more() {
		return Key{Type: KeyEscape}, nil
	}
	b1, err := d.r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	if b1 != '[' || !d.more() {
		return Key{}, &DecodeError{Bytes: []byte{esc, b1}}
	}
	b2, err := d.r.ReadByte()
	if err != nil {
		return Key{}, err
	}
	switch b2 {
	case 'A':
		return Key{Type: KeyUp}, nil
	case 'B':
		return Key{Type: KeyDown}, nil
	default:
		return Key{}, &DecodeError{Bytes: []byte{esc, b1, b2}}
	}
}

// more reports whether another byte can be read without blocking for longer
// than EscapeDelay.
func (d *Decoder) more() bool {
	if d.r.Buffered() > 0 {
		return true
	}
	return d.Wait != nil && d.Wait(EscapeDelay)
}

// skipByte consumes the next byte if it is already buffered and equals b.
func (d *Decoder) skipByte(b byte) {
	if d.r.Buffered() == 0 {
		return
	}
	next, err := d.r.Peek(1)
	if err == nil && next[0] == b {
		_, _ = d.r.ReadByte()
	}
}
