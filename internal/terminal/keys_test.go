package terminal

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decodeAll returns every key decoded from input, skipping decode errors.
func decodeAll(t *testing.T, r io.Reader) ([]Key, int) {
	t.Helper()
	dec := NewDecoder(r)
	var keys []Key
	dropped := 0
	for {
		k, err := dec.Next()
		var de *DecodeError
		if errors.As(err, &de) {
			dropped++
			continue
		}
		if errors.Is(err, io.EOF) {
			return keys, dropped
		}
		require.NoError(t, err)
		keys = append(keys, k)
	}
}

func TestDecoder_ArrowKeys(t *testing.T) {
	keys, dropped := decodeAll(t, strings.NewReader("\x1b[A\x1b[B"))
	assert.Zero(t, dropped)
	require.Len(t, keys, 2)
	assert.Equal(t, KeyUp, keys[0].Type)
	assert.Equal(t, KeyDown, keys[1].Type)
}

func TestDecoder_DigitsEnterAndRunes(t *testing.T) {
	keys, _ := decodeAll(t, strings.NewReader("a7\r0é"))
	require.Len(t, keys, 5)
	assert.Equal(t, Key{Type: KeyRune, Rune: 'a'}, keys[0])
	assert.Equal(t, Key{Type: KeyDigit, Rune: '7', Digit: 7}, keys[1])
	assert.Equal(t, KeyEnter, keys[2].Type)
	assert.Equal(t, Key{Type: KeyRune, Rune: '0'}, keys[3])
	assert.Equal(t, Key{Type: KeyRune, Rune: 'é'}, keys[4])
	assert.True(t, keys[1].Is('7'))
}

func TestDecoder_CRLFIsOneEnter(t *testing.T) {
	keys, _ := decodeAll(t, strings.NewReader("\r\n\n"))
	require.Len(t, keys, 2)
	assert.Equal(t, KeyEnter, keys[0].Type)
	assert.Equal(t, KeyEnter, keys[1].Type)
}

func TestDecoder_InterruptAndBackspace(t *testing.T) {
	keys, _ := decodeAll(t, strings.NewReader("\x7f\x03"))
	require.Len(t, keys, 2)
	assert.Equal(t, KeyBackspace, keys[0].Type)
	assert.Equal(t, KeyInterrupt, keys[1].Type)
}

func TestDecoder_LoneEscape(t *testing.T) {
	keys, dropped := decodeAll(t, chunks("\x1b", "q"))
	assert.Zero(t, dropped)
	require.Len(t, keys, 2)
	assert.Equal(t, KeyEscape, keys[0].Type)
	assert.True(t, keys[1].Is('q'))
}

func TestDecoder_SplitArrowWaitsForRest(t *testing.T) {
	dec := NewDecoder(chunks("\x1b", "[", "A", "\x1b", "q"))
	var waited []time.Duration
	dec.Wait = func(d time.Duration) bool {
		waited = append(waited, d)
		return true
	}

	k, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, KeyUp, k.Type)
	assert.Equal(t, []time.Duration{EscapeDelay, EscapeDelay}, waited)

	// ESC followed by a plain key is not a sequence.
	_, err = dec.Next()
	var de *DecodeError
	assert.ErrorAs(t, err, &de)
}

func TestDecoder_EscapeWhenNothingFollows(t *testing.T) {
	dec := NewDecoder(chunks("\x1b", "[A"))
	dec.Wait = func(time.Duration) bool { return false }

	k, err := dec.Next()
	require.NoError(t, err)
	assert.Equal(t, KeyEscape, k.Type)
}

func TestDecoder_CorruptSequencesAreDropped(t *testing.T) {
	// Unknown direction, wrong introducer, and a sequence cut short.
	keys, dropped := decodeAll(t, chunks("\x1b[Z", "\x1bOA", "\x1b[", "x"))
	assert.Equal(t, 3, dropped)
	require.Len(t, keys, 2)
	assert.Equal(t, KeyRune, keys[0].Type)
	assert.Equal(t, 'A', keys[0].Rune)
	assert.True(t, keys[1].Is('x'))
}

func TestDecoder_ControlBytesAreDropped(t *testing.T) {
	keys, dropped := decodeAll(t, strings.NewReader("\x01\x02z"))
	assert.Equal(t, 2, dropped)
	require.Len(t, keys, 1)
	assert.True(t, keys[0].Is('z'))
}

type chunkReader struct{ chunks []string }

func chunks(c ...string) *chunkReader { return &chunkReader{chunks: c} }

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, io.EOF
	}
	n := copy(p, r.chunks[0])
	r.chunks[0] = r.chunks[0][n:]
	if r.chunks[0] == "" {
		r.chunks = r.chunks[1:]
	}
	return n, nil
}
