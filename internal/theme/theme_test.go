package theme

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestPalette_NormalizeKeepsOverrides(t *testing.T) {
	p := Palette{Accent: "#ffffff"}
	p.Normalize()
	assert.Equal(t, "#ffffff", p.Accent)
	assert.Equal(t, DefaultPalette().Error, p.Error)
}

func TestPlain_EmitsNoEscapes(t *testing.T) {
	th := Plain(&bytes.Buffer{})
	assert.Equal(t, "hello", th.Accent("hello"))
	assert.Equal(t, "hello", th.Selected("hello"))
	assert.Equal(t, "hello", th.Bold("hello"))
}

func TestTrueColor_UsesPaletteColor(t *testing.T) {
	out := termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.TrueColor))
	th := New(out, Palette{Error: "#112233"})
	assert.Contains(t, th.Error("x"), "38;2;17;34;51")
}
