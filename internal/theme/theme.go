// Package theme turns a configured color palette into terminal styles.
package theme

import (
	"io"

	"github.com/muesli/termenv"
)

// Palette holds the hex colors used by every renderer.
type Palette struct {
	Accent    string `yaml:"accent"`
	Highlight string `yaml:"highlight"`
	Success   string `yaml:"success"`
	Error     string `yaml:"error"`
	Dim       string `yaml:"dim"`
	Text      string `yaml:"text"`
}

// DefaultPalette is Catppuccin Mocha.
func DefaultPalette() Palette {
	return Palette{
		Accent:    "#cba6f7",
		Highlight: "#b4befe",
		Success:   "#a6e3a1",
		Error:     "#f38ba8",
		Dim:       "#6c7086",
		Text:      "#cdd6f4",
	}
}

// Normalize fills empty colors from the default palette.
func (p *Palette) Normalize() {
	def := DefaultPalette()
	fill := func(dst *string, src string) {
		if *dst == "" {
			*dst = src
		}
	}
	fill(&p.Accent, def.Accent)
	fill(&p.Highlight, def.Highlight)
	fill(&p.Success, def.Success)
	fill(&p.Error, def.Error)
	fill(&p.Dim, def.Dim)
	fill(&p.Text, def.Text)
}

// Theme renders styled strings for one output.
type Theme struct {
	out     *termenv.Output
	palette Palette
}

// New creates a Theme writing for out.
func New(out *termenv.Output, p Palette) *Theme {
	p.Normalize()
	return &Theme{out: out, palette: p}
}

// Plain returns a Theme that never emits escape sequences.
func Plain(w io.Writer) *Theme {
	return New(termenv.NewOutput(w, termenv.WithProfile(termenv.Ascii)), DefaultPalette())
}

func (t *Theme) fg(hex, s string) termenv.Style {
	return t.out.String(s).Foreground(t.out.Color(hex))
}

func (t *Theme) Accent(s string) string    { return t.fg(t.palette.Accent, s).String() }
func (t *Theme) Highlight(s string) string { return t.fg(t.palette.Highlight, s).String() }
func (t *Theme) Success(s string) string   { return t.fg(t.palette.Success, s).String() }
func (t *Theme) Error(s string) string     { return t.fg(t.palette.Error, s).String() }
func (t *Theme) Dim(s string) string       { return t.fg(t.palette.Dim, s).String() }
func (t *Theme) Text(s string) string      { return t.fg(t.palette.Text, s).String() }

// Bold renders s in bold without changing its color.
func (t *Theme) Bold(s string) string {
	return t.out.String(s).Bold().String()
}

// Selected renders the highlighted row of a list.
func (t *Theme) Selected(s string) string {
	return t.fg(t.palette.Accent, s).Bold().String()
}

// Reset clears any active style on the output.
func (t *Theme) Reset() {
	t.out.Reset()
}
