package prompt

import (
	"bytes"
	"testing"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegion_RedrawsInPlace(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRegion(out)

	require.NoError(t, r.Draw([]string{"one", "two"}))
	assert.NotContains(t, out.String(), ansi.CursorUp(2))

	out.Reset()
	require.NoError(t, r.Draw([]string{"three"}))
	assert.Contains(t, out.String(), ansi.CursorUp(2))
	assert.Contains(t, out.String(), ansi.EraseScreenBelow)
	assert.Equal(t, 1, r.Lines())
}

func TestRegion_ExtendCoversLinesPrintedBelow(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRegion(out)
	require.NoError(t, r.Draw([]string{"grid"}))

	r.Extend(4)
	out.Reset()
	require.NoError(t, r.Draw([]string{"grid"}))
	assert.Contains(t, out.String(), ansi.CursorUp(5))
	assert.Contains(t, out.String(), ansi.EraseScreenBelow)
}

func TestRegion_Forget(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRegion(out)
	require.NoError(t, r.Draw([]string{"a", "b"}))
	r.Forget()

	out.Reset()
	require.NoError(t, r.Draw([]string{"c"}))
	assert.NotContains(t, out.String(), ansi.CursorUp(2))
}
