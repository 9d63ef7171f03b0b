package dialog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInputFieldEditing(t *testing.T) {
	f := &InputField{Value: "a.txt"}
	f.Cursor = len(f.Value)

	const (
		backspace = 0xFF08
		left      = 0xFF51
		ret       = 0xFF0D
	)

	// Backspace eats the extension, typing rebuilds it.
	for i := 0; i < 3; i++ {
		f.Key(nil, backspace, 0)
	}
	assert.Equal(t, "a.", f.Value)
	f.Key(nil, 'm', 0)
	f.Key(nil, 'd', 0)
	assert.Equal(t, "a.md", f.Value)
	assert.Equal(t, 4, f.Cursor)

	// Cursor movement and mid-string insertion.
	f.Key(nil, left, 0)
	f.Key(nil, left, 0)
	f.Key(nil, 'X', 0)
	assert.Equal(t, "a.Xmd", f.Value)

	// Enter fires the commit callback with the current value.
	var committed string
	f.OnEnter = func(_ *Dialog, v string) { committed = v }
	assert.True(t, f.Key(nil, ret, 0))
	assert.Equal(t, "a.Xmd", committed)
}

func TestInputFieldBoundaries(t *testing.T) {
	f := &InputField{}
	// Editing an empty field must not panic or go negative.
	f.Key(nil, 0xFF08, 0) // backspace
	f.Key(nil, 0xFF51, 0) // left
	assert.Equal(t, "", f.Value)
	assert.Zero(t, f.Cursor)

	f.Key(nil, 'q', 0)
	f.Key(nil, 0xFF53, 0) // right at end: stays
	assert.Equal(t, 1, f.Cursor)
}

func TestCompletePath(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report-final.txt"), nil, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "report-draft.txt"), nil, 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))

	// Unique prefix completes fully; directories gain a slash.
	got := CompletePath(filepath.Join(dir, "s"))
	assert.Equal(t, filepath.Join(dir, "src")+"/", got)

	// Ambiguous prefix stops at the longest common run.
	got = CompletePath(filepath.Join(dir, "rep"))
	assert.Equal(t, filepath.Join(dir, "report-"), got)

	// No match: unchanged.
	unchanged := filepath.Join(dir, "zzz")
	assert.Equal(t, unchanged, CompletePath(unchanged))
}

func TestListViewSelection(t *testing.T) {
	l := &ListView{X: 0, Y: 0, W: 100, H: 90,
		Items: []string{"a", "b", "c", "d", "e", "f"}}

	// Single select replaces.
	assert.True(t, l.Press(nil, 10, 5))
	assert.True(t, l.Selected[0])
	l.Press(nil, 10, 20)
	assert.False(t, l.Selected[0])
	assert.True(t, l.Selected[1])

	// Multi select accumulates and toggles.
	l.MultiSelect = true
	l.Press(nil, 10, 40)
	assert.True(t, l.Selected[1])
	assert.True(t, l.Selected[2])
	l.Press(nil, 10, 40)
	assert.False(t, l.Selected[2])
}

func TestListViewScrollClamp(t *testing.T) {
	l := &ListView{X: 0, Y: 0, W: 100, H: 36, Items: []string{"a", "b", "c", "d"}}
	l.rows() // prime rowHeight

	// Page down via the scrollbar strip, repeatedly; never past the end.
	for i := 0; i < 10; i++ {
		l.Press(nil, 95, 30)
	}
	assert.Equal(t, len(l.Items)-l.rows(), l.Scroll)
	for i := 0; i < 10; i++ {
		l.Press(nil, 95, 2)
	}
	assert.Zero(t, l.Scroll)
}

func TestOutOfBoundsPressIgnored(t *testing.T) {
	b := &Button{X: 10, Y: 10, W: 50, H: 20, OnClick: func(*Dialog) {
		t.Fatal("click fired outside bounds")
	}}
	assert.False(t, b.Press(nil, 5, 5))
	assert.False(t, b.Press(nil, 61, 15))
}
