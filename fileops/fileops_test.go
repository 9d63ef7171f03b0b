package fileops

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	var q Queue
	q.Push("a", "A")
	q.Push("b", "B")
	q.Push("c", "")

	p, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, PathPair{"a", "A"}, p)
	p, _ = q.Pop()
	assert.Equal(t, PathPair{"b", "B"}, p)
	assert.Equal(t, 1, q.Len())
	p, _ = q.Pop()
	assert.Equal(t, "c", p.Src)

	_, ok = q.Pop()
	assert.False(t, ok)
	assert.Zero(t, q.Len())

	// Reusable after draining.
	q.Push("d", "")
	p, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "d", p.Src)
}

func mkTree(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "top.txt"), []byte("hello"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "sub", "mid.txt"), []byte("world!"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "sub", "deep", "leaf"), []byte("x"), 0o644))
	require.NoError(t, os.Symlink("top.txt", filepath.Join(dir, "src", "link")))
	return dir
}

func TestCopyTree(t *testing.T) {
	dir := mkTree(t)
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")

	var updates []Update
	err := CopyTree(src, dst, func(done, total int64, cur string) {
		updates = append(updates, Update{Done: done, Total: total, Current: cur})
	})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dst, "sub", "mid.txt"))
	require.NoError(t, err)
	assert.Equal(t, "world!", string(data))

	st, err := os.Stat(filepath.Join(dst, "sub", "mid.txt"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), st.Mode().Perm())

	target, err := os.Readlink(filepath.Join(dst, "link"))
	require.NoError(t, err)
	assert.Equal(t, "top.txt", target)

	// Progress is cumulative and ends at the total.
	require.NotEmpty(t, updates)
	last := updates[len(updates)-1]
	assert.Equal(t, last.Total, last.Done)
	assert.EqualValues(t, 5+6+1, last.Total)
	for i := 1; i < len(updates); i++ {
		assert.GreaterOrEqual(t, updates[i].Done, updates[i-1].Done)
	}
}

func TestMoveTreeSameFS(t *testing.T) {
	dir := mkTree(t)
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "moved")

	require.NoError(t, MoveTree(src, dst, nil))
	assert.NoFileExists(t, filepath.Join(src, "top.txt"))
	assert.FileExists(t, filepath.Join(dst, "top.txt"))
}

func TestDeleteTree(t *testing.T) {
	dir := mkTree(t)
	src := filepath.Join(dir, "src")
	require.NoError(t, DeleteTree(src, nil))
	assert.NoDirExists(t, src)
}

func TestTreeSize(t *testing.T) {
	dir := mkTree(t)
	sz, err := TreeSize(filepath.Join(dir, "src"))
	require.NoError(t, err)
	assert.EqualValues(t, 12, sz)
}

func TestUpdateRoundTrip(t *testing.T) {
	u := Update{Done: 1024, Total: 4096, Current: "/tmp/some file.bin"}
	got, ok := ParseUpdate(FormatUpdate(u)[:len(FormatUpdate(u))-1])
	require.True(t, ok)
	assert.Equal(t, u, got)
}

func TestParseUpdateRejects(t *testing.T) {
	_, ok := ParseUpdate("garbage")
	assert.False(t, ok)
	_, ok = ParseUpdate("1\t2")
	assert.False(t, ok)
	_, ok = ParseUpdate("x\t2\tfile")
	assert.False(t, ok)
}
