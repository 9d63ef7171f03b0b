package xdnd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseURIList(t *testing.T) {
	paths := ParseURIList("file:///tmp/x\r\nfile:///home/user/a%20b.txt\r\n")
	assert.Equal(t, []string{"/tmp/x", "/home/user/a b.txt"}, paths)
}

func TestParseURIListBareLF(t *testing.T) {
	paths := ParseURIList("file:///tmp/x\nfile:///tmp/y\n")
	assert.Equal(t, []string{"/tmp/x", "/tmp/y"}, paths)
}

func TestParseURIListSkipsJunk(t *testing.T) {
	paths := ParseURIList("# comment\r\nhttp://example.com/z\r\n\r\nfile:///ok\r\n")
	assert.Equal(t, []string{"/ok"}, paths)
}

func TestParseURIListHostComponent(t *testing.T) {
	paths := ParseURIList("file://localhost/tmp/x\r\n")
	assert.Equal(t, []string{"/tmp/x"}, paths)

	// A hostname with no path can't name a local file.
	paths = ParseURIList("file://remotehost\r\n")
	assert.Empty(t, paths)
}

func TestParseURIListEmpty(t *testing.T) {
	assert.Empty(t, ParseURIList(""))
	assert.Empty(t, ParseURIList("\r\n\r\n"))
}

func TestUnescapeURI(t *testing.T) {
	assert.Equal(t, "a b", unescapeURI("a%20b"))
	assert.Equal(t, "100%", unescapeURI("100%"))     // trailing % passes through
	assert.Equal(t, "x%zzy", unescapeURI("x%zzy"))   // bad hex passes through
	assert.Equal(t, "ü", unescapeURI("%C3%BC"))      // utf-8 bytes recompose
}
