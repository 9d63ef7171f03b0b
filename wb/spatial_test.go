package wb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpatialRoundTrip(t *testing.T) {
	s := &SpatialStore{Base: t.TempDir()}
	in := map[string]IconPos{
		"Readme":     {X: 20, Y: 40},
		"src":        {X: 100, Y: 40},
		"weird name": {X: 8, Y: 160},
	}
	s.Save("/home/user/project", in)

	out := s.Load("/home/user/project")
	assert.Equal(t, in, out)
}

func TestSpatialUnknownDir(t *testing.T) {
	s := &SpatialStore{Base: t.TempDir()}
	assert.Nil(t, s.Load("/never/saved"))
}

func TestSpatialEmptyRemoves(t *testing.T) {
	s := &SpatialStore{Base: t.TempDir()}
	s.Save("/d", map[string]IconPos{"a": {X: 1, Y: 2}})
	require.NotNil(t, s.Load("/d"))
	s.Save("/d", nil)
	assert.Nil(t, s.Load("/d"))
}

func TestSpatialDisabled(t *testing.T) {
	var s *SpatialStore
	assert.Nil(t, s.Load("/x")) // nil store is inert
	s.Save("/x", map[string]IconPos{"a": {}})

	s = &SpatialStore{}
	assert.Nil(t, s.Load("/x"))
}

func TestSpatialDistinctDirsDistinctFiles(t *testing.T) {
	s := &SpatialStore{Base: t.TempDir()}
	s.Save("/a", map[string]IconPos{"f": {X: 1, Y: 1}})
	s.Save("/b", map[string]IconPos{"f": {X: 2, Y: 2}})
	assert.Equal(t, 1, s.Load("/a")["f"].X)
	assert.Equal(t, 2, s.Load("/b")["f"].X)
}
