package xcore

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRectUnion(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	b := Rect{5, 5, 10, 10}
	assert.Equal(t, Rect{0, 0, 15, 15}, a.Union(b))

	// Empty operands vanish.
	assert.Equal(t, a, a.Union(Rect{}))
	assert.Equal(t, a, Rect{}.Union(a))

	// Disjoint rectangles still produce a bounding box.
	c := Rect{100, 100, 1, 1}
	assert.Equal(t, Rect{0, 0, 101, 101}, a.Union(c))
}

func TestRectIntersect(t *testing.T) {
	a := Rect{0, 0, 10, 10}
	assert.Equal(t, Rect{5, 5, 5, 5}, a.Intersect(Rect{5, 5, 20, 20}))
	assert.True(t, a.Intersect(Rect{50, 50, 5, 5}).Empty())
}

func TestRectContains(t *testing.T) {
	r := Rect{10, 10, 5, 5}
	assert.True(t, r.Contains(10, 10))
	assert.True(t, r.Contains(14, 14))
	assert.False(t, r.Contains(15, 10))
	assert.False(t, r.Contains(9, 12))
}

func TestGetPut(t *testing.T) {
	buf := make([]byte, 4)
	Put32(buf, 0xAABBCCDD)
	assert.Equal(t, uint32(0xAABBCCDD), Get32(buf))
	Put16(buf, 0x1234)
	assert.Equal(t, uint16(0x1234), Get16(buf))
}
