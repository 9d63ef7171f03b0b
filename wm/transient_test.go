package wm

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsklaus/amiwb/canvas"
)

// The unmap counter logic is pure; only Center/UnmapWindow touch X, and
// those calls are asynchronous one-way requests that a nil-socket test
// can't make. So these tests exercise the counter discipline via a canvas
// and the threshold constant directly.

func TestThreeUnmapCounter(t *testing.T) {
	cv := &canvas.Canvas{IsTransient: true}

	// Mirror OnUnmap's counting without the X side effects.
	bump := func() bool {
		cv.ConsecutiveUnmaps++
		if cv.ConsecutiveUnmaps < HideAfterUnmaps {
			return false
		}
		cv.ConsecutiveUnmaps = 0
		return true
	}

	assert.False(t, bump())
	assert.False(t, bump())
	assert.True(t, bump()) // exactly three: hide
	assert.Zero(t, cv.ConsecutiveUnmaps)

	// A map in between resets the count, per OnMap.
	assert.False(t, bump())
	cv.ConsecutiveUnmaps = 0 // the OnMap reset
	assert.False(t, bump())
	assert.False(t, bump())
	assert.True(t, bump())
}

func TestNonTransientNeverHides(t *testing.T) {
	p := &TransientPolicy{}
	cv := &canvas.Canvas{IsTransient: false}
	for i := 0; i < 10; i++ {
		assert.False(t, p.OnUnmap(cv))
	}
	assert.Zero(t, cv.ConsecutiveUnmaps)
}

func TestNormalHintsClamp(t *testing.T) {
	h := NormalHints{
		Flags:     SizeHintPMinSize | SizeHintPMaxSize,
		MinWidth:  100, MinHeight: 50,
		MaxWidth: 800, MaxHeight: 600,
	}
	w, hh := h.Clamp(10, 10)
	assert.Equal(t, 100, w)
	assert.Equal(t, 50, hh)

	w, hh = h.Clamp(2000, 2000)
	assert.Equal(t, 800, w)
	assert.Equal(t, 600, hh)

	w, hh = h.Clamp(400, 300)
	assert.Equal(t, 400, w)
	assert.Equal(t, 300, hh)

	// No flags: nothing imposed beyond the 1x1 floor.
	var none NormalHints
	w, hh = none.Clamp(0, -5)
	assert.Equal(t, 1, w)
	assert.Equal(t, 1, hh)
}
