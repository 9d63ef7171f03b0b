package canvas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsklaus/amiwb/xcore"
)

func mkRect(x, y, w, h int) xcore.Rect {
	return xcore.Rect{X: x, Y: y, Width: w, Height: h}
}

func TestRegistryBijection(t *testing.T) {
	r := NewRegistry()
	a := &Canvas{Frame: 100, Client: 200, Type: Window}
	b := &Canvas{Frame: 101, Type: Desktop}
	r.Add(a)
	r.Add(b)

	// Every canvas resolves through its frame; client-backed canvases
	// also resolve through the client, and the two agree.
	for _, cv := range r.All() {
		assert.Same(t, cv, r.FindByWindow(cv.Frame))
		if cv.Client != 0 {
			assert.Same(t, cv, r.FindByClient(cv.Client))
		}
	}
	assert.Nil(t, r.FindByWindow(999))
	assert.Nil(t, r.FindByClient(100)) // frame ids don't leak into the client index
	assert.Same(t, a, r.Find(200))
	assert.Same(t, a, r.Find(100))
}

func TestRegistryDuplicatePanics(t *testing.T) {
	r := NewRegistry()
	r.Add(&Canvas{Frame: 1})
	assert.Panics(t, func() { r.Add(&Canvas{Frame: 1}) })
	assert.NotPanics(t, func() { r.Add(&Canvas{Frame: 2}) })
	assert.NotPanics(t, func() { r.Add(&Canvas{Frame: 3, Client: 4}) })
	assert.Panics(t, func() { r.Add(&Canvas{Frame: 5, Client: 4}) }) // dup client
}

func TestRegistryRemoveOnce(t *testing.T) {
	r := NewRegistry()
	a := &Canvas{Frame: 1, Client: 2}
	r.Add(a)
	r.Remove(a)
	assert.Nil(t, r.FindByWindow(1))
	assert.Nil(t, r.FindByClient(2))
	assert.Zero(t, r.Len())
	// Second removal is a harmless no-op.
	r.Remove(a)
}

func TestRegistryByTypeOrder(t *testing.T) {
	r := NewRegistry()
	w1 := &Canvas{Frame: 1, Type: Window}
	d := &Canvas{Frame: 2, Type: Dialog}
	w2 := &Canvas{Frame: 3, Type: Window}
	r.Add(w1)
	r.Add(d)
	r.Add(w2)

	wins := r.ByType(Window)
	require.Len(t, wins, 2)
	assert.Same(t, w1, wins[0])
	assert.Same(t, w2, wins[1])
}

func TestClampScroll(t *testing.T) {
	cv := &Canvas{Type: Window, Width: 200, Height: 150}
	cv.ContentW = 500
	cv.ContentH = 90
	cv.ScrollX = 9999
	cv.ScrollY = 50
	cv.ClampScroll()

	assert.Equal(t, 500-cv.InnerWidth(), cv.MaxScrollX)
	assert.Equal(t, cv.MaxScrollX, cv.ScrollX)
	// Content shorter than the view: no vertical scroll at all.
	assert.Equal(t, 0, cv.MaxScrollY)
	assert.Equal(t, 0, cv.ScrollY)
}

func TestDirtyAccumulation(t *testing.T) {
	cv := &Canvas{Width: 100, Height: 100}
	_, any := cv.TakeDirty()
	assert.False(t, any)

	cv.MarkDirty(mkRect(0, 0, 10, 10))
	cv.MarkDirty(mkRect(50, 50, 10, 10))
	r, any := cv.TakeDirty()
	require.True(t, any)
	assert.Equal(t, mkRect(0, 0, 60, 60), r)

	// Consumed: nothing left.
	_, any = cv.TakeDirty()
	assert.False(t, any)

	// Whole-canvas sentinel swallows rectangles and yields the full area.
	cv.MarkAllDirty()
	cv.MarkDirty(mkRect(1, 1, 2, 2))
	r, any = cv.TakeDirty()
	require.True(t, any)
	assert.Equal(t, mkRect(0, 0, 100, 100), r)
}

func TestTitleChange(t *testing.T) {
	cv := &Canvas{TitleBase: "Workbench"}
	assert.Equal(t, "Workbench", cv.Title())
	cv.SetTitleChange("transferring...")
	assert.Equal(t, "transferring...", cv.Title())
	cv.SetTitleChange("")
	assert.Equal(t, "Workbench", cv.Title())
}
