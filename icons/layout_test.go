package icons

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func mkIcons(n int) []*FileIcon {
	list := make([]*FileIcon, n)
	for i := range list {
		list[i] = &FileIcon{Width: 48, Height: 40}
	}
	return list
}

func TestCleanupGrid(t *testing.T) {
	list := mkIcons(5)
	ext := Cleanup(list, 3*GridCellWidth)

	// Row-major: three columns, then wrap.
	assert.Equal(t, list[0].Y, list[2].Y)
	assert.Less(t, list[0].X, list[1].X)
	assert.Equal(t, list[0].X, list[3].X)
	assert.Greater(t, list[3].Y, list[0].Y)

	assert.Equal(t, 3*GridCellWidth, ext.ContentWidth)
	assert.Equal(t, 2*GridCellHeight, ext.ContentHeight)
}

func TestCleanupNarrowCanvasStillOneColumn(t *testing.T) {
	list := mkIcons(2)
	ext := Cleanup(list, 10)
	assert.Equal(t, GridCellWidth, ext.ContentWidth)
	assert.Equal(t, 2*GridCellHeight, ext.ContentHeight)
}

func TestLayoutNames(t *testing.T) {
	list := mkIcons(4)
	ext := LayoutNames(list)
	assert.Equal(t, 0, list[0].Y)
	assert.Equal(t, 3*NamesRowHeight, list[3].Y)
	assert.Equal(t, 4*NamesRowHeight, ext.ContentHeight)
}

func TestFindAtUsesRenderedDims(t *testing.T) {
	a := &FileIcon{X: 0, Y: 0, Width: 40, Height: 40, SelWidth: 60, SelHeight: 60}
	b := &FileIcon{X: 100, Y: 0, Width: 40, Height: 40}
	list := []*FileIcon{a, b}

	assert.Equal(t, a, FindAt(list, 10, 10))
	assert.Nil(t, FindAt(list, 50, 50))

	// Selected state hit-tests against the bigger selected image.
	a.Select(true)
	assert.Equal(t, a, FindAt(list, 50, 50))

	assert.Equal(t, b, FindAt(list, 110, 5))
	assert.Nil(t, FindAt(list, 200, 200))
}

func TestFindAtTopmostWins(t *testing.T) {
	bottom := &FileIcon{X: 0, Y: 0, Width: 40, Height: 40}
	top := &FileIcon{X: 10, Y: 10, Width: 40, Height: 40}
	assert.Equal(t, top, FindAt([]*FileIcon{bottom, top}, 20, 20))
}

func TestDoubleClick(t *testing.T) {
	ic := &FileIcon{}
	t0 := time.Now()
	assert.False(t, ic.ClickAt(t0))
	assert.True(t, ic.ClickAt(t0.Add(200*time.Millisecond)))
	// The pair consumed the clock: a third click starts over.
	assert.False(t, ic.ClickAt(t0.Add(300*time.Millisecond)))
	// Too slow.
	assert.False(t, ic.ClickAt(t0.Add(2*time.Second)))
}

func TestSelectSwitchesPicture(t *testing.T) {
	ic := &FileIcon{NormalPic: 11, SelectedPic: 22}
	ic.Select(true)
	assert.Equal(t, ic.SelectedPic, ic.CurrentPic)
	ic.Select(false)
	assert.Equal(t, ic.NormalPic, ic.CurrentPic)

	// No distinct selected picture: stay on normal.
	ic2 := &FileIcon{NormalPic: 11}
	ic2.Select(true)
	assert.Equal(t, ic2.NormalPic, ic2.CurrentPic)
}
