package xcore

// geom.go: geometry queries and the dead-reckoning coordinate translator.
// Any window involved in a translation can die inside the same event
// burst that referenced it, so every caller gets an ok flag instead of a
// crash or a propagated X error.

import (
	"github.com/BurntSushi/xgb/xproto"
)

// Geometry is a plain rectangle with position.
type Geometry struct {
	X, Y          int
	Width, Height int
}

// RawGeometry queries a drawable's geometry. Not smart about reparenting;
// callers who want frame-inclusive geometry ask the registry instead.
func (c *Conn) RawGeometry(d xproto.Drawable) (Geometry, bool) {
	reply, err := xproto.GetGeometry(c.X, d).Reply()
	if err != nil {
		return Geometry{}, false
	}
	return Geometry{
		X: int(reply.X), Y: int(reply.Y),
		Width: int(reply.Width), Height: int(reply.Height),
	}, true
}

// TranslateCoords maps (x, y) in src space into dst space. Returns
// ok=false when either window is gone; callers abort their routing
// instead of acting on garbage.
func (c *Conn) TranslateCoords(src, dst xproto.Window, x, y int) (int, int, bool) {
	reply, err := xproto.TranslateCoordinates(c.X, src, dst, int16(x), int16(y)).Reply()
	if err != nil {
		return 0, 0, false
	}
	return int(reply.DstX), int(reply.DstY), true
}

// ChildAt returns the direct child of win containing the point, 0 when
// the point hits win itself.
func (c *Conn) ChildAt(win xproto.Window, x, y int) (xproto.Window, bool) {
	reply, err := xproto.TranslateCoordinates(c.X, win, win, int16(x), int16(y)).Reply()
	if err != nil {
		return 0, false
	}
	return reply.Child, true
}

// Parent walks one step up the window tree.
func (c *Conn) Parent(win xproto.Window) (xproto.Window, bool) {
	tree, err := xproto.QueryTree(c.X, win).Reply()
	if err != nil {
		return 0, false
	}
	return tree.Parent, true
}

// Children returns win's children in bottom-to-top stacking order.
func (c *Conn) Children(win xproto.Window) ([]xproto.Window, bool) {
	tree, err := xproto.QueryTree(c.X, win).Reply()
	if err != nil {
		return nil, false
	}
	return tree.Children, true
}
