package render

// widgets.go draws the frame furniture: scrollbar arrow buttons, the
// resize grip, and the checkerboard title fill. All stateless helpers
// over a destination picture, built from FillRectangles and Composite
// only — text never happens here.

import (
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

// ArrowDir picks which way an arrow button points.
type ArrowDir int

const (
	ArrowUp ArrowDir = iota
	ArrowDown
	ArrowLeft
	ArrowRight
)

// Widget sizes shared with the frame layout.
const (
	ArrowButtonSize = 16
	GripSize        = 16
	TitlebarHeight  = 20
)

// DrawArrow paints an arrow button at (x, y) on dst. Armed buttons invert
// to the pressed look.
func (ctx *Context) DrawArrow(dst render.Picture, x, y int, dir ArrowDir, armed bool) {
	bg, fg := ColorGray, ColorBlack
	if armed {
		bg, fg = ColorDark, ColorWhite
	}
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, bg,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y),
			Width: ArrowButtonSize, Height: ArrowButtonSize}})
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, ColorBlack,
		[]xproto.Rectangle{
			{X: int16(x), Y: int16(y), Width: ArrowButtonSize, Height: 1},
			{X: int16(x), Y: int16(y), Width: 1, Height: ArrowButtonSize},
		})

	// The arrow head, as stacked rows of shrinking rectangles.
	cx, cy := x+ArrowButtonSize/2, y+ArrowButtonSize/2
	var rects []xproto.Rectangle
	for i := 0; i < 4; i++ {
		run := int16(2*i + 1)
		switch dir {
		case ArrowUp:
			rects = append(rects, xproto.Rectangle{
				X: int16(cx) - run/2, Y: int16(cy) - 2 + int16(i), Width: uint16(run), Height: 1})
		case ArrowDown:
			rects = append(rects, xproto.Rectangle{
				X: int16(cx) - run/2, Y: int16(cy) + 2 - int16(i), Width: uint16(run), Height: 1})
		case ArrowLeft:
			rects = append(rects, xproto.Rectangle{
				X: int16(cx) - 2 + int16(i), Y: int16(cy) - run/2, Width: 1, Height: uint16(run)})
		case ArrowRight:
			rects = append(rects, xproto.Rectangle{
				X: int16(cx) + 2 - int16(i), Y: int16(cy) - run/2, Width: 1, Height: uint16(run)})
		}
	}
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, fg, rects)
}

// DrawGrip paints the resize grip in a canvas's bottom-right corner.
func (ctx *Context) DrawGrip(dst render.Picture, x, y int, armed bool) {
	bg := ColorGray
	if armed {
		bg = ColorDark
	}
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, bg,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y),
			Width: GripSize, Height: GripSize}})

	// Diagonal ridges.
	var rects []xproto.Rectangle
	for i := 2; i < GripSize-2; i += 4 {
		rects = append(rects, xproto.Rectangle{
			X: int16(x + i), Y: int16(y + GripSize - 3),
			Width: uint16(GripSize - i - 2), Height: 1})
		rects = append(rects, xproto.Rectangle{
			X: int16(x + GripSize - 3), Y: int16(y + i),
			Width: 1, Height: uint16(GripSize - i - 2)})
	}
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, ColorBlack, rects)
}

// DrawTitlebar fills a title bar span with the checker pattern for the
// activation state.
func (ctx *Context) DrawTitlebar(dst render.Picture, x, y, w int, active bool) {
	render.Composite(ctx.C.X, render.PictOpSrc, ctx.Checker(active), 0, dst,
		0, 0, 0, 0, int16(x), int16(y), uint16(w), TitlebarHeight)
}

// DrawScrollbarTrack paints the trough a scrollbar knob rides in.
func (ctx *Context) DrawScrollbarTrack(dst render.Picture, x, y, w, h int) {
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, ColorGray,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y),
			Width: uint16(w), Height: uint16(h)}})
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, ColorBlack,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y), Width: 1, Height: uint16(h)}})
}

// DrawScrollbarKnob paints the knob itself.
func (ctx *Context) DrawScrollbarKnob(dst render.Picture, x, y, w, h int, armed bool) {
	col := ColorBlue
	if armed {
		col = ColorDark
	}
	render.FillRectangles(ctx.C.X, render.PictOpSrc, dst, col,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y),
			Width: uint16(w), Height: uint16(h)}})
}
