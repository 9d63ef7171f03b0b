/*
Package render sits between the manager and the RENDER extension: picture
format discovery, BGRA image uploads, per-canvas surfaces, the wallpaper
cache, and the stateless widget painters. Everything composites; nothing
here draws text except text.go, and nothing touches core X drawing beyond
PutImage.
*/
package render

import (
	"fmt"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/xcore"
)

// House colors. The blue is the classic AmiWB frame blue.
var (
	ColorBlue  = render.Color{Red: 0x4848, Green: 0x6F6F, Blue: 0xB0B0, Alpha: 0xFFFF}
	ColorBlack = render.Color{Red: 0, Green: 0, Blue: 0, Alpha: 0xFFFF}
	ColorGray  = render.Color{Red: 0xA0A0, Green: 0xA2A2, Blue: 0xA0A0, Alpha: 0xFFFF}
	ColorWhite = render.Color{Red: 0xFFFF, Green: 0xFFFF, Blue: 0xFFFF, Alpha: 0xFFFF}
	ColorDark  = render.Color{Red: 0x5555, Green: 0x5555, Blue: 0x5555, Alpha: 0xFFFF}
)

// Context carries the picture formats and shared pattern pictures.
type Context struct {
	C *xcore.Conn

	ARGB32 render.Pictformat
	RGB24  render.Pictformat
	Root   render.Pictformat // format of the root visual

	visualFormats map[xproto.Visualid]render.Pictformat

	CheckerActive   render.Picture // blue/black 4x4 tile, repeat on
	CheckerInactive render.Picture // gray/black 4x4 tile, repeat on
}

// NewContext initializes RENDER and discovers the standard formats. An
// absent extension or missing ARGB32 format is fatal for the compositor,
// so the error propagates to startup.
func NewContext(c *xcore.Conn) (*Context, error) {
	if err := render.Init(c.X); err != nil {
		return nil, fmt.Errorf("RENDER extension missing: %w", err)
	}
	reply, err := render.QueryPictFormats(c.X).Reply()
	if err != nil {
		return nil, fmt.Errorf("QueryPictFormats: %w", err)
	}

	ctx := &Context{C: c, visualFormats: make(map[xproto.Visualid]render.Pictformat)}
	for _, f := range reply.Formats {
		if f.Type != render.PictTypeDirect {
			continue
		}
		d := f.Direct
		switch {
		case f.Depth == 32 && d.AlphaMask == 0xFF && d.RedShift == 16:
			ctx.ARGB32 = f.Id
		case f.Depth == 24 && d.RedShift == 16 && d.AlphaMask == 0:
			ctx.RGB24 = f.Id
		}
	}
	if ctx.ARGB32 == 0 || ctx.RGB24 == 0 {
		return nil, fmt.Errorf("no usable ARGB32/RGB24 picture formats")
	}

	for _, s := range reply.Screens {
		for _, d := range s.Depths {
			for _, v := range d.Visuals {
				ctx.visualFormats[v.Visual] = v.Format
			}
		}
	}
	ctx.Root = ctx.visualFormats[c.Screen.RootVisual]
	if ctx.Root == 0 {
		ctx.Root = ctx.RGB24
	}

	var cerr error
	ctx.CheckerActive, cerr = ctx.makeChecker(ColorBlue, ColorBlack)
	if cerr != nil {
		return nil, cerr
	}
	ctx.CheckerInactive, cerr = ctx.makeChecker(ColorGray, ColorBlack)
	if cerr != nil {
		return nil, cerr
	}
	return ctx, nil
}

// VisualFormat resolves the picture format for a visual, falling back to
// the root format for visuals the server didn't enumerate.
func (ctx *Context) VisualFormat(v xproto.Visualid) render.Pictformat {
	if f, ok := ctx.visualFormats[v]; ok {
		return f
	}
	return ctx.Root
}

// makeChecker builds a 4x4 two-color checkerboard pixmap picture with
// repeat enabled — the title bar fill.
func (ctx *Context) makeChecker(a, b render.Color) (render.Picture, error) {
	c := ctx.C
	pid, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return 0, err
	}
	xproto.CreatePixmap(c.X, 32, pid, xproto.Drawable(c.Root), 4, 4)

	pic, err := render.NewPictureId(c.X)
	if err != nil {
		xproto.FreePixmap(c.X, pid)
		return 0, err
	}
	render.CreatePicture(c.X, pic, xproto.Drawable(pid), ctx.ARGB32,
		render.CpRepeat, []uint32{1})

	render.FillRectangles(c.X, render.PictOpSrc, pic, a,
		[]xproto.Rectangle{{X: 0, Y: 0, Width: 4, Height: 4}})
	render.FillRectangles(c.X, render.PictOpSrc, pic, b,
		[]xproto.Rectangle{
			{X: 0, Y: 0, Width: 2, Height: 2},
			{X: 2, Y: 2, Width: 2, Height: 2},
		})

	// The pixmap is owned by the picture from here on.
	xproto.FreePixmap(c.X, pid)
	return pic, nil
}

// Checker picks the title fill for the given activation state.
func (ctx *Context) Checker(active bool) render.Picture {
	if active {
		return ctx.CheckerActive
	}
	return ctx.CheckerInactive
}

// Free releases the context's pictures.
func (ctx *Context) Free() {
	if ctx.CheckerActive != 0 {
		render.FreePicture(ctx.C.X, ctx.CheckerActive)
	}
	if ctx.CheckerInactive != 0 {
		render.FreePicture(ctx.C.X, ctx.CheckerInactive)
	}
}
