package render

// surface.go manages the per-canvas render surfaces: one offscreen buffer
// pixmap, a picture over the buffer for drawing, a picture over the frame
// window for the final composite, and the text-draw handle. Buffers for
// resizable canvases only ever grow, so a shrink never reallocates and a
// regrow within the high-water mark is free.

import (
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

// Surfaces is the render state attached to one canvas.
type Surfaces struct {
	BufferPixmap xproto.Pixmap
	BufferPic    render.Picture // drawing target
	WindowPic    render.Picture // composite destination
	Text         *TextDraw

	BufferWidth  int
	BufferHeight int

	// Exact surfaces (desktop, menubar) size the buffer to the canvas;
	// others keep the monotone high-water mark.
	exact bool
}

// NewSurfaces creates the full surface set for a frame window of the
// given size. visual is the frame's visual, used for the window-side
// picture; the buffer is always ARGB32.
func (ctx *Context) NewSurfaces(win xproto.Window, visual xproto.Visualid, w, h int, exact bool) (*Surfaces, error) {
	s := &Surfaces{exact: exact}
	if err := ctx.allocBuffer(s, w, h); err != nil {
		return nil, err
	}

	winPic, err := render.NewPictureId(ctx.C.X)
	if err != nil {
		ctx.freeBuffer(s)
		return nil, err
	}
	render.CreatePicture(ctx.C.X, winPic, xproto.Drawable(win),
		ctx.VisualFormat(visual), 0, nil)
	s.WindowPic = winPic

	s.Text = ctx.NewTextDraw()
	return s, nil
}

// allocBuffer (re)creates the buffer pixmap and its picture at w x h.
func (ctx *Context) allocBuffer(s *Surfaces, w, h int) error {
	c := ctx.C
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	pid, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return err
	}
	xproto.CreatePixmap(c.X, 32, pid, xproto.Drawable(c.Root),
		uint16(w), uint16(h))
	pic, err := render.NewPictureId(c.X)
	if err != nil {
		xproto.FreePixmap(c.X, pid)
		return err
	}
	render.CreatePicture(c.X, pic, xproto.Drawable(pid), ctx.ARGB32, 0, nil)

	s.BufferPixmap = pid
	s.BufferPic = pic
	s.BufferWidth = w
	s.BufferHeight = h
	return nil
}

func (ctx *Context) freeBuffer(s *Surfaces) {
	if s.BufferPic != 0 {
		render.FreePicture(ctx.C.X, s.BufferPic)
		s.BufferPic = 0
	}
	if s.BufferPixmap != 0 {
		xproto.FreePixmap(ctx.C.X, s.BufferPixmap)
		s.BufferPixmap = 0
	}
}

// EnsureSize resizes the buffer for a new canvas size. Exact surfaces
// track the canvas; growing surfaces reallocate only when the canvas
// outgrows the buffer, and never shrink. Reports whether the buffer was
// reallocated (the caller must then redraw everything).
func (ctx *Context) EnsureSize(s *Surfaces, w, h int) bool {
	if s.exact {
		if w == s.BufferWidth && h == s.BufferHeight {
			return false
		}
		ctx.freeBuffer(s)
		ctx.allocBuffer(s, w, h)
		return true
	}
	if w <= s.BufferWidth && h <= s.BufferHeight {
		return false
	}
	nw, nh := s.BufferWidth, s.BufferHeight
	if w > nw {
		nw = w
	}
	if h > nh {
		nh = h
	}
	ctx.freeBuffer(s)
	ctx.allocBuffer(s, nw, nh)
	return true
}

// Free releases everything. Safe on a partially built set; idempotent.
func (s *Surfaces) Free(ctx *Context) {
	ctx.freeBuffer(s)
	if s.WindowPic != 0 {
		render.FreePicture(ctx.C.X, s.WindowPic)
		s.WindowPic = 0
	}
	s.Text = nil
}

// FillBuffer floods the buffer with a color.
func (ctx *Context) FillBuffer(s *Surfaces, col render.Color) {
	render.FillRectangles(ctx.C.X, render.PictOpSrc, s.BufferPic, col,
		[]xproto.Rectangle{{X: 0, Y: 0,
			Width: uint16(s.BufferWidth), Height: uint16(s.BufferHeight)}})
}

// Present composites the buffer region (x,y,w,h) onto the frame window.
func (ctx *Context) Present(s *Surfaces, x, y, w, h int) {
	render.Composite(ctx.C.X, render.PictOpSrc, s.BufferPic, 0, s.WindowPic,
		int16(x), int16(y), 0, 0, int16(x), int16(y), uint16(w), uint16(h))
}
