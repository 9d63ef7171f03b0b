/*
Package shell draws canvas content and drives the frame furniture: the
title bar with its close button and checker fill, borders, scrollbars,
the resize grip, and the icons of workbench canvases. It is the repaint
hook behind focus changes and the WindowHandler behind title drags and
grip resizes.
*/
package shell

import (
	"image/color"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/canvas"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/xcore"
)

// Close button geometry inside the title bar.
const closeButtonSize = 14

// Shell paints canvases and handles window furniture input.
type Shell struct {
	C     *xcore.Conn
	Ctx   *rdr.Context
	Reg   *canvas.Registry
	Focus *canvas.Focus
	Text  *rdr.TextDraw

	Wallpaper *rdr.WallpaperCache
	Schedule  func()
	CloseWin  func(cv *canvas.Canvas, t xproto.Timestamp)

	// Drag state for title moves and grip resizes.
	mode      dragMode
	dragCv    *canvas.Canvas
	startX    int
	startY    int
	origX     int
	origY     int
	origW     int
	origH     int
}

type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragResize
)

// New builds the shell painter.
func New(c *xcore.Conn, ctx *rdr.Context, reg *canvas.Registry, focus *canvas.Focus) *Shell {
	return &Shell{
		C:     c,
		Ctx:   ctx,
		Reg:   reg,
		Focus: focus,
		Text:  ctx.NewTextDraw(),
	}
}

// DrawCanvas repaints a canvas's buffer: background, chrome, content.
func (s *Shell) DrawCanvas(cv *canvas.Canvas) {
	if cv.Surf == nil {
		return
	}
	switch cv.Type {
	case canvas.Desktop:
		s.drawDesktop(cv)
	case canvas.Window, canvas.Dialog:
		s.drawFramed(cv)
	case canvas.Menu:
		// The menu subsystem paints its own canvases.
		return
	}
	cv.MarkAllDirty()
	if s.Schedule != nil {
		s.Schedule()
	}
}

func (s *Shell) drawDesktop(cv *canvas.Canvas) {
	if s.Wallpaper != nil && s.Wallpaper.Desktop.Valid {
		render.Composite(s.C.X, render.PictOpSrc, s.Wallpaper.Desktop.Picture, 0,
			cv.Surf.BufferPic, 0, int16(cv.Y), 0, 0, 0, 0,
			uint16(cv.Width), uint16(cv.Height))
	} else {
		s.Ctx.FillBuffer(cv.Surf, cv.BgColor)
	}
	s.drawIcons(cv, 0, 0)
}

func (s *Shell) drawFramed(cv *canvas.Canvas) {
	// Window background.
	if cv.Path != "" && s.Wallpaper != nil && s.Wallpaper.Window.Valid {
		render.Composite(s.C.X, render.PictOpSrc, s.Wallpaper.Window.Picture, 0,
			cv.Surf.BufferPic, 0, 0, 0, 0, 0, 0,
			uint16(cv.Width), uint16(cv.Height))
	} else {
		s.Ctx.FillBuffer(cv.Surf, cv.BgColor)
	}

	// Title bar: checker fill, close box, title text.
	s.Ctx.DrawTitlebar(cv.Surf.BufferPic, 0, 0, cv.Width, cv.Active)
	s.drawCloseButton(cv)
	s.drawTitleText(cv)

	// Borders.
	s.fillRect(cv, 0, canvas.BorderTop, canvas.BorderLeft,
		cv.Height-canvas.BorderTop, rdr.ColorGray)
	s.fillRect(cv, cv.Width-canvas.BorderRight, canvas.BorderTop,
		canvas.BorderRight, cv.Height-canvas.BorderTop, rdr.ColorGray)
	s.fillRect(cv, 0, cv.Height-canvas.BorderBottom, cv.Width,
		canvas.BorderBottom, rdr.ColorGray)

	// Workbench content and scroll furniture.
	if cv.Path != "" {
		s.drawIcons(cv, canvas.BorderLeft-cv.ScrollX, canvas.BorderTop-cv.ScrollY)
	}
	if !cv.DisableScrollbars && cv.Type == canvas.Window {
		s.drawScrollArrows(cv)
	}
	if cv.ResizeX || cv.ResizeY {
		s.Ctx.DrawGrip(cv.Surf.BufferPic, cv.Width-rdr.GripSize,
			cv.Height-rdr.GripSize, cv.GripArmed)
	}
}

func (s *Shell) drawCloseButton(cv *canvas.Canvas) {
	s.fillRect(cv, 3, 3, closeButtonSize, closeButtonSize, rdr.ColorGray)
	s.fillRect(cv, 6, 6, closeButtonSize-6, closeButtonSize-6, rdr.ColorBlack)
	s.fillRect(cv, 7, 7, closeButtonSize-8, closeButtonSize-8, rdr.ColorWhite)
}

func (s *Shell) drawTitleText(cv *canvas.Canvas) {
	clr := color.Color(color.White)
	if !cv.Active {
		clr = color.Black
	}
	img := s.Text.Render(cv.Title(), clr)
	if img == nil {
		return
	}
	pic, err := s.Ctx.PictureFromRGBA(img)
	if err != nil {
		return
	}
	b := img.Bounds()
	render.Composite(s.C.X, render.PictOpOver, pic, 0, cv.Surf.BufferPic,
		0, 0, 0, 0, closeButtonSize+10, 2, uint16(b.Dx()), uint16(b.Dy()))
	s.Ctx.FreePicture(pic)
}

// drawIcons composites every icon and its label at the given content
// origin.
func (s *Shell) drawIcons(cv *canvas.Canvas, ox, oy int) {
	for _, ic := range cv.Icons {
		if ic.CurrentPic == 0 {
			continue
		}
		w, h := ic.HitWidth(), ic.HitHeight()
		render.Composite(s.C.X, render.PictOpOver, ic.CurrentPic, 0,
			cv.Surf.BufferPic, 0, 0, 0, 0,
			int16(ox+ic.X), int16(oy+ic.Y), uint16(w), uint16(h))

		labelClr := color.Color(color.White)
		if cv.Type != canvas.Desktop {
			labelClr = color.Black
		}
		if ic.Selected {
			labelClr = color.RGBA{0x48, 0x6F, 0xB0, 0xFF}
		}
		img := s.Text.Render(ic.Label, labelClr)
		if img == nil {
			continue
		}
		pic, err := s.Ctx.PictureFromRGBA(img)
		if err != nil {
			continue
		}
		b := img.Bounds()
		lx := ox + ic.X + (w-ic.LabelWidth)/2
		render.Composite(s.C.X, render.PictOpOver, pic, 0, cv.Surf.BufferPic,
			0, 0, 0, 0, int16(lx), int16(oy+ic.Y+h+2),
			uint16(b.Dx()), uint16(b.Dy()))
		s.Ctx.FreePicture(pic)
	}
}

func (s *Shell) drawScrollArrows(cv *canvas.Canvas) {
	// Vertical pair above the grip on the right border; horizontal pair
	// left of the grip on the bottom border.
	ax := cv.Width - rdr.ArrowButtonSize
	s.Ctx.DrawArrow(cv.Surf.BufferPic, ax,
		cv.Height-rdr.GripSize-2*rdr.ArrowButtonSize, rdr.ArrowUp, cv.ArrowUpArmed)
	s.Ctx.DrawArrow(cv.Surf.BufferPic, ax,
		cv.Height-rdr.GripSize-rdr.ArrowButtonSize, rdr.ArrowDown, cv.ArrowDownArmed)

	ay := cv.Height - rdr.ArrowButtonSize
	s.Ctx.DrawArrow(cv.Surf.BufferPic,
		cv.Width-rdr.GripSize-2*rdr.ArrowButtonSize, ay, rdr.ArrowLeft, cv.ArrowLeftArmed)
	s.Ctx.DrawArrow(cv.Surf.BufferPic,
		cv.Width-rdr.GripSize-rdr.ArrowButtonSize, ay, rdr.ArrowRight, cv.ArrowRightArmed)
}

func (s *Shell) fillRect(cv *canvas.Canvas, x, y, w, h int, col render.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	render.FillRectangles(s.C.X, render.PictOpSrc, cv.Surf.BufferPic, col,
		[]xproto.Rectangle{{X: int16(x), Y: int16(y),
			Width: uint16(w), Height: uint16(h)}})
}

// hitWidget classifies a frame-local point against the furniture.
type widgetHit int

const (
	hitNothing widgetHit = iota
	hitClose
	hitTitle
	hitGrip
	hitArrowUp
	hitArrowDown
	hitArrowLeft
	hitArrowRight
)

func (s *Shell) classify(cv *canvas.Canvas, x, y int) widgetHit {
	if y < canvas.BorderTop {
		if x >= 3 && x < 3+closeButtonSize && y >= 3 && y < 3+closeButtonSize {
			return hitClose
		}
		return hitTitle
	}
	if (cv.ResizeX || cv.ResizeY) &&
		x >= cv.Width-rdr.GripSize && y >= cv.Height-rdr.GripSize {
		return hitGrip
	}
	if cv.Type == canvas.Window && !cv.DisableScrollbars {
		ax := cv.Width - rdr.ArrowButtonSize
		switch {
		case x >= ax && y >= cv.Height-rdr.GripSize-2*rdr.ArrowButtonSize &&
			y < cv.Height-rdr.GripSize-rdr.ArrowButtonSize:
			return hitArrowUp
		case x >= ax && y >= cv.Height-rdr.GripSize-rdr.ArrowButtonSize &&
			y < cv.Height-rdr.GripSize:
			return hitArrowDown
		case y >= cv.Height-rdr.ArrowButtonSize &&
			x >= cv.Width-rdr.GripSize-2*rdr.ArrowButtonSize &&
			x < cv.Width-rdr.GripSize-rdr.ArrowButtonSize:
			return hitArrowLeft
		case y >= cv.Height-rdr.ArrowButtonSize &&
			x >= cv.Width-rdr.GripSize-rdr.ArrowButtonSize &&
			x < cv.Width-rdr.GripSize:
			return hitArrowRight
		}
	}
	return hitNothing
}

// scrollStep is how far one arrow click scrolls.
const scrollStep = 40

// HandlePress drives the furniture. Content-area presses on workbench
// canvases never reach here (the dispatcher routes those to the
// workbench first).
func (s *Shell) HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp) {
	if button != 1 {
		return
	}
	switch s.classify(cv, x, y) {
	case hitClose:
		if s.CloseWin != nil {
			s.CloseWin(cv, t)
		}
	case hitTitle:
		s.mode = dragMove
		s.dragCv = cv
		rx, ry, ok := s.C.TranslateCoords(cv.Frame, s.C.Root, x, y)
		if !ok {
			s.mode = dragNone
			return
		}
		s.startX, s.startY = rx, ry
		s.origX, s.origY = cv.X, cv.Y
	case hitGrip:
		s.mode = dragResize
		s.dragCv = cv
		cv.GripArmed = true
		rx, ry, ok := s.C.TranslateCoords(cv.Frame, s.C.Root, x, y)
		if !ok {
			s.mode = dragNone
			return
		}
		s.startX, s.startY = rx, ry
		s.origW, s.origH = cv.Width, cv.Height
		s.DrawCanvas(cv)
	case hitArrowUp:
		cv.ArrowUpArmed = true
		cv.ScrollY -= scrollStep
		cv.ClampScroll()
		s.DrawCanvas(cv)
	case hitArrowDown:
		cv.ArrowDownArmed = true
		cv.ScrollY += scrollStep
		cv.ClampScroll()
		s.DrawCanvas(cv)
	case hitArrowLeft:
		cv.ArrowLeftArmed = true
		cv.ScrollX -= scrollStep
		cv.ClampScroll()
		s.DrawCanvas(cv)
	case hitArrowRight:
		cv.ArrowRightArmed = true
		cv.ScrollX += scrollStep
		cv.ClampScroll()
		s.DrawCanvas(cv)
	}
}

// HandleMotion continues a title drag or grip resize. The press-target
// lock guarantees we keep receiving these even when the pointer leaves
// the frame.
func (s *Shell) HandleMotion(cv *canvas.Canvas, x, y int, state uint16) {
	if s.mode == dragNone || s.dragCv != cv {
		return
	}
	rx, ry, ok := s.C.TranslateCoords(cv.Frame, s.C.Root, x, y)
	if !ok {
		s.mode = dragNone
		return
	}
	dx, dy := rx-s.startX, ry-s.startY

	switch s.mode {
	case dragMove:
		nx, ny := s.origX+dx, s.origY+dy
		if ny < canvas.MenubarH {
			ny = canvas.MenubarH
		}
		cv.X, cv.Y = nx, ny
		xproto.ConfigureWindow(s.C.X, cv.Frame,
			xproto.ConfigWindowX|xproto.ConfigWindowY,
			[]uint32{uint32(int32(nx)), uint32(int32(ny))})
		if s.Schedule != nil {
			s.Schedule()
		}
	case dragResize:
		nw, nh := s.origW+dx, s.origH+dy
		if !cv.ResizeX {
			nw = cv.Width
		}
		if !cv.ResizeY {
			nh = cv.Height
		}
		if nw < cv.MinWidth {
			nw = cv.MinWidth
		}
		if nh < cv.MinHeight {
			nh = cv.MinHeight
		}
		xproto.ConfigureWindow(s.C.X, cv.Frame,
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
			[]uint32{uint32(nw), uint32(nh)})
		// Geometry bookkeeping happens on the ConfigureNotify.
	}
}

// HandleRelease finishes any drag and disarms the buttons.
func (s *Shell) HandleRelease(cv *canvas.Canvas, x, y int) {
	disarmed := cv.GripArmed || cv.ArrowUpArmed || cv.ArrowDownArmed ||
		cv.ArrowLeftArmed || cv.ArrowRightArmed
	cv.GripArmed = false
	cv.ArrowUpArmed = false
	cv.ArrowDownArmed = false
	cv.ArrowLeftArmed = false
	cv.ArrowRightArmed = false
	s.mode = dragNone
	s.dragCv = nil
	if disarmed {
		s.DrawCanvas(cv)
	}
}
