package dialog

// dialog.go: the Dialog itself and the Manager that owns every open
// dialog, routes their input, and guarantees that destroying a dialog
// canvas frees every widget.

import (
	"image/color"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/fileops"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/xcore"
)

// Dialog is one modal dialog: a DIALOG canvas plus its widget list.
type Dialog struct {
	cv      *canvas.Canvas
	ctx     *rdr.Context
	text    *rdr.TextDraw
	widgets []Widget
	focus   KeyWidget
	mgr     *Manager

	// Progress dialogs carry their worker.
	job *fileops.Job
	bar *ProgressBar

	OnClose func()
}

// Canvas exposes the backing canvas.
func (d *Dialog) Canvas() *canvas.Canvas { return d.cv }

// off maps widget x to buffer x (inside the frame border).
func (d *Dialog) off(x int) int { return x + canvas.BorderLeft }

// offY maps widget y to buffer y (below the title bar).
func (d *Dialog) offY(y int) int { return y + canvas.BorderTop }

func (d *Dialog) textWidth(s string) int {
	if d.text == nil {
		return 0
	}
	w, _ := d.text.Extents(s)
	return w
}

// drawText renders a string into the dialog buffer.
func (d *Dialog) drawText(s string, x, y int, clr color.Color) {
	if d.text == nil || s == "" {
		return
	}
	img := d.text.Render(s, clr)
	if img == nil {
		return
	}
	pic, err := d.ctx.PictureFromRGBA(img)
	if err != nil {
		return
	}
	b := img.Bounds()
	render.Composite(d.ctx.C.X, render.PictOpOver, pic, 0, d.cv.Surf.BufferPic,
		0, 0, 0, 0, int16(d.off(x)), int16(d.offY(y)),
		uint16(b.Dx()), uint16(b.Dy()))
	d.ctx.FreePicture(pic)
}

// Render draws chrome and every widget into the buffer.
func (d *Dialog) Render() {
	d.ctx.FillBuffer(d.cv.Surf, rdr.ColorGray)
	d.ctx.DrawTitlebar(d.cv.Surf.BufferPic, 0, 0, d.cv.Width, d.cv.Active)
	d.drawTitle()
	for _, w := range d.widgets {
		w.Draw(d)
	}
	d.cv.MarkAllDirty()
}

func (d *Dialog) drawTitle() {
	if d.text == nil {
		return
	}
	img := d.text.Render(d.cv.Title(), color.White)
	if img == nil {
		return
	}
	pic, err := d.ctx.PictureFromRGBA(img)
	if err != nil {
		return
	}
	b := img.Bounds()
	render.Composite(d.ctx.C.X, render.PictOpOver, pic, 0, d.cv.Surf.BufferPic,
		0, 0, 0, 0, 24, 2, uint16(b.Dx()), uint16(b.Dy()))
	d.ctx.FreePicture(pic)
}

// Manager owns the open dialogs.
type Manager struct {
	C     *xcore.Conn
	Ctx   *rdr.Context
	Reg   *canvas.Registry
	Focus *canvas.Focus

	OnCanvasCreated func(*canvas.Canvas)
	Schedule        func()

	open map[*canvas.Canvas]*Dialog
	text *rdr.TextDraw
}

// NewManager builds the dialog manager.
func NewManager(c *xcore.Conn, ctx *rdr.Context, reg *canvas.Registry, focus *canvas.Focus) *Manager {
	return &Manager{
		C:     c,
		Ctx:   ctx,
		Reg:   reg,
		Focus: focus,
		open:  make(map[*canvas.Canvas]*Dialog),
		text:  ctx.NewTextDraw(),
	}
}

// Open creates the DIALOG canvas and shows the dialog.
func (m *Manager) Open(title string, width, height int, build func(*Dialog)) *Dialog {
	c := m.C
	fw := width + canvas.BorderLeft + canvas.BorderRight
	fh := height + canvas.BorderTop + canvas.BorderBottom
	x := (int(c.Screen.WidthInPixels) - fw) / 2
	y := (int(c.Screen.HeightInPixels) - fh) / 2

	win, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil
	}
	err = xproto.CreateWindowChecked(c.X, c.Screen.RootDepth, win, c.Root,
		int16(x), int16(y), uint16(fw), uint16(fh), 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
			xproto.EventMaskPointerMotion | xproto.EventMaskExposure |
			xproto.EventMaskKeyPress | xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		log.Errorf("dialog window: %v", err)
		return nil
	}

	cv := &canvas.Canvas{
		Frame:     win,
		Type:      canvas.Dialog,
		X:         x,
		Y:         y,
		Width:     fw,
		Height:    fh,
		TitleBase: title,
	}
	surf, err := m.Ctx.NewSurfaces(win, c.Screen.RootVisual, fw, fh, false)
	if err != nil {
		xproto.DestroyWindow(c.X, win)
		return nil
	}
	cv.Surf = surf
	m.Reg.Add(cv)

	d := &Dialog{cv: cv, ctx: m.Ctx, text: m.text, mgr: m}
	build(d)
	m.open[cv] = d

	xproto.MapWindow(c.X, win)
	d.Render()
	if m.OnCanvasCreated != nil {
		m.OnCanvasCreated(cv)
	}
	m.Focus.Raise(cv)
	m.Focus.SetActive(cv, xproto.TimeCurrentTime)
	if m.Schedule != nil {
		m.Schedule()
	}
	return d
}

// Close tears a dialog down.
func (m *Manager) Close(d *Dialog) {
	if d == nil {
		return
	}
	if d.job != nil {
		d.job.Cancel()
		d.job = nil
	}
	if d.OnClose != nil {
		d.OnClose()
	}
	xproto.DestroyWindow(m.C.X, d.cv.Frame)
	// The DestroyNotify path calls CanvasClosed, which finishes cleanup.
}

// CanvasClosed releases dialog state when its canvas dies. Every widget
// is dropped with the dialog record.
func (m *Manager) CanvasClosed(cv *canvas.Canvas) {
	d, ok := m.open[cv]
	if !ok {
		return
	}
	if d.job != nil {
		d.job.Cancel()
	}
	d.widgets = nil
	delete(m.open, cv)
}

// dialogFor resolves a canvas.
func (m *Manager) dialogFor(cv *canvas.Canvas) *Dialog {
	return m.open[cv]
}

// HandlePress hit-tests widgets in order; the first consumer wins.
func (m *Manager) HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp) bool {
	d := m.dialogFor(cv)
	if d == nil {
		return false
	}
	wx := x - canvas.BorderLeft
	wy := y - canvas.BorderTop
	for _, w := range d.widgets {
		if w.Press(d, wx, wy) {
			break
		}
	}
	d.Render()
	if m.Schedule != nil {
		m.Schedule()
	}
	return true
}

// HandleRelease exists for symmetry; dialogs act on press.
func (m *Manager) HandleRelease(cv *canvas.Canvas, x, y int) bool {
	return m.dialogFor(cv) != nil
}

// HandleMotion swallows motion over dialogs.
func (m *Manager) HandleMotion(cv *canvas.Canvas, x, y int) bool {
	return m.dialogFor(cv) != nil
}

// HandleKey feeds the focused widget of the active dialog. Escape closes.
func (m *Manager) HandleKey(keysym uint32, mods uint16) bool {
	const keyEscape = 0xFF1B
	active := m.Focus.Active
	if active == nil {
		return false
	}
	d := m.dialogFor(active)
	if d == nil {
		return false
	}
	if keysym == keyEscape {
		m.Close(d)
		return true
	}
	if d.focus != nil && d.focus.Key(d, keysym, mods) {
		d.Render()
		if m.Schedule != nil {
			m.Schedule()
		}
		return true
	}
	return true // modal: keys never leak past an active dialog
}

// HandleExpose re-renders a dialog.
func (m *Manager) HandleExpose(cv *canvas.Canvas) {
	if d := m.dialogFor(cv); d != nil {
		d.Render()
	}
}

// CheckProgress polls every progress dialog's worker; called on each
// event-loop iteration so bursts of X traffic can't starve the pipes.
func (m *Manager) CheckProgress() {
	for _, d := range m.open {
		if d.job == nil || d.bar == nil {
			continue
		}
		if u, fresh := d.job.Poll(); fresh {
			d.bar.Done = u.Done
			d.bar.Total = u.Total
			d.bar.Status = u.Current
			d.Render()
			if m.Schedule != nil {
				m.Schedule()
			}
		}
		if d.job.Done() {
			if d.job.ExitErr != nil {
				d.bar.Status = "operation failed; see log"
				log.Warnf("file operation: %v", d.job.ExitErr)
				d.Render()
			}
			d.job.Close()
			d.job = nil
			m.Close(d)
		}
	}
}
