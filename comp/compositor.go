package comp

// compositor.go redirects all subwindows of the root and composites
// damaged canvases into a screen back-buffer, then the back-buffer onto
// the root. Override-redirect windows (client menus, tooltips) aren't
// canvases, so they get their own little tracking records and composite
// above the managed stack.

import (
	"fmt"

	"github.com/BurntSushi/xgb/composite"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xfixes"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/xcore"
)

// overrideWin tracks one override-redirect window while it's mapped.
type overrideWin struct {
	win     xproto.Window
	damage  damage.Damage
	picture render.Picture
	x, y    int
	w, h    int
}

// Compositor owns the redirected world.
type Compositor struct {
	C   *xcore.Conn
	Ctx *rdr.Context
	Reg *canvas.Registry

	rootDamage damage.Damage
	rootPic    render.Picture
	backPixmap xproto.Pixmap
	backPic    render.Picture

	overrides map[xproto.Window]*overrideWin
	byDamage  map[damage.Damage]xproto.Window

	DamageEventBase uint8
	anyDirty        bool
}

// NewCompositor queries the extensions and redirects the world. Any
// missing extension is fatal: the manager can't run uncomposited.
func NewCompositor(c *xcore.Conn, ctx *rdr.Context, reg *canvas.Registry) (*Compositor, error) {
	if err := composite.Init(c.X); err != nil {
		return nil, fmt.Errorf("Composite extension missing: %w", err)
	}
	if err := damage.Init(c.X); err != nil {
		return nil, fmt.Errorf("Damage extension missing: %w", err)
	}
	if err := xfixes.Init(c.X); err != nil {
		return nil, fmt.Errorf("XFixes extension missing: %w", err)
	}
	// Version negotiation is mandatory before use for both.
	if _, err := composite.QueryVersion(c.X, 0, 4).Reply(); err != nil {
		return nil, fmt.Errorf("Composite version: %w", err)
	}
	if _, err := damage.QueryVersion(c.X, 1, 1).Reply(); err != nil {
		return nil, fmt.Errorf("Damage version: %w", err)
	}
	if _, err := xfixes.QueryVersion(c.X, 5, 0).Reply(); err != nil {
		return nil, fmt.Errorf("XFixes version: %w", err)
	}

	comp := &Compositor{
		C:         c,
		Ctx:       ctx,
		Reg:       reg,
		overrides: make(map[xproto.Window]*overrideWin),
		byDamage:  make(map[damage.Damage]xproto.Window),
	}

	if err := composite.RedirectSubwindowsChecked(c.X, c.Root,
		composite.RedirectManual).Check(); err != nil {
		return nil, fmt.Errorf("redirecting subwindows (another compositor running?): %w", err)
	}

	// Root damage object: catches background changes.
	d, err := damage.NewDamageId(c.X)
	if err != nil {
		return nil, err
	}
	damage.Create(c.X, d, xproto.Drawable(c.Root), damage.ReportLevelNonEmpty)
	comp.rootDamage = d

	// The screen back-buffer everything composites into.
	sw := int(c.Screen.WidthInPixels)
	sh := int(c.Screen.HeightInPixels)
	pid, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return nil, err
	}
	xproto.CreatePixmap(c.X, c.Screen.RootDepth, pid, xproto.Drawable(c.Root),
		uint16(sw), uint16(sh))
	pic, err := render.NewPictureId(c.X)
	if err != nil {
		return nil, err
	}
	render.CreatePicture(c.X, pic, xproto.Drawable(pid), ctx.Root, 0, nil)
	comp.backPixmap = pid
	comp.backPic = pic

	rootPic, err := render.NewPictureId(c.X)
	if err != nil {
		return nil, err
	}
	render.CreatePicture(c.X, rootPic, xproto.Drawable(c.Root), ctx.Root,
		render.CpSubwindowMode,
		[]uint32{xproto.SubwindowModeIncludeInferiors})
	comp.rootPic = rootPic

	return comp, nil
}

// TrackCanvas creates the damage object for a newly managed frame.
func (cp *Compositor) TrackCanvas(cv *canvas.Canvas) {
	d, err := damage.NewDamageId(cp.C.X)
	if err != nil {
		log.Errorf("damage id for %x: %v", cv.Frame, err)
		return
	}
	damage.Create(cp.C.X, d, xproto.Drawable(cv.Frame), damage.ReportLevelNonEmpty)
	cv.Damage = d
	cp.byDamage[d] = cv.Frame
	cv.MarkAllDirty()
	cp.anyDirty = true
}

// UntrackCanvas destroys the damage object at canvas teardown.
func (cp *Compositor) UntrackCanvas(cv *canvas.Canvas) {
	if cv.Damage != 0 {
		damage.Destroy(cp.C.X, cv.Damage)
		delete(cp.byDamage, cv.Damage)
		cv.Damage = 0
	}
}

// TrackOverride begins compositing an override-redirect window that just
// mapped under the root.
func (cp *Compositor) TrackOverride(win xproto.Window) {
	if _, dup := cp.overrides[win]; dup {
		return
	}
	geom, ok := cp.C.RawGeometry(xproto.Drawable(win))
	if !ok {
		return
	}
	attrs, err := xproto.GetWindowAttributes(cp.C.X, win).Reply()
	if err != nil {
		return
	}

	d, err := damage.NewDamageId(cp.C.X)
	if err != nil {
		return
	}
	damage.Create(cp.C.X, d, xproto.Drawable(win), damage.ReportLevelNonEmpty)

	pic, err := render.NewPictureId(cp.C.X)
	if err != nil {
		damage.Destroy(cp.C.X, d)
		return
	}
	render.CreatePicture(cp.C.X, pic, xproto.Drawable(win),
		cp.Ctx.VisualFormat(attrs.Visual), 0, nil)

	ov := &overrideWin{win: win, damage: d, picture: pic,
		x: geom.X, y: geom.Y, w: geom.Width, h: geom.Height}
	cp.overrides[win] = ov
	cp.byDamage[d] = win
	cp.anyDirty = true
}

// UntrackOverride stops compositing an override-redirect window.
func (cp *Compositor) UntrackOverride(win xproto.Window) {
	ov, ok := cp.overrides[win]
	if !ok {
		return
	}
	damage.Destroy(cp.C.X, ov.damage)
	render.FreePicture(cp.C.X, ov.picture)
	delete(cp.byDamage, ov.damage)
	delete(cp.overrides, win)
	cp.anyDirty = true
}

// HandleDamage consumes one XDamageNotify: union the rectangle into the
// owning canvas's region and acknowledge with DamageSubtract.
func (cp *Compositor) HandleDamage(ev damage.NotifyEvent) bool {
	damage.Subtract(cp.C.X, ev.Damage, xfixes.RegionNone, xfixes.RegionNone)

	win, ok := cp.byDamage[ev.Damage]
	if !ok {
		// Root damage or a stale object; recomposite everything cheap.
		cp.anyDirty = true
		return true
	}
	if cv := cp.Reg.FindByWindow(win); cv != nil {
		cv.MarkDirty(xcore.Rect{
			X: int(ev.Area.X), Y: int(ev.Area.Y),
			Width: int(ev.Area.Width), Height: int(ev.Area.Height),
		})
	}
	cp.anyDirty = true
	return true
}

// Dirty reports whether anything needs compositing.
func (cp *Compositor) Dirty() bool {
	return cp.anyDirty
}

// MarkDirty forces a full composite on the next frame.
func (cp *Compositor) MarkDirty() {
	cp.anyDirty = true
}

// Paint composites the world back-to-front: desktop, managed windows in
// stacking order, override-redirects, then menus and dialogs on top;
// finally the back-buffer goes to the root in one composite.
func (cp *Compositor) Paint(wallpaper *rdr.WallpaperCache) {
	c := cp.C
	sw := int(c.Screen.WidthInPixels)
	sh := int(c.Screen.HeightInPixels)

	// Background layer.
	if wallpaper != nil && wallpaper.Desktop.Valid {
		render.Composite(c.X, render.PictOpSrc, wallpaper.Desktop.Picture, 0,
			cp.backPic, 0, 0, 0, 0, 0, 0, uint16(sw), uint16(sh))
	} else {
		render.FillRectangles(c.X, render.PictOpSrc, cp.backPic, rdr.ColorGray,
			[]xproto.Rectangle{{X: 0, Y: 0, Width: uint16(sw), Height: uint16(sh)}})
	}

	// Stacking order from the server; canvases composite in that order,
	// desktop first because it's the bottom sibling.
	children, ok := c.Children(c.Root)
	if !ok {
		return
	}

	blit := func(cv *canvas.Canvas) {
		if cv.Surf == nil || cv.Iconified {
			return
		}
		cv.TakeDirty()
		render.Composite(c.X, render.PictOpOver, cv.Surf.BufferPic, 0, cp.backPic,
			0, 0, 0, 0, int16(cv.X), int16(cv.Y),
			uint16(cv.Width), uint16(cv.Height))
	}

	// Pass 1: desktop and windows, bottom to top.
	for _, child := range children {
		cv := cp.Reg.FindByWindow(child)
		if cv == nil {
			continue
		}
		if cv.Type == canvas.Desktop || cv.Type == canvas.Window {
			blit(cv)
		}
	}
	// Pass 2: override-redirect client windows.
	for _, child := range children {
		if ov, ok := cp.overrides[child]; ok {
			render.Composite(c.X, render.PictOpOver, ov.picture, 0, cp.backPic,
				0, 0, 0, 0, int16(ov.x), int16(ov.y), uint16(ov.w), uint16(ov.h))
		}
	}
	// Pass 3: menus and dialogs always on top.
	for _, child := range children {
		cv := cp.Reg.FindByWindow(child)
		if cv == nil {
			continue
		}
		if cv.Type == canvas.Dialog || cv.Type == canvas.Menu {
			blit(cv)
		}
	}

	render.Composite(c.X, render.PictOpSrc, cp.backPic, 0, cp.rootPic,
		0, 0, 0, 0, 0, 0, uint16(sw), uint16(sh))
	cp.anyDirty = false
}

// Free releases the compositor's server objects.
func (cp *Compositor) Free() {
	c := cp.C
	for win := range cp.overrides {
		cp.UntrackOverride(win)
	}
	if cp.rootDamage != 0 {
		damage.Destroy(c.X, cp.rootDamage)
	}
	render.FreePicture(c.X, cp.backPic)
	render.FreePicture(c.X, cp.rootPic)
	xproto.FreePixmap(c.X, cp.backPixmap)
}
