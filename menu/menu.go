/*
Package menu owns the menubar: the always-on-top strip across the screen
with its dropdown menus, the right-aligned clock, addon slots, and the
per-application menu substitutions clients register through window
properties.
*/
package menu

import (
	"image/color"
	"time"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/xcore"
)

// Item is one entry of a dropdown.
type Item struct {
	Label    string
	Enabled  bool
	Checked  bool
	Action   func()
}

// Menu is one titled dropdown.
type Menu struct {
	Title string
	Items []Item
}

// AddonFunc returns a short status string for the menubar's right side,
// next to the clock.
type AddonFunc func() string

// Bar is the menubar subsystem.
type Bar struct {
	C     *xcore.Conn
	Ctx   *rdr.Context
	Reg   *canvas.Registry
	Text  *rdr.TextDraw

	Canvas *canvas.Canvas

	Menus  []Menu
	Addons []AddonFunc

	// App-registered substitutions, keyed by client window.
	appMenus map[xproto.Window][]Menu

	// Open dropdown state.
	dropdown    *canvas.Canvas
	dropdownIdx int // which top-level menu is open

	clock string

	Schedule func()
	Redraw   func(*canvas.Canvas)
}

// New builds the menubar subsystem.
func New(c *xcore.Conn, ctx *rdr.Context, reg *canvas.Registry) *Bar {
	return &Bar{
		C:        c,
		Ctx:      ctx,
		Reg:      reg,
		Text:     ctx.NewTextDraw(),
		appMenus: make(map[xproto.Window][]Menu),
	}
}

// CreateBar makes the singleton MENU canvas pinned across the top.
func (b *Bar) CreateBar() (*canvas.Canvas, error) {
	c := b.C
	sw := int(c.Screen.WidthInPixels)

	win, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil, err
	}
	err = xproto.CreateWindowChecked(c.X, c.Screen.RootDepth, win, c.Root,
		0, 0, uint16(sw), canvas.MenubarH, 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{1,
			xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
				xproto.EventMaskPointerMotion | xproto.EventMaskExposure}).Check()
	if err != nil {
		return nil, err
	}

	cv := &canvas.Canvas{
		Frame:     win,
		Type:      canvas.Menu,
		Width:     sw,
		Height:    canvas.MenubarH,
		TitleBase: "menubar",
	}
	surf, err := b.Ctx.NewSurfaces(win, c.Screen.RootVisual, sw, canvas.MenubarH, true)
	if err != nil {
		return nil, err
	}
	cv.Surf = surf
	b.Reg.Add(cv)
	b.Canvas = cv

	xproto.MapWindow(c.X, win)
	xproto.ConfigureWindow(c.X, win, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove})
	b.Render()
	return cv, nil
}

// activeMenus returns the substitution set for the focused client when it
// registered one, the default set otherwise.
func (b *Bar) activeMenus(focused xproto.Window) []Menu {
	if m, ok := b.appMenus[focused]; ok && len(m) > 0 {
		return m
	}
	return b.Menus
}

// Render paints the bar: titles left, addons and clock right.
func (b *Bar) Render() {
	cv := b.Canvas
	if cv == nil || cv.Surf == nil {
		return
	}
	b.Ctx.FillBuffer(cv.Surf, rdr.ColorWhite)

	x := 8
	for _, m := range b.Menus {
		b.drawText(cv, m.Title, x, 2, color.Black)
		w, _ := b.Text.Extents(m.Title)
		x += w + 24
	}

	right := cv.Width - 8
	if b.clock != "" {
		w, _ := b.Text.Extents(b.clock)
		right -= w
		b.drawText(cv, b.clock, right, 2, color.Black)
		right -= 16
	}
	for _, addon := range b.Addons {
		s := addon()
		if s == "" {
			continue
		}
		w, _ := b.Text.Extents(s)
		right -= w
		b.drawText(cv, s, right, 2, color.Black)
		right -= 16
	}

	cv.MarkAllDirty()
	if b.Schedule != nil {
		b.Schedule()
	}
}

func (b *Bar) drawText(cv *canvas.Canvas, s string, x, y int, clr color.Color) {
	img := b.Text.Render(s, clr)
	if img == nil {
		return
	}
	pic, err := b.Ctx.PictureFromRGBA(img)
	if err != nil {
		return
	}
	bd := img.Bounds()
	render.Composite(b.C.X, render.PictOpOver, pic, 0, cv.Surf.BufferPic,
		0, 0, 0, 0, int16(x), int16(y), uint16(bd.Dx()), uint16(bd.Dy()))
	b.Ctx.FreePicture(pic)
}

// TickClock refreshes the clock string; called at 1 Hz.
func (b *Bar) TickClock() {
	s := time.Now().Format("15:04:05")
	if s == b.clock {
		return
	}
	b.clock = s
	b.Render()
}

// hitTitle maps a bar-local x to the index of the menu title under it.
func (b *Bar) hitTitle(x int) int {
	pos := 8
	for i, m := range b.Menus {
		w, _ := b.Text.Extents(m.Title)
		if x >= pos-4 && x < pos+w+12 {
			return i
		}
		pos += w + 24
	}
	return -1
}

// HandlePress on the bar opens a dropdown; on a dropdown it fires the
// item.
func (b *Bar) HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp) {
	if cv == b.Canvas {
		idx := b.hitTitle(x)
		b.CloseDropdown()
		if idx >= 0 {
			b.openDropdown(idx)
		}
		return
	}
	if cv == b.dropdown {
		menu := b.Menus[b.dropdownIdx]
		row := y / dropdownRowH
		if row >= 0 && row < len(menu.Items) {
			item := menu.Items[row]
			b.CloseDropdown()
			if item.Enabled && item.Action != nil {
				item.Action()
			}
			return
		}
		b.CloseDropdown()
	}
}

// HandleRelease is a no-op; menus act on press.
func (b *Bar) HandleRelease(cv *canvas.Canvas, x, y int) {}

// HandleMotion highlights nothing yet; dropdown rows redraw on press.
func (b *Bar) HandleMotion(cv *canvas.Canvas, x, y int) {}

// HandleKey lets menus claim shortcuts (none today).
func (b *Bar) HandleKey(keysym uint32, mods uint16) bool { return false }

const dropdownRowH = 20

// openDropdown creates a transient MENU canvas below the title.
func (b *Bar) openDropdown(idx int) {
	menu := b.Menus[idx]
	if len(menu.Items) == 0 {
		return
	}
	c := b.C

	x := 8
	for i := 0; i < idx; i++ {
		w, _ := b.Text.Extents(b.Menus[i].Title)
		x += w + 24
	}
	width := 160
	for _, it := range menu.Items {
		if w, _ := b.Text.Extents(it.Label); w+32 > width {
			width = w + 32
		}
	}
	height := len(menu.Items) * dropdownRowH

	win, err := xproto.NewWindowId(c.X)
	if err != nil {
		return
	}
	err = xproto.CreateWindowChecked(c.X, c.Screen.RootDepth, win, c.Root,
		int16(x), canvas.MenubarH, uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwOverrideRedirect|xproto.CwEventMask,
		[]uint32{1,
			xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
				xproto.EventMaskPointerMotion | xproto.EventMaskExposure}).Check()
	if err != nil {
		return
	}

	cv := &canvas.Canvas{
		Frame:     win,
		Type:      canvas.Menu,
		X:         x,
		Y:         canvas.MenubarH,
		Width:     width,
		Height:    height,
		TitleBase: menu.Title,
	}
	surf, err := b.Ctx.NewSurfaces(win, c.Screen.RootVisual, width, height, true)
	if err != nil {
		xproto.DestroyWindow(c.X, win)
		return
	}
	cv.Surf = surf
	b.Reg.Add(cv)
	b.dropdown = cv
	b.dropdownIdx = idx

	b.Ctx.FillBuffer(surf, rdr.ColorWhite)
	for i, it := range menu.Items {
		clr := color.Color(color.Black)
		if !it.Enabled {
			clr = color.Gray{Y: 0x99}
		}
		label := it.Label
		if it.Checked {
			label = "* " + label
		}
		b.drawText(cv, label, 16, i*dropdownRowH+2, clr)
	}
	cv.MarkAllDirty()

	xproto.MapWindow(c.X, win)
	xproto.ConfigureWindow(c.X, win, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove})
	if b.Schedule != nil {
		b.Schedule()
	}
}

// CloseDropdown tears down an open dropdown.
func (b *Bar) CloseDropdown() {
	if b.dropdown == nil {
		return
	}
	cv := b.dropdown
	b.dropdown = nil
	b.Reg.Remove(cv)
	if cv.Surf != nil {
		cv.Surf.Free(b.Ctx)
	}
	xproto.DestroyWindow(b.C.X, cv.Frame)
	if b.Schedule != nil {
		b.Schedule()
	}
}

// RegisterApp installs an application's menu substitutions from its
// _AMIWB_MENU_DATA property.
func (b *Bar) RegisterApp(client xproto.Window) {
	data, err := b.C.PropStr(client, "_AMIWB_MENU_DATA")
	if err != nil {
		return
	}
	menus := ParseMenuData(data)
	if len(menus) == 0 {
		return
	}
	b.appMenus[client] = menus
	log.Debugf("app %x registered %d menus", client, len(menus))
}

// UpdateAppStates re-reads _AMIWB_MENU_STATES for a client.
func (b *Bar) UpdateAppStates(client xproto.Window) {
	menus, ok := b.appMenus[client]
	if !ok {
		return
	}
	data, err := b.C.PropStr(client, "_AMIWB_MENU_STATES")
	if err != nil {
		return
	}
	ApplyMenuStates(menus, data)
	b.Render()
}

// UnregisterApp drops a client's substitutions at destroy time.
func (b *Bar) UnregisterApp(client xproto.Window) {
	delete(b.appMenus, client)
}
