package wm

// frame.go wraps a mapped client in a managed frame: create the frame at
// client size plus insets, reparent the client at the fixed inset, select
// the masks both sides need, grab Button1 for click-to-focus with replay,
// and install the canvas into the registry.

import (
	"fmt"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/icons"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/xcore"
)

// Manager frames clients and owns the framing policy.
type Manager struct {
	C   *xcore.Conn
	Ctx *rdr.Context
	Reg *canvas.Registry

	Transients *TransientPolicy
}

// NewManager wires a framing manager.
func NewManager(c *xcore.Conn, ctx *rdr.Context, reg *canvas.Registry) *Manager {
	return &Manager{C: c, Ctx: ctx, Reg: reg, Transients: NewTransientPolicy(c)}
}

// frameEventMask is what the manager listens for on its own frames.
const frameEventMask = xproto.EventMaskSubstructureNotify |
	xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion |
	xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify

// clientEventMask is what the manager listens for on managed clients.
const clientEventMask = xproto.EventMaskPropertyChange |
	xproto.EventMaskStructureNotify

// Manage frames an unmanaged top-level in response to MapRequest and
// returns the new canvas.
func (m *Manager) Manage(client xproto.Window) (*canvas.Canvas, error) {
	c := m.C

	attrs, err := xproto.GetWindowAttributes(c.X, client).Reply()
	if err != nil {
		return nil, fmt.Errorf("window %x vanished before managing: %w", client, err)
	}
	if attrs.OverrideRedirect {
		return nil, fmt.Errorf("window %x is override-redirect", client)
	}
	geom, ok := c.RawGeometry(xproto.Drawable(client))
	if !ok {
		return nil, fmt.Errorf("window %x has no geometry", client)
	}

	hints := ReadNormalHints(c, client)
	cw, ch := hints.Clamp(geom.Width, geom.Height)

	frameW := cw + canvas.BorderLeft + canvas.BorderRight
	frameH := ch + canvas.BorderTop + canvas.BorderBottom

	fx, fy := geom.X, geom.Y
	if fy < canvas.MenubarH {
		fy = canvas.MenubarH
	}

	transientFor := TransientFor(c, client)
	if transientFor != 0 {
		// Transient dialogs center on screen regardless of what the
		// toolkit asked for.
		fx = (int(c.Screen.WidthInPixels) - frameW) / 2
		fy = (int(c.Screen.HeightInPixels) - frameH) / 2
	}

	frame, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil, err
	}

	// Match the client's visual when it has a non-default one (GL and
	// ARGB clients), otherwise inherit from the root.
	visual := c.Screen.RootVisual
	depth := c.Screen.RootDepth
	if attrs.Visual != 0 && attrs.Visual != c.Screen.RootVisual {
		visual = attrs.Visual
	}

	err = xproto.CreateWindowChecked(c.X, depth, frame, c.Root,
		int16(fx), int16(fy), uint16(frameW), uint16(frameH), 0,
		xproto.WindowClassInputOutput, visual,
		xproto.CwEventMask, []uint32{frameEventMask}).Check()
	if err != nil {
		return nil, fmt.Errorf("creating frame for %x: %w", client, err)
	}

	xproto.ReparentWindow(c.X, client, frame,
		canvas.BorderLeft, canvas.BorderTop)
	c.Listen(client, clientEventMask)

	// Click-to-focus: the first click lands on the manager, which
	// activates the frame and replays the event into the client.
	xproto.GrabButton(c.X, false, client,
		xproto.EventMaskButtonPress,
		xproto.GrabModeSync, xproto.GrabModeAsync,
		xproto.WindowNone, xproto.CursorNone,
		xproto.ButtonIndex1, xproto.ModMaskAny)

	title, _ := c.PropStr(client, "WM_NAME")
	if title == "" {
		title = "Untitled"
	}

	cv := &canvas.Canvas{
		Frame:     frame,
		Client:    client,
		Type:      canvas.Window,
		X:         fx,
		Y:         fy,
		Width:     frameW,
		Height:    frameH,
		MinWidth:  hints.MinWidth + canvas.BorderLeft + canvas.BorderRight,
		MinHeight: hints.MinHeight + canvas.BorderTop + canvas.BorderBottom,
		ResizeX:   true,
		ResizeY:   true,
		TitleBase: title,
		BgColor:   render.Color{Red: 0xAAAA, Green: 0xAAAA, Blue: 0xAAAA, Alpha: 0xFFFF},
	}
	if transientFor != 0 {
		cv.IsTransient = true
		cv.TransientFor = transientFor
		cv.Type = canvas.Dialog
	}

	surf, err := m.Ctx.NewSurfaces(frame, visual, frameW, frameH, false)
	if err != nil {
		xproto.DestroyWindow(c.X, frame)
		return nil, err
	}
	cv.Surf = surf

	m.Reg.Add(cv)

	xproto.MapWindow(c.X, client)
	xproto.MapWindow(c.X, frame)

	log.Debugf("managed %x in frame %x (%dx%d at %d,%d) %q",
		client, frame, frameW, frameH, fx, fy, title)
	return cv, nil
}

// Unmanage tears a canvas down: registry removal, surface release, icon
// release. Reparenting back is pointless when the client is already gone,
// so the caller says whether the client still exists.
func (m *Manager) Unmanage(cv *canvas.Canvas, clientAlive bool) {
	c := m.C
	m.Reg.Remove(cv)

	for _, ic := range cv.Icons {
		m.FreeIcon(ic)
	}
	cv.Icons = nil

	if cv.Surf != nil {
		cv.Surf.Free(m.Ctx)
		cv.Surf = nil
	}

	if clientAlive && cv.Client != 0 {
		xproto.ReparentWindow(c.X, cv.Client, c.Root, int16(cv.X), int16(cv.Y))
	}
	xproto.DestroyWindow(c.X, cv.Frame)
}

// FreeIcon releases an icon's pictures. The icon owns them exclusively.
func (m *Manager) FreeIcon(ic *icons.FileIcon) {
	m.Ctx.FreePicture(ic.NormalPic)
	m.Ctx.FreePicture(ic.SelectedPic)
	ic.NormalPic, ic.SelectedPic, ic.CurrentPic = 0, 0, 0
}

// MoveResize applies a new frame geometry, clamping to minimums, and
// resizes the client to match the inner area.
func (m *Manager) MoveResize(cv *canvas.Canvas, x, y, w, h int) {
	if w < cv.MinWidth {
		w = cv.MinWidth
	}
	if h < cv.MinHeight {
		h = cv.MinHeight
	}
	if !cv.ResizeX {
		w = cv.Width
	}
	if !cv.ResizeY {
		h = cv.Height
	}

	cv.X, cv.Y, cv.Width, cv.Height = x, y, w, h
	xproto.ConfigureWindow(m.C.X, cv.Frame,
		xproto.ConfigWindowX|xproto.ConfigWindowY|
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
		[]uint32{uint32(int32(x)), uint32(int32(y)), uint32(w), uint32(h)})
	if cv.Client != 0 {
		xproto.ConfigureWindow(m.C.X, cv.Client,
			xproto.ConfigWindowWidth|xproto.ConfigWindowHeight,
			[]uint32{uint32(cv.InnerWidth()), uint32(cv.InnerHeight())})
	}
}
