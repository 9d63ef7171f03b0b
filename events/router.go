/*
Package events is the single-threaded event core: the dispatcher that owns
the X event stream and the router that decides which subsystem sees each
event. Interaction routing is sticky: the window that received a button
press owns all motion and the release, no matter where the pointer goes.
*/
package events

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/xcore"
)

// Subsystem handlers. The dispatcher fans out through these; concrete
// implementations live in the menu, dialog and workbench packages and are
// wired at startup.

// MenuHandler is the menubar and its dropdowns.
type MenuHandler interface {
	HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp)
	HandleRelease(cv *canvas.Canvas, x, y int)
	HandleMotion(cv *canvas.Canvas, x, y int)
	HandleKey(keysym uint32, mods uint16) bool
	TickClock()
	RegisterApp(client xproto.Window)
	UpdateAppStates(client xproto.Window)
	UnregisterApp(client xproto.Window)
}

// DialogHandler hosts modal dialogs. Press/key handlers return false when
// the canvas isn't one of theirs so the router can fall through.
type DialogHandler interface {
	HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp) bool
	HandleRelease(cv *canvas.Canvas, x, y int) bool
	HandleMotion(cv *canvas.Canvas, x, y int) bool
	HandleKey(keysym uint32, mods uint16) bool
	HandleExpose(cv *canvas.Canvas)
	CheckProgress()
	CanvasClosed(cv *canvas.Canvas)
}

// WorkbenchHandler is the file-manager layer: desktop and directory
// windows.
type WorkbenchHandler interface {
	HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp)
	HandleRelease(cv *canvas.Canvas, x, y int, t xproto.Timestamp)
	HandleMotion(cv *canvas.Canvas, x, y int, state uint16)
	OpenDirectory(path string)
	CheckDirSizeJobs()
	CheckAutoscroll()
	PollDrives()
	RefreshWatches()
	CanvasClosed(cv *canvas.Canvas)
}

// WindowHandler is the frame furniture of ordinary windows: title drag,
// scroll arrows, resize grip, close.
type WindowHandler interface {
	HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp)
	HandleRelease(cv *canvas.Canvas, x, y int)
	HandleMotion(cv *canvas.Canvas, x, y int, state uint16)
}

// Router resolves events to canvases and enforces press-target locking.
type Router struct {
	C     *xcore.Conn
	Reg   *canvas.Registry
	Focus *canvas.Focus

	// pressTarget is the frame window holding the current interaction.
	// While set, motion and release retarget here regardless of X
	// delivery.
	pressTarget xproto.Window
}

// PressTarget exposes the locked window, 0 when idle.
func (r *Router) PressTarget() xproto.Window {
	return r.pressTarget
}

// SetPressTarget locks routing onto a frame.
func (r *Router) SetPressTarget(w xproto.Window) {
	r.pressTarget = w
}

// ClearPressTarget releases the lock.
func (r *Router) ClearPressTarget() {
	r.pressTarget = 0
}

// DropPressTargetIf clears the lock when the dying window held it. Every
// destroy path must call this.
func (r *Router) DropPressTargetIf(w xproto.Window) {
	if r.pressTarget == w {
		r.pressTarget = 0
	}
}

// Resolve maps an event window to its canvas: direct lookup first, then
// an ancestor walk bounded by the root. Coordinates are translated into
// the canvas's frame space; ok=false means the window disappeared
// mid-burst and routing must abort.
func (r *Router) Resolve(win xproto.Window, x, y int) (*canvas.Canvas, int, int, bool) {
	if cv := r.Reg.Find(win); cv != nil {
		if cv.Client == win {
			// Client coordinates shift by the frame inset.
			return cv, x + canvas.BorderLeft, y + canvas.BorderTop, true
		}
		return cv, x, y, true
	}

	// Ancestor walk: a press can land on a client's own subwindow.
	cur := win
	for cur != 0 && cur != r.C.Root {
		parent, ok := r.C.Parent(cur)
		if !ok {
			return nil, 0, 0, false
		}
		if cv := r.Reg.Find(parent); cv != nil {
			fx, fy, ok := r.C.TranslateCoords(win, cv.Frame, x, y)
			if !ok {
				return nil, 0, 0, false
			}
			return cv, fx, fy, true
		}
		cur = parent
	}
	return nil, 0, 0, true
}

// RerouteFromDesktop handles the desktop-behind-window case: the press
// resolved to the desktop, but a WINDOW canvas is under the pointer in
// stacking order. The topmost such window wins.
func (r *Router) RerouteFromDesktop(rootX, rootY int) *canvas.Canvas {
	children, ok := r.C.Children(r.C.Root)
	if !ok {
		return nil
	}
	// Children come bottom-to-top; iterate top-down.
	for i := len(children) - 1; i >= 0; i-- {
		cv := r.Reg.FindByWindow(children[i])
		if cv == nil || cv.Type != canvas.Window || cv.Iconified {
			continue
		}
		if cv.ContainsPoint(rootX, rootY) {
			return cv
		}
	}
	return nil
}

// TranslateToTarget maps root coordinates into press-target frame space.
func (r *Router) TranslateToTarget(rootX, rootY int) (*canvas.Canvas, int, int, bool) {
	cv := r.Reg.FindByWindow(r.pressTarget)
	if cv == nil {
		r.pressTarget = 0
		return nil, 0, 0, false
	}
	x, y, ok := r.C.TranslateCoords(r.C.Root, cv.Frame, rootX, rootY)
	if !ok {
		r.pressTarget = 0
		return nil, 0, 0, false
	}
	return cv, x, y, true
}
