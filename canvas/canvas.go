/*
Package canvas defines the universal on-screen surface and its registry.

A Canvas is anything the manager draws: the desktop, workbench windows,
client frames, dialogs, the menubar. One frame window, at most one
reparented client, one set of render surfaces, and — for workbench
canvases — the icons living on it. The registry is the single owner; every
lookup and every teardown goes through it.
*/
package canvas

import (
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"

	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/icons"
	"github.com/nsklaus/amiwb/xcore"
)

// Type tags the canvas kinds. Dispatch on this is exhaustive at every
// switch site: router, painter, destructor.
type Type int

const (
	Desktop Type = iota
	Window
	Dialog
	Menu
)

func (t Type) String() string {
	switch t {
	case Desktop:
		return "desktop"
	case Window:
		return "window"
	case Dialog:
		return "dialog"
	case Menu:
		return "menu"
	}
	return "?"
}

// Frame insets: the decoration chrome around a reparented client.
const (
	BorderLeft   = 8
	BorderRight  = 8
	BorderTop    = rdr.TitlebarHeight
	BorderBottom = 8
	MenubarH     = 20
)

// Canvas is one managed surface.
type Canvas struct {
	Frame  xproto.Window // manager-owned frame window
	Client xproto.Window // reparented client, 0 for manager-drawn canvases
	Type   Type

	X, Y          int
	Width, Height int
	MinWidth      int
	MinHeight     int
	ResizeX       bool
	ResizeY       bool

	// Workbench content.
	Path       string
	View       icons.ViewMode
	ShowHidden bool
	ScrollX    int
	ScrollY    int
	MaxScrollX int
	MaxScrollY int
	ContentW   int
	ContentH   int
	Icons      []*icons.FileIcon

	Surf    *rdr.Surfaces
	BgColor render.Color

	TitleBase   string
	TitleChange string // dynamic title via _AMIWB_TITLE_CHANGE; "" = unset

	DisableScrollbars bool
	ArrowUpArmed      bool
	ArrowDownArmed    bool
	ArrowLeftArmed    bool
	ArrowRightArmed   bool
	GripArmed         bool

	IsTransient      bool
	TransientFor     xproto.Window
	ConsecutiveUnmaps int
	CleanupScheduled bool

	Active    bool
	Iconified bool

	// Compositor state.
	Damage     damage.Damage
	Dirty      xcore.Rect
	DirtyWhole bool
}

// Title returns the displayed title: the dynamic override when a client
// set one, the base otherwise.
func (cv *Canvas) Title() string {
	if cv.TitleChange != "" {
		return cv.TitleChange
	}
	return cv.TitleBase
}

// SetTitleChange installs (or clears, with "") the dynamic title. The
// canvas owns the string; replacement drops the old one.
func (cv *Canvas) SetTitleChange(s string) {
	cv.TitleChange = s
}

// InnerWidth and InnerHeight are the content area inside the chrome.
func (cv *Canvas) InnerWidth() int {
	if cv.Type == Desktop || cv.Type == Menu {
		return cv.Width
	}
	w := cv.Width - BorderLeft - BorderRight
	if w < 0 {
		w = 0
	}
	return w
}

func (cv *Canvas) InnerHeight() int {
	if cv.Type == Desktop || cv.Type == Menu {
		return cv.Height
	}
	h := cv.Height - BorderTop - BorderBottom
	if h < 0 {
		h = 0
	}
	return h
}

// ClampScroll recomputes the scroll bounds from content size and clamps
// the offsets; the cursor never scrolls past content.
func (cv *Canvas) ClampScroll() {
	cv.MaxScrollX = cv.ContentW - cv.InnerWidth()
	if cv.MaxScrollX < 0 {
		cv.MaxScrollX = 0
	}
	cv.MaxScrollY = cv.ContentH - cv.InnerHeight()
	if cv.MaxScrollY < 0 {
		cv.MaxScrollY = 0
	}
	if cv.ScrollX > cv.MaxScrollX {
		cv.ScrollX = cv.MaxScrollX
	}
	if cv.ScrollX < 0 {
		cv.ScrollX = 0
	}
	if cv.ScrollY > cv.MaxScrollY {
		cv.ScrollY = cv.MaxScrollY
	}
	if cv.ScrollY < 0 {
		cv.ScrollY = 0
	}
}

// MarkDirty accumulates a damaged rectangle for the next composite.
func (cv *Canvas) MarkDirty(r xcore.Rect) {
	if cv.DirtyWhole {
		return
	}
	cv.Dirty = cv.Dirty.Union(r)
}

// MarkAllDirty flags the whole canvas for recomposite.
func (cv *Canvas) MarkAllDirty() {
	cv.DirtyWhole = true
	cv.Dirty = xcore.Rect{}
}

// TakeDirty consumes and clears the damage accumulation, returning the
// region to composite and whether anything was dirty.
func (cv *Canvas) TakeDirty() (xcore.Rect, bool) {
	if cv.DirtyWhole {
		cv.DirtyWhole = false
		cv.Dirty = xcore.Rect{}
		return xcore.Rect{X: 0, Y: 0, Width: cv.Width, Height: cv.Height}, true
	}
	if cv.Dirty.Empty() {
		return xcore.Rect{}, false
	}
	r := cv.Dirty
	cv.Dirty = xcore.Rect{}
	return r, true
}

// ContainsPoint tests a root-space point against the canvas rectangle.
func (cv *Canvas) ContainsPoint(x, y int) bool {
	return x >= cv.X && x < cv.X+cv.Width && y >= cv.Y && y < cv.Y+cv.Height
}
