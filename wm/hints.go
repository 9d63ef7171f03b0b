/*
Package wm wraps mapped clients in managed frames and keeps ICCCM
conversations honest: size hints, WM_HINTS, protocols, transient
relationships, and the workarounds real toolkits force on a reparenting
manager.
*/
package wm

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/xcore"
)

// WM_NORMAL_HINTS flag bits.
const (
	SizeHintUSPosition = 1 << 0
	SizeHintUSSize     = 1 << 1
	SizeHintPPosition  = 1 << 2
	SizeHintPSize      = 1 << 3
	SizeHintPMinSize   = 1 << 4
	SizeHintPMaxSize   = 1 << 5
	SizeHintPResizeInc = 1 << 6
	SizeHintPAspect    = 1 << 7
	SizeHintPBaseSize  = 1 << 8
	SizeHintPWinGravity = 1 << 9
)

// NormalHints is the decoded WM_NORMAL_HINTS property.
type NormalHints struct {
	Flags      uint32
	X, Y       int
	Width      int
	Height     int
	MinWidth   int
	MinHeight  int
	MaxWidth   int
	MaxHeight  int
	WidthInc   int
	HeightInc  int
	BaseWidth  int
	BaseHeight int
}

// ReadNormalHints fetches and decodes WM_NORMAL_HINTS. Missing or
// malformed hints come back as the zero value, which imposes nothing.
func ReadNormalHints(c *xcore.Conn, win xproto.Window) NormalHints {
	var h NormalHints
	reply, err := c.GetProp(win, "WM_NORMAL_HINTS")
	if err != nil || reply.Format != 32 || len(reply.Value) < 18*4 {
		return h
	}
	v := reply.Value
	field := func(i int) int { return int(int32(xcore.Get32(v[i*4:]))) }
	h.Flags = xcore.Get32(v)
	h.X, h.Y = field(1), field(2)
	h.Width, h.Height = field(3), field(4)
	h.MinWidth, h.MinHeight = field(5), field(6)
	h.MaxWidth, h.MaxHeight = field(7), field(8)
	h.WidthInc, h.HeightInc = field(9), field(10)
	h.BaseWidth, h.BaseHeight = field(15), field(16)
	return h
}

// WM_HINTS flag bits (the subset the manager reads).
const (
	HintInput = 1 << 0
	HintState = 1 << 1
)

// Hints is the decoded WM_HINTS property.
type Hints struct {
	Flags        uint32
	Input        bool
	InitialState int
}

// ReadHints fetches and decodes WM_HINTS.
func ReadHints(c *xcore.Conn, win xproto.Window) Hints {
	var h Hints
	reply, err := c.GetProp(win, "WM_HINTS")
	if err != nil || reply.Format != 32 || len(reply.Value) < 8 {
		h.Input = true
		return h
	}
	v := reply.Value
	h.Flags = xcore.Get32(v)
	h.Input = h.Flags&HintInput == 0 || xcore.Get32(v[4:]) != 0
	if h.Flags&HintState != 0 && len(v) >= 12 {
		h.InitialState = int(xcore.Get32(v[8:]))
	}
	return h
}

// TransientFor reads WM_TRANSIENT_FOR; zero when absent.
func TransientFor(c *xcore.Conn, win xproto.Window) xproto.Window {
	w, err := c.PropWindow(win, "WM_TRANSIENT_FOR")
	if err != nil {
		return 0
	}
	return w
}

// Protocols lists the client's WM_PROTOCOLS atom names.
func Protocols(c *xcore.Conn, win xproto.Window) []string {
	atoms, err := c.PropAtoms(win, "WM_PROTOCOLS")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(atoms))
	for _, a := range atoms {
		names = append(names, c.AtomName(a))
	}
	return names
}

// SupportsProtocol reports whether the client advertises the named
// protocol.
func SupportsProtocol(c *xcore.Conn, win xproto.Window, name string) bool {
	for _, p := range Protocols(c, win) {
		if p == name {
			return true
		}
	}
	return false
}

// SendProtocol delivers a WM_PROTOCOLS client message (WM_DELETE_WINDOW,
// WM_TAKE_FOCUS).
func SendProtocol(c *xcore.Conn, win xproto.Window, name string, t xproto.Timestamp) {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: win,
		Type:   c.Atom("WM_PROTOCOLS"),
		Data: xproto.ClientMessageDataUnionData32New([]uint32{
			uint32(c.Atom(name)), uint32(t), 0, 0, 0,
		}),
	}
	xproto.SendEvent(c.X, false, win, xproto.EventMaskNoEvent, string(ev.Bytes()))
}

// CloseClient asks the client to go away politely when it speaks ICCCM,
// or destroys it outright when it doesn't.
func CloseClient(c *xcore.Conn, win xproto.Window, t xproto.Timestamp) {
	if SupportsProtocol(c, win, "WM_DELETE_WINDOW") {
		SendProtocol(c, win, "WM_DELETE_WINDOW", t)
		return
	}
	xproto.DestroyWindow(c.X, win)
}

// Clamp applies min/max size hints to a desired client size.
func (h NormalHints) Clamp(w, hgt int) (int, int) {
	if h.Flags&SizeHintPMinSize != 0 {
		if h.MinWidth > 0 && w < h.MinWidth {
			w = h.MinWidth
		}
		if h.MinHeight > 0 && hgt < h.MinHeight {
			hgt = h.MinHeight
		}
	}
	if h.Flags&SizeHintPMaxSize != 0 {
		if h.MaxWidth > 0 && w > h.MaxWidth {
			w = h.MaxWidth
		}
		if h.MaxHeight > 0 && hgt > h.MaxHeight {
			hgt = h.MaxHeight
		}
	}
	if w < 1 {
		w = 1
	}
	if hgt < 1 {
		hgt = 1
	}
	return w, hgt
}
