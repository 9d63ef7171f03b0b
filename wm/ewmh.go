package wm

// ewmh.go publishes the EWMH subset pagers and bars expect from a
// manager: the supporting-WM-check handshake, the supported-atoms list,
// the client list in managed order, and the active window. The rest of
// EWMH (struts, desktops, state juggling) is out of scope for a
// single-desktop manager.

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/xcore"
)

// wmName is what _NET_WM_NAME on the check window reports.
const wmName = "AmiWB"

// supportedAtoms is the advertised _NET_SUPPORTED list. _NET_CLOSE_WINDOW
// and _NET_WM_STATE are listed, but no code in the manager handles either.
var supportedAtoms = []string{
	"_NET_SUPPORTED",
	"_NET_SUPPORTING_WM_CHECK",
	"_NET_WM_NAME",
	"_NET_CLIENT_LIST",
	"_NET_ACTIVE_WINDOW",
	"_NET_CLOSE_WINDOW",
	"_NET_WM_STATE",
}

// Ewmh carries the check window.
type Ewmh struct {
	C     *xcore.Conn
	Check xproto.Window
}

// InitEwmh creates the supporting-WM-check window and installs the root
// properties.
func InitEwmh(c *xcore.Conn) (*Ewmh, error) {
	check, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil, err
	}
	xproto.CreateWindow(c.X, 0, check, c.Root, -1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, 0, nil)

	e := &Ewmh{C: c, Check: check}

	// The handshake: the property points at the check window from both
	// the root and the check window itself.
	c.ChangeProp32(c.Root, "_NET_SUPPORTING_WM_CHECK", "WINDOW", uint32(check))
	c.ChangeProp32(check, "_NET_SUPPORTING_WM_CHECK", "WINDOW", uint32(check))
	c.ChangePropStr(check, "_NET_WM_NAME", "UTF8_STRING", wmName)

	atoms := make([]uint32, len(supportedAtoms))
	for i, name := range supportedAtoms {
		atoms[i] = uint32(c.Atom(name))
	}
	c.ChangeProp32(c.Root, "_NET_SUPPORTED", "ATOM", atoms...)
	return e, nil
}

// UpdateClientList republishes _NET_CLIENT_LIST from the registry's
// creation order. Call after every manage and unmanage.
func (e *Ewmh) UpdateClientList(reg *canvas.Registry) {
	var wins []uint32
	for _, cv := range reg.All() {
		if cv.Client != 0 {
			wins = append(wins, uint32(cv.Client))
		}
	}
	e.C.ChangeProp32(e.C.Root, "_NET_CLIENT_LIST", "WINDOW", wins...)
}

// SetActiveWindow republishes _NET_ACTIVE_WINDOW. A nil canvas (nothing
// focused) publishes None.
func (e *Ewmh) SetActiveWindow(cv *canvas.Canvas) {
	var win uint32
	if cv != nil && cv.Client != 0 {
		win = uint32(cv.Client)
	}
	e.C.ChangeProp32(e.C.Root, "_NET_ACTIVE_WINDOW", "WINDOW", win)
}

// Free destroys the check window at shutdown so a restart can hand the
// handshake over cleanly.
func (e *Ewmh) Free() {
	xproto.DestroyWindow(e.C.X, e.Check)
}
