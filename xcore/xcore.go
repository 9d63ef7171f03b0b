/*
Package xcore owns the X connection state shared by every subsystem: the
xgb connection itself, the root window and screen, the atom cache, a
scratch GC, and the restart flag that quiets expected errors during
shutdown. A *Conn is passed explicitly to everything that talks to X;
there is no ambient connection.
*/
package xcore

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
)

// MaxReqSize is the largest X request we'll issue without splitting.
// Anything bigger (image uploads, mostly) must be chunked.
const MaxReqSize = 1 << 16 * 4

// Conn is the per-process X state.
type Conn struct {
	X      *xgb.Conn
	Setup  *xproto.SetupInfo
	Screen *xproto.ScreenInfo
	Root   xproto.Window

	atoms     map[string]xproto.Atom
	atomNames map[xproto.Atom]string

	gc    xproto.Gcontext
	gc32  xproto.Gcontext
	gc32p xproto.Pixmap

	restarting bool
}

// Dial connects to the display named in $DISPLAY (or the argument when
// non-empty) and primes the shared state.
func Dial(display string) (*Conn, error) {
	var x *xgb.Conn
	var err error
	if display != "" {
		x, err = xgb.NewConnDisplay(display)
	} else {
		x, err = xgb.NewConn()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot open display: %w", err)
	}

	setup := xproto.Setup(x)
	if setup == nil || len(setup.Roots) == 0 {
		x.Close()
		return nil, fmt.Errorf("could not parse X setup info")
	}
	screen := setup.DefaultScreen(x)

	c := &Conn{
		X:         x,
		Setup:     setup,
		Screen:    screen,
		Root:      screen.Root,
		atoms:     make(map[string]xproto.Atom, 64),
		atomNames: make(map[xproto.Atom]string, 64),
	}

	gc, err := xproto.NewGcontextId(x)
	if err != nil {
		x.Close()
		return nil, err
	}
	xproto.CreateGC(x, gc, xproto.Drawable(c.Root), xproto.GcForeground,
		[]uint32{screen.WhitePixel})
	c.gc = gc

	return c, nil
}

// Close shuts the connection down.
func (c *Conn) Close() {
	c.X.Close()
}

// GC returns the scratch graphics context on the root drawable.
func (c *Conn) GC() xproto.Gcontext {
	return c.gc
}

// GC32 returns a graphics context valid for depth-32 drawables, creating
// it (and a 1x1 anchor pixmap) on first use. Depth-32 pixmaps can't share
// the root GC — X requires matching depths.
func (c *Conn) GC32() xproto.Gcontext {
	if c.gc32 != 0 {
		return c.gc32
	}
	pid, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return c.gc
	}
	xproto.CreatePixmap(c.X, 32, pid, xproto.Drawable(c.Root), 1, 1)
	gc, err := xproto.NewGcontextId(c.X)
	if err != nil {
		xproto.FreePixmap(c.X, pid)
		return c.gc
	}
	xproto.CreateGC(c.X, gc, xproto.Drawable(pid), 0, nil)
	c.gc32p = pid
	c.gc32 = gc
	return c.gc32
}

// SetRestarting flips the shutdown flag; while set, expected X errors on
// dying windows are not logged.
func (c *Conn) SetRestarting(v bool) {
	c.restarting = v
}

// Restarting reports the shutdown flag.
func (c *Conn) Restarting() bool {
	return c.restarting
}

// Atom interns name, caching in both directions. A failed intern is
// reported on stderr and yields atom 0.
func (c *Conn) Atom(name string) xproto.Atom {
	if a, ok := c.atoms[name]; ok {
		return a
	}
	reply, err := xproto.InternAtom(c.X, false, uint16(len(name)), name).Reply()
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: interning atom %q: %v\n", name, err)
		return 0
	}
	c.atoms[name] = reply.Atom
	c.atomNames[reply.Atom] = name
	return reply.Atom
}

// AtomName resolves an atom id back to its name, consulting the cache
// first.
func (c *Conn) AtomName(a xproto.Atom) string {
	if n, ok := c.atomNames[a]; ok {
		return n
	}
	reply, err := xproto.GetAtomName(c.X, a).Reply()
	if err != nil {
		return ""
	}
	name := reply.Name
	c.atoms[name] = a
	c.atomNames[a] = name
	return name
}

// Listen ORs the given event masks onto win.
func (c *Conn) Listen(win xproto.Window, masks ...uint32) {
	var mask uint32
	for _, m := range masks {
		mask |= m
	}
	xproto.ChangeWindowAttributes(c.X, win, xproto.CwEventMask, []uint32{mask})
}

// Sync forces a round trip so queued requests hit the server.
func (c *Conn) Sync() {
	xproto.GetInputFocus(c.X).Reply()
}

// IgnorableError reports whether an X error is one of the kinds expected
// when a window dies between our request and its delivery. These are
// routine during window closes and teardown.
func IgnorableError(err error) bool {
	switch err.(type) {
	case xproto.WindowError, xproto.MatchError, xproto.DrawableError:
		return true
	case *xproto.WindowError, *xproto.MatchError, *xproto.DrawableError:
		return true
	}
	return false
}
