package xcore

// prop.go wraps the property requests: typed getters over GetProperty
// replies and the matching setters. Everything here is synchronous; the
// manager's property traffic is light.

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// GetProp fetches a property by name. The reply's Format is zero when the
// property doesn't exist, which is reported as an error so callers can't
// misread absent as empty.
func (c *Conn) GetProp(win xproto.Window, name string) (*xproto.GetPropertyReply, error) {
	reply, err := xproto.GetProperty(c.X, false, win, c.Atom(name),
		xproto.GetPropertyTypeAny, 0, (1<<32)-1).Reply()
	if err != nil {
		return nil, fmt.Errorf("property %q on %x: %w", name, win, err)
	}
	if reply.Format == 0 {
		return nil, fmt.Errorf("no property %q on window %x", name, win)
	}
	return reply, nil
}

// PropStr fetches an 8-bit string property.
func (c *Conn) PropStr(win xproto.Window, name string) (string, error) {
	reply, err := c.GetProp(win, name)
	if err != nil {
		return "", err
	}
	if reply.Format != 8 {
		return "", fmt.Errorf("property %q: expected format 8, got %d", name, reply.Format)
	}
	return string(reply.Value), nil
}

// PropWindow fetches a 32-bit window id property (WM_TRANSIENT_FOR and
// friends).
func (c *Conn) PropWindow(win xproto.Window, name string) (xproto.Window, error) {
	reply, err := c.GetProp(win, name)
	if err != nil {
		return 0, err
	}
	if reply.Format != 32 || len(reply.Value) < 4 {
		return 0, fmt.Errorf("property %q: expected format 32", name)
	}
	return xproto.Window(Get32(reply.Value)), nil
}

// PropAtoms fetches a 32-bit ATOM list property.
func (c *Conn) PropAtoms(win xproto.Window, name string) ([]xproto.Atom, error) {
	reply, err := c.GetProp(win, name)
	if err != nil {
		return nil, err
	}
	if reply.Format != 32 {
		return nil, fmt.Errorf("property %q: expected format 32", name)
	}
	atoms := make([]xproto.Atom, 0, reply.ValueLen)
	for v := reply.Value; len(v) >= 4; v = v[4:] {
		atoms = append(atoms, xproto.Atom(Get32(v)))
	}
	return atoms, nil
}

// ChangePropStr replaces a string property.
func (c *Conn) ChangePropStr(win xproto.Window, name, typ, value string) {
	xproto.ChangeProperty(c.X, xproto.PropModeReplace, win, c.Atom(name),
		c.Atom(typ), 8, uint32(len(value)), []byte(value))
}

// ChangeProp32 replaces a 32-bit property from ints.
func (c *Conn) ChangeProp32(win xproto.Window, name, typ string, data ...uint32) {
	buf := make([]byte, len(data)*4)
	for i, d := range data {
		Put32(buf[i*4:], d)
	}
	xproto.ChangeProperty(c.X, xproto.PropModeReplace, win, c.Atom(name),
		c.Atom(typ), 32, uint32(len(data)), buf)
}

// DeleteProp removes a property.
func (c *Conn) DeleteProp(win xproto.Window, name string) {
	xproto.DeleteProperty(c.X, win, c.Atom(name))
}

// Get16 extracts a 16-bit little-endian integer from a byte slice, X wire
// order.
func Get16(buf []byte) uint16 {
	return uint16(buf[0]) | uint16(buf[1])<<8
}

// Get32 extracts a 32-bit little-endian integer from a byte slice.
func Get32(buf []byte) uint32 {
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
}

// Put16 stores a 16-bit integer in X wire order.
func Put16(buf []byte, v uint16) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
}

// Put32 stores a 32-bit integer in X wire order.
func Put32(buf []byte, v uint32) {
	buf[0] = byte(v)
	buf[1] = byte(v >> 8)
	buf[2] = byte(v >> 16)
	buf[3] = byte(v >> 24)
}
