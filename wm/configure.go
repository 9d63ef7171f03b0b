package wm

// configure.go answers ConfigureRequest. Managed clients get their wishes
// within the frame-inset constraints; unmanaged ones pass through
// untouched, which is the polite thing for windows we haven't framed yet.

import (
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/canvas"
)

// HandleConfigureRequest services one request.
func (m *Manager) HandleConfigureRequest(ev xproto.ConfigureRequestEvent) {
	cv := m.Reg.FindByClient(ev.Window)
	if cv == nil {
		m.passThrough(ev)
		return
	}

	x, y, w, h := cv.X, cv.Y, cv.Width, cv.Height
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		x = int(ev.X)
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		y = int(ev.Y)
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		w = int(ev.Width) + canvas.BorderLeft + canvas.BorderRight
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		h = int(ev.Height) + canvas.BorderTop + canvas.BorderBottom
	}

	// Transients don't get to reposition themselves; the policy recenters
	// them anyway, so honoring x/y here would only cause a visible jump.
	if cv.IsTransient {
		x, y = cv.X, cv.Y
	}

	m.MoveResize(cv, x, y, w, h)

	// The client needs a synthetic ConfigureNotify carrying its new inner
	// geometry in root coordinates.
	notify := xproto.ConfigureNotifyEvent{
		Event:  ev.Window,
		Window: ev.Window,
		X:      int16(x + canvas.BorderLeft),
		Y:      int16(y + canvas.BorderTop),
		Width:  uint16(cv.InnerWidth()),
		Height: uint16(cv.InnerHeight()),
	}
	xproto.SendEvent(m.C.X, false, ev.Window,
		xproto.EventMaskStructureNotify, string(notify.Bytes()))
}

// passThrough grants an unmanaged window exactly what it asked for.
func (m *Manager) passThrough(ev xproto.ConfigureRequestEvent) {
	var vals []uint32
	var mask uint16
	if ev.ValueMask&xproto.ConfigWindowX != 0 {
		mask |= xproto.ConfigWindowX
		vals = append(vals, uint32(int32(ev.X)))
	}
	if ev.ValueMask&xproto.ConfigWindowY != 0 {
		mask |= xproto.ConfigWindowY
		vals = append(vals, uint32(int32(ev.Y)))
	}
	if ev.ValueMask&xproto.ConfigWindowWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		vals = append(vals, uint32(ev.Width))
	}
	if ev.ValueMask&xproto.ConfigWindowHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		vals = append(vals, uint32(ev.Height))
	}
	if ev.ValueMask&xproto.ConfigWindowBorderWidth != 0 {
		mask |= xproto.ConfigWindowBorderWidth
		vals = append(vals, uint32(ev.BorderWidth))
	}
	if ev.ValueMask&xproto.ConfigWindowSibling != 0 {
		mask |= xproto.ConfigWindowSibling
		vals = append(vals, uint32(ev.Sibling))
	}
	if ev.ValueMask&xproto.ConfigWindowStackMode != 0 {
		mask |= xproto.ConfigWindowStackMode
		vals = append(vals, uint32(ev.StackMode))
	}
	if mask != 0 {
		xproto.ConfigureWindow(m.C.X, ev.Window, mask, vals)
	}
}
