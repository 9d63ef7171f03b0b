package canvas

// focus.go tracks the active canvas and implements the focus cycle.
// Activation redraws both titles (the checker colors differ between
// active and inactive) via the redraw callback and hands the X input
// focus to the client; raising is the separate Raise call, which the
// cycle and the callers make. Focus requests race window destruction, so
// the X call is checked and a failure is silently dropped.

import (
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/xcore"
)

// Focus tracks and moves the active canvas.
type Focus struct {
	C        *xcore.Conn
	Reg      *Registry
	Active   *Canvas
	RedrawFn func(*Canvas) // repaint hook, set by the shell
	OnChange func(*Canvas) // notification hook (EWMH active window)
}

// SetActive makes cv the active canvas. Passing nil just deactivates the
// current one. Time should come from the triggering event; zero means
// CurrentTime.
func (f *Focus) SetActive(cv *Canvas, t xproto.Timestamp) {
	if cv == f.Active {
		return
	}
	old := f.Active
	f.Active = cv

	if old != nil {
		old.Active = false
		if f.RedrawFn != nil {
			f.RedrawFn(old)
		}
	}
	if f.OnChange != nil {
		f.OnChange(cv)
	}
	if cv == nil {
		return
	}
	cv.Active = true
	if f.RedrawFn != nil {
		f.RedrawFn(cv)
	}

	target := cv.Client
	if target == 0 {
		target = cv.Frame
	}
	if t == 0 {
		t = xproto.TimeCurrentTime
	}
	// The window can be gone by the time the request lands; BadMatch and
	// BadWindow here are expected, not errors.
	err := xproto.SetInputFocusChecked(f.C.X, xproto.InputFocusParent, target, t).Check()
	if err != nil && !xcore.IgnorableError(err) && !f.C.Restarting() {
		log.Debugf("set input focus on %x: %v", target, err)
	}
}

// Raise lifts a canvas's frame to the top of the stacking order.
func (f *Focus) Raise(cv *Canvas) {
	xproto.ConfigureWindow(f.C.X, cv.Frame, xproto.ConfigWindowStackMode,
		[]uint32{xproto.StackModeAbove})
}

// Cycle activates the next (dir>0) or previous (dir<0) managed WINDOW
// canvas in creation order, raising it. Iconified windows are skipped.
func (f *Focus) Cycle(dir int, t xproto.Timestamp) {
	wins := f.Reg.ByType(Window)
	var visible []*Canvas
	for _, cv := range wins {
		if !cv.Iconified {
			visible = append(visible, cv)
		}
	}
	if len(visible) == 0 {
		return
	}

	idx := -1
	for i, cv := range visible {
		if cv == f.Active {
			idx = i
			break
		}
	}
	var next *Canvas
	if idx < 0 {
		next = visible[0]
	} else {
		n := len(visible)
		next = visible[((idx+dir)%n+n)%n]
	}
	f.Raise(next)
	f.SetActive(next, t)
}

// DropIfActive clears the active slot when cv dies while focused and
// falls back to the most recent remaining window.
func (f *Focus) DropIfActive(cv *Canvas, t xproto.Timestamp) {
	if f.Active != cv {
		return
	}
	f.Active = nil
	wins := f.Reg.ByType(Window)
	for i := len(wins) - 1; i >= 0; i-- {
		if wins[i] != cv && !wins[i].Iconified {
			f.SetActive(wins[i], t)
			return
		}
	}
}
