package wm

// transient.go isolates the transient-dialog accommodations behind a
// policy type, so a future toolkit with a different unmap pattern gets
// its own policy instead of more special cases in the router.
//
// Two behaviors live here, both preserved exactly from long observation
// of real toolkits:
//
//   - Re-center on every MapNotify. GTK and Qt re-assert their own
//     coordinates after mapping, so a single MoveWindow at manage time
//     is not enough; the move is forced on every map even when the
//     position already looks right. This overrides client-specified
//     coordinates. Intentional policy, not an accident.
//
//   - The three-unmap rule. GTK file choosers unmap themselves a few
//     times while rebuilding their widget tree. After exactly three
//     self-unmaps with no intervening destroy, the frame is hidden and
//     focus returns to the parent; the next map resets the counter and
//     re-centers.

import (
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/xcore"
)

// HideAfterUnmaps is the self-unmap count that hides the dialog.
const HideAfterUnmaps = 3

// TransientPolicy implements the workaround set for the toolkits we know.
type TransientPolicy struct {
	C *xcore.Conn
}

// NewTransientPolicy builds the default policy.
func NewTransientPolicy(c *xcore.Conn) *TransientPolicy {
	return &TransientPolicy{C: c}
}

// OnMap handles MapNotify for a transient canvas: reset the unmap
// counter and force the frame back to center.
func (p *TransientPolicy) OnMap(cv *canvas.Canvas) {
	if !cv.IsTransient {
		return
	}
	cv.ConsecutiveUnmaps = 0
	p.Center(cv)
}

// Center moves the frame to the screen center and keeps the client pinned
// at the frame inset.
func (p *TransientPolicy) Center(cv *canvas.Canvas) {
	c := p.C
	cx := (int(c.Screen.WidthInPixels) - cv.Width) / 2
	cy := (int(c.Screen.HeightInPixels) - cv.Height) / 2
	cv.X, cv.Y = cx, cy
	xproto.ConfigureWindow(c.X, cv.Frame,
		xproto.ConfigWindowX|xproto.ConfigWindowY,
		[]uint32{uint32(int32(cx)), uint32(int32(cy))})
	if cv.Client != 0 {
		xproto.ConfigureWindow(c.X, cv.Client,
			xproto.ConfigWindowX|xproto.ConfigWindowY,
			[]uint32{canvas.BorderLeft, canvas.BorderTop})
	}
}

// OnUnmap handles UnmapNotify for a transient canvas. Returns true when
// the policy decided to hide the frame (the caller then restores focus to
// the parent).
func (p *TransientPolicy) OnUnmap(cv *canvas.Canvas) bool {
	if !cv.IsTransient {
		return false
	}
	cv.ConsecutiveUnmaps++
	if cv.ConsecutiveUnmaps < HideAfterUnmaps {
		return false
	}
	log.Debugf("transient %x self-unmapped %d times, hiding frame",
		cv.Client, cv.ConsecutiveUnmaps)
	xproto.UnmapWindow(p.C.X, cv.Frame)
	cv.ConsecutiveUnmaps = 0
	return true
}
