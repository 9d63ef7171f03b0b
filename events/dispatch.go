package events

// dispatch.go is the main loop. One goroutine pumps X events into a
// channel; the dispatcher selects over that channel, the frame timer, and
// a coarse tick. X events always drain to completion before the frame
// timer is serviced, so input is never starved by rendering. The 1 Hz
// block (clock, drives, log cap) runs after both, and the non-blocking
// polls (progress pipes, directory sizing, autoscroll) run on every
// iteration so a flood of X traffic can't starve a child pipe.

import (
	"os/exec"
	"time"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/damage"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/comp"
	"github.com/nsklaus/amiwb/config"
	"github.com/nsklaus/amiwb/wblog"
	"github.com/nsklaus/amiwb/wm"
	"github.com/nsklaus/amiwb/xcore"
)

// XdndHandler is the drag-and-drop state machine.
type XdndHandler interface {
	HandleClientMessage(ev xproto.ClientMessageEvent) bool
	HandleSelectionNotify(ev xproto.SelectionNotifyEvent)
	HandleSelectionRequest(ev xproto.SelectionRequestEvent) bool
}

// Dispatcher wires the subsystems to the event stream.
type Dispatcher struct {
	C      *xcore.Conn
	Cfg    *config.Config
	Reg    *canvas.Registry
	Focus  *canvas.Focus
	Router *Router
	WM     *wm.Manager
	Comp   *comp.Compositor
	Sched  *comp.Scheduler
	Keymap *Keymap

	Menu      MenuHandler
	Dialogs   DialogHandler
	Workbench WorkbenchHandler
	Windows   WindowHandler
	Xdnd      XdndHandler
	Ewmh      *wm.Ewmh

	// Wallpaper access for the paint pass.
	PaintFrame func()

	// Action hooks owned by main.
	OnQuit    func()
	OnRestart func()
	OnAction  func(config.Action, xproto.Timestamp)

	running  bool
	events   chan xgb.Event
	lastTick time.Time
}

// Start launches the X reader goroutine. Call once before Run.
func (d *Dispatcher) Start() {
	d.events = make(chan xgb.Event, 64)
	go func() {
		for {
			ev, err := d.C.X.WaitForEvent()
			if ev == nil && err == nil {
				close(d.events)
				return
			}
			if err != nil {
				if !xcore.IgnorableError(err) && !d.C.Restarting() && !wblog.Quiet() {
					log.Debugf("x error: %v", err)
				}
				continue
			}
			d.events <- ev
		}
	}()
}

// Run is the main loop; it returns when Quit is requested or the
// connection dies.
func (d *Dispatcher) Run() {
	d.running = true
	d.lastTick = time.Now()
	timeout := time.NewTimer(time.Second)
	defer timeout.Stop()

	for d.running {
		if !timeout.Stop() {
			select {
			case <-timeout.C:
			default:
			}
		}
		timeout.Reset(time.Second)

		select {
		case ev, ok := <-d.events:
			if !ok {
				log.Info("X connection closed, shutting down")
				return
			}
			d.route(ev)
			// Drain the burst before anything else gets a turn.
			d.drain()

		case _, ok := <-d.Sched.Ticks:
			if !ok {
				return
			}
			// X first, always.
			d.drain()
			d.Sched.ConsumeTimer()
			d.processFrame()

		case <-timeout.C:
			// Idle second; periodic work below.
		}

		now := time.Now()
		if now.Sub(d.lastTick) >= time.Second {
			d.Menu.TickClock()
			d.Workbench.PollDrives()
			d.Workbench.RefreshWatches()
			wblog.CheckCap()
			d.lastTick = now
		}

		// Per-iteration non-blocking polls. These run even during event
		// floods; that's the fairness guarantee progress dialogs rely on.
		d.Dialogs.CheckProgress()
		d.Workbench.CheckDirSizeJobs()
		d.Workbench.CheckAutoscroll()
	}
}

// Stop ends the loop after the current iteration.
func (d *Dispatcher) Stop() {
	d.running = false
}

// drain empties the queued X events without blocking.
func (d *Dispatcher) drain() {
	for d.running {
		select {
		case ev, ok := <-d.events:
			if !ok {
				d.running = false
				return
			}
			d.route(ev)
		default:
			return
		}
	}
}

// processFrame paints when anything is dirty and lets the scheduler
// re-arm if damage accumulated during the paint.
func (d *Dispatcher) processFrame() {
	if d.Comp.Dirty() && d.PaintFrame != nil {
		d.PaintFrame()
	}
	d.Sched.FramePainted()
}

// route sends one event to exactly one subsystem.
func (d *Dispatcher) route(ev xgb.Event) {
	switch e := ev.(type) {
	case xproto.ButtonPressEvent:
		d.onButtonPress(e)
	case xproto.ButtonReleaseEvent:
		d.onButtonRelease(e)
	case xproto.MotionNotifyEvent:
		d.onMotion(e)
	case xproto.KeyPressEvent:
		d.onKeyPress(e)
	case xproto.MapRequestEvent:
		d.onMapRequest(e)
	case xproto.ConfigureRequestEvent:
		d.WM.HandleConfigureRequest(e)
	case xproto.ConfigureNotifyEvent:
		d.onConfigureNotify(e)
	case xproto.MapNotifyEvent:
		d.onMapNotify(e)
	case xproto.UnmapNotifyEvent:
		d.onUnmapNotify(e)
	case xproto.DestroyNotifyEvent:
		d.onDestroyNotify(e)
	case xproto.PropertyNotifyEvent:
		d.onPropertyNotify(e)
	case xproto.ClientMessageEvent:
		d.onClientMessage(e)
	case xproto.ExposeEvent:
		d.onExpose(e)
	case xproto.SelectionNotifyEvent:
		d.Xdnd.HandleSelectionNotify(e)
	case xproto.SelectionRequestEvent:
		d.Xdnd.HandleSelectionRequest(e)
	case xproto.MappingNotifyEvent:
		if km, err := LoadKeymap(d.C); err == nil {
			*d.Keymap = *km
		}
	case damage.NotifyEvent:
		if d.Comp.HandleDamage(e) {
			d.Sched.ScheduleFrame()
		}
	}
}

func (d *Dispatcher) onButtonPress(e xproto.ButtonPressEvent) {
	// A managed client got the press first through our sync grab:
	// activate, then replay the click into the client.
	if cv := d.Reg.FindByClient(e.Event); cv != nil {
		d.Focus.Raise(cv)
		d.Focus.SetActive(cv, e.Time)
		xproto.AllowEvents(d.C.X, xproto.AllowReplayPointer, e.Time)
		d.Router.SetPressTarget(cv.Frame)
		return
	}

	cv, x, y, ok := d.Router.Resolve(e.Event, int(e.EventX), int(e.EventY))
	if !ok || cv == nil {
		return
	}

	// Desktop presses may really belong to a window underneath.
	if cv.Type == canvas.Desktop {
		if under := d.Router.RerouteFromDesktop(int(e.RootX), int(e.RootY)); under != nil {
			fx, fy, ok := d.C.TranslateCoords(d.C.Root, under.Frame, int(e.RootX), int(e.RootY))
			if !ok {
				return
			}
			cv, x, y = under, fx, fy
		}
	}

	d.Router.SetPressTarget(cv.Frame)

	switch cv.Type {
	case canvas.Menu:
		d.Menu.HandlePress(cv, x, y, byte(e.Detail), e.Time)
	case canvas.Window, canvas.Dialog:
		d.Focus.Raise(cv)
		d.Focus.SetActive(cv, e.Time)
		if !d.Dialogs.HandlePress(cv, x, y, byte(e.Detail), e.Time) {
			if cv.Path != "" {
				d.Workbench.HandlePress(cv, x, y, byte(e.Detail), e.Time)
			} else {
				d.Windows.HandlePress(cv, x, y, byte(e.Detail), e.Time)
			}
		}
	case canvas.Desktop:
		d.Workbench.HandlePress(cv, x, y, byte(e.Detail), e.Time)
	}
}

func (d *Dispatcher) onButtonRelease(e xproto.ButtonReleaseEvent) {
	defer d.Router.ClearPressTarget()

	cv, x, y, ok := d.resolveLocked(e.Event, int(e.EventX), int(e.EventY),
		int(e.RootX), int(e.RootY))
	if !ok || cv == nil {
		return
	}
	switch cv.Type {
	case canvas.Menu:
		d.Menu.HandleRelease(cv, x, y)
	case canvas.Window, canvas.Dialog:
		if !d.Dialogs.HandleRelease(cv, x, y) {
			if cv.Path != "" {
				d.Workbench.HandleRelease(cv, x, y, e.Time)
			} else {
				d.Windows.HandleRelease(cv, x, y)
			}
		}
	case canvas.Desktop:
		d.Workbench.HandleRelease(cv, x, y, e.Time)
	}
}

func (d *Dispatcher) onMotion(e xproto.MotionNotifyEvent) {
	cv, x, y, ok := d.resolveLocked(e.Event, int(e.EventX), int(e.EventY),
		int(e.RootX), int(e.RootY))
	if !ok || cv == nil {
		return
	}
	switch cv.Type {
	case canvas.Menu:
		d.Menu.HandleMotion(cv, x, y)
	case canvas.Window, canvas.Dialog:
		if !d.Dialogs.HandleMotion(cv, x, y) {
			if cv.Path != "" {
				d.Workbench.HandleMotion(cv, x, y, e.State)
			} else {
				d.Windows.HandleMotion(cv, x, y, e.State)
			}
		}
	case canvas.Desktop:
		d.Workbench.HandleMotion(cv, x, y, e.State)
	}
}

// resolveLocked prefers the press target; without one it resolves fresh.
func (d *Dispatcher) resolveLocked(win xproto.Window, ex, ey, rootX, rootY int) (*canvas.Canvas, int, int, bool) {
	if d.Router.PressTarget() != 0 {
		return d.Router.TranslateToTarget(rootX, rootY)
	}
	return d.Router.Resolve(win, ex, ey)
}

func (d *Dispatcher) onKeyPress(e xproto.KeyPressEvent) {
	mods := StripLocks(e.State)
	sym := d.Keymap.Lookup(e.Detail, 0)

	// Global shortcut table first; the manager owns these keys.
	if act := config.LookupShortcut(sym, mods); act != config.ActNone {
		d.runAction(act, e.Time)
		return
	}
	// Then the active dialog, then the menu subsystem.
	shiftSym := d.Keymap.Lookup(e.Detail, e.State)
	if d.Dialogs.HandleKey(shiftSym, mods) {
		return
	}
	d.Menu.HandleKey(shiftSym, mods)
}

// runAction executes a shortcut table entry.
func (d *Dispatcher) runAction(act config.Action, t xproto.Timestamp) {
	switch act {
	case config.ActQuit:
		if d.OnQuit != nil {
			d.OnQuit()
		}
	case config.ActRestart:
		if d.OnRestart != nil {
			d.OnRestart()
		}
	case config.ActCloseWindow:
		if cv := d.Focus.Active; cv != nil && cv.Client != 0 {
			wm.CloseClient(d.C, cv.Client, t)
		}
	case config.ActCycleNext:
		d.Focus.Cycle(1, t)
	case config.ActCyclePrev:
		d.Focus.Cycle(-1, t)
	case config.ActVolumeUp, config.ActVolumeDown, config.ActVolumeMute,
		config.ActBrightnessUp, config.ActBrightnessDown:
		if cmd := d.Cfg.MediaCommand(act); cmd != "" {
			runShell(cmd)
		}
	default:
		if d.OnAction != nil {
			d.OnAction(act, t)
		}
	}
}

// runShell fires a configured command without waiting on it.
func runShell(cmd string) {
	c := exec.Command("/bin/sh", "-c", cmd)
	if err := c.Start(); err != nil {
		log.Warnf("running %q: %v", cmd, err)
		return
	}
	go c.Wait()
}

func (d *Dispatcher) onMapRequest(e xproto.MapRequestEvent) {
	if cv := d.Reg.Find(e.Window); cv != nil {
		// A hidden canvas remapping.
		xproto.MapWindow(d.C.X, cv.Client)
		xproto.MapWindow(d.C.X, cv.Frame)
		return
	}
	attrs, err := xproto.GetWindowAttributes(d.C.X, e.Window).Reply()
	if err != nil {
		return
	}
	if attrs.OverrideRedirect {
		xproto.MapWindow(d.C.X, e.Window)
		return
	}
	cv, err := d.WM.Manage(e.Window)
	if err != nil {
		log.Debugf("managing %x: %v", e.Window, err)
		xproto.MapWindow(d.C.X, e.Window)
		return
	}
	d.Comp.TrackCanvas(cv)
	if d.Focus.RedrawFn != nil {
		d.Focus.RedrawFn(cv)
	}
	d.Focus.SetActive(cv, xproto.TimeCurrentTime)
	d.Menu.RegisterApp(e.Window)
	if d.Ewmh != nil {
		d.Ewmh.UpdateClientList(d.Reg)
	}
	d.Sched.ScheduleFrame()
}

func (d *Dispatcher) onConfigureNotify(e xproto.ConfigureNotifyEvent) {
	// Only our own frames matter; clients must use ConfigureRequest.
	cv := d.Reg.FindByWindow(e.Window)
	if cv == nil {
		if d.isOverride(e.Window) {
			d.Comp.UntrackOverride(e.Window)
			d.Comp.TrackOverride(e.Window)
			d.Sched.ScheduleFrame()
		}
		return
	}
	cv.X, cv.Y = int(e.X), int(e.Y)
	resized := int(e.Width) != cv.Width || int(e.Height) != cv.Height
	cv.Width, cv.Height = int(e.Width), int(e.Height)
	if resized && cv.Surf != nil {
		if d.WM.Ctx.EnsureSize(cv.Surf, cv.Width, cv.Height) {
			if d.Focus.RedrawFn != nil {
				d.Focus.RedrawFn(cv)
			}
		}
		cv.ClampScroll()
		cv.MarkAllDirty()
		d.Sched.ScheduleFrame()
	}
}

// isOverride probes whether the window is override-redirect.
func (d *Dispatcher) isOverride(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(d.C.X, win).Reply()
	return err == nil && attrs.OverrideRedirect
}

func (d *Dispatcher) onMapNotify(e xproto.MapNotifyEvent) {
	if e.OverrideRedirect {
		d.Comp.TrackOverride(e.Window)
		d.Sched.ScheduleFrame()
		return
	}
	cv := d.Reg.Find(e.Window)
	if cv == nil {
		return
	}
	if cv.IsTransient && e.Window == cv.Client {
		d.WM.Transients.OnMap(cv)
	}
	cv.MarkAllDirty()
	d.Sched.ScheduleFrame()
}

func (d *Dispatcher) onUnmapNotify(e xproto.UnmapNotifyEvent) {
	if d.Comp != nil {
		d.Comp.UntrackOverride(e.Window)
	}
	cv := d.Reg.FindByClient(e.Window)
	if cv == nil {
		return
	}
	if cv.IsTransient {
		if d.WM.Transients.OnUnmap(cv) {
			// Hidden after three self-unmaps; focus returns to the
			// parent.
			if parent := d.Reg.Find(cv.TransientFor); parent != nil {
				d.Focus.SetActive(parent, xproto.TimeCurrentTime)
			}
		}
		d.Sched.ScheduleFrame()
	}
}

func (d *Dispatcher) onDestroyNotify(e xproto.DestroyNotifyEvent) {
	d.Router.DropPressTargetIf(e.Window)
	d.Comp.UntrackOverride(e.Window)

	cv := d.Reg.Find(e.Window)
	if cv == nil {
		return
	}
	d.Router.DropPressTargetIf(cv.Frame)
	d.Comp.UntrackCanvas(cv)
	d.Dialogs.CanvasClosed(cv)
	d.Workbench.CanvasClosed(cv)
	if cv.Client != 0 {
		d.Menu.UnregisterApp(cv.Client)
	}
	d.Focus.DropIfActive(cv, xproto.TimeCurrentTime)
	d.WM.Unmanage(cv, false)
	if d.Ewmh != nil {
		d.Ewmh.UpdateClientList(d.Reg)
	}
	d.Comp.MarkDirty()
	d.Sched.ScheduleFrame()
}

func (d *Dispatcher) onPropertyNotify(e xproto.PropertyNotifyEvent) {
	name := d.C.AtomName(e.Atom)
	switch name {
	case "AMIWB_OPEN_DIRECTORY":
		if e.Window != d.C.Root || e.State != xproto.PropertyNewValue {
			return
		}
		path, err := d.C.PropStr(d.C.Root, name)
		if err == nil && path != "" {
			d.Workbench.OpenDirectory(path)
		}
		d.C.DeleteProp(d.C.Root, name)

	case "_AMIWB_TITLE_CHANGE":
		cv := d.Reg.FindByClient(e.Window)
		if cv == nil {
			return
		}
		if e.State == xproto.PropertyDelete {
			cv.SetTitleChange("")
		} else if s, err := d.C.PropStr(e.Window, name); err == nil {
			cv.SetTitleChange(s)
		}
		if d.Focus.RedrawFn != nil {
			d.Focus.RedrawFn(cv)
		}
		d.Sched.ScheduleFrame()

	case "_AMIWB_MENU_DATA", "_AMIWB_APP_TYPE":
		d.Menu.RegisterApp(e.Window)
		d.Sched.ScheduleFrame()

	case "_AMIWB_MENU_STATES":
		d.Menu.UpdateAppStates(e.Window)
		d.Sched.ScheduleFrame()

	case "WM_NAME":
		cv := d.Reg.FindByClient(e.Window)
		if cv == nil {
			return
		}
		if s, err := d.C.PropStr(e.Window, "WM_NAME"); err == nil && s != "" {
			cv.TitleBase = s
			if d.Focus.RedrawFn != nil {
				d.Focus.RedrawFn(cv)
			}
			d.Sched.ScheduleFrame()
		}
	}
}

func (d *Dispatcher) onClientMessage(e xproto.ClientMessageEvent) {
	if d.Xdnd.HandleClientMessage(e) {
		return
	}
	// WM_CHANGE_STATE iconify requests.
	if d.C.AtomName(e.Type) == "WM_CHANGE_STATE" && len(e.Data.Data32) > 0 &&
		e.Data.Data32[0] == 3 { // IconicState
		if cv := d.Reg.FindByClient(e.Window); cv != nil {
			if d.OnAction != nil {
				d.OnAction(config.ActIconify, xproto.TimeCurrentTime)
			}
		}
	}
}

func (d *Dispatcher) onExpose(e xproto.ExposeEvent) {
	if e.Count != 0 {
		return
	}
	cv := d.Reg.FindByWindow(e.Window)
	if cv == nil {
		return
	}
	if cv.Type == canvas.Dialog {
		d.Dialogs.HandleExpose(cv)
	} else if d.Focus.RedrawFn != nil {
		d.Focus.RedrawFn(cv)
	}
	cv.MarkDirty(xcore.Rect{X: int(e.X), Y: int(e.Y),
		Width: int(e.Width), Height: int(e.Height)})
	d.Sched.ScheduleFrame()
}
