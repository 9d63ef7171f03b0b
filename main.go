// Command amiwb is an Amiga Workbench style window manager and desktop
// shell for X11: framed client windows, a global menubar, spatial
// workbench windows populated from Amiga .info icons, a damage-driven
// compositor, and a single-threaded event loop tying it all together.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/comp"
	"github.com/nsklaus/amiwb/config"
	"github.com/nsklaus/amiwb/dialog"
	"github.com/nsklaus/amiwb/events"
	"github.com/nsklaus/amiwb/fileops"
	"github.com/nsklaus/amiwb/icons"
	"github.com/nsklaus/amiwb/menu"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/shell"
	"github.com/nsklaus/amiwb/wb"
	"github.com/nsklaus/amiwb/wblog"
	"github.com/nsklaus/amiwb/wm"
	"github.com/nsklaus/amiwb/xcore"
	"github.com/nsklaus/amiwb/xdnd"
)

// wmSelection is the single-instance manager selection.
const wmSelection = "_AMIWB_WM_S0"

func main() {
	// The hidden worker mode must run before anything opens a display.
	if len(os.Args) > 1 && os.Args[1] == fileops.WorkerFlag {
		os.Exit(fileops.RunWorker(os.Args[2:]))
	}

	cfg := config.Load(config.DefaultPath())
	wblog.Setup(wblog.DefaultPath())
	log.Info("amiwb starting")

	c, err := xcore.Dial("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: %v\n", err)
		os.Exit(1)
	}
	defer c.Close()

	if err := claimSelection(c); err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: %v\n", err)
		os.Exit(1)
	}

	// Become the window manager: SubstructureRedirect on the root fails
	// when another manager holds it.
	err = xproto.ChangeWindowAttributesChecked(c.X, c.Root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskSubstructureRedirect |
			xproto.EventMaskSubstructureNotify |
			xproto.EventMaskPropertyChange |
			xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		fmt.Fprintln(os.Stderr, "amiwb: could not become the window manager; is another running?")
		os.Exit(1)
	}

	ctx, err := rdr.NewContext(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: %v\n", err)
		os.Exit(1)
	}

	reg := canvas.NewRegistry()
	focus := &canvas.Focus{C: c, Reg: reg}
	frames := wm.NewManager(c, ctx, reg)

	ewmh, err := wm.InitEwmh(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: ewmh init: %v\n", err)
		os.Exit(1)
	}
	focus.OnChange = ewmh.SetActiveWindow

	compositor, err := comp.NewCompositor(c, ctx, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: %v\n", err)
		os.Exit(1)
	}
	sched, err := comp.NewScheduler(cfg.FPS(), cfg.RenderMode == 1)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: %v\n", err)
		os.Exit(1)
	}
	defer sched.Close()

	wallpaper := &rdr.WallpaperCache{}
	ctx.LoadWallpapers(wallpaper,
		cfg.DesktopBackground, cfg.DesktopTiling == 1,
		cfg.WindowBackground, cfg.WindowTiling == 1,
		int(c.Screen.WidthInPixels), int(c.Screen.HeightInPixels))

	sh := shell.New(c, ctx, reg, focus)
	sh.Wallpaper = wallpaper
	sh.Schedule = sched.ScheduleFrame
	focus.RedrawFn = sh.DrawCanvas

	workbench := wb.New(c, ctx, reg, focus)
	workbench.OnCanvasCreated = compositor.TrackCanvas
	workbench.Redraw = sh.DrawCanvas
	workbench.Schedule = sched.ScheduleFrame

	dialogs := dialog.NewManager(c, ctx, reg, focus)
	dialogs.OnCanvasCreated = compositor.TrackCanvas
	dialogs.Schedule = sched.ScheduleFrame
	workbench.SizeDone = dialogs.UpdateDirSize

	dnd, err := xdnd.New(c, workbench.DropFiles)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: xdnd init: %v\n", err)
		os.Exit(1)
	}
	workbench.StartXdndDrag = dnd.StartDrag
	workbench.XdndMotion = dnd.DragMotion
	workbench.XdndDrop = dnd.DragDrop

	bar := menu.New(c, ctx, reg)
	bar.Schedule = sched.ScheduleFrame

	sh.CloseWin = func(cv *canvas.Canvas, t xproto.Timestamp) {
		switch {
		case cv.Client != 0:
			wm.CloseClient(c, cv.Client, t)
		case cv.Path != "":
			workbench.CloseWindow(cv)
		default:
			xproto.DestroyWindow(c.X, cv.Frame)
		}
	}

	km, err := events.LoadKeymap(c)
	if err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: loading keymap: %v\n", err)
		os.Exit(1)
	}
	events.GrabShortcuts(c, km)

	d := &events.Dispatcher{
		C:         c,
		Cfg:       cfg,
		Reg:       reg,
		Focus:     focus,
		Router:    &events.Router{C: c, Reg: reg, Focus: focus},
		WM:        frames,
		Comp:      compositor,
		Sched:     sched,
		Keymap:    km,
		Menu:      bar,
		Dialogs:   dialogs,
		Workbench: workbench,
		Windows:   sh,
		Xdnd:      dnd,
		Ewmh:      ewmh,
	}
	d.PaintFrame = func() { compositor.Paint(wallpaper) }

	restart := false
	d.OnQuit = func() { d.Stop() }
	d.OnRestart = func() {
		restart = true
		d.Stop()
	}
	d.OnAction = func(act config.Action, t xproto.Timestamp) {
		switch act {
		case config.ActExecute:
			dialogs.OpenExecute(func(cmd string) {
				run := exec.Command("/bin/sh", "-c", cmd)
				if err := run.Start(); err == nil {
					go run.Wait()
				}
			})
		case config.ActIconify:
			if cv := focus.Active; cv != nil {
				workbench.Iconify(cv)
			}
		case config.ActCycleNext, config.ActWorkspace1, config.ActWorkspace2,
			config.ActWorkspace3, config.ActWorkspace4:
			focus.Cycle(1, t)
		case config.ActViewIcons:
			if cv := focus.Active; cv != nil {
				workbench.SetViewMode(cv, icons.ViewIcons)
			}
		case config.ActViewNames:
			if cv := focus.Active; cv != nil {
				workbench.SetViewMode(cv, icons.ViewNames)
			}
		case config.ActToggleHidden:
			if cv := focus.Active; cv != nil && cv.Path != "" {
				workbench.ToggleHidden(cv)
			}
		case config.ActLock:
			run := exec.Command("/bin/sh", "-c", "xdg-screensaver lock")
			if run.Start() == nil {
				go run.Wait()
			}
		}
	}

	buildMenus(bar, d, workbench, dialogs)

	if _, err := workbench.CreateDesktop(); err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: creating desktop: %v\n", err)
		os.Exit(1)
	}
	if _, err := bar.CreateBar(); err != nil {
		fmt.Fprintf(os.Stderr, "amiwb: creating menubar: %v\n", err)
		os.Exit(1)
	}

	manageExisting(c, frames, compositor, bar)
	ewmh.UpdateClientList(reg)

	d.Start()
	sched.ScheduleFrame()
	d.Run()

	// Orderly shutdown: release the selection, quiet the error paths,
	// drop server resources.
	c.SetRestarting(true)
	wblog.SetQuiet(true)
	xproto.SetSelectionOwner(c.X, xproto.WindowNone, c.Atom(wmSelection),
		xproto.TimeCurrentTime)
	compositor.Free()
	ewmh.Free()
	ctx.FreeWallpapers(wallpaper)
	ctx.Free()
	c.Sync()

	if restart {
		log.Info("amiwb restarting")
		exe, err := os.Executable()
		if err == nil {
			syscall.Exec(exe, os.Args, os.Environ())
		}
		log.Errorf("re-exec failed: %v", err)
		os.Exit(1)
	}
	log.Info("amiwb exiting")
}

// claimSelection takes the single-instance selection; an existing owner
// means another amiwb is already running.
func claimSelection(c *xcore.Conn) error {
	sel := c.Atom(wmSelection)
	reply, err := xproto.GetSelectionOwner(c.X, sel).Reply()
	if err == nil && reply.Owner != 0 {
		return fmt.Errorf("another amiwb instance owns %s", wmSelection)
	}

	owner, err := xproto.NewWindowId(c.X)
	if err != nil {
		return err
	}
	xproto.CreateWindow(c.X, 0, owner, c.Root, -1, -1, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, 0, nil)
	xproto.SetSelectionOwner(c.X, owner, sel, xproto.TimeCurrentTime)

	reply, err = xproto.GetSelectionOwner(c.X, sel).Reply()
	if err != nil || reply.Owner != owner {
		return fmt.Errorf("could not claim %s", wmSelection)
	}
	return nil
}

// manageExisting adopts top-level windows that were mapped before the
// manager started.
func manageExisting(c *xcore.Conn, frames *wm.Manager, compositor *comp.Compositor, bar *menu.Bar) {
	children, ok := c.Children(c.Root)
	if !ok {
		return
	}
	for _, child := range children {
		attrs, err := xproto.GetWindowAttributes(c.X, child).Reply()
		if err != nil || attrs.OverrideRedirect ||
			attrs.MapState != xproto.MapStateViewable {
			continue
		}
		cv, err := frames.Manage(child)
		if err != nil {
			continue
		}
		compositor.TrackCanvas(cv)
		bar.RegisterApp(child)
	}
}

// buildMenus installs the default menubar contents.
func buildMenus(bar *menu.Bar, d *events.Dispatcher, workbench *wb.Workbench, dialogs *dialog.Manager) {
	bar.Menus = []menu.Menu{
		{Title: "Workbench", Items: []menu.Item{
			{Label: "Execute Command...", Enabled: true, Action: func() {
				d.OnAction(config.ActExecute, xproto.TimeCurrentTime)
			}},
			{Label: "Restart AmiWB", Enabled: true, Action: func() { d.OnRestart() }},
			{Label: "Quit AmiWB", Enabled: true, Action: func() { d.OnQuit() }},
		}},
		{Title: "Window", Items: []menu.Item{
			{Label: "Open Home", Enabled: true, Action: func() {
				workbench.OpenDirectory(os.Getenv("HOME"))
			}},
			{Label: "Cycle", Enabled: true, Action: func() {
				d.Focus.Cycle(1, xproto.TimeCurrentTime)
			}},
			{Label: "Iconify", Enabled: true, Action: func() {
				d.OnAction(config.ActIconify, xproto.TimeCurrentTime)
			}},
		}},
		{Title: "Icons", Items: []menu.Item{
			{Label: "Rename...", Enabled: true, Action: func() {
				cv := d.Focus.Active
				if cv == nil {
					return
				}
				sel := workbench.SelectedIcons(cv)
				if len(sel) == 0 {
					return
				}
				ic := sel[0]
				dialogs.OpenRename(ic.Path, func(string) {
					workbench.ScanDirectory(cv)
					d.Focus.RedrawFn(cv)
				})
			}},
			{Label: "Delete...", Enabled: true, Action: func() {
				cv := d.Focus.Active
				if cv == nil {
					return
				}
				var paths []string
				for _, ic := range workbench.SelectedIcons(cv) {
					paths = append(paths, ic.Path)
				}
				if len(paths) == 0 {
					return
				}
				dialogs.OpenDeleteConfirm(paths, func() {
					workbench.ScanDirectory(cv)
					d.Focus.RedrawFn(cv)
				})
			}},
			{Label: "Information...", Enabled: true, Action: func() {
				cv := d.Focus.Active
				if cv == nil {
					return
				}
				if sel := workbench.SelectedIcons(cv); len(sel) > 0 {
					dialogs.OpenIconInfo(sel[0].Path, workbench.StartDirSize)
				}
			}},
			{Label: "Clean Up", Enabled: true, Action: func() {
				if cv := d.Focus.Active; cv != nil && cv.Path != "" {
					workbench.SetViewMode(cv, icons.ViewIcons)
				}
			}},
		}},
		{Title: "View", Items: []menu.Item{
			{Label: "Icons", Enabled: true, Action: func() {
				d.OnAction(config.ActViewIcons, xproto.TimeCurrentTime)
			}},
			{Label: "Names", Enabled: true, Action: func() {
				d.OnAction(config.ActViewNames, xproto.TimeCurrentTime)
			}},
			{Label: "Show Hidden", Enabled: true, Action: func() {
				d.OnAction(config.ActToggleHidden, xproto.TimeCurrentTime)
			}},
		}},
	}
}
