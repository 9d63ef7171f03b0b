package wb

// workbench.go is the shell layer proper: spatial directory windows on
// managed canvases, icon interaction (select, drag, double-click open),
// iconify/restore, device icons from mount polling, and the worker-job
// plumbing for directory sizing.

import (
	"bufio"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/fileops"
	"github.com/nsklaus/amiwb/icons"
	rdr "github.com/nsklaus/amiwb/render"
	"github.com/nsklaus/amiwb/xcore"
)

// Workbench owns the desktop canvas and all directory windows.
type Workbench struct {
	C     *xcore.Conn
	Ctx   *rdr.Context
	Reg   *canvas.Registry
	Focus *canvas.Focus
	Text  *rdr.TextDraw

	Defaults icons.Defaults
	Spatial  *SpatialStore

	Desktop *canvas.Canvas

	// Hooks wired by main: canvas lifecycle into the compositor, repaint,
	// frame scheduling, dialog opening, drag hand-off to XDND.
	OnCanvasCreated   func(*canvas.Canvas)
	OnCanvasDestroyed func(*canvas.Canvas)
	Redraw            func(*canvas.Canvas)
	Schedule          func()
	StartXdndDrag     func(paths []string)
	XdndMotion        func(rootX, rootY int)
	XdndDrop          func()

	// Icon drag state.
	dragIcon   *icons.FileIcon
	dragCanvas *canvas.Canvas
	dragOffX   int
	dragOffY   int
	dragMoved  bool

	// Autoscroll while dragging near an edge.
	autoCanvas *canvas.Canvas
	autoDX     int
	autoDY     int
	lastAuto   time.Time

	// Outstanding directory-size workers, keyed by path.
	sizeJobs map[string]*fileops.Job
	SizeDone func(path string, bytes int64)

	knownMounts map[string]bool
	watch       *Watcher
}

// New builds the workbench.
func New(c *xcore.Conn, ctx *rdr.Context, reg *canvas.Registry, focus *canvas.Focus) *Workbench {
	return &Workbench{
		C:           c,
		Ctx:         ctx,
		Reg:         reg,
		Focus:       focus,
		Text:        ctx.NewTextDraw(),
		Defaults:    icons.Defaults{Dir: "/usr/local/share/amiwb/icons/def_icons"},
		Spatial:     DefaultSpatialStore(),
		sizeJobs:    make(map[string]*fileops.Job),
		knownMounts: make(map[string]bool),
		watch:       NewWatcher(),
	}
}

// CreateDesktop makes the singleton DESKTOP canvas covering the root,
// beneath the menubar.
func (w *Workbench) CreateDesktop() (*canvas.Canvas, error) {
	c := w.C
	sw := int(c.Screen.WidthInPixels)
	sh := int(c.Screen.HeightInPixels)

	win, err := xproto.NewWindowId(c.X)
	if err != nil {
		return nil, err
	}
	err = xproto.CreateWindowChecked(c.X, c.Screen.RootDepth, win, c.Root,
		0, int16(canvas.MenubarH), uint16(sw), uint16(sh-canvas.MenubarH), 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
			xproto.EventMaskPointerMotion | xproto.EventMaskExposure}).Check()
	if err != nil {
		return nil, err
	}

	cv := &canvas.Canvas{
		Frame:     win,
		Type:      canvas.Desktop,
		X:         0,
		Y:         canvas.MenubarH,
		Width:     sw,
		Height:    sh - canvas.MenubarH,
		Path:      filepath.Join(os.Getenv("HOME"), "Desktop"),
		TitleBase: "Workbench",
		BgColor:   render.Color{Red: 0x4848, Green: 0x6F6F, Blue: 0xB0B0, Alpha: 0xFFFF},
	}
	surf, err := w.Ctx.NewSurfaces(win, c.Screen.RootVisual,
		cv.Width, cv.Height, true)
	if err != nil {
		return nil, err
	}
	cv.Surf = surf
	w.Reg.Add(cv)
	w.Desktop = cv

	os.MkdirAll(cv.Path, 0o755)
	w.ScanDirectory(cv)
	w.watch.Watch(cv.Path)
	xproto.MapWindow(c.X, win)
	if w.OnCanvasCreated != nil {
		w.OnCanvasCreated(cv)
	}
	return cv, nil
}

// OpenDirectory opens (or raises) a workbench window for path.
func (w *Workbench) OpenDirectory(path string) {
	path = filepath.Clean(path)
	for _, cv := range w.Reg.ByType(canvas.Window) {
		if cv.Path == path {
			w.Focus.Raise(cv)
			w.Focus.SetActive(cv, xproto.TimeCurrentTime)
			return
		}
	}

	st, err := os.Stat(path)
	if err != nil || !st.IsDir() {
		log.Warnf("open directory %s: %v", path, err)
		return
	}

	c := w.C
	width, height := 480, 360
	n := len(w.Reg.ByType(canvas.Window))
	x := 80 + n*30
	y := canvas.MenubarH + 40 + n*30

	win, err := xproto.NewWindowId(c.X)
	if err != nil {
		return
	}
	err = xproto.CreateWindowChecked(c.X, c.Screen.RootDepth, win, c.Root,
		int16(x), int16(y), uint16(width), uint16(height), 0,
		xproto.WindowClassInputOutput, c.Screen.RootVisual,
		xproto.CwEventMask,
		[]uint32{xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
			xproto.EventMaskPointerMotion | xproto.EventMaskExposure |
			xproto.EventMaskStructureNotify}).Check()
	if err != nil {
		return
	}

	cv := &canvas.Canvas{
		Frame:     win,
		Type:      canvas.Window,
		X:         x,
		Y:         y,
		Width:     width,
		Height:    height,
		MinWidth:  200,
		MinHeight: 120,
		ResizeX:   true,
		ResizeY:   true,
		Path:      path,
		TitleBase: filepath.Base(path),
		BgColor:   render.Color{Red: 0xAAAA, Green: 0xAAAA, Blue: 0xAAAA, Alpha: 0xFFFF},
	}
	surf, err := w.Ctx.NewSurfaces(win, c.Screen.RootVisual, width, height, false)
	if err != nil {
		xproto.DestroyWindow(c.X, win)
		return
	}
	cv.Surf = surf
	w.Reg.Add(cv)

	w.ScanDirectory(cv)
	w.watch.Watch(path)
	xproto.MapWindow(c.X, win)
	if w.OnCanvasCreated != nil {
		w.OnCanvasCreated(cv)
	}
	if w.Redraw != nil {
		w.Redraw(cv)
	}
	w.Focus.SetActive(cv, xproto.TimeCurrentTime)
	if w.Schedule != nil {
		w.Schedule()
	}
}

// CloseWindow tears down one workbench window, saving its layout.
func (w *Workbench) CloseWindow(cv *canvas.Canvas) {
	w.SavePositions(cv)
	w.watch.Unwatch(cv.Path)
	xproto.DestroyWindow(w.C.X, cv.Frame)
}

// CanvasClosed is the registry teardown notification.
func (w *Workbench) CanvasClosed(cv *canvas.Canvas) {
	if cv.Path != "" {
		w.watch.Unwatch(cv.Path)
	}
	if w.dragCanvas == cv {
		w.dragIcon, w.dragCanvas = nil, nil
	}
	if w.autoCanvas == cv {
		w.autoCanvas = nil
	}
	// A desktop icon pointing at the dead canvas (iconified state) dies
	// with it.
	if w.Desktop != nil && cv.Type == canvas.Window {
		for i, ic := range w.Desktop.Icons {
			if ic.Type == icons.TypeIconified && ic.IconifiedFrame == cv.Frame {
				w.freeIcon(ic)
				w.Desktop.Icons = append(w.Desktop.Icons[:i], w.Desktop.Icons[i+1:]...)
				w.repaint(w.Desktop)
				break
			}
		}
	}
}

// --- input -----------------------------------------------------------

// HandlePress implements icon interaction on desktop and directory
// canvases.
func (w *Workbench) HandlePress(cv *canvas.Canvas, x, y int, button byte, t xproto.Timestamp) {
	if button != 1 {
		return
	}
	lx := x - contentOffsetX(cv) + cv.ScrollX
	ly := y - contentOffsetY(cv) + cv.ScrollY

	ic := icons.FindAt(cv.Icons, lx, ly)
	if ic == nil {
		w.clearSelection(cv)
		w.repaint(cv)
		return
	}

	if !ic.Selected {
		w.clearSelection(cv)
		ic.Select(true)
	}

	if ic.ClickAt(time.Now()) {
		w.openIcon(cv, ic)
		return
	}

	// Arm a drag.
	w.dragIcon = ic
	w.dragCanvas = cv
	w.dragOffX = lx - ic.X
	w.dragOffY = ly - ic.Y
	w.dragMoved = false
	w.repaint(cv)
}

// HandleMotion moves a dragged icon. The first motion of a drag starts an
// XDND source drag, and every motion feeds it the root-space position.
func (w *Workbench) HandleMotion(cv *canvas.Canvas, x, y int, state uint16) {
	if w.dragIcon == nil || state&xproto.KeyButMaskButton1 == 0 {
		return
	}
	if !w.dragMoved && w.StartXdndDrag != nil {
		// First motion of a drag: become an XDND source so the icon can
		// leave the workbench entirely.
		w.StartXdndDrag([]string{w.dragIcon.Path})
	}
	w.dragMoved = true
	lx := x - contentOffsetX(cv) + cv.ScrollX
	ly := y - contentOffsetY(cv) + cv.ScrollY
	w.dragIcon.X = lx - w.dragOffX
	w.dragIcon.Y = ly - w.dragOffY

	// Near-edge autoscroll arms here and repeats from the poll.
	w.autoCanvas, w.autoDX, w.autoDY = nil, 0, 0
	const margin = 24
	if cv.Type == canvas.Window {
		if x < canvas.BorderLeft+margin {
			w.autoDX = -16
		} else if x > cv.Width-canvas.BorderRight-margin {
			w.autoDX = 16
		}
		if y < canvas.BorderTop+margin {
			w.autoDY = -16
		} else if y > cv.Height-canvas.BorderBottom-margin {
			w.autoDY = 16
		}
		if w.autoDX != 0 || w.autoDY != 0 {
			w.autoCanvas = cv
		}
	}

	if w.XdndMotion != nil {
		rx, ry, ok := w.C.TranslateCoords(cv.Frame, w.C.Root, x, y)
		if ok {
			w.XdndMotion(rx, ry)
		}
	}
	w.repaint(cv)
}

// HandleRelease ends a drag or completes a click.
func (w *Workbench) HandleRelease(cv *canvas.Canvas, x, y int, t xproto.Timestamp) {
	defer func() {
		w.dragIcon, w.dragCanvas = nil, nil
		w.autoCanvas = nil
	}()
	if w.dragIcon == nil {
		return
	}
	if w.dragMoved {
		if w.XdndDrop != nil {
			w.XdndDrop()
		}
		ext := icons.ExtentsOf(cv.Icons)
		cv.ContentW, cv.ContentH = ext.ContentWidth, ext.ContentHeight
		cv.ClampScroll()
		w.SavePositions(cv)
		w.repaint(cv)
	}
}

// openIcon is the double-click action per icon type.
func (w *Workbench) openIcon(cv *canvas.Canvas, ic *icons.FileIcon) {
	switch ic.Type {
	case icons.TypeDrawer, icons.TypeDevice:
		w.OpenDirectory(ic.Path)
	case icons.TypeIconified:
		w.Restore(ic)
	default:
		runFile(ic.Path)
	}
}

// clearSelection deselects everything on the canvas.
func (w *Workbench) clearSelection(cv *canvas.Canvas) {
	for _, ic := range cv.Icons {
		if ic.Selected {
			ic.Select(false)
		}
	}
}

// SelectedIcons lists the selected icons on a canvas.
func (w *Workbench) SelectedIcons(cv *canvas.Canvas) []*icons.FileIcon {
	var out []*icons.FileIcon
	for _, ic := range cv.Icons {
		if ic.Selected {
			out = append(out, ic)
		}
	}
	return out
}

func (w *Workbench) repaint(cv *canvas.Canvas) {
	if w.Redraw != nil {
		w.Redraw(cv)
	}
	if w.Schedule != nil {
		w.Schedule()
	}
}

// contentOffset maps frame coordinates to content coordinates.
func contentOffsetX(cv *canvas.Canvas) int {
	if cv.Type == canvas.Desktop || cv.Type == canvas.Menu {
		return 0
	}
	return canvas.BorderLeft
}

func contentOffsetY(cv *canvas.Canvas) int {
	if cv.Type == canvas.Desktop || cv.Type == canvas.Menu {
		return 0
	}
	return canvas.BorderTop
}

// runFile launches a plain file with xdg-open, detached.
func runFile(path string) {
	cmd := exec.Command("xdg-open", filepath.Clean(path))
	if err := cmd.Start(); err != nil {
		log.Debugf("opening %s: %v", path, err)
		return
	}
	go cmd.Wait()
}

// --- iconify ---------------------------------------------------------

// Iconify hides a window canvas behind a desktop icon.
func (w *Workbench) Iconify(cv *canvas.Canvas) {
	if cv.Type != canvas.Window || w.Desktop == nil {
		return
	}
	cv.Iconified = true
	xproto.UnmapWindow(w.C.X, cv.Frame)

	ic := w.newIcon(w.Desktop, cv.Path, cv.Title(), icons.TypeIconified)
	if ic == nil {
		// No decodable icon; synthesize from the drawer default anyway by
		// letting DecodeFile fall back — and if even that failed, skip the
		// icon but keep the window restorable through the menu.
		cv.Iconified = true
		return
	}
	ic.IconifiedFrame = cv.Frame
	// Bottom-left packing for iconified entries.
	n := 0
	for _, other := range w.Desktop.Icons {
		if other.Type == icons.TypeIconified {
			n++
		}
	}
	ic.X = 8 + n*icons.GridCellWidth
	ic.Y = w.Desktop.Height - icons.GridCellHeight
	w.Desktop.Icons = append(w.Desktop.Icons, ic)
	w.repaint(w.Desktop)
}

// Restore brings an iconified canvas back.
func (w *Workbench) Restore(ic *icons.FileIcon) {
	cv := w.Reg.FindByWindow(ic.IconifiedFrame)
	if cv == nil {
		return
	}
	cv.Iconified = false
	xproto.MapWindow(w.C.X, cv.Frame)
	w.Focus.Raise(cv)
	w.Focus.SetActive(cv, xproto.TimeCurrentTime)

	for i, other := range w.Desktop.Icons {
		if other == ic {
			w.Desktop.Icons = append(w.Desktop.Icons[:i], w.Desktop.Icons[i+1:]...)
			break
		}
	}
	w.freeIcon(ic)
	w.repaint(w.Desktop)
}

// --- drops -----------------------------------------------------------

// DropFiles lands XDND files on the canvas under the root point.
func (w *Workbench) DropFiles(paths []string, rootX, rootY int) {
	target := w.Desktop
	for _, cv := range w.Reg.ByType(canvas.Window) {
		if cv.Path != "" && !cv.Iconified && cv.ContainsPoint(rootX, rootY) {
			target = cv
		}
	}
	if target == nil || target.Path == "" {
		return
	}

	lx, ly, ok := w.C.TranslateCoords(w.C.Root, target.Frame, rootX, rootY)
	if !ok {
		lx, ly = 40, 40
	}
	lx += target.ScrollX - contentOffsetX(target)
	ly += target.ScrollY - contentOffsetY(target)

	for i, src := range paths {
		dst := filepath.Join(target.Path, filepath.Base(src))
		if src == dst {
			continue
		}
		if err := fileops.CopyTree(src, dst, nil); err != nil {
			log.Warnf("dropping %s: %v", src, err)
			continue
		}
		typ := icons.TypeFile
		if st, err := os.Stat(dst); err == nil && st.IsDir() {
			typ = icons.TypeDrawer
		}
		if ic := w.newIcon(target, dst, filepath.Base(dst), typ); ic != nil {
			ic.X = lx + i*8
			ic.Y = ly + i*8
			target.Icons = append(target.Icons, ic)
		}
	}
	ext := icons.ExtentsOf(target.Icons)
	target.ContentW, target.ContentH = ext.ContentWidth, ext.ContentHeight
	target.ClampScroll()
	w.repaint(target)
}

// --- periodic work ---------------------------------------------------

// PollDrives diffs /proc/mounts against the known set and adds/removes
// DEVICE icons on the desktop. Runs at 1 Hz.
func (w *Workbench) PollDrives() {
	if w.Desktop == nil {
		return
	}
	f, err := os.Open("/proc/mounts")
	if err != nil {
		return
	}
	defer f.Close()

	current := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) < 2 {
			continue
		}
		mount := fields[1]
		if strings.HasPrefix(mount, "/media/") || strings.HasPrefix(mount, "/run/media/") ||
			strings.HasPrefix(mount, "/mnt/") {
			current[mount] = true
		}
	}

	changed := false
	for mount := range current {
		if !w.knownMounts[mount] {
			if ic := w.newIcon(w.Desktop, mount, filepath.Base(mount), icons.TypeDevice); ic != nil {
				n := len(w.Desktop.Icons)
				ic.X = w.Desktop.Width - icons.GridCellWidth
				ic.Y = 8 + (n%8)*icons.GridCellHeight
				w.Desktop.Icons = append(w.Desktop.Icons, ic)
				changed = true
			}
			w.knownMounts[mount] = true
		}
	}
	for mount := range w.knownMounts {
		if !current[mount] {
			delete(w.knownMounts, mount)
			for i, ic := range w.Desktop.Icons {
				if ic.Type == icons.TypeDevice && ic.Path == mount {
					w.freeIcon(ic)
					w.Desktop.Icons = append(w.Desktop.Icons[:i], w.Desktop.Icons[i+1:]...)
					changed = true
					break
				}
			}
		}
	}
	if changed {
		w.repaint(w.Desktop)
	}
}

// StartDirSize launches a sizing worker for the icon-info dialog.
func (w *Workbench) StartDirSize(path string) {
	if _, running := w.sizeJobs[path]; running {
		return
	}
	job, err := fileops.Start(fileops.OpSize, path, "")
	if err != nil {
		log.Warnf("sizing %s: %v", path, err)
		return
	}
	w.sizeJobs[path] = job
}

// CheckDirSizeJobs polls sizing workers; runs every loop iteration.
func (w *Workbench) CheckDirSizeJobs() {
	for path, job := range w.sizeJobs {
		job.Poll()
		if job.Done() {
			if w.SizeDone != nil {
				w.SizeDone(path, job.Last.Total)
			}
			job.Close()
			delete(w.sizeJobs, path)
		}
	}
}

// CheckAutoscroll repeats edge scrolling while a drag hugs a border.
func (w *Workbench) CheckAutoscroll() {
	if w.autoCanvas == nil {
		return
	}
	if time.Since(w.lastAuto) < 50*time.Millisecond {
		return
	}
	w.lastAuto = time.Now()
	cv := w.autoCanvas
	cv.ScrollX += w.autoDX
	cv.ScrollY += w.autoDY
	cv.ClampScroll()
	w.repaint(cv)
}

// RefreshWatches drains the fsnotify watcher and rescans changed
// directories.
func (w *Workbench) RefreshWatches() {
	for _, dir := range w.watch.Changed() {
		for _, cv := range append(w.Reg.ByType(canvas.Window), w.Desktop) {
			if cv != nil && cv.Path == dir {
				w.ScanDirectory(cv)
				w.repaint(cv)
			}
		}
	}
}

// SetViewMode switches a canvas between icon grid and name list. NAMES
// is not available for the desktop.
func (w *Workbench) SetViewMode(cv *canvas.Canvas, mode icons.ViewMode) {
	if cv.Type == canvas.Desktop && mode == icons.ViewNames {
		return
	}
	cv.View = mode
	var ext icons.Extents
	if mode == icons.ViewNames {
		ext = icons.LayoutNames(cv.Icons)
	} else {
		ext = icons.Cleanup(cv.Icons, cv.InnerWidth())
	}
	cv.ContentW, cv.ContentH = ext.ContentWidth, ext.ContentHeight
	cv.ClampScroll()
	w.repaint(cv)
}

// ToggleHidden flips dotfile visibility and rescans.
func (w *Workbench) ToggleHidden(cv *canvas.Canvas) {
	cv.ShowHidden = !cv.ShowHidden
	w.ScanDirectory(cv)
	w.repaint(cv)
}
