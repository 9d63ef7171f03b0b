package wb

// scan.go populates a canvas from the filesystem. Each directory entry
// becomes a FileIcon whose pictures come from a sibling .info file or the
// per-type default. Spatial mode keeps previously saved coordinates;
// anything unknown grid-packs after the known icons. Refresh is the same
// operation on a live canvas with position retention by name.

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/canvas"
	"github.com/nsklaus/amiwb/icons"
)

// ScanDirectory fills cv's icon list from cv.Path. Existing icons are
// released first; their positions survive through the name index.
func (w *Workbench) ScanDirectory(cv *canvas.Canvas) {
	prevPos := make(map[string]IconPos, len(cv.Icons))
	for _, ic := range cv.Icons {
		prevPos[ic.Label] = IconPos{X: ic.X, Y: ic.Y}
		w.freeIcon(ic)
	}
	cv.Icons = nil

	entries, err := os.ReadDir(cv.Path)
	if err != nil {
		log.Warnf("scanning %s: %v", cv.Path, err)
		return
	}
	sort.Slice(entries, func(i, j int) bool {
		// Drawers first, then case-insensitive by name.
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return strings.ToLower(entries[i].Name()) < strings.ToLower(entries[j].Name())
	})

	saved := w.Spatial.Load(cv.Path)

	var unplaced []*icons.FileIcon
	for _, e := range entries {
		name := e.Name()
		if !cv.ShowHidden && strings.HasPrefix(name, ".") {
			continue
		}
		// .info files attach to their sibling; they are not entries of
		// their own.
		if strings.HasSuffix(name, ".info") {
			continue
		}

		typ := icons.TypeFile
		if e.IsDir() {
			typ = icons.TypeDrawer
		}
		ic := w.newIcon(cv, filepath.Join(cv.Path, name), name, typ)
		if ic == nil {
			continue
		}

		switch {
		case prevPos[name] != (IconPos{}):
			p := prevPos[name]
			ic.X, ic.Y = p.X, p.Y
		case saved[name] != (IconPos{}):
			p := saved[name]
			ic.X, ic.Y = p.X, p.Y
		default:
			unplaced = append(unplaced, ic)
		}
		cv.Icons = append(cv.Icons, ic)
	}

	if len(unplaced) == len(cv.Icons) {
		// Nothing had a position: clean grid.
		ext := icons.Cleanup(cv.Icons, cv.InnerWidth())
		cv.ContentW, cv.ContentH = ext.ContentWidth, ext.ContentHeight
	} else {
		w.placeAfterSpatial(cv, unplaced)
	}
	cv.ClampScroll()
}

// placeAfterSpatial grid-packs icons that had no saved position into the
// space after the spatial ones.
func (w *Workbench) placeAfterSpatial(cv *canvas.Canvas, unplaced []*icons.FileIcon) {
	ext := icons.ExtentsOf(cv.Icons)
	y := ext.ContentHeight
	cols := cv.InnerWidth() / icons.GridCellWidth
	if cols < 1 {
		cols = 1
	}
	for i, ic := range unplaced {
		col := i % cols
		row := i / cols
		ic.X = col*icons.GridCellWidth + (icons.GridCellWidth-ic.Width)/2
		ic.Y = y + row*icons.GridCellHeight + 8
	}
	ext = icons.ExtentsOf(cv.Icons)
	cv.ContentW, cv.ContentH = ext.ContentWidth, ext.ContentHeight
}

// newIcon builds a FileIcon with decoded pictures. A decode failure after
// the default fallback leaves the entry without an icon, which the
// original treats as missing: skip it.
func (w *Workbench) newIcon(cv *canvas.Canvas, path, label string, typ icons.Type) *icons.FileIcon {
	infoPath := path + ".info"
	if _, err := os.Stat(infoPath); err != nil {
		infoPath = path // no sibling .info: DecodeFile swaps in the default
	}
	frames, err := icons.DecodeFile(infoPath, typ, w.Defaults)
	if err != nil {
		log.Debugf("icon for %s: %v", path, err)
		return nil
	}

	ic := &icons.FileIcon{
		Label:         label,
		Path:          path,
		Type:          typ,
		DisplayWindow: cv.Frame,
	}
	w.installFrames(ic, frames)
	return ic
}

// installFrames uploads decoded frames into the icon's pictures,
// synthesizing the darkened selected state when the format had none.
func (w *Workbench) installFrames(ic *icons.FileIcon, frames *icons.Frames) {
	b := frames.Normal.Bounds()
	ic.Width, ic.Height = b.Dx(), b.Dy()

	if pic, err := w.Ctx.PictureFromRGBA(frames.Normal); err == nil {
		ic.NormalPic = pic
	}
	sel := frames.Selected
	if sel == nil {
		sel = icons.Darken(frames.Normal)
	}
	sb := sel.Bounds()
	ic.SelWidth, ic.SelHeight = sb.Dx(), sb.Dy()
	if pic, err := w.Ctx.PictureFromRGBA(sel); err == nil {
		ic.SelectedPic = pic
	}
	ic.CurrentPic = ic.NormalPic

	if w.Text != nil {
		lw, _ := w.Text.Extents(ic.Label)
		ic.LabelWidth = lw
	}
}

// freeIcon releases an icon's pictures.
func (w *Workbench) freeIcon(ic *icons.FileIcon) {
	w.Ctx.FreePicture(ic.NormalPic)
	w.Ctx.FreePicture(ic.SelectedPic)
	ic.NormalPic, ic.SelectedPic, ic.CurrentPic = 0, 0, 0
}

// SavePositions snapshots the canvas's icon layout into the spatial
// store.
func (w *Workbench) SavePositions(cv *canvas.Canvas) {
	if cv.Path == "" {
		return
	}
	m := make(map[string]IconPos, len(cv.Icons))
	for _, ic := range cv.Icons {
		m[ic.Label] = IconPos{X: ic.X, Y: ic.Y}
	}
	w.Spatial.Save(cv.Path, m)
}
