package icons

// icon.go is the decoder front door and the FileIcon model. Decode takes
// raw .info bytes to RGBA frames; FileIcon is a placed, selectable icon on
// a canvas, holding the X pictures the render package created from those
// frames.

import (
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
)

// Frames is a decoded icon: the normal state, an optional distinct
// selected state, and the AICON position hint when one was present.
type Frames struct {
	Normal   *image.RGBA
	Selected *image.RGBA
	Meta     AiconMeta
}

// Decode dispatches on the leading bytes: AICON container, classic
// DiskObject (possibly with appended GlowIcon chunks), or an error.
// data should come from LoadFile so the trailing slack byte is present.
func Decode(data []byte) (*Frames, error) {
	if IsAicon(data) {
		return decodeAicon(data)
	}
	if len(data) < diskObjectSize {
		return nil, ErrTooSmall
	}
	if ReadBE16(data) != diskObjectMagic || ReadBE16(data[2:]) != 1 {
		return nil, ErrBadMagic
	}

	format, formOffset := Detect(data)

	// GlowIcon chunks win over the classic image in front of them; a
	// broken classic header with a valid FORM is common in the wild.
	if format == FormatGlowIcon {
		fr, err := decodeGlow(data, formOffset)
		if err == nil {
			return fr, nil
		}
		// Fall through to the classic image only when the FORM parse
		// failed for reasons other than the unimplemented ToolTypes
		// encoding.
		if err == ErrToolTypesEncoding {
			return nil, err
		}
	}
	return decodeClassic(data, format)
}

// DecodeFile loads and decodes path. On failure for a non-default icon it
// retries with the per-type default; when the default fails too, the
// caller gets the original error and must treat the icon as missing.
func DecodeFile(path string, typ Type, defaults Defaults) (*Frames, error) {
	usePath := path
	if !strings.Contains(path, ".info") {
		usePath = defaults.For(typ)
	}
	data, err := LoadFile(usePath)
	if err == nil {
		if fr, derr := Decode(data); derr == nil {
			return fr, nil
		} else {
			err = derr
		}
	}

	fallback := defaults.For(typ)
	if fallback == "" || fallback == usePath {
		return nil, err
	}
	data, ferr := LoadFile(fallback)
	if ferr != nil {
		return nil, err
	}
	fr, ferr := Decode(data)
	if ferr != nil {
		return nil, err
	}
	return fr, nil
}

// Defaults locates the def_foo.info / def_dir.info fallbacks.
type Defaults struct {
	Dir string // directory holding the default .info files
}

// For returns the default icon path for an icon type.
func (d Defaults) For(typ Type) string {
	if d.Dir == "" {
		return ""
	}
	switch typ {
	case TypeDrawer, TypeIconified:
		return filepath.Join(d.Dir, "def_dir.info")
	default:
		return filepath.Join(d.Dir, "def_foo.info")
	}
}

// Darken produces the selected-state stand-in: every pixel's RGB scaled
// by 4/5 when alpha > 0, alpha untouched.
func Darken(src *image.RGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := src.PixOffset(b.Min.X, y)
		drow := dst.PixOffset(b.Min.X, y)
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, a := src.Pix[row], src.Pix[row+1], src.Pix[row+2], src.Pix[row+3]
			if a > 0 {
				r = uint8(int(r) * 4 / 5)
				g = uint8(int(g) * 4 / 5)
				bl = uint8(int(bl) * 4 / 5)
			}
			dst.Pix[drow], dst.Pix[drow+1], dst.Pix[drow+2], dst.Pix[drow+3] = r, g, bl, a
			row += 4
			drow += 4
		}
	}
	return dst
}

// Type tags what a FileIcon stands for.
type Type int

const (
	TypeFile Type = iota
	TypeDrawer
	TypeIconified
	TypeDevice
)

// DoubleClickWindow is the maximum gap between clicks on the same icon
// that still counts as a double click.
const DoubleClickWindow = 500 * time.Millisecond

// FileIcon is a labeled picture on a canvas. The icon owns its pictures
// and strings exclusively; releasing it frees NormalPic and SelectedPic
// (CurrentPic aliases one of them).
type FileIcon struct {
	Label string
	Path  string
	Type  Type

	X, Y          int // grid position, canvas-local
	Width, Height int // normal frame dimensions
	SelWidth      int // selected frame may differ
	SelHeight     int
	LabelWidth    int // cached pixel width of the rendered label

	Selected bool

	NormalPic   render.Picture
	SelectedPic render.Picture
	CurrentPic  render.Picture

	DisplayWindow xproto.Window // canvas frame this icon is anchored to
	LastClick     time.Time

	// For TypeIconified: the frame window of the hidden canvas. Stored as
	// an id, not a pointer — the registry resolves it, so a canvas dying
	// under us can't leave a dangling reference here.
	IconifiedFrame xproto.Window
}

// HitWidth and HitHeight are the rendered dimensions of the currently
// displayed state; the hit test uses these, not the grid cell.
func (ic *FileIcon) HitWidth() int {
	if ic.Selected && ic.SelWidth > 0 {
		return ic.SelWidth
	}
	return ic.Width
}

func (ic *FileIcon) HitHeight() int {
	if ic.Selected && ic.SelHeight > 0 {
		return ic.SelHeight
	}
	return ic.Height
}

// Contains reports whether the canvas-local point falls on the icon's
// rendered image.
func (ic *FileIcon) Contains(x, y int) bool {
	return x >= ic.X && x < ic.X+ic.HitWidth() &&
		y >= ic.Y && y < ic.Y+ic.HitHeight()
}

// Select switches the icon's displayed state.
func (ic *FileIcon) Select(on bool) {
	ic.Selected = on
	if on && ic.SelectedPic != 0 {
		ic.CurrentPic = ic.SelectedPic
	} else {
		ic.CurrentPic = ic.NormalPic
	}
}

// ClickAt registers a click at time now and reports whether it completes
// a double click.
func (ic *FileIcon) ClickAt(now time.Time) bool {
	double := !ic.LastClick.IsZero() && now.Sub(ic.LastClick) < DoubleClickWindow
	if double {
		ic.LastClick = time.Time{}
	} else {
		ic.LastClick = now
	}
	return double
}
