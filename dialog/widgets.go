/*
Package dialog is the modal dialog framework: a DIALOG canvas carrying an
ordered widget list (buttons, input fields, list views, progress bars),
rendered on expose and dispatched by hit test. Concrete dialogs — rename,
delete confirmation, execute command, progress, icon information — are
fixed widget layouts over the same machinery.
*/
package dialog

import (
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"

	rdr "github.com/nsklaus/amiwb/render"
)

// Widget is one interactive element. Coordinates are canvas-local.
type Widget interface {
	Bounds() (x, y, w, h int)
	Draw(d *Dialog)
	// Press reports whether the point hit the widget and was consumed.
	Press(d *Dialog, x, y int) bool
}

// KeyWidget additionally consumes key input while focused.
type KeyWidget interface {
	Widget
	Key(d *Dialog, keysym uint32, mods uint16) bool
}

// --- button ----------------------------------------------------------

// Button is a labeled push button.
type Button struct {
	X, Y, W, H int
	Label      string
	OnClick    func(d *Dialog)
}

func (b *Button) Bounds() (int, int, int, int) { return b.X, b.Y, b.W, b.H }

func (b *Button) Draw(d *Dialog) {
	ctx := d.ctx
	fill(ctx, d, b.X, b.Y, b.W, b.H, rdr.ColorGray)
	outline(ctx, d, b.X, b.Y, b.W, b.H)
	d.drawText(b.Label, b.X+(b.W-d.textWidth(b.Label))/2, b.Y+4, color.Black)
}

func (b *Button) Press(d *Dialog, x, y int) bool {
	if !inside(b, x, y) {
		return false
	}
	if b.OnClick != nil {
		b.OnClick(d)
	}
	return true
}

// --- input field -----------------------------------------------------

// InputField is a single-line editor with optional path completion on
// Tab.
type InputField struct {
	X, Y, W, H     int
	Value          string
	Cursor         int
	PathComplete   bool
	OnEnter        func(d *Dialog, value string)
	focused        bool
}

func (f *InputField) Bounds() (int, int, int, int) { return f.X, f.Y, f.W, f.H }

func (f *InputField) Draw(d *Dialog) {
	ctx := d.ctx
	fill(ctx, d, f.X, f.Y, f.W, f.H, rdr.ColorWhite)
	outline(ctx, d, f.X, f.Y, f.W, f.H)
	d.drawText(f.Value, f.X+4, f.Y+3, color.Black)
	if f.focused {
		cx := f.X + 4 + d.textWidth(f.Value[:f.Cursor])
		fill(ctx, d, cx, f.Y+2, 1, f.H-4, rdr.ColorBlack)
	}
}

func (f *InputField) Press(d *Dialog, x, y int) bool {
	hit := inside(f, x, y)
	f.focused = hit
	if hit {
		d.focus = f
		f.Cursor = len(f.Value)
	}
	return hit
}

// Key edits the field. Printable syms insert; the control keys are the
// usual minimal set.
func (f *InputField) Key(d *Dialog, keysym uint32, mods uint16) bool {
	const (
		keyBackspace = 0xFF08
		keyTab       = 0xFF09
		keyReturn    = 0xFF0D
		keyLeft      = 0xFF51
		keyRight     = 0xFF53
		keyDelete    = 0xFFFF
		keyEscape    = 0xFF1B
	)
	switch keysym {
	case keyReturn:
		if f.OnEnter != nil {
			f.OnEnter(d, f.Value)
		}
		return true
	case keyBackspace:
		if f.Cursor > 0 {
			f.Value = f.Value[:f.Cursor-1] + f.Value[f.Cursor:]
			f.Cursor--
		}
		return true
	case keyDelete:
		if f.Cursor < len(f.Value) {
			f.Value = f.Value[:f.Cursor] + f.Value[f.Cursor+1:]
		}
		return true
	case keyLeft:
		if f.Cursor > 0 {
			f.Cursor--
		}
		return true
	case keyRight:
		if f.Cursor < len(f.Value) {
			f.Cursor++
		}
		return true
	case keyTab:
		if f.PathComplete {
			f.Value = CompletePath(f.Value)
			f.Cursor = len(f.Value)
		}
		return true
	case keyEscape:
		return false // let the dialog close itself
	}
	if keysym >= 0x20 && keysym <= 0x7E {
		ch := string(rune(keysym))
		f.Value = f.Value[:f.Cursor] + ch + f.Value[f.Cursor:]
		f.Cursor++
		return true
	}
	return false
}

// CompletePath extends a partial filesystem path to the longest
// unambiguous prefix among matching entries.
func CompletePath(partial string) string {
	dir, stem := filepath.Split(partial)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return partial
	}
	var matches []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), stem) {
			name := e.Name()
			if e.IsDir() {
				name += "/"
			}
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return partial
	}
	common := matches[0]
	for _, m := range matches[1:] {
		for !strings.HasPrefix(m, common) {
			common = common[:len(common)-1]
		}
	}
	if common == "" {
		return partial
	}
	return filepath.Join(dir, common) + trailingSlash(common)
}

func trailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return "/"
	}
	return ""
}

// --- list view -------------------------------------------------------

// ListView shows selectable rows with a scrollbar.
type ListView struct {
	X, Y, W, H  int
	Items       []string
	Selected    map[int]bool
	Scroll      int
	MultiSelect bool
	OnActivate  func(d *Dialog, index int)

	rowHeight int
}

func (l *ListView) Bounds() (int, int, int, int) { return l.X, l.Y, l.W, l.H }

func (l *ListView) rows() int {
	if l.rowHeight == 0 {
		l.rowHeight = 18
	}
	return l.H / l.rowHeight
}

func (l *ListView) Draw(d *Dialog) {
	ctx := d.ctx
	fill(ctx, d, l.X, l.Y, l.W, l.H, rdr.ColorWhite)
	outline(ctx, d, l.X, l.Y, l.W, l.H)

	rows := l.rows()
	for i := 0; i < rows && l.Scroll+i < len(l.Items); i++ {
		idx := l.Scroll + i
		ry := l.Y + i*l.rowHeight
		if l.Selected[idx] {
			fill(ctx, d, l.X+1, ry, l.W-14, l.rowHeight, rdr.ColorBlue)
			d.drawText(l.Items[idx], l.X+4, ry+2, color.White)
		} else {
			d.drawText(l.Items[idx], l.X+4, ry+2, color.Black)
		}
	}

	// Scrollbar.
	track := l.H
	ctx.DrawScrollbarTrack(d.cv.Surf.BufferPic, d.off(l.X+l.W-12), d.offY(l.Y), 12, track)
	if len(l.Items) > rows {
		knobH := track * rows / len(l.Items)
		knobY := track * l.Scroll / len(l.Items)
		ctx.DrawScrollbarKnob(d.cv.Surf.BufferPic, d.off(l.X+l.W-11),
			d.offY(l.Y+knobY), 10, knobH, false)
	}
}

func (l *ListView) Press(d *Dialog, x, y int) bool {
	if !inside(l, x, y) {
		return false
	}
	if l.Selected == nil {
		l.Selected = make(map[int]bool)
	}
	if x >= l.X+l.W-12 {
		// Scrollbar page jump.
		if y < l.Y+l.H/2 {
			l.Scroll -= l.rows()
		} else {
			l.Scroll += l.rows()
		}
		l.clampScroll()
		return true
	}
	l.rows()
	idx := l.Scroll + (y-l.Y)/l.rowHeight
	if idx < 0 || idx >= len(l.Items) {
		return true
	}
	if l.MultiSelect && l.Selected[idx] {
		delete(l.Selected, idx)
	} else {
		if !l.MultiSelect {
			l.Selected = map[int]bool{}
		}
		l.Selected[idx] = true
	}
	if l.OnActivate != nil {
		l.OnActivate(d, idx)
	}
	return true
}

func (l *ListView) clampScroll() {
	max := len(l.Items) - l.rows()
	if max < 0 {
		max = 0
	}
	if l.Scroll > max {
		l.Scroll = max
	}
	if l.Scroll < 0 {
		l.Scroll = 0
	}
}

// --- progress bar ----------------------------------------------------

// ProgressBar shows a fraction and a status line.
type ProgressBar struct {
	X, Y, W, H int
	Done       int64
	Total      int64
	Status     string
}

func (p *ProgressBar) Bounds() (int, int, int, int) { return p.X, p.Y, p.W, p.H }

func (p *ProgressBar) Draw(d *Dialog) {
	ctx := d.ctx
	fill(ctx, d, p.X, p.Y, p.W, p.H, rdr.ColorWhite)
	outline(ctx, d, p.X, p.Y, p.W, p.H)
	if p.Total > 0 {
		w := int(int64(p.W-2) * p.Done / p.Total)
		fill(ctx, d, p.X+1, p.Y+1, w, p.H-2, rdr.ColorBlue)
	}
	d.drawText(p.Status, p.X, p.Y+p.H+4, color.Black)
}

func (p *ProgressBar) Press(d *Dialog, x, y int) bool { return false }

// --- label -----------------------------------------------------------

// Label is static text.
type Label struct {
	X, Y int
	Text string
}

func (l *Label) Bounds() (int, int, int, int) { return l.X, l.Y, 0, 0 }
func (l *Label) Draw(d *Dialog) {
	d.drawText(l.Text, l.X, l.Y, color.Black)
}
func (l *Label) Press(d *Dialog, x, y int) bool { return false }

// --- shared helpers --------------------------------------------------

func inside(w Widget, x, y int) bool {
	wx, wy, ww, wh := w.Bounds()
	return x >= wx && x < wx+ww && y >= wy && y < wy+wh
}

func fill(ctx *rdr.Context, d *Dialog, x, y, w, h int, col render.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	render.FillRectangles(ctx.C.X, render.PictOpSrc, d.cv.Surf.BufferPic, col,
		[]xproto.Rectangle{{X: int16(d.off(x)), Y: int16(d.offY(y)),
			Width: uint16(w), Height: uint16(h)}})
}

func outline(ctx *rdr.Context, d *Dialog, x, y, w, h int) {
	render.FillRectangles(ctx.C.X, render.PictOpSrc, d.cv.Surf.BufferPic, rdr.ColorBlack,
		[]xproto.Rectangle{
			{X: int16(d.off(x)), Y: int16(d.offY(y)), Width: uint16(w), Height: 1},
			{X: int16(d.off(x)), Y: int16(d.offY(y + h - 1)), Width: uint16(w), Height: 1},
			{X: int16(d.off(x)), Y: int16(d.offY(y)), Width: 1, Height: uint16(h)},
			{X: int16(d.off(x + w - 1)), Y: int16(d.offY(y)), Width: 1, Height: uint16(h)},
		})
}
