package render

// text.go renders text through freetype into small RGBA strips that are
// then uploaded and composited like any other picture. The font is
// parsed once per process and shared by every TextDraw.

import (
	"image"
	"image/color"
	"image/draw"
	"os"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	log "github.com/sirupsen/logrus"
)

// Candidate font files, tried in order. DejaVu is near-universal on the
// systems this manager targets.
var fontPaths = []string{
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
}

const fontSize = 12.0

var parsedFont *truetype.Font

// loadFont parses the first available candidate once per process.
func loadFont() *truetype.Font {
	if parsedFont != nil {
		return parsedFont
	}
	for _, p := range fontPaths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}
		f, err := freetype.ParseFont(data)
		if err != nil {
			log.Warnf("parsing font %s: %v", p, err)
			continue
		}
		parsedFont = f
		return f
	}
	log.Error("no usable font found; labels will not draw")
	return nil
}

// TextDraw renders strings for one canvas.
type TextDraw struct {
	ctx  *Context
	font *truetype.Font
}

// NewTextDraw builds a text handle over the context's font.
func (ctx *Context) NewTextDraw() *TextDraw {
	return &TextDraw{ctx: ctx, font: loadFont()}
}

// Extents measures a string, returning pixel width and line height.
func (t *TextDraw) Extents(s string) (int, int) {
	if t.font == nil {
		return 0, 0
	}
	face := truetype.NewFace(t.font, &truetype.Options{Size: fontSize, DPI: 72})
	defer face.Close()

	w := 0
	for _, r := range s {
		adv, ok := face.GlyphAdvance(r)
		if !ok {
			continue
		}
		w += adv.Round()
	}
	m := face.Metrics()
	return w, (m.Ascent + m.Descent).Round()
}

// ascent returns the baseline offset for the configured size.
func (t *TextDraw) ascent() int {
	face := truetype.NewFace(t.font, &truetype.Options{Size: fontSize, DPI: 72})
	defer face.Close()
	return face.Metrics().Ascent.Round()
}

// Render draws the string in clr onto a transparent RGBA strip sized to
// its extents. Returns nil when no font is available.
func (t *TextDraw) Render(s string, clr color.Color) *image.RGBA {
	if t.font == nil || s == "" {
		return nil
	}
	w, h := t.Extents(s)
	if w <= 0 || h <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, w+2, h+4))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(t.font)
	c.SetFontSize(fontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(clr))

	pt := freetype.Pt(1, t.ascent())
	if _, err := c.DrawString(s, pt); err != nil {
		log.Debugf("drawing %q: %v", s, err)
		return nil
	}
	return img
}
