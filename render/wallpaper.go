package render

// wallpaper.go caches the desktop and window backgrounds as repeat
// pictures. Tiling composites the source repeatedly into a screen-sized
// pixmap; non-tiling scales to fit. Both are built once at startup at the
// screen size of that moment; a screen-size change does not rebuild them.
// The cache owns its pixmaps and pictures.

import (
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/BurntSushi/graphics-go/graphics"
	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"
)

// Wallpaper is one cached background.
type Wallpaper struct {
	Pixmap  xproto.Pixmap
	Picture render.Picture
	Valid   bool
}

// WallpaperCache holds the two backgrounds.
type WallpaperCache struct {
	Desktop Wallpaper
	Window  Wallpaper
}

// LoadWallpapers builds both backgrounds from the configured paths. Empty
// paths leave the slot invalid, which paints as flat color.
func (ctx *Context) LoadWallpapers(cache *WallpaperCache,
	desktopPath string, desktopTile bool,
	windowPath string, windowTile bool,
	screenW, screenH int) {

	ctx.FreeWallpapers(cache)
	cache.Desktop = ctx.loadWallpaper(desktopPath, desktopTile, screenW, screenH)
	cache.Window = ctx.loadWallpaper(windowPath, windowTile, screenW, screenH)
}

func (ctx *Context) loadWallpaper(path string, tile bool, sw, sh int) Wallpaper {
	if path == "" {
		return Wallpaper{}
	}
	f, err := os.Open(path)
	if err != nil {
		log.Warnf("wallpaper %s: %v", path, err)
		return Wallpaper{}
	}
	defer f.Close()
	src, _, err := image.Decode(f)
	if err != nil {
		log.Warnf("decoding wallpaper %s: %v", path, err)
		return Wallpaper{}
	}

	out := image.NewRGBA(image.Rect(0, 0, sw, sh))
	if tile {
		b := src.Bounds()
		for y := 0; y < sh; y += b.Dy() {
			for x := 0; x < sw; x += b.Dx() {
				draw.Draw(out, image.Rect(x, y, x+b.Dx(), y+b.Dy()),
					src, b.Min, draw.Src)
			}
		}
	} else {
		if err := graphics.Scale(out, src); err != nil {
			log.Warnf("scaling wallpaper %s: %v", path, err)
			return Wallpaper{}
		}
	}

	pid, err := ctx.UploadRGBA(out)
	if err != nil {
		return Wallpaper{}
	}
	pic, err := render.NewPictureId(ctx.C.X)
	if err != nil {
		xproto.FreePixmap(ctx.C.X, pid)
		return Wallpaper{}
	}
	render.CreatePicture(ctx.C.X, pic, xproto.Drawable(pid), ctx.ARGB32,
		render.CpRepeat, []uint32{1})
	return Wallpaper{Pixmap: pid, Picture: pic, Valid: true}
}

// FreeWallpapers drops both cached backgrounds.
func (ctx *Context) FreeWallpapers(cache *WallpaperCache) {
	for _, w := range []*Wallpaper{&cache.Desktop, &cache.Window} {
		if w.Picture != 0 {
			render.FreePicture(ctx.C.X, w.Picture)
		}
		if w.Pixmap != 0 {
			xproto.FreePixmap(ctx.C.X, w.Pixmap)
		}
		*w = Wallpaper{}
	}
}
