package render

// image.go uploads image.RGBA frames into X pixmaps and pictures. The
// server wants BGRA byte order and requests capped at the maximum request
// size, so uploads convert and chunk row-wise.

import (
	"image"

	"github.com/BurntSushi/xgb/render"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/nsklaus/amiwb/xcore"
)

// putImageOverhead is the fixed part of a PutImage request.
const putImageOverhead = 28

// UploadRGBA creates a depth-32 pixmap holding img. The caller owns the
// pixmap.
func (ctx *Context) UploadRGBA(img *image.RGBA) (xproto.Pixmap, error) {
	c := ctx.C
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	pid, err := xproto.NewPixmapId(c.X)
	if err != nil {
		return 0, err
	}
	xproto.CreatePixmap(c.X, 32, pid, xproto.Drawable(c.Root),
		uint16(w), uint16(h))

	// RGBA → BGRA, premultiplying is not needed: icon frames are either
	// fully opaque or fully transparent per pixel, and PictOpOver treats
	// the data as premultiplied which matches both cases.
	data := make([]byte, w*h*4)
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.PixOffset(b.Min.X, y)
		for x := 0; x < w; x++ {
			r, g, bl, a := img.Pix[row], img.Pix[row+1], img.Pix[row+2], img.Pix[row+3]
			data[i+0] = bl
			data[i+1] = g
			data[i+2] = r
			data[i+3] = a
			row += 4
			i += 4
		}
	}

	ctx.putChunked(xproto.Drawable(pid), c.GC32(), w, h, 32, data)
	return pid, nil
}

// putChunked splits an upload into PutImage requests that fit the maximum
// request size, sending whole rows per request.
func (ctx *Context) putChunked(d xproto.Drawable, gc xproto.Gcontext, w, h, depth int, data []byte) {
	c := ctx.C
	rowBytes := w * 4
	rowsPer := (xcore.MaxReqSize - putImageOverhead) / rowBytes
	if rowsPer < 1 {
		rowsPer = 1
	}
	y := 0
	for start := 0; start < len(data); {
		end := start + rowsPer*rowBytes
		if end > len(data) {
			end = len(data)
		}
		chunk := data[start:end]
		rows := len(chunk) / rowBytes
		xproto.PutImage(c.X, xproto.ImageFormatZPixmap, d, gc,
			uint16(w), uint16(rows), 0, int16(y), 0, byte(depth), chunk)
		start = end
		y += rows
	}
}

// PictureFromRGBA uploads img and wraps it in an ARGB32 picture. The
// pixmap is released immediately; the picture keeps the data alive.
func (ctx *Context) PictureFromRGBA(img *image.RGBA) (render.Picture, error) {
	pid, err := ctx.UploadRGBA(img)
	if err != nil {
		return 0, err
	}
	pic, err := render.NewPictureId(ctx.C.X)
	if err != nil {
		xproto.FreePixmap(ctx.C.X, pid)
		return 0, err
	}
	render.CreatePicture(ctx.C.X, pic, xproto.Drawable(pid), ctx.ARGB32, 0, nil)
	xproto.FreePixmap(ctx.C.X, pid)
	return pic, nil
}

// FreePicture releases a picture, tolerating zero handles.
func (ctx *Context) FreePicture(p render.Picture) {
	if p != 0 {
		render.FreePicture(ctx.C.X, p)
	}
}
