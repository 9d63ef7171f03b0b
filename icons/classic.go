package icons

// classic.go renders the planar DiskObject formats. OS1.3 icons are two
// bitplanes over a four-color palette with index 0 transparent; OS3/MWB
// icons are up to eight planes over the MagicWB palette. The OS1.3 layout
// constants below were reverse engineered against a fixture corpus; they
// are not derivable from the DiskObject struct and must not be
// "generalized" without re-running that corpus.

import (
	"fmt"
	"image"
	"image/color"
)

// OS1.3 on-disk layout. Measured offsets: a drawer icon carries its first
// Image struct at 0x86 with bitmap at 0x9A; a tool icon without DrawerData
// starts its bitmap directly at 0x4E with no Image header at all; the
// second (selected) bitmap of the headerless variant sits at 0x2B4.
const (
	os13ImageStruct    = 0x86
	os13FirstBitmap    = 0x9A // os13ImageStruct + imageStructSize
	os13BareBitmap     = 0x4E
	os13SecondBitmap   = 0x2B4
	os3ImageStruct     = 0x4E
	os3FirstBitmap     = 0x62 // os3ImageStruct + imageStructSize
	os3ImageWidthOff   = 82   // 0x52
	os3ImageHeightOff  = 84   // 0x54
	os3ImageDepthOff   = 86   // 0x56
	os3ImageDataOff    = 88   // 0x58
	os13ProbeWidthOff  = 0x8A
	os13ProbeHeightOff = 0x8C
	os13ProbeDepthOff  = 0x8E
	os13ProbeDataOff   = 0x90
)

// OS13Palette is the Workbench 1.3 four-color palette as this manager
// draws it: index 0 transparent, black/white swapped relative to the ROM
// ordering, index 3 the house blue.
func OS13Palette() [4]color.RGBA {
	return [4]color.RGBA{
		{0, 0, 0, 0},          // transparent
		{0x00, 0x00, 0x00, 0xFF}, // black
		{0xFF, 0xFF, 0xFF, 0xFF}, // white
		{0x48, 0x6F, 0xB0, 0xFF}, // blue
	}
}

// MWBPalette is the MagicWB eight-color palette, gray fill instead of
// transparency.
func MWBPalette() [8]color.RGBA {
	return [8]color.RGBA{
		{0xA0, 0xA2, 0xA0, 0xFF}, // background gray
		{0x00, 0x00, 0x00, 0xFF},
		{0xFF, 0xFF, 0xFF, 0xFF},
		{0x66, 0x66, 0xBB, 0xFF},
		{0x99, 0x99, 0x99, 0xFF},
		{0xBB, 0xBB, 0xBB, 0xFF},
		{0xBB, 0xAA, 0x99, 0xFF},
		{0xFF, 0xAA, 0x22, 0xFF},
	}
}

// RenderOS13 draws a two-plane OS1.3 bitmap. The second plane immediately
// follows the first.
func RenderOS13(data []byte, width, height int) (*image.RGBA, error) {
	rowBytes, planeSize, total := PlaneDimensions(width, height, 2)
	if len(data) < total {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrDataOverrun, len(data), total)
	}
	pal := OS13Palette()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := 0
			off := y*rowBytes + (x >> 3)
			if data[off]&(1<<uint(7-(x&7))) != 0 {
				idx |= 1
			}
			if data[planeSize+off]&(1<<uint(7-(x&7))) != 0 {
				idx |= 2
			}
			img.SetRGBA(x, y, pal[idx])
		}
	}
	return img, nil
}

// RenderPlanar draws a variable-depth planar bitmap with the palette
// picked by format (OS1.3 four-color or MagicWB eight-color). Refuses to
// decode when the declared planes exceed the buffer.
func RenderPlanar(data []byte, width, height, depth int, format Format) (*image.RGBA, error) {
	if depth < 1 || depth > 8 {
		return nil, fmt.Errorf("%w: %d", ErrBadDepth, depth)
	}
	rowBytes, planeSize, total := PlaneDimensions(width, height, depth)
	if len(data) < total {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrDataOverrun, len(data), total)
	}

	var pal [8]color.RGBA
	if format == FormatOS13 {
		p4 := OS13Palette()
		copy(pal[:], p4[:])
		for i := 4; i < 8; i++ {
			pal[i] = color.RGBA{0, 0, 0, 0xFF}
		}
	} else {
		pal = MWBPalette()
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			idx := 0
			for p := 0; p < depth; p++ {
				off := p*planeSize + y*rowBytes + (x >> 3)
				if data[off]&(1<<uint(7-(x&7))) != 0 {
					idx |= 1 << uint(p)
				}
			}
			img.SetRGBA(x, y, pal[idx&7])
		}
	}
	return img, nil
}

// decodeClassic walks the DiskObject variants and produces normal plus
// optional selected frames. data must include the LoadFile slack byte.
func decodeClassic(data []byte, format Format) (*Frames, error) {
	if len(data) < diskObjectSize {
		return nil, ErrTooSmall
	}
	userData := ReadBE32(data[offUserData:])
	if userData != 0 && userData != 1 {
		return nil, fmt.Errorf("%w: userData %d", ErrBadMagic, userData)
	}

	// Gadget dimensions are always present and are what Workbench shows.
	width := int(ReadBE16(data[offGadgetWidth:]))
	height := int(ReadBE16(data[offGadgetHeight:]))
	depth := 2
	bitmapOff := 0

	// OS1.x icons may carry an Image struct at 0x86 even without drawer
	// semantics; probe it and prefer its dimensions when they look sane.
	imageAt86 := false
	if userData == 0 && len(data) >= os13ImageStruct+imageStructSize {
		w := int(ReadBE16(data[os13ProbeWidthOff:]))
		h := int(ReadBE16(data[os13ProbeHeightOff:]))
		d := int(ReadBE16(data[os13ProbeDepthOff:]))
		if w > 0 && w <= 256 && h > 0 && h <= 256 && d >= 1 && d <= 8 {
			imageAt86 = true
			width, height, depth = w, h, d
		}
	}

	switch {
	case userData == 0 && imageAt86:
		bitmapOff = os13FirstBitmap
	case userData == 0:
		// Headerless OS1.3 tool icon: planes start right after the
		// DiskObject.
		bitmapOff = os13BareBitmap
	default:
		if len(data) < os3FirstBitmap {
			return nil, ErrTooSmall
		}
		width = int(ReadBE16(data[os3ImageWidthOff:]))
		height = int(ReadBE16(data[os3ImageHeightOff:]))
		depth = int(ReadBE16(data[os3ImageDepthOff:]))
		if ReadBE32(data[os3ImageDataOff:]) == 0 {
			return nil, fmt.Errorf("%w: no image data pointer", ErrBadMagic)
		}
		bitmapOff = os3FirstBitmap
	}

	if width <= 0 || width > 256 || height <= 0 || height > 256 {
		return nil, fmt.Errorf("%w: %dx%d", ErrBadDimensions, width, height)
	}
	if bitmapOff >= len(data) {
		return nil, ErrDataOverrun
	}

	var normal *image.RGBA
	var err error
	if userData == 0 {
		normal, err = RenderOS13(data[bitmapOff:], width, height)
	} else {
		normal, err = RenderPlanar(data[bitmapOff:], width, height, depth, FormatOS3)
	}
	if err != nil {
		return nil, err
	}

	fr := &Frames{Normal: normal}

	// Selected image, when the Gadget says one exists.
	if ReadBE32(data[offSelectRender:]) != 0 {
		_, planeSize, _ := PlaneDimensions(width, height, 1)
		firstSize := planeSize * depth

		switch {
		case userData == 0 && imageAt86:
			// Second Image struct follows the first bitmap.
			selOff := os13FirstBitmap + firstSize
			if selOff+imageStructSize <= len(data) {
				sw := int(ReadBE16(data[selOff+4:]))
				sh := int(ReadBE16(data[selOff+6:]))
				sd := int(ReadBE16(data[selOff+8:]))
				hasData := ReadBE32(data[selOff+10:]) != 0
				if sw > 0 && sw <= 256 && sh > 0 && sh <= 256 && sd >= 1 && sd < 9 && hasData {
					if sel, err := RenderOS13(data[selOff+imageStructSize:], sw, sh); err == nil {
						fr.Selected = sel
					}
				} else if sel, err := RenderOS13(data[selOff:], width, height); err == nil {
					// Raw bitmap with the same dimensions, no header.
					fr.Selected = sel
				}
			}
		case userData == 0:
			// Headerless variant: fixed second-bitmap offset, validated by
			// sniffing for plausible plane data first.
			if os13SecondBitmap+firstSize <= len(data) && looksLikeBitmap(data[os13SecondBitmap:], firstSize) {
				if sel, err := RenderOS13(data[os13SecondBitmap:], width, height); err == nil {
					fr.Selected = sel
				}
			}
		default:
			selOff := os3FirstBitmap + firstSize + imageStructSize
			if selHdr := os3FirstBitmap + firstSize; selHdr+imageStructSize <= len(data) {
				sw := int(ReadBE16(data[selHdr+4:]))
				sh := int(ReadBE16(data[selHdr+6:]))
				sd := int(ReadBE16(data[selHdr+8:]))
				if sw > 0 && sw <= 256 && sh > 0 && sh <= 256 && sd >= 1 && sd <= 8 {
					if sel, err := RenderPlanar(data[selOff:], sw, sh, sd, FormatOS3); err == nil {
						fr.Selected = sel
					}
				}
			}
		}
	}

	return fr, nil
}

// looksLikeBitmap sniffs the first bytes of a candidate plane for content
// that is neither all-zero nor all-ones padding.
func looksLikeBitmap(data []byte, size int) bool {
	n := 32
	if n > size {
		n = size
	}
	if n > len(data) {
		n = len(data)
	}
	for i := 0; i < n; i++ {
		if data[i] != 0x00 && data[i] != 0xFF {
			return true
		}
	}
	// Known padding pattern: zero words then a run of ones.
	if len(data) > 5 && data[0] == 0x00 && data[1] == 0x00 && data[4] == 0xFF && data[5] == 0xFF {
		return true
	}
	return false
}
