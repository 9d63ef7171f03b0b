package icons

// glow.go decodes GlowIcons: an IFF FORM of type ICON appended after the
// classic DiskObject. FACE chunks carry geometry and flags, IMAG chunks
// carry per-state pixels and palette, both optionally RLE compressed with
// bit-aligned control codes. At most two states: normal then selected.

import (
	"fmt"
	"image"
	"image/color"
)

type glowFace struct {
	width      int
	height     int
	flags      byte
	aspect     byte
	maxPalette int
}

type glowImageHeader struct {
	transparentIndex   int
	numColors          int
	flags              byte
	imageCompression   byte
	paletteCompression byte
	depth              int
	imageSize          int
	paletteSize        int
}

// decodeGlow parses the FORM at offset. The offset may instead point at a
// ToolTypes marker (WIM1=/MIM1=/IM1=), which this decoder deliberately
// refuses: that encoding is detected but not implemented.
func decodeGlow(data []byte, offset int) (*Frames, error) {
	if offset < 0 || offset+12 > len(data) {
		return nil, ErrTooSmall
	}
	if isToolTypesMarker(data[offset:]) {
		return nil, ErrToolTypesEncoding
	}
	if ReadIFFID(data[offset:]) != iffFormID {
		return nil, fmt.Errorf("%w: no FORM at %#x", ErrBadMagic, offset)
	}
	formSize := int(ReadBE32(data[offset+4:]))
	if ReadIFFID(data[offset+8:]) != iffIconID {
		return nil, fmt.Errorf("%w: FORM is not ICON", ErrBadMagic)
	}

	pos := offset + 12
	formEnd := offset + 8 + formSize
	if formEnd > len(data) {
		formEnd = len(data)
	}

	var face glowFace
	hasFace := false
	var states []*image.RGBA
	var firstPalette []color.RGBA

	for pos+8 <= formEnd {
		chunkID := ReadIFFID(data[pos:])
		chunkSize := int(ReadBE32(data[pos+4:]))
		pos += 8

		switch {
		case chunkID == iffFaceID && chunkSize >= 6:
			face = glowFace{
				width:      int(data[pos]) + 1,
				height:     int(data[pos+1]) + 1,
				flags:      data[pos+2],
				aspect:     data[pos+3],
				maxPalette: int(ReadBE16(data[pos+4:])) + 1,
			}
			hasFace = true

		case chunkID == iffImagID && hasFace && len(states) < 2:
			img, pal, err := decodeGlowImage(data, pos, formEnd, face, firstPalette, len(states))
			if err != nil {
				// A broken IMAG ends the walk; earlier states stand.
				pos = formEnd
				break
			}
			if len(states) == 0 && pal != nil {
				firstPalette = pal
			}
			states = append(states, img)
		}

		pos += chunkSize
		if chunkSize&1 == 1 {
			pos++ // chunks are word aligned
		}
	}

	if len(states) == 0 {
		return nil, fmt.Errorf("%w: no IMAG states", ErrBadMagic)
	}
	fr := &Frames{Normal: states[0]}
	if len(states) > 1 {
		fr.Selected = states[1]
	}
	return fr, nil
}

// decodeGlowImage decodes one IMAG chunk starting at pos (past the chunk
// header) into an RGBA frame. Returns the palette it used so the second
// state can reuse the first's when it has none of its own.
func decodeGlowImage(data []byte, pos, formEnd int, face glowFace, firstPalette []color.RGBA, state int) (*image.RGBA, []color.RGBA, error) {
	if pos+10 > formEnd {
		return nil, nil, ErrTooSmall
	}
	hdr := glowImageHeader{
		transparentIndex:   int(data[pos]),
		numColors:          int(data[pos+1]) + 1,
		flags:              data[pos+2],
		imageCompression:   data[pos+3],
		paletteCompression: data[pos+4],
		depth:              int(data[pos+5]),
		imageSize:          int(ReadBE16(data[pos+6:])) + 1,
		paletteSize:        int(ReadBE16(data[pos+8:])) + 1,
	}
	width, height := face.width, face.height
	if width <= 0 || width > 256 || height <= 0 || height > 256 {
		return nil, nil, ErrBadDimensions
	}
	if hdr.depth < 1 || hdr.depth > 8 {
		return nil, nil, ErrBadDepth
	}

	imageOff := pos + 10
	paletteOff := imageOff + hdr.imageSize
	hasPalette := hdr.flags&2 != 0

	if imageOff+hdr.imageSize > formEnd {
		return nil, nil, ErrDataOverrun
	}
	if hasPalette && hdr.paletteSize > 0 && paletteOff+hdr.paletteSize > formEnd {
		return nil, nil, ErrDataOverrun
	}

	// Pixels: uncompressed dump or bit-aligned RLE.
	pixels := make([]uint8, width*height)
	if hdr.imageCompression == 0 {
		copy(pixels, data[imageOff:min(imageOff+width*height, formEnd)])
	} else {
		unpackRLE(data[imageOff:], hdr.imageSize, hdr.depth, pixels)
	}

	// Palette: absent, uncompressed RGB triples, or RLE of 8-bit values.
	var pal []color.RGBA
	switch {
	case !hasPalette && state == 1 && len(firstPalette) > 0:
		pal = firstPalette
	case !hasPalette:
		pal = grayscalePalette()
	case hdr.paletteCompression == 0:
		pal = make([]color.RGBA, 256)
		for i := 0; i < hdr.numColors && i < 256 && paletteOff+i*3+2 < formEnd; i++ {
			pal[i] = color.RGBA{
				R: data[paletteOff+i*3],
				G: data[paletteOff+i*3+1],
				B: data[paletteOff+i*3+2],
				A: 0xFF,
			}
		}
	default:
		rgb := make([]uint8, hdr.numColors*3)
		unpackRLE(data[paletteOff:], hdr.paletteSize, 8, rgb)
		pal = make([]color.RGBA, 256)
		for i := 0; i*3+2 < len(rgb) && i < 256; i++ {
			pal[i] = color.RGBA{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2], A: 0xFF}
		}
	}

	// Transparency: flags bit 0 says transparentIndex is valid.
	if hdr.flags&1 != 0 && hdr.transparentIndex < hdr.numColors && hdr.transparentIndex < len(pal) {
		pal[hdr.transparentIndex] = color.RGBA{}
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			p := int(pixels[y*width+x])
			if p < len(pal) {
				img.SetRGBA(x, y, pal[p])
			}
		}
	}

	var keep []color.RGBA
	if hasPalette {
		keep = pal
	}
	return img, keep, nil
}

// unpackRLE expands the GlowIcon bit-aligned RLE stream into out. A
// control byte c > 128 repeats the next depth-bit value (257-c) times;
// c < 128 copies the next c+1 literal values; c == 128 is skipped. The
// stream carries size bytes but, matching the format's own convention,
// only (size-1)*8 bits are trusted.
func unpackRLE(data []byte, size, depth int, out []uint8) int {
	count := 0
	bitOffset := 0
	maxBits := (size - 1) * 8

	for bitOffset < maxBits && count < len(out) {
		ctrl := ReadBits(data, 8, bitOffset)
		bitOffset += 8

		switch {
		case ctrl > 128:
			value := ReadBits(data, depth, bitOffset)
			bitOffset += depth
			repeat := 257 - int(ctrl)
			for i := 0; i < repeat && count < len(out); i++ {
				out[count] = value
				count++
			}
		case ctrl < 128:
			for i := 0; i <= int(ctrl) && count < len(out); i++ {
				if bitOffset >= maxBits {
					return count
				}
				out[count] = ReadBits(data, depth, bitOffset)
				bitOffset += depth
				count++
			}
		}
		// ctrl == 128: skip.
	}
	return count
}

func grayscalePalette() []color.RGBA {
	pal := make([]color.RGBA, 256)
	for i := range pal {
		g := uint8(i)
		pal[i] = color.RGBA{R: g, G: g, B: g, A: 0xFF}
	}
	return pal
}

func isToolTypesMarker(p []byte) bool {
	if len(p) >= 5 && (p[0] == 'W' || p[0] == 'M') &&
		p[1] == 'I' && p[2] == 'M' && p[3] == '1' && p[4] == '=' {
		return true
	}
	return len(p) >= 4 && p[0] == 'I' && p[1] == 'M' && p[2] == '1' && p[3] == '='
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
