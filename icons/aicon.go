package icons

// aicon.go decodes the AICON container: a small header, a section
// directory, and PNG payloads. The layout is little-endian (it is a
// struct dump from the reference implementation's only target). When the
// container carries no selected PNG, the selected frame is synthesized by
// darkening the normal one.

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/draw"
	"image/png"
)

const (
	aiconVersion    = 1
	aiconHeaderSize = 8  // magic[5] + version + sectionCount + pad
	aiconEntrySize  = 12 // type u32 + offset u32 + size u32

	sectionPNGNormal   = 1
	sectionPNGSelected = 2
	sectionMetadata    = 3
)

var aiconMagic = []byte("AICON")

// AiconMeta is the optional metadata section: a position hint for spatial
// placement. Zero values mean "no hint".
type AiconMeta struct {
	X, Y int
}

// IsAicon reports whether data starts with the AICON magic.
func IsAicon(data []byte) bool {
	return len(data) >= 5 && bytes.Equal(data[:5], aiconMagic)
}

// decodeAicon parses the container and decodes its PNGs.
func decodeAicon(data []byte) (*Frames, error) {
	if len(data) < aiconHeaderSize {
		return nil, ErrTooSmall
	}
	if !IsAicon(data) {
		return nil, fmt.Errorf("%w: missing AICON magic", ErrBadMagic)
	}
	if data[5] != aiconVersion {
		return nil, fmt.Errorf("%w: aicon version %d", ErrBadMagic, data[5])
	}
	numSections := int(data[6])
	dirEnd := aiconHeaderSize + numSections*aiconEntrySize
	if dirEnd > len(data) {
		return nil, ErrTooSmall
	}

	var normalData, selectedData []byte
	var meta AiconMeta
	for i := 0; i < numSections; i++ {
		entry := data[aiconHeaderSize+i*aiconEntrySize:]
		typ := binary.LittleEndian.Uint32(entry)
		offset := int(binary.LittleEndian.Uint32(entry[4:]))
		size := int(binary.LittleEndian.Uint32(entry[8:]))
		if offset < 0 || size < 0 || offset+size > len(data) {
			return nil, fmt.Errorf("%w: section %d", ErrDataOverrun, i)
		}
		switch typ {
		case sectionPNGNormal:
			normalData = data[offset : offset+size]
		case sectionPNGSelected:
			selectedData = data[offset : offset+size]
		case sectionMetadata:
			if size >= 8 {
				meta.X = int(int32(binary.LittleEndian.Uint32(data[offset:])))
				meta.Y = int(int32(binary.LittleEndian.Uint32(data[offset+4:])))
			}
		}
	}

	if len(normalData) == 0 {
		return nil, fmt.Errorf("%w: aicon missing normal PNG", ErrBadMagic)
	}

	normal, err := decodePNG(normalData)
	if err != nil {
		return nil, fmt.Errorf("aicon normal png: %w", err)
	}

	fr := &Frames{Normal: normal, Meta: meta}
	if len(selectedData) > 0 {
		if sel, err := decodePNG(selectedData); err == nil {
			fr.Selected = sel
		}
	}
	if fr.Selected == nil {
		fr.Selected = Darken(normal)
	}
	return fr, nil
}

func decodePNG(data []byte) (*image.RGBA, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba, nil
	}
	rgba := image.NewRGBA(img.Bounds())
	draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
	return rgba, nil
}
