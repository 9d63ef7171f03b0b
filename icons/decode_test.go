package icons

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diskObject returns a zeroed classic header with the magic installed.
func diskObject(size int) []byte {
	d := make([]byte, size)
	d[0], d[1] = 0xE3, 0x10
	d[3] = 1
	return d
}

func putBE16(d []byte, off int, v uint16) { d[off], d[off+1] = byte(v>>8), byte(v) }
func putBE32(d []byte, off int, v uint32) {
	d[off], d[off+1], d[off+2], d[off+3] = byte(v>>24), byte(v>>16), byte(v>>8), byte(v)
}

func TestDetectRejectsGarbage(t *testing.T) {
	f, _ := Detect([]byte{1, 2, 3})
	assert.Equal(t, FormatUnknown, f)

	d := make([]byte, 100)
	f, _ = Detect(d)
	assert.Equal(t, FormatUnknown, f)
}

func TestDecodeOS13Headerless(t *testing.T) {
	// 16x2, two planes at 0x4E, no selected image.
	d := diskObject(os13BareBitmap + 8)
	putBE16(d, offGadgetWidth, 16)
	putBE16(d, offGadgetHeight, 2)
	d[offIcType] = 3
	copy(d[os13BareBitmap:], []byte{
		0xFF, 0xFF, 0x00, 0x00, // plane 0: row0 set, row1 clear
		0x00, 0x00, 0xFF, 0xFF, // plane 1: row0 clear, row1 set
	})

	format, off := Detect(d)
	assert.Equal(t, FormatOS13, format)
	assert.Equal(t, -1, off)

	fr, err := Decode(d)
	require.NoError(t, err)
	require.NotNil(t, fr.Normal)
	assert.Nil(t, fr.Selected)
	assert.Equal(t, 16, fr.Normal.Bounds().Dx())
	assert.Equal(t, 2, fr.Normal.Bounds().Dy())

	pal := OS13Palette()
	assert.Equal(t, pal[1], fr.Normal.RGBAAt(0, 0)) // index 1: black
	assert.Equal(t, pal[2], fr.Normal.RGBAAt(5, 1)) // index 2: white
}

func TestDecodeOS3(t *testing.T) {
	// 16x2, one plane at 0x62.
	d := diskObject(os3FirstBitmap + 4)
	putBE16(d, offGadgetWidth, 16)
	putBE16(d, offGadgetHeight, 2)
	putBE32(d, offUserData, 1)
	putBE16(d, os3ImageWidthOff, 16)
	putBE16(d, os3ImageHeightOff, 2)
	putBE16(d, os3ImageDepthOff, 1)
	putBE32(d, os3ImageDataOff, 1)
	copy(d[os3FirstBitmap:], []byte{0x80, 0x00, 0x00, 0x00})

	format, _ := Detect(d)
	assert.Equal(t, FormatOS3, format)

	fr, err := Decode(d)
	require.NoError(t, err)
	mwb := MWBPalette()
	assert.Equal(t, mwb[1], fr.Normal.RGBAAt(0, 0)) // plane bit set: black
	assert.Equal(t, mwb[0], fr.Normal.RGBAAt(1, 0)) // background gray
}

func TestDecodeOS3RefusesShortPlanes(t *testing.T) {
	// Declared 16x16x8 but only 4 bytes of plane data present.
	d := diskObject(os3FirstBitmap + 4)
	putBE32(d, offUserData, 1)
	putBE16(d, os3ImageWidthOff, 16)
	putBE16(d, os3ImageHeightOff, 16)
	putBE16(d, os3ImageDepthOff, 8)
	putBE32(d, os3ImageDataOff, 1)

	_, err := Decode(d)
	assert.ErrorIs(t, err, ErrDataOverrun)
}

// buildGlow assembles a classic header plus FORM/ICON with the given IMAG
// chunk bodies.
func buildGlow(t *testing.T, chunks ...[]byte) []byte {
	t.Helper()
	var form bytes.Buffer
	form.WriteString("ICON")
	for _, c := range chunks {
		form.Write(c)
	}
	head := diskObject(80)
	putBE32(head, offUserData, 1)

	var out bytes.Buffer
	out.Write(head)
	out.WriteString("FORM")
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(form.Len()))
	out.Write(sz[:])
	out.Write(form.Bytes())
	out.WriteByte(0) // LoadFile slack
	return out.Bytes()
}

func chunk(id string, body []byte) []byte {
	var b bytes.Buffer
	b.WriteString(id)
	var sz [4]byte
	binary.BigEndian.PutUint32(sz[:], uint32(len(body)))
	b.Write(sz[:])
	b.Write(body)
	if len(body)%2 == 1 {
		b.WriteByte(0)
	}
	return b.Bytes()
}

func TestDecodeGlowIconTwoStates(t *testing.T) {
	face := chunk("FACE", []byte{3, 1, 0, 0, 0, 3}) // 4x2, 4 colors

	// First IMAG: uncompressed pixels and palette, transparent index 0.
	img1 := []byte{
		0, 3, 3, 0, // transparent, numColors-1, flags=transp|palette, imageComp
		0, 2, // paletteComp, depth
		0, 7, // imageSize-1 = 8 bytes
		0, 11, // paletteSize-1 = 12 bytes
		0, 1, 2, 3,
		3, 2, 1, 0,
		0, 0, 0, 255, 0, 0, 0, 255, 0, 0, 0, 255,
	}
	// Second IMAG: no palette of its own; reuses the first's.
	img2 := []byte{
		0, 3, 0, 0,
		0, 2,
		0, 7,
		0, 0,
		3, 3, 3, 3,
		0, 0, 0, 0,
	}
	data := buildGlow(t, face, chunk("IMAG", img1), chunk("IMAG", img2))

	format, off := Detect(data)
	require.Equal(t, FormatGlowIcon, format)
	require.Equal(t, 80, off)

	fr, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, fr.Normal)
	require.NotNil(t, fr.Selected)

	assert.Equal(t, 4, fr.Normal.Bounds().Dx())
	assert.Equal(t, 2, fr.Normal.Bounds().Dy())

	// Index 0 transparent, 1 red, 2 green, 3 blue.
	assert.Equal(t, color.RGBA{}, fr.Normal.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{255, 0, 0, 255}, fr.Normal.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{0, 255, 0, 255}, fr.Normal.RGBAAt(1, 1))

	// Second state reused the first palette: index 3 blue, index 0
	// transparent.
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, fr.Selected.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{}, fr.Selected.RGBAAt(0, 1))
}

func TestDecodeGlowRLEPixels(t *testing.T) {
	face := chunk("FACE", []byte{3, 1, 0, 0, 0, 3})

	// RLE stream: ctrl 251 repeats value 1 six times; then literal run of
	// two values 2, 3. depth 2.
	var w bitWriter
	w.write(251, 8)
	w.write(1, 2)
	w.write(1, 8) // literal count-1 = 1 → two literals
	w.write(2, 2)
	w.write(3, 2)
	stream := w.bytes()

	body := []byte{
		0, 3, 2, 1, // no transparency, 4 colors, has-palette, RLE pixels
		0, 2,
	}
	var szb [2]byte
	binary.BigEndian.PutUint16(szb[:], uint16(len(stream)-1))
	body = append(body, szb[:]...)
	body = append(body, 0, 11)
	body = append(body, stream...)
	body = append(body,
		10, 10, 10, 20, 20, 20, 30, 30, 30, 40, 40, 40)

	data := buildGlow(t, face, chunk("IMAG", body))
	fr, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, color.RGBA{20, 20, 20, 255}, fr.Normal.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{20, 20, 20, 255}, fr.Normal.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{30, 30, 30, 255}, fr.Normal.RGBAAt(2, 1))
	assert.Equal(t, color.RGBA{40, 40, 40, 255}, fr.Normal.RGBAAt(3, 1))
}

func TestDecodeToolTypesRefused(t *testing.T) {
	d := diskObject(120)
	copy(d[90:], "WIM1=")
	_, err := Decode(d)
	assert.ErrorIs(t, err, ErrToolTypesEncoding)
}

// buildAicon assembles a container with the given sections.
func buildAicon(sections map[uint32][]byte) []byte {
	var payload bytes.Buffer
	type entry struct {
		typ, off, size uint32
	}
	var entries []entry
	base := uint32(aiconHeaderSize + len(sections)*aiconEntrySize)
	for _, typ := range []uint32{sectionPNGNormal, sectionPNGSelected, sectionMetadata} {
		data, ok := sections[typ]
		if !ok {
			continue
		}
		entries = append(entries, entry{typ, base + uint32(payload.Len()), uint32(len(data))})
		payload.Write(data)
	}

	var out bytes.Buffer
	out.WriteString("AICON")
	out.WriteByte(aiconVersion)
	out.WriteByte(byte(len(entries)))
	out.WriteByte(0)
	for _, e := range entries {
		binary.Write(&out, binary.LittleEndian, e.typ)
		binary.Write(&out, binary.LittleEndian, e.off)
		binary.Write(&out, binary.LittleEndian, e.size)
	}
	out.Write(payload.Bytes())
	return out.Bytes()
}

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func TestDecodeAiconNormalOnly(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{200, 100, 50, 255})
	src.SetRGBA(1, 0, color.RGBA{0, 0, 0, 0})
	src.SetRGBA(0, 1, color.RGBA{255, 255, 255, 255})
	src.SetRGBA(1, 1, color.RGBA{10, 20, 30, 255})

	data := buildAicon(map[uint32][]byte{sectionPNGNormal: encodePNG(t, src)})
	fr, err := Decode(data)
	require.NoError(t, err)
	require.NotNil(t, fr.Normal)
	require.NotNil(t, fr.Selected)
	assert.Equal(t, 2, fr.Normal.Bounds().Dx())

	// With no selected PNG, the selected frame is the darkened normal.
	want := Darken(fr.Normal)
	assert.Equal(t, want.Pix, fr.Selected.Pix)
}

func TestDecodeAiconWithSelectedAndMeta(t *testing.T) {
	n := image.NewRGBA(image.Rect(0, 0, 1, 1))
	n.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	s := image.NewRGBA(image.Rect(0, 0, 1, 1))
	s.SetRGBA(0, 0, color.RGBA{1, 2, 3, 255})

	meta := make([]byte, 8)
	binary.LittleEndian.PutUint32(meta, 40)
	binary.LittleEndian.PutUint32(meta[4:], 60)

	data := buildAicon(map[uint32][]byte{
		sectionPNGNormal:   encodePNG(t, n),
		sectionPNGSelected: encodePNG(t, s),
		sectionMetadata:    meta,
	})
	fr, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{1, 2, 3, 255}, fr.Selected.RGBAAt(0, 0))
	assert.Equal(t, 40, fr.Meta.X)
	assert.Equal(t, 60, fr.Meta.Y)
}

func TestDecodeAiconBadSection(t *testing.T) {
	data := buildAicon(map[uint32][]byte{sectionPNGNormal: {1, 2, 3}})
	// Corrupt the section size to point past the end.
	binary.LittleEndian.PutUint32(data[aiconHeaderSize+8:], 1<<20)
	_, err := Decode(data)
	assert.ErrorIs(t, err, ErrDataOverrun)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]byte{0xE3})
	assert.ErrorIs(t, err, ErrTooSmall)

	junk := make([]byte, 100)
	_, err = Decode(junk)
	assert.ErrorIs(t, err, ErrBadMagic)
}

func TestDarkenLaw(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 200, 100, 255})
	src.SetRGBA(1, 0, color.RGBA{5, 4, 3, 128})
	src.SetRGBA(2, 0, color.RGBA{50, 60, 70, 0}) // alpha 0: untouched
	src.SetRGBA(3, 0, color.RGBA{0, 0, 0, 255})

	dst := Darken(src)
	assert.Equal(t, color.RGBA{204, 160, 80, 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{4, 3, 2, 128}, dst.RGBAAt(1, 0))
	assert.Equal(t, color.RGBA{50, 60, 70, 0}, dst.RGBAAt(2, 0))
	assert.Equal(t, color.RGBA{0, 0, 0, 255}, dst.RGBAAt(3, 0))
}
