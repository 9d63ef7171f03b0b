package icons

// detect.go classifies a loaded .info file. Detection order matters and
// mirrors the behavior real icon collections require: ToolTypes markers
// are checked before FORM chunks because they're more specific, and
// FORM/ICON is checked before the userData dispatch because many
// GlowIcons carry a garbage classic header in front of perfectly good
// IFF chunks.

import (
	"errors"
	"os"
)

// Format tags the recognized icon families.
type Format int

const (
	FormatUnknown Format = iota
	FormatOS13
	FormatOS3
	FormatGlowIcon
)

func (f Format) String() string {
	switch f {
	case FormatOS13:
		return "os1.3"
	case FormatOS3:
		return "os3"
	case FormatGlowIcon:
		return "glowicon"
	}
	return "unknown"
}

// Decoder failure modes. Callers match with errors.Is; the scan treats any
// of them as "fall back to the default icon".
var (
	ErrTooSmall          = errors.New("icon file too small")
	ErrBadMagic          = errors.New("not an Amiga icon")
	ErrBadDimensions     = errors.New("icon dimensions out of range")
	ErrBadDepth          = errors.New("icon depth outside 1..8")
	ErrDataOverrun       = errors.New("icon data exceeds buffer")
	ErrToolTypesEncoding = errors.New("glowicon tooltypes encoding (WIM1/MIM1/IM1) not supported")
)

// DiskObject layout constants. These offsets are the classic Amiga
// struct DiskObject as it appears on disk.
const (
	diskObjectMagic = 0xE310
	diskObjectSize  = 78   // sizeof(struct DiskObject)
	drawerDataSize  = 56   // sizeof(struct DrawerData)
	offUserData     = 0x2C // do_Gadget.UserData: 0 = OS1.x, 1 = OS3
	offIcType       = 0x30 // do_Type: 1,2 carry DrawerData
	offGadgetWidth  = 0x0C
	offGadgetHeight = 0x0E
	offSelectRender = 0x1A // do_Gadget.SelectRender: nonzero = second image

	imageStructSize = 20 // sizeof(struct Image) on disk
	iconHeaderSize  = 20
)

const (
	iffFormID = 0x464F524D // "FORM"
	iffIconID = 0x49434F4E // "ICON"
	iffFaceID = 0x46414345 // "FACE"
	iffImagID = 0x494D4147 // "IMAG"
)

// Detect classifies data and, for GlowIcons, returns the offset of the
// FORM chunk or ToolTypes marker. The offset is -1 when not applicable.
func Detect(data []byte) (Format, int) {
	if len(data) < diskObjectSize {
		return FormatUnknown, -1
	}
	if ReadBE16(data) != diskObjectMagic || ReadBE16(data[2:]) != 1 {
		return FormatUnknown, -1
	}

	// ToolTypes markers first: WIM1= / MIM1= mean a GlowIcon encoded as
	// 7-bit ASCII tool types.
	for i := diskObjectSize; i+5 <= len(data); i++ {
		if (data[i] == 'W' || data[i] == 'M') &&
			data[i+1] == 'I' && data[i+2] == 'M' && data[i+3] == '1' && data[i+4] == '=' {
			return FormatGlowIcon, i
		}
	}
	// IM1= is the NewIcon marker; treated as the GlowIcon start point.
	for i := diskObjectSize; i+4 <= len(data); i++ {
		if data[i] == 'I' && data[i+1] == 'M' && data[i+2] == '1' && data[i+3] == '=' {
			return FormatGlowIcon, i
		}
	}
	// FORM/ICON chunk scan.
	for i := diskObjectSize; i+12 <= len(data); i++ {
		if ReadIFFID(data[i:]) == iffFormID && ReadIFFID(data[i+8:]) == iffIconID {
			return FormatGlowIcon, i
		}
	}

	switch ReadBE32(data[offUserData:]) {
	case 0:
		return FormatOS13, -1
	case 1:
		return FormatOS3, -1
	}
	return FormatUnknown, -1
}

// LoadFile reads a whole .info file plus one byte of slack so ReadBits can
// always load its second byte without running off the end.
func LoadFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data := make([]byte, len(raw)+1)
	copy(data, raw)
	return data[:len(raw)+1], nil
}
