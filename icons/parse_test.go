package icons

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadBE(t *testing.T) {
	b := []byte{0xE3, 0x10, 0x00, 0x01, 0xDE, 0xAD, 0xBE, 0xEF}
	assert.Equal(t, uint16(0xE310), ReadBE16(b))
	assert.Equal(t, uint16(0x0001), ReadBE16(b[2:]))
	assert.Equal(t, uint32(0xDEADBEEF), ReadBE32(b[4:]))
	assert.Equal(t, uint32(0x464F524D), ReadIFFID([]byte("FORM")))
}

func TestReadBitsAligned(t *testing.T) {
	// 0b10110100 0b01000000 ... plus slack.
	data := []byte{0xB4, 0x40, 0x00}
	assert.Equal(t, uint8(0xB4), ReadBits(data, 8, 0))
	assert.Equal(t, uint8(0x2), ReadBits(data, 2, 0)) // top two bits 10
	assert.Equal(t, uint8(0x6), ReadBits(data, 3, 2)) // bits 110
}

func TestReadBitsCrossingByte(t *testing.T) {
	// Field straddling the byte boundary: bits 6..10 of 0xFF 0x00.
	data := []byte{0xFF, 0x00, 0x00}
	assert.Equal(t, uint8(0b11000), ReadBits(data, 5, 6))
}

func TestPlaneDimensions(t *testing.T) {
	rb, ps, total := PlaneDimensions(16, 2, 2)
	assert.Equal(t, 2, rb)
	assert.Equal(t, 4, ps)
	assert.Equal(t, 8, total)

	// Width padding rounds up to 16-bit words.
	rb, _, _ = PlaneDimensions(17, 1, 1)
	assert.Equal(t, 4, rb)
}

// packBits builds a bit-aligned stream for RLE tests.
type bitWriter struct {
	bits []bool
}

func (w *bitWriter) write(v uint8, n int) {
	for i := n - 1; i >= 0; i-- {
		w.bits = append(w.bits, v&(1<<uint(i)) != 0)
	}
}

func (w *bitWriter) bytes() []byte {
	out := make([]byte, (len(w.bits)+7)/8+2) // slack for ReadBits
	for i, b := range w.bits {
		if b {
			out[i/8] |= 1 << uint(7-i%8)
		}
	}
	return out
}

func TestUnpackRLERepeatBranch(t *testing.T) {
	// ctrl 0xFB = 251 → repeat next value 257-251 = 6 times.
	var w bitWriter
	w.write(251, 8)
	w.write(0b101, 3)
	stream := w.bytes()

	out := make([]uint8, 6)
	// size counts one byte beyond the trusted bits, like the format does.
	n := unpackRLE(stream, len(stream), 3, out)
	require.Equal(t, 6, n)
	assert.Equal(t, []uint8{5, 5, 5, 5, 5, 5}, out)
}

func TestUnpackRLELiteralBranch(t *testing.T) {
	// ctrl 2 → copy next 3 literal 4-bit values.
	var w bitWriter
	w.write(2, 8)
	w.write(0xA, 4)
	w.write(0x3, 4)
	w.write(0x7, 4)
	stream := w.bytes()

	out := make([]uint8, 3)
	n := unpackRLE(stream, len(stream), 4, out)
	require.Equal(t, 3, n)
	assert.Equal(t, []uint8{0xA, 0x3, 0x7}, out)
}

func TestUnpackRLESkipAndMix(t *testing.T) {
	var w bitWriter
	w.write(128, 8) // skip
	w.write(255, 8) // repeat next value 2 times
	w.write(1, 2)
	w.write(0, 8) // literal run of 1
	w.write(2, 2)
	stream := w.bytes()

	out := make([]uint8, 3)
	n := unpackRLE(stream, len(stream), 2, out)
	require.Equal(t, 3, n)
	assert.Equal(t, []uint8{1, 1, 2}, out)
}

func TestUnpackRLERejectsOverrun(t *testing.T) {
	// A literal run promising more values than the stream holds must stop
	// at the trusted bit count, not read past it.
	var w bitWriter
	w.write(99, 8) // promises 100 literals
	w.write(0x1, 4)
	stream := w.bytes()

	out := make([]uint8, 200)
	n := unpackRLE(stream, 3, 4, out)
	assert.Less(t, n, 100)
	for _, v := range out[n:] {
		assert.Zero(t, v)
	}
}
