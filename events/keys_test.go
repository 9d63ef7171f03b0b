package events

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/stretchr/testify/assert"
)

// testKeymap builds a tiny two-column mapping by hand:
//   keycode 8 → q / Q
//   keycode 9 → 1 / !
//   keycode 10 → (nothing)
func testKeymap() *Keymap {
	return &Keymap{
		first:   8,
		perCode: 2,
		syms: []xproto.Keysym{
			0x71, 0x51, // q, Q
			0x31, 0x21, // 1, !
			0, 0,
		},
	}
}

func TestKeymapLookup(t *testing.T) {
	km := testKeymap()
	assert.EqualValues(t, 0x71, km.Lookup(8, 0))
	assert.EqualValues(t, 0x51, km.Lookup(8, xproto.ModMaskShift))
	assert.EqualValues(t, 0x31, km.Lookup(9, 0))
	assert.EqualValues(t, 0x21, km.Lookup(9, xproto.ModMaskShift))

	// Out-of-range keycodes resolve to nothing.
	assert.Zero(t, km.Lookup(200, 0))
	assert.Zero(t, km.Lookup(10, 0))
}

func TestKeymapShiftFallback(t *testing.T) {
	// A key with an empty shift column falls back to column zero.
	km := &Keymap{first: 8, perCode: 2, syms: []xproto.Keysym{0x71, 0}}
	assert.EqualValues(t, 0x71, km.Lookup(8, xproto.ModMaskShift))
}

func TestKeymapKeycodes(t *testing.T) {
	km := testKeymap()
	assert.Equal(t, []xproto.Keycode{8}, km.Keycodes(0x71))
	assert.Equal(t, []xproto.Keycode{8}, km.Keycodes(0x51)) // shift column counts
	assert.Equal(t, []xproto.Keycode{9}, km.Keycodes(0x31))
	assert.Empty(t, km.Keycodes(0x7A))
}
