package events

// keys.go: keyboard mapping and the root-window grabs for the global
// shortcut table. The keycode→keysym table is loaded once and refreshed
// on MappingNotify.

import (
	"github.com/BurntSushi/xgb/xproto"
	log "github.com/sirupsen/logrus"

	"github.com/nsklaus/amiwb/config"
	"github.com/nsklaus/amiwb/xcore"
)

// Keymap resolves keycodes to keysyms.
type Keymap struct {
	first   xproto.Keycode
	perCode int
	syms    []xproto.Keysym
}

// LoadKeymap fetches the full keyboard mapping.
func LoadKeymap(c *xcore.Conn) (*Keymap, error) {
	const lo, hi = 8, 255
	reply, err := xproto.GetKeyboardMapping(c.X, lo, hi-lo+1).Reply()
	if err != nil {
		return nil, err
	}
	return &Keymap{
		first:   lo,
		perCode: int(reply.KeysymsPerKeycode),
		syms:    reply.Keysyms,
	}, nil
}

// Lookup resolves a keycode with a modifier state to a keysym. Only the
// shift column matters for the shortcut table; lock modifiers are the
// caller's to strip.
func (k *Keymap) Lookup(code xproto.Keycode, state uint16) uint32 {
	idx := (int(code) - int(k.first)) * k.perCode
	if idx < 0 || idx >= len(k.syms) {
		return 0
	}
	col := 0
	if state&xproto.ModMaskShift != 0 && k.perCode > 1 {
		col = 1
	}
	sym := uint32(k.syms[idx+col])
	if sym == 0 && col == 1 {
		sym = uint32(k.syms[idx])
	}
	return sym
}

// Keycodes returns every keycode producing the keysym in any column.
func (k *Keymap) Keycodes(sym uint32) []xproto.Keycode {
	var out []xproto.Keycode
	for code := 0; code*k.perCode < len(k.syms); code++ {
		for col := 0; col < k.perCode; col++ {
			if uint32(k.syms[code*k.perCode+col]) == sym {
				out = append(out, xproto.Keycode(code)+k.first)
				break
			}
		}
	}
	return out
}

// lock modifier combinations a grab must tolerate: none, caps, num,
// caps+num.
var lockCombos = []uint16{0, xproto.ModMaskLock, xproto.ModMask2,
	xproto.ModMaskLock | xproto.ModMask2}

// GrabShortcuts grabs the whole table on the root so the manager owns
// these keys regardless of focus.
func GrabShortcuts(c *xcore.Conn, km *Keymap) {
	for _, s := range config.Shortcuts() {
		codes := km.Keycodes(s.Keysym)
		if len(codes) == 0 {
			log.Debugf("no keycode for keysym %#x; shortcut skipped", s.Keysym)
			continue
		}
		for _, code := range codes {
			for _, lock := range lockCombos {
				err := xproto.GrabKeyChecked(c.X, false, c.Root,
					s.Mods|lock, code,
					xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
				if err != nil {
					log.Debugf("grabbing keysym %#x mods %#x: %v", s.Keysym, s.Mods, err)
				}
			}
		}
	}
}

// StripLocks removes lock-type modifiers from an event state before
// table lookup.
func StripLocks(state uint16) uint16 {
	return state &^ (xproto.ModMaskLock | xproto.ModMask2)
}
