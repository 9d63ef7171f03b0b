package config

/*
shortcuts.go defines the global shortcut table: the keys the manager grabs
on the root window and owns regardless of focus. The table is data, not
code — the router looks up (keysym, modifiers) and acts on the returned
Action. AZERTY equivalents ride along with their QWERTY keys so the grabs
work on both layouts without a setxkbmap round trip.
*/

// Keysym values for the keys the manager grabs. The X11 keysym space is
// enormous; this is only the subset the shortcut table needs.
const (
	XKq         = 0x0071
	XKr         = 0x0072
	XKs         = 0x0073
	XKd         = 0x0064
	XKe         = 0x0065
	XKl         = 0x006c
	XKm         = 0x006d
	XKh         = 0x0068
	XKn         = 0x006e
	XK1         = 0x0031
	XK2         = 0x0032
	XK3         = 0x0033
	XK4         = 0x0034
	XKampersand = 0x0026 // AZERTY unshifted 1
	XKeacute    = 0x00e9 // AZERTY unshifted 2
	XKquotedbl  = 0x0022 // AZERTY unshifted 3
	XKapostroph = 0x0027 // AZERTY unshifted 4

	XF86AudioRaiseVolume  = 0x1008FF13
	XF86AudioLowerVolume  = 0x1008FF11
	XF86AudioMute         = 0x1008FF12
	XF86MonBrightnessUp   = 0x1008FF02
	XF86MonBrightnessDown = 0x1008FF03
)

// Action tags what a grabbed key does. Media actions run shell commands
// from the config; window actions are handled by the manager itself.
type Action int

const (
	ActNone Action = iota
	ActQuit
	ActRestart
	ActSuspend
	ActDebugDump
	ActExecute
	ActLock
	ActCloseWindow
	ActIconify
	ActCycleNext
	ActCyclePrev
	ActViewIcons
	ActViewNames
	ActToggleHidden
	ActWorkspace1
	ActWorkspace2
	ActWorkspace3
	ActWorkspace4
	ActVolumeUp
	ActVolumeDown
	ActVolumeMute
	ActBrightnessUp
	ActBrightnessDown
)

// Shortcut is one grabbed key: keysym plus exact modifier state.
type Shortcut struct {
	Keysym uint32
	Mods   uint16 // xproto.ModMask* combination
	Action Action
}

// Modifier masks, duplicated from xproto so this package stays free of X
// imports and the table stays testable offline.
const (
	ModShift = 1 << 0
	ModCtrl  = 1 << 2
	ModSuper = 1 << 6 // Mod4
)

// Shortcuts is the full grab table. Order matters only for readability.
func Shortcuts() []Shortcut {
	return []Shortcut{
		{XKq, ModSuper | ModShift, ActQuit},
		{XKr, ModSuper | ModShift, ActRestart},
		{XKs, ModSuper | ModShift, ActSuspend},
		{XKd, ModSuper | ModShift, ActDebugDump},
		{XKm, ModSuper | ModShift, ActToggleHidden},

		{XKe, ModSuper, ActExecute},
		{XKl, ModSuper, ActLock},
		{XKq, ModSuper, ActCloseWindow},
		{XKm, ModSuper, ActIconify},

		{XK1, ModSuper, ActWorkspace1},
		{XK2, ModSuper, ActWorkspace2},
		{XK3, ModSuper, ActWorkspace3},
		{XK4, ModSuper, ActWorkspace4},
		{XKampersand, ModSuper, ActWorkspace1},
		{XKeacute, ModSuper, ActWorkspace2},
		{XKquotedbl, ModSuper, ActWorkspace3},
		{XKapostroph, ModSuper, ActWorkspace4},

		{XF86AudioRaiseVolume, 0, ActVolumeUp},
		{XF86AudioLowerVolume, 0, ActVolumeDown},
		{XF86AudioMute, 0, ActVolumeMute},
		{XF86MonBrightnessUp, 0, ActBrightnessUp},
		{XF86MonBrightnessDown, 0, ActBrightnessDown},
	}
}

// LookupShortcut resolves a (keysym, modifier) pair against the table.
// Lock-type modifiers (caps, num) must be stripped by the caller first.
func LookupShortcut(keysym uint32, mods uint16) Action {
	for _, s := range Shortcuts() {
		if s.Keysym == keysym && s.Mods == mods {
			return s.Action
		}
	}
	return ActNone
}

// MediaCommand maps a media action to its configured shell command, or ""
// when the config leaves it unset.
func (c *Config) MediaCommand(a Action) string {
	switch a {
	case ActVolumeUp:
		return c.VolumeUpCmd
	case ActVolumeDown:
		return c.VolumeDownCmd
	case ActVolumeMute:
		return c.VolumeMuteCmd
	case ActBrightnessUp:
		return c.BrightnessUpCmd
	case ActBrightnessDown:
		return c.BrightnessDownCmd
	}
	return ""
}
