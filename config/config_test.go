package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFullFile(t *testing.T) {
	cfg := Parse(`
# media keys
volume_up_cmd = pactl set-sink-volume @DEFAULT_SINK@ +5%
volume_down_cmd = pactl set-sink-volume @DEFAULT_SINK@ -5%
volume_mute_cmd = pactl set-sink-mute @DEFAULT_SINK@ toggle

desktop_background = /home/user/walls/paris.jpg
desktop_tiling = 1
window_background = /home/user/walls/gray.png
window_tiling = 0

target_fps = 60
render_mode = 1
`)
	assert.Equal(t, "pactl set-sink-volume @DEFAULT_SINK@ +5%", cfg.VolumeUpCmd)
	assert.Equal(t, "/home/user/walls/paris.jpg", cfg.DesktopBackground)
	assert.Equal(t, 1, cfg.DesktopTiling)
	assert.Equal(t, 0, cfg.WindowTiling)
	assert.Equal(t, 60, cfg.TargetFPS)
	assert.Equal(t, 1, cfg.RenderMode)
}

func TestParseCornerCases(t *testing.T) {
	cfg := Parse(`
unknown_key = whatever

   # indented comment
target_fps =    144
desktop_tiling = yes
render_mode =
novalue =
= orphanvalue
justtext
`)
	// Unknown keys are ignored, whitespace-padded values trim, numeric
	// garbage reads as zero, missing values leave defaults alone.
	assert.Equal(t, 144, cfg.TargetFPS)
	assert.Equal(t, 0, cfg.DesktopTiling)
	assert.Equal(t, 0, cfg.RenderMode)
	assert.Equal(t, "", cfg.DesktopBackground)
}

func TestParseEmptyAndMissing(t *testing.T) {
	cfg := Parse("")
	assert.Equal(t, &Config{}, cfg)
	assert.Equal(t, 120, cfg.FPS())

	cfg = Load("/nonexistent/path/amiwbrc")
	assert.Equal(t, &Config{}, cfg)
}

func TestAtoiSemantics(t *testing.T) {
	assert.Equal(t, 12, atoi("12abc"))
	assert.Equal(t, -3, atoi("-3"))
	assert.Equal(t, 0, atoi("abc"))
	assert.Equal(t, 0, atoi(""))
}

func TestShortcutLookup(t *testing.T) {
	assert.Equal(t, ActQuit, LookupShortcut(XKq, ModSuper|ModShift))
	assert.Equal(t, ActCloseWindow, LookupShortcut(XKq, ModSuper))
	assert.Equal(t, ActWorkspace2, LookupShortcut(XKeacute, ModSuper))
	assert.Equal(t, ActVolumeMute, LookupShortcut(XF86AudioMute, 0))
	assert.Equal(t, ActNone, LookupShortcut(XKq, 0))
	assert.Equal(t, ActNone, LookupShortcut(XKq, ModSuper|ModCtrl))
}

func TestMediaCommand(t *testing.T) {
	cfg := Parse("volume_mute_cmd = amixer set Master toggle")
	assert.Equal(t, "amixer set Master toggle", cfg.MediaCommand(ActVolumeMute))
	assert.Equal(t, "", cfg.MediaCommand(ActVolumeUp))
	assert.Equal(t, "", cfg.MediaCommand(ActQuit))
}
