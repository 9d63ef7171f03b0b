/*
Package config reads the amiwbrc file.

The format is deliberately dumb: one "key = value" pair per line, '#' opens
a comment, unknown keys are ignored, a missing file leaves every field at
its zero value. Numeric fields parse with atoi semantics — garbage becomes
zero, silently. Other AmiWB processes read the same file, so none of this
can get cleverer without coordination.
*/
package config

import (
	"bufio"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Config is the flat record loaded once at startup and again on explicit
// reload. Fields mirror the amiwbrc keys one to one.
type Config struct {
	BrightnessUpCmd   string
	BrightnessDownCmd string
	VolumeUpCmd       string
	VolumeDownCmd     string
	VolumeMuteCmd     string

	DesktopBackground string
	DesktopTiling     int
	WindowBackground  string
	WindowTiling      int

	TargetFPS  int
	RenderMode int // 0 = on-demand, 1 = continuous
}

// DefaultPath returns $HOME/.config/amiwb/amiwbrc.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "amiwb", "amiwbrc")
}

// Load reads the config file at path. A missing or unreadable file is not
// an error: the zero Config is the documented default.
func Load(path string) *Config {
	cfg := &Config{}
	f, err := os.Open(path)
	if err != nil {
		return cfg
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		parseLine(cfg, sc.Text())
	}
	return cfg
}

// Parse reads config from an in-memory string. Split out of Load so the
// corner cases are testable without touching the filesystem.
func Parse(text string) *Config {
	cfg := &Config{}
	for _, line := range strings.Split(text, "\n") {
		parseLine(cfg, line)
	}
	return cfg
}

func parseLine(cfg *Config, line string) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return
	}
	eq := strings.IndexByte(trimmed, '=')
	if eq < 0 {
		return
	}
	key := strings.TrimSpace(trimmed[:eq])
	value := strings.TrimSpace(trimmed[eq+1:])
	if key == "" || value == "" {
		return
	}

	switch key {
	case "brightness_up_cmd":
		cfg.BrightnessUpCmd = value
	case "brightness_down_cmd":
		cfg.BrightnessDownCmd = value
	case "volume_up_cmd":
		cfg.VolumeUpCmd = value
	case "volume_down_cmd":
		cfg.VolumeDownCmd = value
	case "volume_mute_cmd":
		cfg.VolumeMuteCmd = value
	case "desktop_background":
		cfg.DesktopBackground = value
	case "desktop_tiling":
		cfg.DesktopTiling = atoi(value)
	case "window_background":
		cfg.WindowBackground = value
	case "window_tiling":
		cfg.WindowTiling = atoi(value)
	case "target_fps":
		cfg.TargetFPS = atoi(value)
	case "render_mode":
		cfg.RenderMode = atoi(value)
	}
	// Unknown key: silently ignore.
}

// atoi mirrors C atoi: leading digits parse, anything else is zero.
func atoi(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0
	}
	return n
}

// FPS returns the target frame rate with the documented default applied.
func (c *Config) FPS() int {
	if c.TargetFPS <= 0 {
		return 120
	}
	return c.TargetFPS
}
