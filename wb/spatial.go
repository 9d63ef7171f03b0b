/*
Package wb is the workbench: the desktop and the directory windows, their
icons, spatial placement, drag interactions, and the file-management
verbs behind the menus.
*/
package wb

// spatial.go persists per-directory icon positions. Spatial mode means a
// drawer opens with its icons exactly where the user left them; the store
// is one small TOML file per directory, keyed by entry name, living under
// the manager's config directory rather than polluting the directories
// themselves.

import (
	"crypto/sha1"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	log "github.com/sirupsen/logrus"
)

// IconPos is one saved position.
type IconPos struct {
	X int `toml:"x"`
	Y int `toml:"y"`
}

// PositionFile is the on-disk document.
type PositionFile struct {
	Dir   string             `toml:"dir"`
	Icons map[string]IconPos `toml:"icons"`
}

// SpatialStore reads and writes position files.
type SpatialStore struct {
	Base string // storage directory; empty disables persistence
}

// DefaultSpatialStore stores under $HOME/.config/amiwb/positions.
func DefaultSpatialStore() *SpatialStore {
	return &SpatialStore{
		Base: filepath.Join(os.Getenv("HOME"), ".config", "amiwb", "positions"),
	}
}

// fileFor hashes the directory path into a stable file name.
func (s *SpatialStore) fileFor(dir string) string {
	sum := sha1.Sum([]byte(dir))
	return filepath.Join(s.Base, hex.EncodeToString(sum[:8])+".toml")
}

// Load returns the saved positions for a directory; nil when none.
func (s *SpatialStore) Load(dir string) map[string]IconPos {
	if s == nil || s.Base == "" {
		return nil
	}
	var doc PositionFile
	if _, err := toml.DecodeFile(s.fileFor(dir), &doc); err != nil {
		return nil
	}
	if doc.Dir != dir {
		// Hash collision or stale file; don't apply someone else's layout.
		return nil
	}
	return doc.Icons
}

// Save writes the positions for a directory. An empty map removes the
// file.
func (s *SpatialStore) Save(dir string, icons map[string]IconPos) {
	if s == nil || s.Base == "" {
		return
	}
	path := s.fileFor(dir)
	if len(icons) == 0 {
		os.Remove(path)
		return
	}
	if err := os.MkdirAll(s.Base, 0o755); err != nil {
		log.Warnf("spatial store: %v", err)
		return
	}
	f, err := os.Create(path)
	if err != nil {
		log.Warnf("spatial store: %v", err)
		return
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(PositionFile{Dir: dir, Icons: icons}); err != nil {
		log.Warnf("encoding positions for %s: %v", dir, err)
	}
}
