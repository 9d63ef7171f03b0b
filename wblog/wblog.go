/*
Package wblog configures the process-wide log sink.

AmiWB logs to a single text file under the user's config directory. The file
is truncated when the manager starts and again whenever it grows past the
byte cap, so a long-running session can't fill the disk. Every line carries
a bare [HH:MM:SS] prefix; external tools grep this file, so the format is
part of the manager's interface.
*/
package wblog

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"
)

// MaxLogSize is the byte cap past which the log file is reopened with
// truncation. Checked from the dispatcher's 1 Hz block.
const MaxLogSize = 1 << 20

var (
	mu       sync.Mutex
	file     *os.File
	path     string
	quietErr bool
)

// lineFormatter prints "[HH:MM:SS] message". Level is folded into the
// message for warnings and errors the way the C logger tagged them.
type lineFormatter struct{}

func (lineFormatter) Format(e *log.Entry) ([]byte, error) {
	prefix := ""
	switch e.Level {
	case log.WarnLevel:
		prefix = "[WARNING] "
	case log.ErrorLevel, log.FatalLevel:
		prefix = "[ERROR] "
	}
	return []byte(fmt.Sprintf("[%s] %s%s\n",
		e.Time.Format("15:04:05"), prefix, e.Message)), nil
}

// DefaultPath returns $HOME/.config/amiwb/amiwb.log.
func DefaultPath() string {
	return filepath.Join(os.Getenv("HOME"), ".config", "amiwb", "amiwb.log")
}

// Setup truncates and opens the log file and points logrus at it. Falls
// back to stderr when the file can't be created; the manager still runs.
func Setup(p string) error {
	mu.Lock()
	defer mu.Unlock()

	if p == "" {
		p = DefaultPath()
	}
	path = p
	log.SetFormatter(lineFormatter{})
	log.SetLevel(log.DebugLevel)

	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		log.SetOutput(os.Stderr)
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return err
	}
	file = f
	log.SetOutput(io.MultiWriter(f))
	return nil
}

// CheckCap reopens the file with truncation once it exceeds MaxLogSize.
func CheckCap() {
	mu.Lock()
	defer mu.Unlock()

	if file == nil {
		return
	}
	st, err := file.Stat()
	if err != nil || st.Size() <= MaxLogSize {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return
	}
	old := file
	file = f
	log.SetOutput(f)
	old.Close()
	log.Infof("log exceeded %d bytes, truncated", MaxLogSize)
}

// SetQuiet suppresses error-path logging during restart/shutdown, when X
// errors on already-freed windows are expected and would only add noise.
func SetQuiet(q bool) {
	mu.Lock()
	quietErr = q
	mu.Unlock()
}

// Quiet reports whether error-path logging is currently suppressed.
func Quiet() bool {
	mu.Lock()
	defer mu.Unlock()
	return quietErr
}
