package dialog

// dialogs.go: the concrete dialogs. Each is a fixed widget layout with
// its callbacks bound at open time.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/nsklaus/amiwb/fileops"
)

// OpenRename shows the rename dialog for a file. onRenamed fires with the
// new path after a successful filesystem rename.
func (m *Manager) OpenRename(path string, onRenamed func(newPath string)) *Dialog {
	old := filepath.Base(path)
	return m.Open("Rename", 320, 96, func(d *Dialog) {
		field := &InputField{X: 12, Y: 16, W: 296, H: 20, Value: old}
		field.Cursor = len(field.Value)
		field.focused = true
		d.focus = field

		commit := func(dd *Dialog, value string) {
			if value == "" || value == old {
				m.Close(dd)
				return
			}
			newPath := filepath.Join(filepath.Dir(path), value)
			if err := os.Rename(path, newPath); err != nil {
				field.Value = old
				dd.Render()
				return
			}
			m.Close(dd)
			if onRenamed != nil {
				onRenamed(newPath)
			}
		}
		field.OnEnter = commit

		d.widgets = []Widget{
			&Label{X: 12, Y: 0, Text: "New name:"},
			field,
			&Button{X: 52, Y: 48, W: 90, H: 24, Label: "Rename",
				OnClick: func(dd *Dialog) { commit(dd, field.Value) }},
			&Button{X: 178, Y: 48, W: 90, H: 24, Label: "Cancel",
				OnClick: func(dd *Dialog) { m.Close(dd) }},
		}
	})
}

// OpenDeleteConfirm asks before deleting, then starts a delete worker
// with a progress dialog.
func (m *Manager) OpenDeleteConfirm(paths []string, onDone func()) *Dialog {
	msg := fmt.Sprintf("Delete %d item(s)?", len(paths))
	if len(paths) == 1 {
		msg = fmt.Sprintf("Delete \"%s\"?", filepath.Base(paths[0]))
	}
	return m.Open("Delete", 320, 88, func(d *Dialog) {
		d.widgets = []Widget{
			&Label{X: 12, Y: 8, Text: msg},
			&Button{X: 52, Y: 44, W: 90, H: 24, Label: "Delete",
				OnClick: func(dd *Dialog) {
					m.Close(dd)
					for _, p := range paths {
						m.OpenProgress(fileops.OpDelete, p, "", onDone)
					}
				}},
			&Button{X: 178, Y: 44, W: 90, H: 24, Label: "Cancel",
				OnClick: func(dd *Dialog) { m.Close(dd) }},
		}
	})
}

// OpenExecute prompts for a shell command and runs it.
func (m *Manager) OpenExecute(run func(cmd string)) *Dialog {
	return m.Open("Execute Command", 360, 96, func(d *Dialog) {
		field := &InputField{X: 12, Y: 16, W: 336, H: 20, PathComplete: true}
		field.focused = true
		d.focus = field
		field.OnEnter = func(dd *Dialog, value string) {
			m.Close(dd)
			if value != "" && run != nil {
				run(value)
			}
		}
		d.widgets = []Widget{
			&Label{X: 12, Y: 0, Text: "Command:"},
			field,
			&Button{X: 70, Y: 48, W: 90, H: 24, Label: "Execute",
				OnClick: func(dd *Dialog) { field.OnEnter(dd, field.Value) }},
			&Button{X: 196, Y: 48, W: 90, H: 24, Label: "Cancel",
				OnClick: func(dd *Dialog) { m.Close(dd) }},
		}
	})
}

// OpenProgress starts a worker subprocess and shows its progress; the
// dialog closes itself when the worker exits. Cancel sends SIGTERM.
func (m *Manager) OpenProgress(op fileops.Op, src, dst string, onDone func()) *Dialog {
	title := map[fileops.Op]string{
		fileops.OpCopy:   "Copying",
		fileops.OpMove:   "Moving",
		fileops.OpDelete: "Deleting",
		fileops.OpSize:   "Calculating",
	}[op]

	return m.Open(title, 360, 110, func(d *Dialog) {
		bar := &ProgressBar{X: 12, Y: 16, W: 336, H: 18, Status: src}
		d.bar = bar
		d.OnClose = onDone

		job, err := fileops.Start(op, src, dst)
		if err != nil {
			bar.Status = "failed to start operation"
		} else {
			d.job = job
		}

		d.widgets = []Widget{
			&Label{X: 12, Y: 0, Text: fmt.Sprintf("%s %s", title, filepath.Base(src))},
			bar,
			&Button{X: 135, Y: 64, W: 90, H: 24, Label: "Stop",
				OnClick: func(dd *Dialog) { m.Close(dd) }},
		}
	})
}

// OpenIconInfo shows file metadata; directory sizes fill in when the
// sizing worker reports.
func (m *Manager) OpenIconInfo(path string, startSize func(path string)) *Dialog {
	st, err := os.Stat(path)
	size := "unknown"
	mode := ""
	if err == nil {
		mode = st.Mode().String()
		if st.IsDir() {
			size = "calculating..."
			if startSize != nil {
				startSize(path)
			}
		} else {
			size = fmt.Sprintf("%d bytes", st.Size())
		}
	}

	return m.Open("Icon Information", 340, 130, func(d *Dialog) {
		d.widgets = []Widget{
			&Label{X: 12, Y: 0, Text: "Name: " + filepath.Base(path)},
			&Label{X: 12, Y: 20, Text: "Path: " + filepath.Dir(path)},
			&Label{X: 12, Y: 40, Text: "Size: " + size},
			&Label{X: 12, Y: 60, Text: "Mode: " + mode},
			&Button{X: 125, Y: 88, W: 90, H: 24, Label: "OK",
				OnClick: func(dd *Dialog) { m.Close(dd) }},
		}
	})
}

// UpdateDirSize patches an open icon-info dialog when its sizing worker
// finishes.
func (m *Manager) UpdateDirSize(path string, bytes int64) {
	for _, d := range m.open {
		for _, w := range d.widgets {
			if l, ok := w.(*Label); ok && l.Text == "Size: calculating..." {
				l.Text = fmt.Sprintf("Size: %d bytes", bytes)
				d.Render()
				if m.Schedule != nil {
					m.Schedule()
				}
				return
			}
		}
	}
}
