package fileops

// fileops.go: the actual tree operations. These run inside the worker
// subprocess for long jobs, or inline for single small files (rename
// dialogs don't need a child process). Errors on one entry are reported
// and the operation moves on to the next file where possible.

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/xattr"
	log "github.com/sirupsen/logrus"
)

// Progress is a callback fired per file with cumulative byte counts.
type Progress func(done, total int64, current string)

// CopyTree copies src (file or directory) into dst. dst is the full
// destination path, not the containing directory.
func CopyTree(src, dst string, progress Progress) error {
	total, _ := TreeSize(src)
	var done int64

	var q Queue
	q.Push(src, dst)
	var firstErr error

	for {
		pair, ok := q.Pop()
		if !ok {
			break
		}
		st, err := os.Lstat(pair.Src)
		if err != nil {
			firstErr = keep(firstErr, err)
			continue
		}

		switch {
		case st.IsDir():
			if err := os.MkdirAll(pair.Dst, st.Mode().Perm()); err != nil {
				firstErr = keep(firstErr, err)
				continue
			}
			copyXattrs(pair.Src, pair.Dst)
			entries, err := os.ReadDir(pair.Src)
			if err != nil {
				firstErr = keep(firstErr, err)
				continue
			}
			for _, e := range entries {
				q.Push(filepath.Join(pair.Src, e.Name()),
					filepath.Join(pair.Dst, e.Name()))
			}

		case st.Mode()&os.ModeSymlink != 0:
			target, err := os.Readlink(pair.Src)
			if err == nil {
				os.Remove(pair.Dst)
				err = os.Symlink(target, pair.Dst)
			}
			firstErr = keep(firstErr, err)

		default:
			n, err := copyFile(pair.Src, pair.Dst, st.Mode().Perm())
			firstErr = keep(firstErr, err)
			done += n
			if progress != nil {
				progress(done, total, pair.Src)
			}
		}
	}
	return firstErr
}

// MoveTree moves src to dst: a rename when possible, copy+delete across
// filesystems.
func MoveTree(src, dst string, progress Progress) error {
	if err := os.Rename(src, dst); err == nil {
		if progress != nil {
			sz, _ := TreeSize(dst)
			progress(sz, sz, dst)
		}
		return nil
	}
	if err := CopyTree(src, dst, progress); err != nil {
		return err
	}
	return DeleteTree(src, nil)
}

// DeleteTree removes src recursively, directories after their contents.
// The walk keeps the traversal iterative: files are removed as the walk
// reaches them, directories are collected and removed backward afterwards.
func DeleteTree(src string, progress Progress) error {
	var dirs []string
	var firstErr error
	var done, total int64

	var q Queue
	q.Push(src, "")
	for {
		pair, ok := q.Pop()
		if !ok {
			break
		}
		st, err := os.Lstat(pair.Src)
		if err != nil {
			firstErr = keep(firstErr, err)
			continue
		}
		if st.IsDir() {
			dirs = append(dirs, pair.Src)
			entries, err := os.ReadDir(pair.Src)
			if err != nil {
				firstErr = keep(firstErr, err)
				continue
			}
			for _, e := range entries {
				q.Push(filepath.Join(pair.Src, e.Name()), "")
			}
		} else {
			total += st.Size()
			if err := os.Remove(pair.Src); err != nil {
				firstErr = keep(firstErr, err)
			} else {
				done += st.Size()
				if progress != nil {
					progress(done, total, pair.Src)
				}
			}
		}
	}
	// Deepest directories queued last; remove in reverse.
	for i := len(dirs) - 1; i >= 0; i-- {
		if err := os.Remove(dirs[i]); err != nil {
			firstErr = keep(firstErr, err)
		}
	}
	return firstErr
}

// TreeSize totals the regular-file bytes under path.
func TreeSize(path string) (int64, error) {
	var total int64
	var q Queue
	q.Push(path, "")
	for {
		pair, ok := q.Pop()
		if !ok {
			break
		}
		st, err := os.Lstat(pair.Src)
		if err != nil {
			continue
		}
		if st.IsDir() {
			entries, err := os.ReadDir(pair.Src)
			if err != nil {
				continue
			}
			for _, e := range entries {
				q.Push(filepath.Join(pair.Src, e.Name()), "")
			}
		} else if st.Mode().IsRegular() {
			total += st.Size()
		}
	}
	return total, nil
}

// copyFile copies one regular file and replays its xattrs. Returns bytes
// copied.
func copyFile(src, dst string, perm os.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("copying %s: %w", src, err)
	}
	copyXattrs(src, dst)
	return n, nil
}

// copyXattrs replays every extended attribute from src onto dst.
// Best-effort: filesystems without xattr support just don't get them,
// same as the cp default.
func copyXattrs(src, dst string) {
	names, err := xattr.List(src)
	if err != nil {
		return
	}
	for _, name := range names {
		val, err := xattr.Get(src, name)
		if err != nil {
			continue
		}
		if err := xattr.Set(dst, name, val); err != nil {
			log.Debugf("xattr %s on %s: %v", name, dst, err)
		}
	}
}

func keep(first, err error) error {
	if err != nil {
		log.Warnf("file operation: %v", err)
	}
	if first != nil {
		return first
	}
	return err
}
