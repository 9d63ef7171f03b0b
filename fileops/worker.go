package fileops

// worker.go: the subprocess protocol. Long operations re-exec this binary
// with a hidden subcommand; the child streams "done\ttotal\tcurrent"
// lines to stdout and the parent reads them without blocking from the
// event loop. Cancel is SIGTERM; reaping is a blocking Wait in a
// goroutine that posts the exit into the job record.

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Op names a worker operation.
type Op string

const (
	OpCopy   Op = "copy"
	OpMove   Op = "move"
	OpDelete Op = "delete"
	OpSize   Op = "size"
)

// WorkerFlag is the argv[1] marker for the subprocess mode.
const WorkerFlag = "-fileop-worker"

// Update is one decoded progress tuple.
type Update struct {
	Done    int64
	Total   int64
	Current string
}

// Job is a running worker seen from the parent.
type Job struct {
	Op       Op
	Src      string
	Dst      string
	cmd      *exec.Cmd
	pipe     *os.File
	buf      []byte
	partial  string
	Last     Update
	done     atomic.Bool
	ExitErr  error
}

// Start launches a worker for the operation.
func Start(op Op, src, dst string) (*Job, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, err
	}
	r, w, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(exe, WorkerFlag, string(op), src, dst)
	cmd.Stdout = w
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		r.Close()
		w.Close()
		return nil, err
	}
	w.Close() // parent keeps only the read end

	if err := unix.SetNonblock(int(r.Fd()), true); err != nil {
		log.Warnf("progress pipe nonblock: %v", err)
	}

	j := &Job{Op: op, Src: src, Dst: dst, cmd: cmd, pipe: r,
		buf: make([]byte, 4096)}

	// Reap without blocking the dispatcher.
	go func() {
		j.ExitErr = cmd.Wait()
		j.done.Store(true)
	}()
	return j, nil
}

// Poll drains whatever progress is waiting on the pipe, without ever
// blocking. Returns the freshest update and whether anything new came in.
func (j *Job) Poll() (Update, bool) {
	fresh := false
	for {
		n, err := j.pipe.Read(j.buf)
		if n > 0 {
			j.partial += string(j.buf[:n])
			for {
				i := strings.IndexByte(j.partial, '\n')
				if i < 0 {
					break
				}
				line := j.partial[:i]
				j.partial = j.partial[i+1:]
				if u, ok := ParseUpdate(line); ok {
					j.Last = u
					fresh = true
				}
			}
		}
		if err != nil || n == 0 {
			break
		}
	}
	return j.Last, fresh
}

// Done reports whether the child exited.
func (j *Job) Done() bool {
	return j.done.Load()
}

// Cancel terminates the child and closes the pipe.
func (j *Job) Cancel() {
	if j.cmd.Process != nil {
		j.cmd.Process.Signal(syscall.SIGTERM)
	}
	j.pipe.Close()
}

// Close releases the parent-side pipe once the job is finished.
func (j *Job) Close() {
	j.pipe.Close()
}

// ParseUpdate decodes one "done\ttotal\tcurrent" line.
func ParseUpdate(line string) (Update, bool) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return Update{}, false
	}
	done, err1 := strconv.ParseInt(parts[0], 10, 64)
	total, err2 := strconv.ParseInt(parts[1], 10, 64)
	if err1 != nil || err2 != nil {
		return Update{}, false
	}
	return Update{Done: done, Total: total, Current: parts[2]}, true
}

// FormatUpdate encodes a progress tuple for the pipe.
func FormatUpdate(u Update) string {
	return fmt.Sprintf("%d\t%d\t%s\n", u.Done, u.Total, u.Current)
}

// RunWorker is the subprocess entry point: argv = [op, src, dst]. It
// writes progress to stdout and exits nonzero on failure.
func RunWorker(args []string) int {
	if len(args) < 3 {
		fmt.Fprintln(os.Stderr, "fileop-worker: bad arguments")
		return 1
	}
	op, src, dst := Op(args[0]), args[1], args[2]

	out := bufio.NewWriter(os.Stdout)
	emit := func(done, total int64, current string) {
		out.WriteString(FormatUpdate(Update{Done: done, Total: total, Current: current}))
		out.Flush()
	}

	var err error
	switch op {
	case OpCopy:
		err = CopyTree(src, dst, emit)
	case OpMove:
		err = MoveTree(src, dst, emit)
	case OpDelete:
		err = DeleteTree(src, emit)
	case OpSize:
		var sz int64
		sz, err = TreeSize(src)
		emit(sz, sz, src)
	default:
		err = fmt.Errorf("unknown operation %q", op)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "fileop-worker %s: %v\n", op, err)
		return 1
	}
	return 0
}
