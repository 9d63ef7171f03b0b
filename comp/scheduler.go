/*
Package comp is the compositor: damage-driven redraw over the Composite,
Damage and XFixes extensions, paced by a timerfd-based frame scheduler.
*/
package comp

import (
	"encoding/binary"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// Scheduler coalesces repaint requests onto frame-timer expiries. Two
// modes: on-demand arms a single shot per ScheduleFrame and re-arms only
// when damage arrived during the paint; continuous keeps a periodic timer
// running regardless.
type Scheduler struct {
	fd         int
	interval   time.Duration
	continuous bool
	armed      bool
	pending    bool // damage arrived while a frame was in flight

	// Ticks delivers one value per timer expiry. A dedicated goroutine
	// pumps the fd into the channel so the dispatcher can select on it
	// alongside the X event channel.
	Ticks chan uint64
}

// NewScheduler creates the timerfd for the given target frame rate.
func NewScheduler(targetFPS int, continuous bool) (*Scheduler, error) {
	if targetFPS <= 0 {
		targetFPS = 120
	}
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("timerfd_create: %w", err)
	}
	s := &Scheduler{
		fd:         fd,
		interval:   time.Second / time.Duration(targetFPS),
		continuous: continuous,
		Ticks:      make(chan uint64, 1),
	}
	if continuous {
		s.armPeriodic()
	}
	go s.pump()
	return s, nil
}

// pump blocks reading the timerfd and forwards expiry counts. It never
// issues X requests; it exists only so the dispatcher can select.
func (s *Scheduler) pump() {
	buf := make([]byte, 8)
	for {
		n, err := unix.Read(s.fd, buf)
		if err == unix.EINTR {
			continue
		}
		if err != nil || n != 8 {
			close(s.Ticks)
			return
		}
		count := binary.LittleEndian.Uint64(buf)
		select {
		case s.Ticks <- count:
		default:
			// A tick is already queued; coalescing is the whole point.
		}
	}
}

func itimer(d time.Duration, periodic bool) unix.ItimerSpec {
	ts := unix.NsecToTimespec(d.Nanoseconds())
	spec := unix.ItimerSpec{Value: ts}
	if periodic {
		spec.Interval = ts
	}
	return spec
}

func (s *Scheduler) armPeriodic() {
	spec := itimer(s.interval, true)
	if err := unix.TimerfdSettime(s.fd, 0, &spec, nil); err != nil {
		log.Errorf("arming frame timer: %v", err)
		return
	}
	s.armed = true
}

func (s *Scheduler) armOnce() {
	spec := itimer(s.interval, false)
	if err := unix.TimerfdSettime(s.fd, 0, &spec, nil); err != nil {
		log.Errorf("arming frame timer: %v", err)
		return
	}
	s.armed = true
}

// ScheduleFrame requests a composite. In on-demand mode the timer is
// armed for one shot if idle; while a shot is pending the request just
// coalesces. In continuous mode this is a no-op.
func (s *Scheduler) ScheduleFrame() {
	if s.continuous {
		return
	}
	if s.armed {
		s.pending = true
		return
	}
	s.pending = false
	s.armOnce()
}

// ConsumeTimer acknowledges a delivered tick. In on-demand mode the
// single shot has now fired and the timer is idle.
func (s *Scheduler) ConsumeTimer() {
	if !s.continuous {
		s.armed = false
	}
}

// FramePainted is called after a paint; when damage accumulated during
// the paint, the next shot is armed immediately.
func (s *Scheduler) FramePainted() {
	if s.continuous || !s.pending {
		return
	}
	s.pending = false
	s.armOnce()
}

// Close releases the timer fd.
func (s *Scheduler) Close() {
	unix.Close(s.fd)
}
