package testutil

import (
	"time"

	"github.com/stjordanis/jsdares/internal/input"
)

// ManualScheduler is a virtual-time input.Scheduler for tests.
//
// Time only moves when Advance is called. Callbacks run synchronously inside
// Advance, in due-time order, ties broken by creation order. This makes
// coalescing and interval behaviour fully deterministic.
//
// Not safe for concurrent use: like the host loop it stands in for, it must
// be driven from a single goroutine.
type ManualScheduler struct {
	now    time.Duration
	seq    int
	timers []*manualTimer
}

type manualTimer struct {
	due     time.Duration
	period  time.Duration // zero for one-shot timers
	seq     int
	fn      func()
	stopped bool
}

// Stop cancels the timer. Idempotent.
func (t *manualTimer) Stop() {
	t.stopped = true
}

// NewManualScheduler creates a scheduler at virtual time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// AfterFunc schedules fn to run once, d after the current virtual time.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) input.Timer {
	return s.add(d, 0, fn)
}

// Every schedules fn to run every d.
func (s *ManualScheduler) Every(d time.Duration, fn func()) input.Timer {
	return s.add(d, d, fn)
}

func (s *ManualScheduler) add(d, period time.Duration, fn func()) *manualTimer {
	s.seq++
	t := &manualTimer{due: s.now + d, period: period, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Advance moves virtual time forward by d, firing every timer that falls due.
// Timers created by callbacks fire too if they fall due within the window.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		t := s.next(target)
		if t == nil {
			break
		}
		s.now = t.due
		if t.period > 0 {
			t.due += t.period
		} else {
			t.stopped = true
		}
		t.fn()
	}
	s.now = target
	s.prune()
}

// Now returns the elapsed virtual time.
func (s *ManualScheduler) Now() time.Duration {
	return s.now
}

// Pending returns the number of live timers.
func (s *ManualScheduler) Pending() int {
	s.prune()
	return len(s.timers)
}

func (s *ManualScheduler) next(target time.Duration) *manualTimer {
	var best *manualTimer
	for _, t := range s.timers {
		if t.stopped || t.due > target {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}

func (s *ManualScheduler) prune() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	for i := len(live); i < len(s.timers); i++ {
		s.timers[i] = nil
	}
	s.timers = live
}
