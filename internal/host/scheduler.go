package host

import (
	"sync"
	"time"

	"github.com/stjordanis/jsdares/internal/input"
)

// LoopScheduler implements input.Scheduler on wall-clock time. Timers fire on
// runtime goroutines but only post their callback to the host queue, so the
// callback itself always runs on the host goroutine.
type LoopScheduler struct {
	post func(func()) bool
}

// NewLoopScheduler creates a scheduler that hands callbacks to post.
func NewLoopScheduler(post func(func()) bool) *LoopScheduler {
	return &LoopScheduler{post: post}
}

// AfterFunc runs fn once on the host goroutine after d.
func (s *LoopScheduler) AfterFunc(d time.Duration, fn func()) input.Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		s.post(func() {
			if t.stop() {
				fn()
			}
		})
	})
	return t
}

// Every runs fn on the host goroutine each d until stopped. The next tick is
// armed after the callback has been posted, so a slow host delays ticks
// rather than queueing a burst of them.
func (s *LoopScheduler) Every(d time.Duration, fn func()) input.Timer {
	t := &loopTimer{}
	var tick func()
	tick = func() {
		s.post(func() {
			if !t.active() {
				return
			}
			fn()
			t.mu.Lock()
			if !t.stopped {
				t.timer.Reset(d)
			}
			t.mu.Unlock()
		})
	}
	t.mu.Lock()
	t.timer = time.AfterFunc(d, tick)
	t.mu.Unlock()
	return t
}

type loopTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
}

// Stop cancels the timer. A callback already posted to the queue is dropped
// when it is dequeued.
func (t *loopTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return
	}
	t.stopped = true
	if t.timer != nil {
		t.timer.Stop()
	}
}

func (t *loopTimer) active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return !t.stopped
}

// stop marks a one-shot timer as spent and reports whether it was still live.
func (t *loopTimer) stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}
