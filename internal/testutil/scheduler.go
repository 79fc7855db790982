package testutil

import (
	"sort"
	"time"

	"github.com/atomicstack/nativebridge/internal/loop"
)

// ManualScheduler is a deterministic loop.Scheduler for tests. Posted tasks
// run when Drain is called; timers fire when Advance moves the clock past
// their deadline.
type ManualScheduler struct {
	now     time.Duration
	seq     int
	posted  []func()
	timers  []*manualTimer
	stopped bool
}

type manualTimer struct {
	at      time.Duration
	seq     int
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() { t.stopped = true }

// NewManualScheduler returns a scheduler whose clock starts at zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

// Post queues fn for the next Drain.
func (s *ManualScheduler) Post(fn func()) error {
	if s.stopped {
		return loop.ErrStopped
	}
	s.posted = append(s.posted, fn)
	return nil
}

// AfterFunc schedules fn relative to the manual clock.
func (s *ManualScheduler) AfterFunc(d time.Duration, fn func()) loop.Timer {
	if s.stopped {
		return &manualTimer{stopped: true}
	}
	if d < 0 {
		d = 0
	}
	s.seq++
	t := &manualTimer{at: s.now + d, seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Stop makes later Post calls fail with loop.ErrStopped.
func (s *ManualScheduler) Stop() { s.stopped = true }

// Now returns the manual clock.
func (s *ManualScheduler) Now() time.Duration { return s.now }

// Pending returns the number of queued tasks and live timers.
func (s *ManualScheduler) Pending() (posted, timers int) {
	for _, t := range s.timers {
		if !t.stopped {
			timers++
		}
	}
	return len(s.posted), timers
}

// Drain runs posted tasks, including ones posted while draining, and
// returns how many ran.
func (s *ManualScheduler) Drain() int {
	n := 0
	for len(s.posted) > 0 {
		batch := s.posted
		s.posted = nil
		for _, fn := range batch {
			fn()
			n++
		}
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in deadline order
// and draining posted work after each one.
func (s *ManualScheduler) Advance(d time.Duration) {
	target := s.now + d
	s.Drain()
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		s.now = next.at
		next.stopped = true
		next.fn()
		s.Drain()
	}
	s.now = target
	s.compact()
}

func (s *ManualScheduler) nextDue(limit time.Duration) *manualTimer {
	var due []*manualTimer
	for _, t := range s.timers {
		if !t.stopped && t.at <= limit {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at != due[j].at {
			return due[i].at < due[j].at
		}
		return due[i].seq < due[j].seq
	})
	return due[0]
}

func (s *ManualScheduler) compact() {
	live := s.timers[:0]
	for _, t := range s.timers {
		if !t.stopped {
			live = append(live, t)
		}
	}
	s.timers = live
}
