package adapter

import (
	"time"

	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/loop"
)

// DefaultCoalesceWindow bounds how long a widget may show stale content
// after a model mutation.
const DefaultCoalesceWindow = 50 * time.Millisecond

// Coalescer collapses reload requests made within one window into a single
// reload. It is confined to the UI thread.
type Coalescer struct {
	name   string
	sched  loop.Scheduler
	window time.Duration
	reload func()

	timer     loop.Timer
	requested int
	reloads   int
	stopped   bool
}

// NewCoalescer returns a coalescer that calls reload at most once per
// window. A non-positive window still defers to the next loop turn.
func NewCoalescer(name string, sched loop.Scheduler, window time.Duration, reload func()) *Coalescer {
	if window < 0 {
		window = 0
	}
	return &Coalescer{name: name, sched: sched, window: window, reload: reload}
}

// Request marks the widget dirty.
func (c *Coalescer) Request() {
	if c == nil || c.stopped {
		return
	}
	c.requested++
	if c.timer != nil {
		return
	}
	c.timer = c.sched.AfterFunc(c.window, c.fire)
}

// Flush performs a pending reload immediately.
func (c *Coalescer) Flush() {
	if c == nil || c.timer == nil {
		return
	}
	c.timer.Stop()
	c.fire()
}

// Pending reports whether a reload is scheduled.
func (c *Coalescer) Pending() bool { return c != nil && c.timer != nil }

// Reloads returns how many reloads have been performed.
func (c *Coalescer) Reloads() int {
	if c == nil {
		return 0
	}
	return c.reloads
}

// Stop cancels any pending reload; later requests are ignored.
func (c *Coalescer) Stop() {
	if c == nil {
		return
	}
	c.stopped = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Coalescer) fire() {
	c.timer = nil
	if c.stopped {
		return
	}
	n := c.requested
	c.requested = 0
	c.reloads++
	events.Widget.Reload(c.name, n)
	if c.reload != nil {
		c.reload()
	}
}
