// Package loop provides the single UI thread every bridge component runs on.
//
// The bridge never locks: router dispatch, registry mutation, adapter queries
// and event delivery all happen on the goroutine that owns the Scheduler.
// Anything arriving from another goroutine (a terminal key press, a webview
// binding, a timer) is posted onto that goroutine first.
package loop

import (
	"errors"
	"time"
)

// ErrStopped is returned when work is posted to a loop that has shut down.
var ErrStopped = errors.New("loop: stopped")

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop()
}

// Scheduler runs callbacks on the UI thread.
type Scheduler interface {
	// Post queues fn to run on the UI thread after the current task.
	Post(fn func()) error
	// AfterFunc runs fn on the UI thread once d has elapsed.
	AfterFunc(d time.Duration, fn func()) Timer
}

type stoppedTimer struct{}

func (stoppedTimer) Stop() {}
