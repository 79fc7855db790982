package loop

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/dop251/goja"
	gojaloop "github.com/dop251/goja_nodejs/eventloop"
)

// EventLoop is a Scheduler backed by the goja_nodejs event loop. The loop
// goroutine doubles as the script thread, so the page's JavaScript and the
// bridge share one cooperative thread the way a browser main thread does.
type EventLoop struct {
	inner   *gojaloop.EventLoop
	stopped atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// NewEventLoop creates a loop with console support enabled for page scripts.
func NewEventLoop() *EventLoop {
	return &EventLoop{
		inner: gojaloop.NewEventLoop(gojaloop.EnableConsole(true)),
		done:  make(chan struct{}),
	}
}

// Start runs the loop on a background goroutine until Stop is called.
func (l *EventLoop) Start() {
	go func() {
		defer close(l.done)
		l.inner.StartInForeground()
	}()
}

// Stop asks the loop to exit once the current job finishes. It does not wait.
func (l *EventLoop) Stop() {
	l.once.Do(func() {
		l.stopped.Store(true)
		l.inner.StopNoWait()
	})
}

// Done is closed after the loop goroutine exits.
func (l *EventLoop) Done() <-chan struct{} {
	return l.done
}

// Post implements Scheduler.
func (l *EventLoop) Post(fn func()) error {
	if l.stopped.Load() {
		return ErrStopped
	}
	if !l.inner.RunOnLoop(func(*goja.Runtime) { safeRun(fn) }) {
		return ErrStopped
	}
	return nil
}

// RunOnRuntime queues fn with access to the script runtime. It is the only
// way to touch the goja.Runtime, which is not safe outside the loop.
func (l *EventLoop) RunOnRuntime(fn func(*goja.Runtime)) error {
	if l.stopped.Load() {
		return ErrStopped
	}
	if !l.inner.RunOnLoop(fn) {
		return ErrStopped
	}
	return nil
}

// AfterFunc implements Scheduler.
func (l *EventLoop) AfterFunc(d time.Duration, fn func()) Timer {
	if l.stopped.Load() {
		return stoppedTimer{}
	}
	t := l.inner.SetTimeout(func(*goja.Runtime) { safeRun(fn) }, d)
	return &loopTimer{loop: l.inner, timer: t}
}

type loopTimer struct {
	loop  *gojaloop.EventLoop
	timer *gojaloop.Timer
}

func (t *loopTimer) Stop() {
	if t == nil || t.timer == nil {
		return
	}
	t.loop.ClearTimeout(t.timer)
	t.timer = nil
}

// safeRun keeps a panicking task from taking the UI thread down with it.
func safeRun(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(fmt.Errorf("loop task panicked: %v", r))
		}
	}()
	fn()
}
