// Package lifecycle owns one bridge window: its registry scope, event
// bridge, overlays and router, and the teardown that releases them.
package lifecycle

import (
	"time"

	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/eventbridge"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/loop"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/overlay"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
	"github.com/atomicstack/nativebridge/internal/widgets"
	"github.com/google/uuid"
)

// Options configure a window.
type Options struct {
	Title      string
	Toolkit    native.Toolkit
	Page       eventbridge.Page
	Scheduler  loop.Scheduler
	Clipboard  native.Clipboard
	Coalesce   time.Duration
	QueueLimit int
	// OnClose runs once, after teardown.
	OnClose func(reason string)
}

// Window is confined to the UI loop.
type Window struct {
	id       string
	title    string
	opened   time.Time
	kit      native.Toolkit
	sched    loop.Scheduler
	reg      *registry.Registry
	events   *eventbridge.Bridge
	overlays *overlay.Manager
	widgets  *widgets.Widgets
	router   *bridge.Router
	closed   bool
	onClose  func(string)
}

// Open builds a window and registers every domain with its router.
func Open(opts Options) *Window {
	id := uuid.NewString()
	w := &Window{
		id:      id,
		title:   opts.Title,
		opened:  time.Now(),
		kit:     opts.Toolkit,
		sched:   opts.Scheduler,
		reg:     registry.New(id),
		onClose: opts.OnClose,
	}
	w.events = eventbridge.New(opts.Scheduler, opts.Page, opts.QueueLimit)
	// registrations go first so nothing is delivered to a dying handle while
	// overlays settle
	w.reg.OnEvict(w.events.Evict)
	w.overlays = overlay.New(w.reg, opts.Toolkit, w.events)
	w.widgets = widgets.New(widgets.Deps{
		Registry:  w.reg,
		Toolkit:   opts.Toolkit,
		Events:    w.events,
		Scheduler: opts.Scheduler,
		Clipboard: opts.Clipboard,
		Coalesce:  opts.Coalesce,
	})

	w.router = bridge.New(w.events)
	w.router.Register(protocol.DomainSidebar, w.widgets.SidebarActions())
	w.router.Register(protocol.DomainFileBrowser, w.widgets.FileBrowserActions())
	w.router.Register(protocol.DomainSplitView, w.widgets.SplitViewActions())
	w.router.Register(protocol.DomainClipboard, w.widgets.ClipboardActions())
	w.router.Register(protocol.DomainMenu, w.overlays.MenuActions())
	w.router.Register(protocol.DomainDrag, w.overlays.DragActions())
	w.router.Register(protocol.DomainPreview, w.overlays.PreviewActions())
	w.router.Register(protocol.DomainEvents, w.events.Actions())
	w.router.Register(protocol.DomainWindow, w.actions())

	if w.title != "" {
		w.kit.SetTitle(w.title)
	}
	events.Window.Open(id, w.title)
	return w
}

// ID returns the window's scope identifier.
func (w *Window) ID() string { return w.id }

// Title returns the current title.
func (w *Window) Title() string { return w.title }

// Registry exposes the window's component registry.
func (w *Window) Registry() *registry.Registry { return w.reg }

// Events exposes the window's event bridge.
func (w *Window) Events() *eventbridge.Bridge { return w.events }

// Router exposes the window's router.
func (w *Window) Router() *bridge.Router { return w.router }

// Closed reports whether the window was torn down.
func (w *Window) Closed() bool { return w.closed }

// Dispatch routes one script message. Messages that arrive after close are
// dropped.
func (w *Window) Dispatch(raw []byte) {
	if w.closed {
		logging.Errorf("window %s: dropping message after close", w.id)
		return
	}
	w.router.Dispatch(raw)
}

// Close tears the window down: outstanding interactions are cancelled,
// every component is released and script receives windowClosed. Calling it
// again does nothing.
func (w *Window) Close(reason string) {
	if w.closed {
		return
	}
	w.overlays.CancelAll()
	evicted := w.reg.DestroyAll()
	w.closed = true
	w.events.Emit(eventbridge.Record{
		Event:    protocol.EventWindowClosed,
		HandleID: w.id,
		Fields:   map[string]interface{}{"reason": reason, "evicted": evicted},
	})
	w.events.Close()
	w.kit.Close()
	events.Window.Close(w.id, evicted)
	if w.onClose != nil {
		w.onClose(reason)
	}
}

// Stats summarises the window for the window.stats action.
func (w *Window) Stats() map[string]interface{} {
	return map[string]interface{}{
		"id":         w.id,
		"title":      w.title,
		"uptimeMs":   time.Since(w.opened).Milliseconds(),
		"components": w.reg.Count(),
		"widgets":    w.widgets.Counts(),
		"overlays":   w.overlays.Stats(),
		"events":     w.events.Stats(),
		"actions":    len(w.router.Actions()),
	}
}
