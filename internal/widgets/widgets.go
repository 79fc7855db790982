// Package widgets implements the persistent widget domains: sidebar,
// fileBrowser and splitView, plus the clipboard service.
//
// Widget state lives in registry components. Action handlers look the
// component up by id on every call; nothing here keeps a pointer to a
// component beyond the handler that resolved it.
package widgets

import (
	"time"

	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/loop"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// Events receives native events for delivery to script.
type Events interface {
	Deliver(handleID string, kind protocol.EventKind, fields map[string]interface{})
	// ForgetSelection clears the last reported selection of a handle so
	// the next identical selection is reported again.
	ForgetSelection(handleID string)
}

// Deps are the collaborators shared by every widget of a window.
type Deps struct {
	Registry  *registry.Registry
	Toolkit   native.Toolkit
	Events    Events
	Scheduler loop.Scheduler
	Clipboard native.Clipboard
	// Coalesce is the reload window; zero uses adapter.DefaultCoalesceWindow.
	Coalesce time.Duration
}

// Widgets serves the widget domains of one window.
type Widgets struct {
	reg      *registry.Registry
	kit      native.Toolkit
	events   Events
	sched    loop.Scheduler
	clip     native.Clipboard
	coalesce time.Duration
}

// New builds the widget handlers.
func New(d Deps) *Widgets {
	if d.Coalesce <= 0 {
		d.Coalesce = adapter.DefaultCoalesceWindow
	}
	if d.Clipboard == nil {
		d.Clipboard = &native.MemoryClipboard{}
	}
	return &Widgets{
		reg:      d.Registry,
		kit:      d.Toolkit,
		events:   d.Events,
		sched:    d.Scheduler,
		clip:     d.Clipboard,
		coalesce: d.Coalesce,
	}
}

// gestures wires a widget's user interactions to event delivery. Callbacks
// that arrive after the handle died are ignored.
func (w *Widgets) gestures(h registry.Handle, onSelect func(item string)) native.Gestures {
	return native.Gestures{
		Select: func(item string) {
			if !w.reg.Alive(h) {
				return
			}
			if onSelect != nil {
				onSelect(item)
			}
			events.Widget.Gesture(h.ID, "select", item)
			w.events.Deliver(h.ID, protocol.EventSelectionChanged, map[string]interface{}{"itemId": item})
		},
		Activate: func(item string) {
			if !w.reg.Alive(h) {
				return
			}
			events.Widget.Gesture(h.ID, "activate", item)
			w.events.Deliver(h.ID, protocol.EventDoubleClicked, map[string]interface{}{"itemId": item})
		},
	}
}

// selected reports a programmatic selection the way a native view would.
func (w *Widgets) selected(h registry.Handle, item string) {
	events.Widget.Select(h.ID, item)
	w.events.Deliver(h.ID, protocol.EventSelectionChanged, map[string]interface{}{"itemId": item})
}

func (w *Widgets) destroy(domain protocol.Domain, id string) map[string]interface{} {
	return map[string]interface{}{"id": id, "destroyed": w.reg.Destroy(domain, id)}
}

// Counts reports live widgets per domain.
func (w *Widgets) Counts() map[string]interface{} {
	return map[string]interface{}{
		string(protocol.DomainSidebar):     w.reg.CountDomain(protocol.DomainSidebar),
		string(protocol.DomainFileBrowser): w.reg.CountDomain(protocol.DomainFileBrowser),
		string(protocol.DomainSplitView):   w.reg.CountDomain(protocol.DomainSplitView),
	}
}
