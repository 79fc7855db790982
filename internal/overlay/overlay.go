// Package overlay runs the transient native interactions: context menus,
// drag sessions, drop targets and the quick-preview panel.
//
// Each outstanding interaction remembers the handles it depends on. When
// the registry evicts one of them the interaction is closed and its request
// resolves as cancelled.
package overlay

import (
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// Events receives native events for delivery to script.
type Events interface {
	Deliver(handleID string, kind protocol.EventKind, fields map[string]interface{})
}

// Manager owns the overlay state of one window.
type Manager struct {
	reg    *registry.Registry
	kit    native.Toolkit
	events Events

	menus   *menuState
	drag    *dragState
	drops   map[string]*dropTarget
	preview *previewState
}

// New creates a manager and hooks it into reg's eviction.
func New(reg *registry.Registry, kit native.Toolkit, ev Events) *Manager {
	m := &Manager{
		reg:     reg,
		kit:     kit,
		events:  ev,
		menus:   &menuState{},
		drag:    &dragState{},
		drops:   make(map[string]*dropTarget),
		preview: &previewState{},
	}
	reg.OnEvict(m.evict)
	return m
}

func (m *Manager) evict(h registry.Handle) {
	m.evictMenu(h)
	m.evictDrag(h)
	m.evictDrop(h)
	m.evictPreview(h)
}

// CancelAll closes every outstanding interaction. Requests resolve as
// cancelled.
func (m *Manager) CancelAll() {
	m.cancelMenu("window-closed")
	m.cancelDrag("window-closed")
	for id := range m.drops {
		m.removeDrop(id)
	}
	m.closePreview("window-closed", false)
}

// Stats reports what is currently outstanding.
func (m *Manager) Stats() map[string]interface{} {
	return map[string]interface{}{
		"menuShown":   m.menus.active != nil,
		"dragActive":  m.drag.active != nil,
		"dropTargets": len(m.drops),
		"previewOpen": m.preview.active != nil,
	}
}

func (m *Manager) requireWidget(id string) (registry.Handle, error) {
	h, ok := m.reg.LookupAny(id)
	if !ok {
		return registry.Handle{}, protocol.Errorf(protocol.CodeHandleNotFound, "no component with id %q", id)
	}
	return h, nil
}

// emit delivers kind once: to the widget the interaction belongs to, or to
// the overlay's own handle when there is none. The overlay id travels in
// fields either way.
func (m *Manager) emit(kind protocol.EventKind, widgetID, ownID string, fields map[string]interface{}) {
	addressee := widgetID
	if addressee == "" {
		addressee = ownID
	}
	if addressee != "" {
		m.events.Deliver(addressee, kind, fields)
	}
}

func nativeFailure(err error, what string) error {
	return protocol.Wrap(protocol.CodeNativeCallFailed, err, what)
}

type nopComponent struct{}

func (nopComponent) Release() {}
