package overlay

import (
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// DefaultDragType is used for items given as bare strings.
const DefaultDragType = "text/plain"

type dragSession struct {
	handle   registry.Handle
	source   registry.Handle
	sourceID string
	items    []native.DragItem
	overlay  native.Overlay
	promise  *bridge.Promise
}

func (*dragSession) Release() {}

type dragState struct {
	active *dragSession
}

type dropTarget struct {
	target  registry.Handle
	types   []string
	overlay native.Overlay
}

// DragActions returns the drag domain's action table.
func (m *Manager) DragActions() bridge.Actions {
	return bridge.Actions{
		"beginDrag":            m.beginDrag,
		"registerDropTarget":   m.registerDropTarget,
		"unregisterDropTarget": m.unregisterDropTarget,
	}
}

func parseDragItems(items []protocol.Payload) ([]native.DragItem, error) {
	out := make([]native.DragItem, 0, len(items))
	for i, item := range items {
		if s, ok := item.Str(); ok {
			out = append(out, native.DragItem{ID: s, Type: DefaultDragType, Value: s})
			continue
		}
		if !item.IsObject() {
			return nil, protocol.Errorf(protocol.CodeInvalidPayload, "drag item %d must be a string or object", i)
		}
		value := item.String("value", item.String("path", item.String("url", "")))
		if value == "" {
			return nil, protocol.Errorf(protocol.CodeMissingData, "drag item %d has no value", i)
		}
		out = append(out, native.DragItem{
			ID:    item.String("id", value),
			Type:  item.String("type", DefaultDragType),
			Value: value,
		})
	}
	return out, nil
}

func dragItemsJSON(items []native.DragItem) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, map[string]interface{}{"id": it.ID, "type": it.Type, "value": it.Value})
	}
	return out
}

func (m *Manager) beginDrag(req *bridge.Request) (interface{}, error) {
	raw := req.Data.Array("items")
	if len(raw) == 0 {
		return nil, protocol.Errorf(protocol.CodeMissingData, "beginDrag requires items")
	}
	items, err := parseDragItems(raw)
	if err != nil {
		return nil, err
	}
	sourceID := req.Data.String("sourceId", req.Data.String("source", ""))
	var source registry.Handle
	if sourceID != "" {
		if source, err = m.requireWidget(sourceID); err != nil {
			return nil, err
		}
	}

	if m.drag.active != nil {
		m.cancelDrag("superseded")
	}
	sess := &dragSession{source: source, sourceID: sourceID, items: items}
	h, err := m.reg.Create(protocol.DomainDrag, "", func(registry.Handle) (registry.Component, error) {
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	sess.handle = h
	sess.promise = req.Defer()
	m.drag.active = sess
	events.Drag.Begin(h.ID, sourceID, len(items))

	ov, err := m.kit.BeginDrag(native.DragRequest{
		Session: h.ID,
		Source:  sourceID,
		Items:   items,
		End:     func(op string) { m.dragEnded(sess, op) },
	})
	if err != nil {
		m.drag.active = nil
		m.reg.Destroy(protocol.DomainDrag, h.ID)
		return nil, nativeFailure(err, "begin drag")
	}
	sess.overlay = ov
	return nil, nil
}

func (m *Manager) dragEnded(sess *dragSession, op string) {
	if m.drag.active != sess {
		return
	}
	if !protocol.ValidDragOperation(op) {
		op = protocol.DragOperationNone
	}
	m.drag.active = nil
	events.Drag.End(sess.handle.ID, sess.sourceID, op)

	sess.promise.Resolve(map[string]interface{}{"operation": op, "sessionId": sess.handle.ID})
	m.emit(protocol.EventDragCompleted, sess.sourceID, sess.handle.ID, map[string]interface{}{
		"operation": op,
		"sessionId": sess.handle.ID,
	})
	m.reg.Destroy(protocol.DomainDrag, sess.handle.ID)
}

func (m *Manager) cancelDrag(reason string) {
	sess := m.drag.active
	if sess == nil {
		return
	}
	m.drag.active = nil
	if sess.overlay != nil {
		sess.overlay.Close()
	}
	events.Drag.End(sess.handle.ID, sess.sourceID, reason)
	sess.promise.Resolve(map[string]interface{}{
		"operation": protocol.DragOperationNone,
		"sessionId": sess.handle.ID,
		"cancelled": true,
	})
	m.reg.Destroy(protocol.DomainDrag, sess.handle.ID)
}

func (m *Manager) evictDrag(h registry.Handle) {
	sess := m.drag.active
	if sess == nil {
		return
	}
	if h == sess.handle || (sess.source.Valid() && h == sess.source) {
		m.cancelDrag("evicted")
	}
}

// DragActive reports whether a drag session is in flight.
func (m *Manager) DragActive() bool { return m.drag.active != nil }

func (m *Manager) registerDropTarget(req *bridge.Request) (interface{}, error) {
	targetID, err := req.Data.RequireString("targetId")
	if err != nil {
		return nil, err
	}
	target, err := m.requireWidget(targetID)
	if err != nil {
		return nil, err
	}
	types := req.Data.Strings("types")
	if existing, ok := m.drops[targetID]; ok {
		existing.overlay.Close()
		delete(m.drops, targetID)
	}
	dt := &dropTarget{target: target, types: types}
	ov, err := m.kit.RegisterDropTarget(native.DropRequest{
		Target: targetID,
		Types:  types,
		Drop:   func(items []native.DragItem, op string) { m.dropped(dt, items, op) },
	})
	if err != nil {
		return nil, nativeFailure(err, "register drop target")
	}
	dt.overlay = ov
	m.drops[targetID] = dt
	return map[string]interface{}{"targetId": targetID, "types": types}, nil
}

func (m *Manager) unregisterDropTarget(req *bridge.Request) (interface{}, error) {
	targetID, err := req.Data.RequireString("targetId")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"removed": m.removeDrop(targetID)}, nil
}

func (m *Manager) removeDrop(targetID string) bool {
	dt, ok := m.drops[targetID]
	if !ok {
		return false
	}
	delete(m.drops, targetID)
	if dt.overlay != nil {
		dt.overlay.Close()
	}
	return true
}

func (m *Manager) dropped(dt *dropTarget, items []native.DragItem, op string) {
	if m.drops[dt.target.ID] != dt || !m.reg.Alive(dt.target) {
		return
	}
	accepted := acceptTypes(items, dt.types)
	if len(accepted) == 0 {
		return
	}
	if !protocol.ValidDragOperation(op) {
		op = protocol.DragOperationCopy
	}
	events.Drag.Drop(dt.target.ID, op, len(accepted))
	m.events.Deliver(dt.target.ID, protocol.EventDropReceived, map[string]interface{}{
		"items":     dragItemsJSON(accepted),
		"operation": op,
	})
}

func acceptTypes(items []native.DragItem, types []string) []native.DragItem {
	if len(types) == 0 {
		return items
	}
	allowed := make(map[string]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	out := make([]native.DragItem, 0, len(items))
	for _, it := range items {
		if _, ok := allowed[it.Type]; ok {
			out = append(out, it)
		}
	}
	return out
}

func (m *Manager) evictDrop(h registry.Handle) {
	if dt, ok := m.drops[h.ID]; ok && dt.target == h {
		m.removeDrop(h.ID)
	}
}
