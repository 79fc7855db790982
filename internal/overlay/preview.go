package overlay

import (
	"path/filepath"

	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

type previewSession struct {
	handle   registry.Handle
	source   registry.Handle
	sourceID string
	overlay  native.Overlay
}

func (*previewSession) Release() {}

type previewState struct {
	active *previewSession

	lastItems  []native.PreviewItem
	lastIndex  int
	lastSource string
}

// PreviewActions returns the preview domain's action table.
func (m *Manager) PreviewActions() bridge.Actions {
	return bridge.Actions{
		"showPreview": m.showPreview,
		"toggle":      m.togglePreview,
		"close":       m.closePreviewAction,
	}
}

func parsePreviewItems(items []protocol.Payload) ([]native.PreviewItem, error) {
	out := make([]native.PreviewItem, 0, len(items))
	for i, item := range items {
		path, ok := item.Str()
		title := ""
		if !ok {
			path = item.String("path", item.String("url", ""))
			title = item.String("title", "")
		}
		if path == "" {
			return nil, protocol.Errorf(protocol.CodeMissingData, "preview item %d has no path", i)
		}
		if title == "" {
			title = filepath.Base(path)
		}
		out = append(out, native.PreviewItem{Path: path, Title: title})
	}
	return out, nil
}

func (m *Manager) showPreview(req *bridge.Request) (interface{}, error) {
	raw := req.Data.Array("items")
	if len(raw) == 0 {
		return nil, protocol.Errorf(protocol.CodeMissingData, "showPreview requires items")
	}
	items, err := parsePreviewItems(raw)
	if err != nil {
		return nil, err
	}
	index := req.Data.Int("startIndex", req.Data.Int("index", 0))
	sourceID := req.Data.String("sourceId", "")
	if sourceID != "" {
		if _, err := m.requireWidget(sourceID); err != nil {
			return nil, err
		}
	}
	return m.openPreview(items, index, sourceID)
}

func (m *Manager) openPreview(items []native.PreviewItem, index int, sourceID string) (interface{}, error) {
	if index < 0 || index >= len(items) {
		index = 0
	}
	var source registry.Handle
	if sourceID != "" {
		h, ok := m.reg.LookupAny(sourceID)
		if ok {
			source = h
		} else {
			sourceID = ""
		}
	}
	if m.preview.active != nil {
		m.closePreview("replaced", false)
	}

	sess := &previewSession{source: source, sourceID: sourceID}
	h, err := m.reg.Create(protocol.DomainPreview, "", func(registry.Handle) (registry.Component, error) {
		return sess, nil
	})
	if err != nil {
		return nil, err
	}
	sess.handle = h
	m.preview.active = sess
	ov, err := m.kit.ShowPreview(native.PreviewRequest{
		Items:  items,
		Index:  index,
		Source: sourceID,
		Closed: func() { m.previewUserClosed(sess) },
	})
	if err != nil {
		m.preview.active = nil
		m.reg.Destroy(protocol.DomainPreview, h.ID)
		return nil, nativeFailure(err, "show preview")
	}
	sess.overlay = ov
	m.preview.lastItems = items
	m.preview.lastIndex = index
	m.preview.lastSource = sourceID
	events.Preview.Open(len(items), index)
	return map[string]interface{}{"id": h.ID, "count": len(items), "index": index}, nil
}

func (m *Manager) togglePreview(*bridge.Request) (interface{}, error) {
	if m.preview.active != nil {
		m.closePreview("toggle", true)
		events.Preview.Toggle(false)
		return map[string]interface{}{"open": false}, nil
	}
	if len(m.preview.lastItems) == 0 {
		return nil, protocol.Errorf(protocol.CodeMissingData, "nothing has been previewed yet")
	}
	res, err := m.openPreview(m.preview.lastItems, m.preview.lastIndex, m.preview.lastSource)
	if err != nil {
		return nil, err
	}
	events.Preview.Toggle(true)
	out := res.(map[string]interface{})
	out["open"] = true
	return out, nil
}

func (m *Manager) closePreviewAction(*bridge.Request) (interface{}, error) {
	open := m.preview.active != nil
	if open {
		m.closePreview("script", true)
	}
	return map[string]interface{}{"closed": open}, nil
}

// closePreview tears the panel down. emit controls whether listeners hear
// previewClosed.
func (m *Manager) closePreview(reason string, emit bool) {
	sess := m.preview.active
	if sess == nil {
		return
	}
	m.preview.active = nil
	if sess.overlay != nil {
		sess.overlay.Close()
	}
	m.finishPreview(sess, reason, emit)
}

func (m *Manager) previewUserClosed(sess *previewSession) {
	if m.preview.active != sess {
		return
	}
	m.preview.active = nil
	m.finishPreview(sess, "user", true)
}

func (m *Manager) finishPreview(sess *previewSession, reason string, emit bool) {
	events.Preview.Close(reason)
	if emit {
		m.emit(protocol.EventPreviewClosed, sess.sourceID, sess.handle.ID, map[string]interface{}{
			"previewId": sess.handle.ID,
			"sourceId":  sess.sourceID,
			"reason":    reason,
		})
	}
	m.reg.Destroy(protocol.DomainPreview, sess.handle.ID)
}

func (m *Manager) evictPreview(h registry.Handle) {
	sess := m.preview.active
	if sess == nil {
		return
	}
	switch {
	case h == sess.handle:
		m.closePreview("evicted", false)
	case sess.source.Valid() && h == sess.source:
		m.closePreview("source-evicted", true)
	}
}

// PreviewOpen reports whether the panel is showing.
func (m *Manager) PreviewOpen() bool { return m.preview.active != nil }
