package widgets

import (
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// DefaultSplitPosition places the divider when create gives none.
const DefaultSplitPosition = 0.25

// SplitView is the registry component of the splitView domain.
type SplitView struct {
	view     native.SplitView
	children []string
	position float64
}

// Children returns the ids of the attached widgets.
func (s *SplitView) Children() []string { return s.children }

// Position returns the divider position as a fraction.
func (s *SplitView) Position() float64 { return s.position }

// Release implements registry.Component.
func (s *SplitView) Release() {
	if s.view != nil {
		s.view.Close()
	}
}

// SplitViewActions returns the splitView domain's action table.
func (w *Widgets) SplitViewActions() bridge.Actions {
	return bridge.Actions{
		"create":      w.createSplitView,
		"setPosition": w.setSplitPosition,
		"destroy":     w.destroySplitView,
	}
}

func position(p protocol.Payload, fallback float64) (float64, error) {
	if !p.Has("position") {
		return fallback, nil
	}
	f := p.Float("position", -1)
	if f < 0 || f > 1 {
		return 0, protocol.Errorf(protocol.CodeInvalidPayload, "position must be between 0 and 1")
	}
	return f, nil
}

func (w *Widgets) createSplitView(req *bridge.Request) (interface{}, error) {
	pos, err := position(req.Data, DefaultSplitPosition)
	if err != nil {
		return nil, err
	}
	children := req.Data.Strings("children")
	for _, id := range children {
		if _, ok := w.reg.LookupAny(id); !ok {
			return nil, protocol.Errorf(protocol.CodeHandleNotFound, "no widget %q to attach", id)
		}
	}
	opts := native.SplitOptions{
		Vertical: req.Data.Bool("vertical", false),
		Position: pos,
		Children: children,
	}
	h, err := w.reg.Create(protocol.DomainSplitView, req.Data.String("id", ""), func(h registry.Handle) (registry.Component, error) {
		view, err := w.kit.NewSplitView(h.ID, opts)
		if err != nil {
			return nil, protocol.Wrap(protocol.CodeNativeCallFailed, err, "create split view")
		}
		if len(children) > 0 {
			view.Attach(children)
		}
		return &SplitView{view: view, children: children, position: pos}, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": h.ID, "children": len(children)}, nil
}

func (w *Widgets) setSplitPosition(req *bridge.Request) (interface{}, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, err
	}
	if !req.Data.Has("position") {
		return nil, protocol.Errorf(protocol.CodeMissingData, "setPosition requires position")
	}
	pos, err := position(req.Data, 0)
	if err != nil {
		return nil, err
	}
	c, _, err := w.reg.Get(protocol.DomainSplitView, id)
	if err != nil {
		return nil, err
	}
	s := c.(*SplitView)
	s.position = pos
	s.view.SetPosition(pos)
	return map[string]interface{}{"id": id, "position": pos}, nil
}

// destroySplitView tears down the attached widgets before the split view
// itself. Children that were already destroyed are skipped.
func (w *Widgets) destroySplitView(req *bridge.Request) (interface{}, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, err
	}
	c, _, err := w.reg.Get(protocol.DomainSplitView, id)
	if err != nil {
		return map[string]interface{}{"id": id, "destroyed": false}, nil
	}
	cascaded := 0
	for _, child := range c.(*SplitView).children {
		if h, ok := w.reg.LookupAny(child); ok && w.reg.Destroy(h.Domain, h.ID) {
			cascaded++
		}
	}
	out := w.destroy(protocol.DomainSplitView, id)
	out["children"] = cascaded
	return out, nil
}
