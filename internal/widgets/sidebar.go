package widgets

import (
	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/model"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// Sidebar is the registry component of the sidebar domain.
type Sidebar struct {
	tree     *model.Hierarchy
	view     native.Sidebar
	reload   *adapter.Coalescer
	selected string
}

// Tree implements adapter.TreeBacked.
func (s *Sidebar) Tree() *model.Hierarchy { return s.tree }

// Selected returns the current selection.
func (s *Sidebar) Selected() string { return s.selected }

// Release implements registry.Component.
func (s *Sidebar) Release() {
	s.reload.Stop()
	if s.view != nil {
		s.view.Close()
	}
}

// SidebarActions returns the sidebar domain's action table.
func (w *Widgets) SidebarActions() bridge.Actions {
	return bridge.Actions{
		"create":          w.createSidebar,
		"addSection":      w.addSection,
		"addItem":         w.addItem,
		"removeItem":      w.removeItem,
		"setSelectedItem": w.setSelectedItem,
		"expand":          w.expandItem,
		"collapse":        w.collapseItem,
		"setBadge":        w.setBadge,
		"destroy":         w.destroySidebar,
	}
}

func (w *Widgets) sidebar(req *bridge.Request) (*Sidebar, registry.Handle, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, registry.Handle{}, err
	}
	c, h, err := w.reg.Get(protocol.DomainSidebar, id)
	if err != nil {
		return nil, registry.Handle{}, err
	}
	return c.(*Sidebar), h, nil
}

func (w *Widgets) createSidebar(req *bridge.Request) (interface{}, error) {
	tree := model.NewHierarchy()
	for _, raw := range req.Data.Array("sections") {
		n, err := model.NodeFromPayload(raw)
		if err != nil {
			return nil, err
		}
		if err := tree.AddSection(n); err != nil {
			return nil, err
		}
	}
	h, err := w.reg.Create(protocol.DomainSidebar, req.Data.String("id", ""), func(h registry.Handle) (registry.Component, error) {
		s := &Sidebar{tree: tree}
		view, err := w.kit.NewSidebar(h.ID, adapter.NewTree(w.reg, h), w.gestures(h, func(item string) { s.selected = item }))
		if err != nil {
			return nil, protocol.Wrap(protocol.CodeNativeCallFailed, err, "create sidebar view")
		}
		s.view = view
		s.reload = adapter.NewCoalescer(h.ID, w.sched, w.coalesce, view.Reload)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": h.ID}, nil
}

func (w *Widgets) addSection(req *bridge.Request) (interface{}, error) {
	s, _, err := w.sidebar(req)
	if err != nil {
		return nil, err
	}
	n, err := sectionNode(req.Data)
	if err != nil {
		return nil, err
	}
	if err := s.tree.AddSection(n); err != nil {
		return nil, err
	}
	s.reload.Request()
	return map[string]interface{}{"sectionId": n.ID}, nil
}

// sectionNode accepts either a nested section object or flat
// sectionId/title fields next to the sidebar id.
func sectionNode(data protocol.Payload) (*model.Node, error) {
	if raw := data.Get("section"); raw.Exists() {
		return model.NodeFromPayload(raw)
	}
	id, err := data.RequireString("sectionId")
	if err != nil {
		return nil, err
	}
	return &model.Node{ID: id, Label: data.String("title", data.String("label", id))}, nil
}

func (w *Widgets) addItem(req *bridge.Request) (interface{}, error) {
	s, _, err := w.sidebar(req)
	if err != nil {
		return nil, err
	}
	raw := req.Data.Get("item")
	if !raw.Exists() {
		return nil, protocol.Errorf(protocol.CodeMissingData, "addItem requires item")
	}
	n, err := model.NodeFromPayload(raw)
	if err != nil {
		return nil, err
	}
	// items without a parent sit at the top level next to sections
	parent := req.Data.String("parentId", req.Data.String("sectionId", ""))
	if parent == "" {
		err = s.tree.AddSection(n)
	} else {
		err = s.tree.AddItem(parent, n)
	}
	if err != nil {
		return nil, err
	}
	s.reload.Request()
	return map[string]interface{}{"itemId": n.ID}, nil
}

func (w *Widgets) removeItem(req *bridge.Request) (interface{}, error) {
	s, h, err := w.sidebar(req)
	if err != nil {
		return nil, err
	}
	item, err := req.Data.RequireString("itemId")
	if err != nil {
		return nil, err
	}
	removed := s.tree.Remove(item)
	if removed {
		if _, still := s.tree.Find(s.selected); s.selected != "" && !still {
			s.selected = ""
			w.events.ForgetSelection(h.ID)
		}
		s.reload.Request()
	}
	return map[string]interface{}{"removed": removed}, nil
}

func (w *Widgets) setSelectedItem(req *bridge.Request) (interface{}, error) {
	s, h, err := w.sidebar(req)
	if err != nil {
		return nil, err
	}
	item, err := req.Data.RequireString("itemId")
	if err != nil {
		return nil, err
	}
	if _, ok := s.tree.Find(item); !ok {
		return nil, protocol.Errorf(protocol.CodeHandleNotFound, "sidebar %q has no item %q", h.ID, item)
	}
	s.selected = item
	s.view.Select(item)
	w.selected(h, item)
	return map[string]interface{}{"itemId": item}, nil
}

func (w *Widgets) expandItem(req *bridge.Request) (interface{}, error) {
	return w.setExpanded(req, true)
}

func (w *Widgets) collapseItem(req *bridge.Request) (interface{}, error) {
	return w.setExpanded(req, false)
}

func (w *Widgets) setExpanded(req *bridge.Request, expanded bool) (interface{}, error) {
	s, h, err := w.sidebar(req)
	if err != nil {
		return nil, err
	}
	item, err := req.Data.RequireString("itemId")
	if err != nil {
		return nil, err
	}
	if _, ok := s.tree.Find(item); !ok {
		return nil, protocol.Errorf(protocol.CodeHandleNotFound, "sidebar %q has no item %q", h.ID, item)
	}
	if s.tree.SetExpanded(item, expanded) {
		s.view.SetExpanded(item, expanded)
		s.reload.Request()
	}
	return map[string]interface{}{"itemId": item, "expanded": expanded}, nil
}

func (w *Widgets) setBadge(req *bridge.Request) (interface{}, error) {
	s, h, err := w.sidebar(req)
	if err != nil {
		return nil, err
	}
	item, err := req.Data.RequireString("itemId")
	if err != nil {
		return nil, err
	}
	n, ok := s.tree.Find(item)
	if !ok {
		return nil, protocol.Errorf(protocol.CodeHandleNotFound, "sidebar %q has no item %q", h.ID, item)
	}
	badge := req.Data.String("badge", "")
	if n.Badge != badge {
		n.Badge = badge
		s.reload.Request()
	}
	return map[string]interface{}{"itemId": item, "badge": badge}, nil
}

func (w *Widgets) destroySidebar(req *bridge.Request) (interface{}, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, err
	}
	return w.destroy(protocol.DomainSidebar, id), nil
}
