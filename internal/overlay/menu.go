package overlay

import (
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/menu"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// storedMenu is the registry component of the menu domain.
type storedMenu struct {
	desc      *menu.Descriptor
	machine   menu.Machine
	transient bool
}

func (*storedMenu) Release() {}

type presentation struct {
	menu     *storedMenu
	handle   registry.Handle
	target   registry.Handle
	targetID string
	overlay  native.Overlay
	promise  *bridge.Promise
}

type menuState struct {
	active *presentation
}

// MenuActions returns the menu domain's action table.
func (m *Manager) MenuActions() bridge.Actions {
	return bridge.Actions{
		"setMenu":         m.setMenu,
		"showContextMenu": m.showContextMenu,
		"destroy":         m.destroyMenu,
	}
}

func (m *Manager) setMenu(req *bridge.Request) (interface{}, error) {
	items := req.Data.Array("items")
	if len(items) == 0 {
		return nil, protocol.Errorf(protocol.CodeMissingData, "setMenu requires items")
	}
	desc, err := menu.Parse(items)
	if err != nil {
		return nil, err
	}
	id := req.Data.String("id", "")
	if h, ok := m.reg.Lookup(protocol.DomainMenu, id); ok && id != "" {
		c, _ := m.reg.Resolve(h)
		c.(*storedMenu).desc = desc
		return map[string]interface{}{"id": id, "entries": desc.Len()}, nil
	}
	h, err := m.reg.Create(protocol.DomainMenu, id, func(registry.Handle) (registry.Component, error) {
		return &storedMenu{desc: desc}, nil
	})
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"id": h.ID, "entries": desc.Len()}, nil
}

func (m *Manager) showContextMenu(req *bridge.Request) (interface{}, error) {
	targetID := req.Data.String("targetId", req.Data.String("target", ""))
	x := req.Data.Float("x", 0)
	y := req.Data.Float("y", 0)

	var target registry.Handle
	if targetID != "" {
		h, err := m.requireWidget(targetID)
		if err != nil {
			return nil, err
		}
		target = h
	}

	var (
		sm     *storedMenu
		handle registry.Handle
	)
	if items := req.Data.Array("items"); len(items) > 0 {
		desc, err := menu.Parse(items)
		if err != nil {
			return nil, err
		}
		sm = &storedMenu{desc: desc, transient: true}
		h, err := m.reg.Create(protocol.DomainMenu, "", func(registry.Handle) (registry.Component, error) {
			return sm, nil
		})
		if err != nil {
			return nil, err
		}
		handle = h
	} else {
		menuID := req.Data.String("menuId", "")
		if menuID == "" {
			return nil, protocol.Errorf(protocol.CodeMissingData, "showContextMenu requires items or menuId")
		}
		c, h, err := m.reg.Get(protocol.DomainMenu, menuID)
		if err != nil {
			return nil, err
		}
		sm = c.(*storedMenu)
		handle = h
	}

	if m.menus.active != nil {
		m.cancelMenu("superseded")
	}
	sm.machine.Show()
	pres := &presentation{
		menu:     sm,
		handle:   handle,
		target:   target,
		targetID: targetID,
		promise:  req.Defer(),
	}
	m.menus.active = pres
	events.Menu.Show(targetID, x, y, sm.desc.Len())

	ov, err := m.kit.ShowMenu(native.MenuRequest{
		Target:  targetID,
		X:       x,
		Y:       y,
		Items:   sm.desc.Native(),
		Choose:  func(item string) { m.menuChosen(pres, item) },
		Dismiss: func() { m.menuDismissed(pres, "user") },
	})
	if err != nil {
		m.menus.active = nil
		sm.machine.Dismiss()
		sm.machine.Settle()
		if sm.transient {
			m.reg.Destroy(protocol.DomainMenu, handle.ID)
		}
		return nil, nativeFailure(err, "show context menu")
	}
	pres.overlay = ov
	return nil, nil
}

func (m *Manager) destroyMenu(req *bridge.Request) (interface{}, error) {
	id, err := req.Data.RequireString("id")
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"destroyed": m.reg.Destroy(protocol.DomainMenu, id)}, nil
}

func (m *Manager) menuChosen(pres *presentation, item string) {
	if m.menus.active != pres {
		return
	}
	entry, ok := pres.menu.desc.Find(item)
	if !ok || !entry.Enabled || entry.Separator {
		m.menuDismissed(pres, "invalid-item")
		return
	}
	pres.menu.machine.Choose(entry.ID)
	chosen, _ := pres.menu.machine.Settle()
	m.menus.active = nil
	events.Menu.Action(pres.targetID, chosen)

	pres.promise.Resolve(map[string]interface{}{"itemId": chosen})
	m.emit(protocol.EventMenuAction, pres.targetID, pres.handle.ID, map[string]interface{}{
		"itemId":   chosen,
		"menuId":   pres.handle.ID,
		"targetId": pres.targetID,
	})
	m.finishPresentation(pres)
}

func (m *Manager) menuDismissed(pres *presentation, reason string) {
	if m.menus.active != pres {
		return
	}
	pres.menu.machine.Dismiss()
	pres.menu.machine.Settle()
	m.menus.active = nil
	events.Menu.Dismiss(pres.targetID, reason)

	pres.promise.Cancel()
	m.emit(protocol.EventMenuDismissed, pres.targetID, pres.handle.ID, map[string]interface{}{
		"menuId":   pres.handle.ID,
		"targetId": pres.targetID,
		"reason":   reason,
	})
	m.finishPresentation(pres)
}

func (m *Manager) cancelMenu(reason string) {
	pres := m.menus.active
	if pres == nil {
		return
	}
	if pres.overlay != nil {
		pres.overlay.Close()
	}
	m.menuDismissed(pres, reason)
}

func (m *Manager) finishPresentation(pres *presentation) {
	if pres.menu.transient {
		m.reg.Destroy(protocol.DomainMenu, pres.handle.ID)
	}
}

func (m *Manager) evictMenu(h registry.Handle) {
	pres := m.menus.active
	if pres == nil {
		return
	}
	if h != pres.handle && (!pres.target.Valid() || h != pres.target) {
		return
	}
	m.cancelMenu("evicted")
}

// MenuShown reports whether a context menu is on screen.
func (m *Manager) MenuShown() bool { return m.menus.active != nil }
