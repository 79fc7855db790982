package ui

import (
	"unicode"

	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/ui/state"
	tea "github.com/charmbracelet/bubbletea"
)

func (m *Model) handleKeyMsg(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	events.Term.Key(m.focus, key.String())
	if key.Type == tea.KeyCtrlC {
		return tea.Quit
	}
	switch {
	case m.menu != nil:
		return m.handleMenuKey(key)
	case m.preview != nil:
		return m.handlePreviewKey(key)
	case m.drag != nil:
		return m.handleDragKey(key)
	}
	if handled := m.handleNavigationKey(key); handled {
		return nil
	}
	m.handleTextInput(key)
	return nil
}

func (m *Model) focusedPane() *pane {
	p, ok := m.panes[m.focus]
	if !ok || p.list == nil {
		return nil
	}
	return p
}

// focusOrder lists focusable panes in layout order: roots in creation order,
// split children in attach order.
func (m *Model) focusOrder() []string {
	var ids []string
	seen := make(map[string]bool)
	var visit func(id string)
	visit = func(id string) {
		p, ok := m.panes[id]
		if !ok || seen[id] {
			return
		}
		seen[id] = true
		if p.focusable() {
			ids = append(ids, id)
		}
		for _, child := range p.children {
			visit(child)
		}
	}
	for _, id := range m.roots() {
		visit(id)
	}
	return ids
}

// roots are panes not attached to any split view.
func (m *Model) roots() []string {
	attached := make(map[string]bool)
	for _, p := range m.panes {
		for _, child := range p.children {
			if child != p.id {
				attached[child] = true
			}
		}
	}
	var out []string
	for _, id := range m.order {
		if !attached[id] {
			out = append(out, id)
		}
	}
	return out
}

func (m *Model) setFocus(id string) {
	if m.focus == id {
		return
	}
	m.focus = id
	events.Term.Focus(id)
}

func (m *Model) cycleFocus(step int) bool {
	ids := m.focusOrder()
	if len(ids) < 2 {
		return false
	}
	idx := 0
	for i, id := range ids {
		if id == m.focus {
			idx = i
			break
		}
	}
	idx = (idx + step + len(ids)) % len(ids)
	m.setFocus(ids[idx])
	return true
}

func (m *Model) handleNavigationKey(key tea.KeyMsg) bool {
	switch key.String() {
	case "tab":
		m.cycleFocus(1)
		return true
	case "shift+tab":
		m.cycleFocus(-1)
		return true
	}
	p := m.focusedPane()
	if p == nil {
		return false
	}
	before := p.list.CurrentID()
	page := m.paneRows(p)
	switch key.String() {
	case "up", "ctrl+p":
		p.list.MoveCursorUp()
	case "down", "ctrl+n":
		p.list.MoveCursorDown()
	case "pgup":
		p.list.MoveCursorPageUp(page)
	case "pgdown":
		p.list.MoveCursorPageDown(page)
	case "home":
		p.list.MoveCursorHome()
	case "end":
		p.list.MoveCursorEnd()
	case "enter":
		m.noteCursor(p, before)
		m.gesture(p.gestures.Activate, p.list.CurrentID())
		return true
	case "esc":
		if p.list.Filter == "" {
			return true
		}
		before := p.list.FilterCursorPos()
		p.list.SetFilter("", 0)
		m.noteFilterCursorChange(p.list, before)
		events.Filter.Cleared(p.id)
		return true
	default:
		return false
	}
	m.noteCursor(p, before)
	return true
}

// noteCursor reports a selection gesture when the cursor landed on a
// different row.
func (m *Model) noteCursor(p *pane, before string) {
	current := p.list.CurrentID()
	if current == "" || current == before {
		return
	}
	m.gesture(p.gestures.Select, current)
}

func (m *Model) noteFilterCursorChange(l *state.List, before int) {
	if l == nil {
		return
	}
	if before != l.FilterCursorPos() {
		m.filterCursorDirty = true
	}
}

func (m *Model) handleTextInput(key tea.KeyMsg) bool {
	p := m.focusedPane()
	if p == nil {
		return false
	}
	l := p.list
	before := l.FilterCursorPos()
	row := l.CurrentID()
	changed := false
	switch key.String() {
	case "ctrl+u":
		if l.Filter == "" {
			return false
		}
		l.SetFilter("", 0)
		events.Filter.Cleared(p.id)
		changed = true
	case "ctrl+w":
		changed = l.DeleteFilterWordBackward()
	case "ctrl+a":
		l.MoveFilterCursorStart()
	case "ctrl+e":
		l.MoveFilterCursorEnd()
	case "alt+b":
		l.MoveFilterCursorWordBackward()
	case "alt+f":
		l.MoveFilterCursorWordForward()
	case "left":
		l.MoveFilterCursorRuneBackward()
	case "right":
		l.MoveFilterCursorRuneForward()
	default:
		switch key.Type {
		case tea.KeyBackspace, tea.KeyCtrlH:
			changed = l.DeleteFilterRuneBackward()
		case tea.KeySpace:
			changed = l.InsertFilterText(" ")
		case tea.KeyRunes:
			if key.Alt || len(key.Runes) == 0 {
				return false
			}
			for _, r := range key.Runes {
				if unicode.IsControl(r) {
					return false
				}
			}
			changed = l.InsertFilterText(string(key.Runes))
		default:
			return false
		}
	}
	m.noteFilterCursorChange(l, before)
	if changed {
		events.Filter.Changed(p.id, l.Filter, len(l.Rows))
		m.noteCursor(p, row)
	}
	return true
}
