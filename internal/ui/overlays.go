package ui

import (
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type menuOverlay struct {
	token   string
	target  string
	lines   []menuLine
	cursor  int
	choose  func(item string)
	dismiss func()
}

type dragOverlay struct {
	token  string
	source string
	count  int
	finish func(op, target string)
}

type previewOverlay struct {
	token   string
	items   []native.PreviewItem
	index   int
	closed  func()
	seq     int
	loading bool
	err     string
	body    viewport.Model
}

func (m *Model) handleMenuOpen(msg tea.Msg) tea.Cmd {
	open := msg.(menuOpenMsg)
	m.menu = &menuOverlay{
		token:   open.token,
		target:  open.target,
		lines:   open.lines,
		cursor:  -1,
		choose:  open.choose,
		dismiss: open.dismiss,
	}
	m.menu.move(1)
	return nil
}

// move steps to the next selectable line in direction dir, wrapping.
func (o *menuOverlay) move(dir int) {
	n := len(o.lines)
	if n == 0 {
		return
	}
	idx := o.cursor
	for i := 0; i < n; i++ {
		idx = (idx + dir + n) % n
		if o.lines[idx].selectable() {
			o.cursor = idx
			return
		}
	}
}

func (o *menuOverlay) current() (menuLine, bool) {
	if o.cursor < 0 || o.cursor >= len(o.lines) {
		return menuLine{}, false
	}
	line := o.lines[o.cursor]
	return line, line.selectable()
}

func (m *Model) handleMenuKey(key tea.KeyMsg) tea.Cmd {
	o := m.menu
	switch key.String() {
	case "up", "k", "shift+tab":
		o.move(-1)
	case "down", "j", "tab":
		o.move(1)
	case "enter", " ":
		line, ok := o.current()
		if !ok {
			return nil
		}
		m.menu = nil
		events.Term.Overlay("menu", o.token, "chosen")
		if o.choose != nil {
			m.post(func() { o.choose(line.ID) })
		}
	case "esc", "q":
		m.menu = nil
		events.Term.Overlay("menu", o.token, "dismissed")
		if o.dismiss != nil {
			m.post(o.dismiss)
		}
	}
	return nil
}

func (m *Model) handleDragOpen(msg tea.Msg) tea.Cmd {
	open := msg.(dragOpenMsg)
	m.drag = &dragOverlay{token: open.token, source: open.source, count: open.count, finish: open.finish}
	return nil
}

// handleDragKey lets the user pick a destination with tab and drop with an
// operation key. The focused pane is the drop destination.
func (m *Model) handleDragKey(key tea.KeyMsg) tea.Cmd {
	o := m.drag
	op := ""
	switch key.String() {
	case "tab":
		m.cycleFocus(1)
		return nil
	case "shift+tab":
		m.cycleFocus(-1)
		return nil
	case "c", "enter":
		op = protocol.DragOperationCopy
	case "m":
		op = protocol.DragOperationMove
	case "l":
		op = protocol.DragOperationLink
	case "esc":
		op = protocol.DragOperationNone
	default:
		return nil
	}
	m.drag = nil
	target := m.focus
	events.Term.Overlay("drag", o.token, op)
	if o.finish != nil {
		m.post(func() { o.finish(op, target) })
	}
	return nil
}

func (m *Model) handlePreviewOpen(msg tea.Msg) tea.Cmd {
	open := msg.(previewOpenMsg)
	index := open.index
	if index < 0 || index >= len(open.items) {
		index = 0
	}
	m.preview = &previewOverlay{
		token:  open.token,
		items:  open.items,
		index:  index,
		closed: open.closed,
		body:   viewport.New(0, 0),
	}
	return m.loadPreview()
}

func (m *Model) handlePreviewKey(key tea.KeyMsg) tea.Cmd {
	o := m.preview
	switch key.String() {
	case "esc", " ", "q":
		m.preview = nil
		events.Term.Overlay("preview", o.token, "closed")
		if o.closed != nil {
			m.post(o.closed)
		}
		return nil
	case "left", "h":
		if o.index > 0 {
			o.index--
			return m.loadPreview()
		}
	case "right", "l":
		if o.index < len(o.items)-1 {
			o.index++
			return m.loadPreview()
		}
	case "up", "k":
		o.body.LineUp(1)
	case "down", "j":
		o.body.LineDown(1)
	case "pgup":
		o.body.HalfViewUp()
	case "pgdown":
		o.body.HalfViewDown()
	}
	return nil
}
