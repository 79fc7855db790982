package ui

import (
	"reflect"

	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/theme"
	"github.com/atomicstack/nativebridge/internal/ui/state"
	"github.com/charmbracelet/bubbles/cursor"
	btable "github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
)

var styles = theme.Default()

type msgHandler func(tea.Msg) tea.Cmd

type paneKind int

const (
	paneList paneKind = iota
	paneTable
	paneSplit
)

// Messages sent by the loop-side Toolkit. Every field is a copy; the
// model never shares memory with the bridge.
type (
	paneOpenedMsg struct {
		id       string
		kind     paneKind
		gestures native.Gestures
	}
	rowsMsg struct {
		id      string
		columns []column
		rows    []state.Row
	}
	paneSelectMsg struct {
		id   string
		item string
	}
	paneClosedMsg struct {
		id string
	}
	splitMsg struct {
		id       string
		vertical bool
		position float64
		children []string
	}
	menuOpenMsg struct {
		token   string
		target  string
		lines   []menuLine
		choose  func(item string)
		dismiss func()
	}
	dragOpenMsg struct {
		token  string
		source string
		count  int
		finish func(op, target string)
	}
	dropTargetMsg struct {
		token  string
		target string
	}
	previewOpenMsg struct {
		token  string
		items  []native.PreviewItem
		index  int
		closed func()
	}
	overlayClosedMsg struct {
		token string
	}
	titleMsg struct {
		title string
	}
)

// pane is one widget as the terminal shows it.
type pane struct {
	id       string
	kind     paneKind
	list     *state.List
	gestures native.Gestures
	columns  []column
	grid     btable.Model

	vertical bool
	position float64
	children []string

	dropToken string
}

func (p *pane) focusable() bool { return p.kind != paneSplit }

// Model implements the Bubble Tea model of one window.
type Model struct {
	title       string
	width       int
	height      int
	fixedWidth  bool
	fixedHeight bool

	panes map[string]*pane
	order []string
	focus string

	menu    *menuOverlay
	drag    *dragOverlay
	preview *previewOverlay

	filterCursor      cursor.Model
	filterCursorDirty bool

	// post runs fn on the UI loop.
	post     func(fn func())
	handlers map[reflect.Type]msgHandler
}

// NewModel returns an empty window. post must hand callbacks to the UI
// loop.
func NewModel(opts Options, post func(fn func())) *Model {
	m := &Model{
		title: opts.Title,
		panes: make(map[string]*pane),
		post:  post,
	}
	if opts.Width > 0 {
		m.width = opts.Width
		m.fixedWidth = true
	}
	if opts.Height > 0 {
		m.height = opts.Height
		m.fixedHeight = true
	}
	c := cursor.New()
	if styles.Cursor != nil {
		c.Style = styles.Cursor.Copy()
	}
	if styles.Filter != nil {
		c.TextStyle = styles.Filter.Copy()
	}
	c.SetChar(" ")
	m.filterCursor = c
	m.registerHandlers()
	return m
}

// Init is part of the tea.Model interface.
func (m *Model) Init() tea.Cmd {
	return m.filterCursor.Focus()
}

// Update responds to Bubble Tea messages.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, 0, 4)
	if cmd := m.updateFilterCursorModel(msg); cmd != nil {
		cmds = append(cmds, cmd)
	}
	if handler := m.handlerFor(msg); handler != nil {
		if cmd := handler(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, m.finishUpdate(cmds)
}

func (m *Model) registerHandlers() {
	m.handlers = map[reflect.Type]msgHandler{
		reflect.TypeOf(tea.KeyMsg{}):        m.handleKeyMsg,
		reflect.TypeOf(tea.WindowSizeMsg{}): m.handleWindowSizeMsg,
		reflect.TypeOf(paneOpenedMsg{}):     m.handlePaneOpened,
		reflect.TypeOf(rowsMsg{}):           m.handleRows,
		reflect.TypeOf(paneSelectMsg{}):     m.handlePaneSelect,
		reflect.TypeOf(paneClosedMsg{}):     m.handlePaneClosed,
		reflect.TypeOf(splitMsg{}):          m.handleSplit,
		reflect.TypeOf(menuOpenMsg{}):       m.handleMenuOpen,
		reflect.TypeOf(dragOpenMsg{}):       m.handleDragOpen,
		reflect.TypeOf(dropTargetMsg{}):     m.handleDropTarget,
		reflect.TypeOf(previewOpenMsg{}):    m.handlePreviewOpen,
		reflect.TypeOf(previewLoadedMsg{}):  m.handlePreviewLoaded,
		reflect.TypeOf(overlayClosedMsg{}):  m.handleOverlayClosed,
		reflect.TypeOf(titleMsg{}):          m.handleTitle,
	}
}

func (m *Model) handlerFor(msg tea.Msg) msgHandler {
	if msg == nil || m.handlers == nil {
		return nil
	}
	t := reflect.TypeOf(msg)
	if handler, ok := m.handlers[t]; ok {
		return handler
	}
	if t.Kind() == reflect.Ptr {
		if handler, ok := m.handlers[t.Elem()]; ok {
			return handler
		}
	}
	return nil
}

func (m *Model) finishUpdate(cmds []tea.Cmd) tea.Cmd {
	if m.filterCursorDirty {
		m.filterCursorDirty = false
		m.filterCursor.Blink = false
		if cmd := m.filterCursor.BlinkCmd(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	if len(cmds) == 0 {
		return nil
	}
	return tea.Batch(cmds...)
}

func (m *Model) updateFilterCursorModel(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.filterCursor, cmd = m.filterCursor.Update(msg)
	return cmd
}

func (m *Model) handlePaneOpened(msg tea.Msg) tea.Cmd {
	open := msg.(paneOpenedMsg)
	if _, exists := m.panes[open.id]; exists {
		return nil
	}
	p := &pane{id: open.id, kind: open.kind, gestures: open.gestures}
	if p.kind != paneSplit {
		p.list = state.NewList(open.id, open.id)
	}
	if p.kind == paneTable {
		p.grid = newGrid()
	}
	m.panes[open.id] = p
	m.order = append(m.order, open.id)
	if m.focus == "" && p.focusable() {
		m.setFocus(open.id)
	}
	return nil
}

func (m *Model) handleRows(msg tea.Msg) tea.Cmd {
	rows := msg.(rowsMsg)
	p, ok := m.panes[rows.id]
	if !ok || p.list == nil {
		return nil
	}
	if rows.columns != nil {
		p.columns = rows.columns
	}
	p.list.SetRows(rows.rows)
	return nil
}

// handlePaneSelect mirrors a selection made by script. It moves the cursor
// without reporting a gesture.
func (m *Model) handlePaneSelect(msg tea.Msg) tea.Cmd {
	sel := msg.(paneSelectMsg)
	p, ok := m.panes[sel.id]
	if !ok || p.list == nil {
		return nil
	}
	if !p.list.Focus(sel.item) && p.list.Filter != "" {
		p.list.SetFilter("", 0)
		p.list.Focus(sel.item)
	}
	return nil
}

func (m *Model) handlePaneClosed(msg tea.Msg) tea.Cmd {
	id := msg.(paneClosedMsg).id
	if _, ok := m.panes[id]; !ok {
		return nil
	}
	delete(m.panes, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.focus == id {
		m.focus = ""
		if ids := m.focusOrder(); len(ids) > 0 {
			m.setFocus(ids[0])
		}
	}
	return nil
}

func (m *Model) handleSplit(msg tea.Msg) tea.Cmd {
	split := msg.(splitMsg)
	p, ok := m.panes[split.id]
	if !ok {
		p = &pane{id: split.id, kind: paneSplit}
		m.panes[split.id] = p
		m.order = append(m.order, split.id)
	}
	p.vertical = split.vertical
	p.position = split.position
	p.children = split.children
	return nil
}

func (m *Model) handleDropTarget(msg tea.Msg) tea.Cmd {
	drop := msg.(dropTargetMsg)
	if p, ok := m.panes[drop.target]; ok {
		p.dropToken = drop.token
	}
	return nil
}

func (m *Model) handleOverlayClosed(msg tea.Msg) tea.Cmd {
	token := msg.(overlayClosedMsg).token
	switch {
	case m.menu != nil && m.menu.token == token:
		m.menu = nil
	case m.drag != nil && m.drag.token == token:
		m.drag = nil
	case m.preview != nil && m.preview.token == token:
		m.preview = nil
	default:
		for _, p := range m.panes {
			if p.dropToken == token {
				p.dropToken = ""
			}
		}
	}
	return nil
}

func (m *Model) handleTitle(msg tea.Msg) tea.Cmd {
	m.title = msg.(titleMsg).title
	return nil
}

func (m *Model) handleWindowSizeMsg(msg tea.Msg) tea.Cmd {
	resize, ok := msg.(tea.WindowSizeMsg)
	if !ok {
		return nil
	}
	if !m.fixedWidth {
		m.width = resize.Width
	}
	if !m.fixedHeight {
		m.height = resize.Height
	}
	events.Term.Resize(m.width, m.height)
	return nil
}

// Title returns the window title.
func (m *Model) Title() string { return m.title }

// Focused returns the id of the pane that receives keys.
func (m *Model) Focused() string { return m.focus }

// CurrentRow returns the row under the cursor of pane id.
func (m *Model) CurrentRow(id string) string {
	p, ok := m.panes[id]
	if !ok || p.list == nil {
		return ""
	}
	return p.list.CurrentID()
}

// Rows returns the visible row ids of pane id.
func (m *Model) Rows(id string) []string {
	p, ok := m.panes[id]
	if !ok || p.list == nil {
		return nil
	}
	ids := make([]string, len(p.list.Rows))
	for i, row := range p.list.Rows {
		ids[i] = row.ID
	}
	return ids
}

// Overlay names the open modal overlay: menu, drag, preview or "".
func (m *Model) Overlay() string {
	switch {
	case m.menu != nil:
		return "menu"
	case m.drag != nil:
		return "drag"
	case m.preview != nil:
		return "preview"
	default:
		return ""
	}
}

// gesture posts fn to the loop when the pane reports that gesture.
func (m *Model) gesture(fn func(string), item string) {
	if fn == nil || item == "" || m.post == nil {
		return
	}
	m.post(func() { fn(item) })
}
