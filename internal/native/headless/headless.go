// Package headless is a recording native toolkit. It renders nothing; it
// keeps every widget and overlay it was asked for and lets callers simulate
// the gestures a user would perform. Gesture methods invoke callbacks
// synchronously, so they must be called on the UI loop.
package headless

import (
	"fmt"
	"sort"

	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/native"
)

// Toolkit implements native.Toolkit.
type Toolkit struct {
	Title  string
	Closed bool

	sidebars map[string]*Sidebar
	browsers map[string]*FileBrowser
	splits   map[string]*SplitView
	menus    []*Menu
	drags    []*Drag
	drops    map[string]*DropTarget
	previews []*Preview
	fail     map[string]error
}

// New returns an empty toolkit.
func New() *Toolkit {
	return &Toolkit{
		sidebars: make(map[string]*Sidebar),
		browsers: make(map[string]*FileBrowser),
		splits:   make(map[string]*SplitView),
		drops:    make(map[string]*DropTarget),
		fail:     make(map[string]error),
	}
}

// FailNext makes the next call of the named constructor return err.
// Names are the Toolkit method names, e.g. "NewSidebar".
func (t *Toolkit) FailNext(method string, err error) { t.fail[method] = err }

func (t *Toolkit) failure(method string) error {
	if err, ok := t.fail[method]; ok {
		delete(t.fail, method)
		return err
	}
	return nil
}

// Sidebar records an outline view.
type Sidebar struct {
	ID       string
	Source   adapter.Enumerable
	Gestures native.Gestures
	Selected string
	Expanded map[string]bool
	Reloads  int
	Closed   bool
}

func (s *Sidebar) Reload()            { s.Reloads++ }
func (s *Sidebar) Close()             { s.Closed = true }
func (s *Sidebar) Select(item string) { s.Selected = item }
func (s *Sidebar) SetExpanded(item string, expanded bool) {
	s.Expanded[item] = expanded
}

// Click simulates the user selecting item.
func (s *Sidebar) Click(item string) {
	s.Selected = item
	if s.Gestures.Select != nil {
		s.Gestures.Select(item)
	}
}

// DoubleClick simulates activating item.
func (s *Sidebar) DoubleClick(item string) {
	if s.Gestures.Activate != nil {
		s.Gestures.Activate(item)
	}
}

// Visible flattens the source as an outline view would display it.
func (s *Sidebar) Visible() []string {
	var out []string
	var walk func(item string)
	walk = func(item string) {
		for i := 0; i < s.Source.ChildCount(item); i++ {
			child := s.Source.ChildAt(item, i)
			out = append(out, child)
			if s.Source.ValueAt(child, "expanded") == "true" {
				walk(child)
			}
		}
	}
	walk(adapter.Root)
	return out
}

// FileBrowser records a table view.
type FileBrowser struct {
	ID       string
	Source   adapter.TableSource
	Gestures native.Gestures
	Selected string
	Reloads  int
	Closed   bool
}

func (f *FileBrowser) Reload()             { f.Reloads++ }
func (f *FileBrowser) Close()              { f.Closed = true }
func (f *FileBrowser) SelectRow(id string) { f.Selected = id }

// Click simulates selecting row id.
func (f *FileBrowser) Click(id string) {
	f.Selected = id
	if f.Gestures.Select != nil {
		f.Gestures.Select(id)
	}
}

// DoubleClick simulates opening row id.
func (f *FileBrowser) DoubleClick(id string) {
	if f.Gestures.Activate != nil {
		f.Gestures.Activate(id)
	}
}

// SplitView records a split container.
type SplitView struct {
	ID       string
	Options  native.SplitOptions
	Position float64
	Children []string
	Closed   bool
}

func (s *SplitView) Reload()                  {}
func (s *SplitView) Close()                   { s.Closed = true }
func (s *SplitView) SetPosition(f float64)    { s.Position = f }
func (s *SplitView) Attach(children []string) { s.Children = append([]string(nil), children...) }

// Menu records a shown context menu.
type Menu struct {
	Request native.MenuRequest
	Closed  bool
	settled bool
}

// Close cancels the menu without invoking callbacks.
func (m *Menu) Close() { m.Closed = true; m.settled = true }

// Choose simulates picking itemID.
func (m *Menu) Choose(itemID string) {
	if m.settled {
		return
	}
	m.settled = true
	if m.Request.Choose != nil {
		m.Request.Choose(itemID)
	}
}

// Dismiss simulates clicking outside the menu.
func (m *Menu) Dismiss() {
	if m.settled {
		return
	}
	m.settled = true
	if m.Request.Dismiss != nil {
		m.Request.Dismiss()
	}
}

// Drag records a drag session.
type Drag struct {
	Request native.DragRequest
	Closed  bool
	settled bool
}

// Close cancels the session without invoking callbacks.
func (d *Drag) Close() { d.Closed = true; d.settled = true }

// End simulates the user releasing the drag.
func (d *Drag) End(operation string) {
	if d.settled {
		return
	}
	d.settled = true
	if d.Request.End != nil {
		d.Request.End(operation)
	}
}

// DropTarget records a registered destination.
type DropTarget struct {
	Request native.DropRequest
	Closed  bool
}

func (d *DropTarget) Close() { d.Closed = true }

// Drop simulates items landing on the target.
func (d *DropTarget) Drop(items []native.DragItem, operation string) {
	if d.Closed || d.Request.Drop == nil {
		return
	}
	d.Request.Drop(items, operation)
}

// Preview records an open preview panel.
type Preview struct {
	Request native.PreviewRequest
	Closed  bool
}

func (p *Preview) Close() { p.Closed = true }

// UserClose simulates the user dismissing the panel.
func (p *Preview) UserClose() {
	if p.Closed {
		return
	}
	p.Closed = true
	if p.Request.Closed != nil {
		p.Request.Closed()
	}
}

func (t *Toolkit) NewSidebar(id string, src adapter.Enumerable, g native.Gestures) (native.Sidebar, error) {
	if err := t.failure("NewSidebar"); err != nil {
		return nil, err
	}
	s := &Sidebar{ID: id, Source: src, Gestures: g, Expanded: make(map[string]bool)}
	t.sidebars[id] = s
	return s, nil
}

func (t *Toolkit) NewFileBrowser(id string, src adapter.TableSource, g native.Gestures) (native.FileBrowser, error) {
	if err := t.failure("NewFileBrowser"); err != nil {
		return nil, err
	}
	f := &FileBrowser{ID: id, Source: src, Gestures: g}
	t.browsers[id] = f
	return f, nil
}

func (t *Toolkit) NewSplitView(id string, opts native.SplitOptions) (native.SplitView, error) {
	if err := t.failure("NewSplitView"); err != nil {
		return nil, err
	}
	s := &SplitView{ID: id, Options: opts, Position: opts.Position}
	s.Attach(opts.Children)
	t.splits[id] = s
	return s, nil
}

func (t *Toolkit) ShowMenu(req native.MenuRequest) (native.Overlay, error) {
	if err := t.failure("ShowMenu"); err != nil {
		return nil, err
	}
	m := &Menu{Request: req}
	t.menus = append(t.menus, m)
	return m, nil
}

func (t *Toolkit) BeginDrag(req native.DragRequest) (native.Overlay, error) {
	if err := t.failure("BeginDrag"); err != nil {
		return nil, err
	}
	d := &Drag{Request: req}
	t.drags = append(t.drags, d)
	return d, nil
}

func (t *Toolkit) RegisterDropTarget(req native.DropRequest) (native.Overlay, error) {
	if err := t.failure("RegisterDropTarget"); err != nil {
		return nil, err
	}
	d := &DropTarget{Request: req}
	t.drops[req.Target] = d
	return d, nil
}

func (t *Toolkit) ShowPreview(req native.PreviewRequest) (native.Overlay, error) {
	if err := t.failure("ShowPreview"); err != nil {
		return nil, err
	}
	p := &Preview{Request: req}
	t.previews = append(t.previews, p)
	return p, nil
}

func (t *Toolkit) SetTitle(title string) { t.Title = title }
func (t *Toolkit) Close()                { t.Closed = true }

// Sidebar returns the recorded outline view for id.
func (t *Toolkit) Sidebar(id string) *Sidebar { return t.sidebars[id] }

// FileBrowser returns the recorded table view for id.
func (t *Toolkit) FileBrowser(id string) *FileBrowser { return t.browsers[id] }

// SplitView returns the recorded split view for id.
func (t *Toolkit) SplitView(id string) *SplitView { return t.splits[id] }

// DropTarget returns the registration for target.
func (t *Toolkit) DropTarget(target string) *DropTarget { return t.drops[target] }

// LastMenu returns the most recently shown menu.
func (t *Toolkit) LastMenu() *Menu {
	if len(t.menus) == 0 {
		return nil
	}
	return t.menus[len(t.menus)-1]
}

// LastDrag returns the most recent drag session.
func (t *Toolkit) LastDrag() *Drag {
	if len(t.drags) == 0 {
		return nil
	}
	return t.drags[len(t.drags)-1]
}

// LastPreview returns the most recently opened preview.
func (t *Toolkit) LastPreview() *Preview {
	if len(t.previews) == 0 {
		return nil
	}
	return t.previews[len(t.previews)-1]
}

// Menus returns how many menus were shown.
func (t *Toolkit) Menus() int { return len(t.menus) }

// Summary lists the widgets that are still open, for debugging.
func (t *Toolkit) Summary() []string {
	var out []string
	for id, s := range t.sidebars {
		if !s.Closed {
			out = append(out, fmt.Sprintf("sidebar:%s", id))
		}
	}
	for id, f := range t.browsers {
		if !f.Closed {
			out = append(out, fmt.Sprintf("fileBrowser:%s", id))
		}
	}
	for id, s := range t.splits {
		if !s.Closed {
			out = append(out, fmt.Sprintf("splitView:%s", id))
		}
	}
	sort.Strings(out)
	return out
}
