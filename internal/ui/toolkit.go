package ui

import (
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/atomicstack/nativebridge/internal/adapter"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/loop"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/protocol"
	tea "github.com/charmbracelet/bubbletea"
)

// ErrProgramKilled is returned by Run when the program was torn down
// without a regular quit.
var ErrProgramKilled = tea.ErrProgramKilled

// Options configure the terminal toolkit.
type Options struct {
	Title string
	// Width and Height pin the layout; zero follows the terminal size.
	Width  int
	Height int
}

// Toolkit implements native.Toolkit on top of a Bubble Tea program. All
// methods except Run must be called on the UI loop.
type Toolkit struct {
	sched   loop.Scheduler
	model   *Model
	program *tea.Program
	out     *outbox
	send    func(tea.Msg)

	tokens int
	drops  map[string]*dropRegistration
	closed bool
}

type dropRegistration struct {
	token string
	req   native.DropRequest
}

// NewToolkit builds the program for one window. Nothing is drawn until Run.
func NewToolkit(sched loop.Scheduler, opts Options) *Toolkit {
	model := NewModel(opts, postOn(sched))
	out := newOutbox()
	t := newToolkit(sched, model, out.push)
	t.out = out
	t.program = tea.NewProgram(model, tea.WithAltScreen())
	return t
}

// newToolkit wires a toolkit to an arbitrary message sink; tests feed the
// sink straight into a Harness.
func newToolkit(sched loop.Scheduler, model *Model, send func(tea.Msg)) *Toolkit {
	return &Toolkit{
		sched: sched,
		model: model,
		send:  send,
		drops: make(map[string]*dropRegistration),
	}
}

func postOn(sched loop.Scheduler) func(func()) {
	return func(fn func()) {
		if err := sched.Post(fn); err != nil && !errors.Is(err, loop.ErrStopped) {
			logging.Error(fmt.Errorf("post gesture: %w", err))
		}
	}
}

// Run drives the terminal until the program quits. It may be called from
// any goroutine.
func (t *Toolkit) Run() error {
	if t.program == nil {
		return errors.New("ui: toolkit has no program")
	}
	done := make(chan struct{})
	go t.out.pump(t.program, done)
	_, err := t.program.Run()
	close(done)
	return err
}

func (t *Toolkit) token(kind string) string {
	t.tokens++
	return kind + "-" + strconv.Itoa(t.tokens)
}

// later runs fn on a following loop turn, once the component that owns a
// new view has been registered and its adapter can resolve it.
func (t *Toolkit) later(fn func()) {
	if err := t.sched.Post(fn); err != nil && !errors.Is(err, loop.ErrStopped) {
		logging.Error(fmt.Errorf("schedule snapshot: %w", err))
	}
}

func (t *Toolkit) NewSidebar(id string, src adapter.Enumerable, g native.Gestures) (native.Sidebar, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	p := &listView{t: t, id: id, src: src}
	t.send(paneOpenedMsg{id: id, kind: paneList, gestures: g})
	t.later(p.Reload)
	return p, nil
}

func (t *Toolkit) NewFileBrowser(id string, src adapter.TableSource, g native.Gestures) (native.FileBrowser, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	p := &tableView{t: t, id: id, src: src}
	t.send(paneOpenedMsg{id: id, kind: paneTable, gestures: g})
	t.later(p.Reload)
	return p, nil
}

func (t *Toolkit) NewSplitView(id string, opts native.SplitOptions) (native.SplitView, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	s := &splitView{
		t:        t,
		id:       id,
		vertical: opts.Vertical,
		position: opts.Position,
		children: append([]string(nil), opts.Children...),
	}
	t.send(paneOpenedMsg{id: id, kind: paneSplit})
	s.publish()
	return s, nil
}

func (t *Toolkit) ShowMenu(req native.MenuRequest) (native.Overlay, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	ref := &overlayRef{t: t, token: t.token("menu")}
	t.send(menuOpenMsg{
		token:  ref.token,
		target: req.Target,
		lines:  menuLines(req.Items, 0),
		choose: func(item string) {
			if ref.settle() && req.Choose != nil {
				req.Choose(item)
			}
		},
		dismiss: func() {
			if ref.settle() && req.Dismiss != nil {
				req.Dismiss()
			}
		},
	})
	events.Term.Overlay("menu", ref.token, "open")
	return ref, nil
}

func (t *Toolkit) BeginDrag(req native.DragRequest) (native.Overlay, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	ref := &overlayRef{t: t, token: t.token("drag")}
	t.send(dragOpenMsg{
		token:  ref.token,
		source: req.Source,
		count:  len(req.Items),
		finish: func(op, target string) {
			if ref.settle() {
				t.completeDrag(req, op, target)
			}
		},
	})
	events.Term.Overlay("drag", ref.token, "open")
	return ref, nil
}

// completeDrag drops the items on target when it accepts them and reports
// the final operation. A drop that lands nowhere ends as none.
func (t *Toolkit) completeDrag(req native.DragRequest, op, target string) {
	if op != protocol.DragOperationNone {
		reg, ok := t.drops[target]
		if ok && accepts(reg.req.Types, req.Items) {
			if reg.req.Drop != nil {
				reg.req.Drop(req.Items, op)
			}
		} else {
			op = protocol.DragOperationNone
		}
	}
	if req.End != nil {
		req.End(op)
	}
}

func accepts(types []string, items []native.DragItem) bool {
	if len(types) == 0 {
		return true
	}
	for _, item := range items {
		for _, typ := range types {
			if typ == item.Type {
				return true
			}
		}
	}
	return false
}

func (t *Toolkit) RegisterDropTarget(req native.DropRequest) (native.Overlay, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	reg := &dropRegistration{token: t.token("drop"), req: req}
	t.drops[req.Target] = reg
	ref := &overlayRef{t: t, token: reg.token, onClose: func() {
		if cur, ok := t.drops[req.Target]; ok && cur == reg {
			delete(t.drops, req.Target)
		}
	}}
	t.send(dropTargetMsg{token: reg.token, target: req.Target})
	return ref, nil
}

func (t *Toolkit) ShowPreview(req native.PreviewRequest) (native.Overlay, error) {
	if t.closed {
		return nil, errToolkitClosed
	}
	if len(req.Items) == 0 {
		return nil, errors.New("ui: preview needs at least one item")
	}
	ref := &overlayRef{t: t, token: t.token("preview")}
	t.send(previewOpenMsg{
		token: ref.token,
		items: append([]native.PreviewItem(nil), req.Items...),
		index: req.Index,
		closed: func() {
			if ref.settle() && req.Closed != nil {
				req.Closed()
			}
		},
	})
	events.Term.Overlay("preview", ref.token, "open")
	return ref, nil
}

func (t *Toolkit) SetTitle(title string) {
	t.send(titleMsg{title: title})
}

// Close quits the program once every message sent before it has been
// handled.
func (t *Toolkit) Close() {
	if t.closed {
		return
	}
	t.closed = true
	t.send(tea.QuitMsg{})
}

var errToolkitClosed = errors.New("ui: toolkit closed")

// overlayRef is the loop-side handle of an overlay. Its callbacks fire at
// most once and never after Close.
type overlayRef struct {
	t       *Toolkit
	token   string
	done    bool
	onClose func()
}

func (o *overlayRef) settle() bool {
	if o.done {
		return false
	}
	o.done = true
	return true
}

func (o *overlayRef) Close() {
	if o.done && o.onClose == nil {
		return
	}
	o.done = true
	if o.onClose != nil {
		o.onClose()
		o.onClose = nil
	}
	o.t.send(overlayClosedMsg{token: o.token})
	events.Term.Overlay("", o.token, "closed")
}

type listView struct {
	t      *Toolkit
	id     string
	src    adapter.Enumerable
	closed bool
}

func (v *listView) Reload() {
	if v.closed {
		return
	}
	rows := outlineRows(v.src)
	events.Term.Snapshot(v.id, len(rows))
	v.t.send(rowsMsg{id: v.id, rows: rows})
}

func (v *listView) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.t.send(paneClosedMsg{id: v.id})
}

func (v *listView) Select(item string) {
	v.t.send(paneSelectMsg{id: v.id, item: item})
}

// SetExpanded re-snapshots; disclosure state is read from the source.
func (v *listView) SetExpanded(string, bool) { v.Reload() }

type tableView struct {
	t      *Toolkit
	id     string
	src    adapter.TableSource
	closed bool
}

func (v *tableView) Reload() {
	if v.closed {
		return
	}
	columns, rows := tableRows(v.src)
	events.Term.Snapshot(v.id, len(rows))
	v.t.send(rowsMsg{id: v.id, columns: columns, rows: rows})
}

func (v *tableView) Close() {
	if v.closed {
		return
	}
	v.closed = true
	v.t.send(paneClosedMsg{id: v.id})
}

func (v *tableView) SelectRow(id string) {
	v.t.send(paneSelectMsg{id: v.id, item: id})
}

type splitView struct {
	t        *Toolkit
	id       string
	vertical bool
	position float64
	children []string
	closed   bool
}

func (s *splitView) publish() {
	s.t.send(splitMsg{
		id:       s.id,
		vertical: s.vertical,
		position: s.position,
		children: append([]string(nil), s.children...),
	})
}

func (s *splitView) Reload() {}

func (s *splitView) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.t.send(paneClosedMsg{id: s.id})
}

func (s *splitView) SetPosition(fraction float64) {
	s.position = fraction
	s.publish()
}

func (s *splitView) Attach(children []string) {
	s.children = append([]string(nil), children...)
	s.publish()
}

// outbox hands messages to the program in order without ever blocking the
// UI loop. Messages sent before Run are kept until the program starts.
type outbox struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
}

func newOutbox() *outbox {
	return &outbox{wake: make(chan struct{}, 1)}
}

func (o *outbox) push(msg tea.Msg) {
	o.mu.Lock()
	o.queue = append(o.queue, msg)
	o.mu.Unlock()
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *outbox) take() []tea.Msg {
	o.mu.Lock()
	defer o.mu.Unlock()
	batch := o.queue
	o.queue = nil
	return batch
}

func (o *outbox) pump(p *tea.Program, done <-chan struct{}) {
	for {
		for _, msg := range o.take() {
			p.Send(msg)
		}
		select {
		case <-o.wake:
		case <-done:
			return
		}
	}
}
