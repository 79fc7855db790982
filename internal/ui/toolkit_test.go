package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/atomicstack/nativebridge/internal/lifecycle"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/testutil"
	tea "github.com/charmbracelet/bubbletea"
)

func TestMain(m *testing.M) {
	logging.Disable()
	os.Exit(m.Run())
}

type fixture struct {
	sched *testutil.ManualScheduler
	page  *testutil.RecordingPage
	h     *Harness
	kit   *Toolkit
	win   *lifecycle.Window
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		sched: testutil.NewManualScheduler(),
		page:  &testutil.RecordingPage{},
	}
	model := NewModel(Options{Width: 100, Height: 30}, func(fn func()) {
		if err := f.sched.Post(fn); err != nil {
			t.Fatalf("post: %v", err)
		}
	})
	f.h = NewHarness(model)
	f.kit = newToolkit(f.sched, model, f.h.Send)
	f.win = lifecycle.Open(lifecycle.Options{
		Title:     "Finder",
		Toolkit:   f.kit,
		Page:      f.page,
		Scheduler: f.sched,
	})
	return f
}

func (f *fixture) send(raw string) {
	f.win.Dispatch([]byte(raw))
	f.sched.Drain()
}

func (f *fixture) key(k tea.KeyType) {
	f.h.Key(k)
	f.sched.Drain()
}

func (f *fixture) typeText(text string) {
	f.h.Type(text)
	f.sched.Drain()
}

func (f *fixture) sidebar(t *testing.T) {
	t.Helper()
	f.send(`{"domain":"sidebar","action":"create","requestId":"c","data":{"id":"main","sections":[{"id":"places","label":"Places","children":[{"id":"a","label":"Alpha"},{"id":"b","label":"Beta"}]}]}}`)
	f.send(`{"domain":"events","action":"listen","requestId":"l","data":{"handleId":"main","events":["selectionChanged","doubleClicked"]}}`)
	f.page.Reset()
}

func (f *fixture) files(t *testing.T) {
	t.Helper()
	f.send(`{"domain":"fileBrowser","action":"create","requestId":"fc","data":{"id":"files","columns":["name",{"id":"size","align":"right"}]}}`)
	f.send(`{"domain":"fileBrowser","action":"addRow","requestId":"fr","data":{"id":"files","row":{"id":"r1","name":"report.pdf","size":"10 KB"}}}`)
	f.sched.Advance(time.Second)
	f.page.Reset()
}

func sameIDs(got []string, want ...string) bool {
	return strings.Join(got, ",") == strings.Join(want, ",")
}

func lastItem(t *testing.T, page *testutil.RecordingPage, kind string) string {
	t.Helper()
	got := page.Events(kind)
	if len(got) == 0 {
		t.Fatalf("expected a %s event, got %v", kind, page.Scripts)
	}
	return got[len(got)-1].Get("itemId").String()
}

func TestSidebarSnapshotRendered(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)
	m := f.h.Model()
	if got := m.Rows("main"); !sameIDs(got, "places", "a", "b") {
		t.Fatalf("expected places,a,b, got %v", got)
	}
	if m.Focused() != "main" {
		t.Fatalf("expected the sidebar to take focus, got %q", m.Focused())
	}
	view := f.h.View()
	for _, want := range []string{"Finder", "Places", "Alpha", "Beta"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q, got:\n%s", want, view)
		}
	}
}

func TestSidebarMutationsReachTheTerminal(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)
	f.send(`{"domain":"sidebar","action":"addItem","requestId":"1","data":{"id":"main","parentId":"places","item":{"id":"c","label":"Gamma"}}}`)
	if got := f.h.Model().Rows("main"); len(got) != 3 {
		t.Fatalf("expected reload to wait for the coalescer, got %v", got)
	}
	f.sched.Advance(time.Second)
	if got := f.h.Model().Rows("main"); !sameIDs(got, "places", "a", "b", "c") {
		t.Fatalf("expected Gamma after reload, got %v", got)
	}
}

func TestKeysReportSelectionAndActivation(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)

	f.key(tea.KeyDown)
	if item := lastItem(t, f.page, "selectionChanged"); item != "a" {
		t.Fatalf("expected selection a, got %q", item)
	}
	f.key(tea.KeyDown)
	f.key(tea.KeyEnter)
	if item := lastItem(t, f.page, "doubleClicked"); item != "b" {
		t.Fatalf("expected activation of b, got %q", item)
	}
	f.key(tea.KeyDown)
	if n := len(f.page.Events("selectionChanged")); n != 2 {
		t.Fatalf("expected the cursor to stop at the last row, got %d selections", n)
	}
}

func TestTypeToFilter(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)

	f.typeText("bet")
	m := f.h.Model()
	if got := m.Rows("main"); !sameIDs(got, "b") {
		t.Fatalf("expected only b to match, got %v", got)
	}
	if m.CurrentRow("main") != "b" {
		t.Fatalf("expected cursor on b, got %q", m.CurrentRow("main"))
	}
	if view := f.h.View(); !strings.Contains(view, "/bet (1)") || !strings.Contains(view, "filter›") {
		t.Fatalf("expected the filter in the view, got:\n%s", view)
	}
	f.key(tea.KeyEsc)
	if got := m.Rows("main"); len(got) != 3 {
		t.Fatalf("expected esc to clear the filter, got %v", got)
	}
}

func TestProgrammaticSelectionMovesCursor(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)
	f.typeText("alp")
	f.send(`{"domain":"sidebar","action":"setSelectedItem","requestId":"s","data":{"id":"main","itemId":"b"}}`)
	m := f.h.Model()
	if m.CurrentRow("main") != "b" {
		t.Fatalf("expected cursor on b, got %q", m.CurrentRow("main"))
	}
	if got := m.Rows("main"); len(got) != 3 {
		t.Fatalf("expected the filter hiding b to be cleared, got %v", got)
	}
}

func TestFileBrowserTable(t *testing.T) {
	f := newFixture(t)
	f.files(t)
	m := f.h.Model()
	if got := m.Rows("files"); !sameIDs(got, "r1") {
		t.Fatalf("expected r1, got %v", got)
	}
	view := f.h.View()
	for _, want := range []string{"report.pdf", "10 KB"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q, got:\n%s", want, view)
		}
	}
	f.send(`{"domain":"fileBrowser","action":"setSelectedRow","requestId":"s","data":{"id":"files","rowId":"r1"}}`)
	if m.CurrentRow("files") != "r1" {
		t.Fatalf("expected cursor on r1, got %q", m.CurrentRow("files"))
	}
}

func TestMenuChoice(t *testing.T) {
	f := newFixture(t)
	f.files(t)
	f.send(`{"domain":"events","action":"listen","data":{"handleId":"files","events":["menuAction"],"mode":"direct"}}`)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"targetId":"files","items":[{"id":"open"},{"id":"trash","label":"Move to Trash"}]}}`)
	m := f.h.Model()
	if m.Overlay() != "menu" {
		t.Fatalf("expected an open menu, got %q", m.Overlay())
	}
	if view := f.h.View(); !strings.Contains(view, "Move to Trash") {
		t.Fatalf("expected menu items in the view, got:\n%s", view)
	}

	f.key(tea.KeyDown)
	f.key(tea.KeyEnter)
	res, ok := f.page.Result("1")
	if !ok || res.Get("data.itemId").String() != "trash" {
		t.Fatalf("expected trash to be chosen, got %s", res.Raw)
	}
	if m.Overlay() != "" {
		t.Fatalf("expected the menu to close, got %q", m.Overlay())
	}
	if item := lastItem(t, f.page, "menuAction"); item != "trash" {
		t.Fatalf("expected menuAction trash, got %q", item)
	}
}

func TestMenuDismissAndDestroy(t *testing.T) {
	f := newFixture(t)
	f.files(t)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"targetId":"files","items":["open"]}}`)
	f.key(tea.KeyEsc)
	res, ok := f.page.Result("1")
	if !ok || !res.Get("data.cancelled").Bool() {
		t.Fatalf("expected dismissal to resolve cancelled, got %s", res.Raw)
	}

	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"2","data":{"targetId":"files","items":["open"]}}`)
	f.send(`{"domain":"fileBrowser","action":"destroy","requestId":"d","data":{"id":"files"}}`)
	if f.h.Model().Overlay() != "" {
		t.Fatalf("expected the menu to close with its target")
	}
	if _, ok := f.page.Result("2"); !ok {
		t.Fatalf("expected the pending menu request to settle")
	}
}

func TestDragOntoFocusedDropTarget(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)
	f.files(t)
	f.send(`{"domain":"events","action":"listen","data":{"handleId":"files","events":["dropReceived"],"mode":"direct"}}`)
	f.send(`{"domain":"drag","action":"registerDropTarget","requestId":"r","data":{"targetId":"files","types":["text/plain"]}}`)
	if view := f.h.View(); !strings.Contains(view, "⇣") {
		t.Fatalf("expected a drop marker on the target, got:\n%s", view)
	}

	f.send(`{"domain":"drag","action":"beginDrag","requestId":"d","data":{"sourceId":"main","items":["/tmp/a.txt"]}}`)
	m := f.h.Model()
	if m.Overlay() != "drag" {
		t.Fatalf("expected a drag in progress, got %q", m.Overlay())
	}
	if view := f.h.View(); !strings.Contains(view, "dragging 1 from main to main") {
		t.Fatalf("expected drag status, got:\n%s", view)
	}
	f.key(tea.KeyTab)
	if m.Focused() != "files" {
		t.Fatalf("expected tab to pick files, got %q", m.Focused())
	}
	f.typeText("m")

	res, ok := f.page.Result("d")
	if !ok || res.Get("data.operation").String() != "move" {
		t.Fatalf("expected a move, got %s", res.Raw)
	}
	drops := f.page.Events("dropReceived")
	if len(drops) != 1 || drops[0].Get("handleId").String() != "files" || drops[0].Get("operation").String() != "move" {
		t.Fatalf("expected dropReceived on files, got %v", f.page.Scripts)
	}
	if drops[0].Get("items.0.value").String() != "/tmp/a.txt" {
		t.Fatalf("expected the dragged path, got %s", drops[0].Raw)
	}
}

func TestDragWithoutTargetEndsNone(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)
	f.send(`{"domain":"drag","action":"beginDrag","requestId":"d","data":{"sourceId":"main","items":["/tmp/a.txt"]}}`)
	f.typeText("c")
	res, ok := f.page.Result("d")
	if !ok || res.Get("data.operation").String() != "none" {
		t.Fatalf("expected none without a drop target, got %s", res.Raw)
	}

	f.send(`{"domain":"drag","action":"beginDrag","requestId":"e","data":{"sourceId":"main","items":["/tmp/a.txt"]}}`)
	f.key(tea.KeyEsc)
	res, ok = f.page.Result("e")
	if !ok || res.Get("data.operation").String() != "none" {
		t.Fatalf("expected esc to cancel, got %s", res.Raw)
	}
	if f.h.Model().Overlay() != "" {
		t.Fatalf("expected no overlay left")
	}
}

func TestPreviewShowsFileAndCloses(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(path, []byte("hello preview\nsecond line\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	f := newFixture(t)
	f.files(t)
	f.send(`{"domain":"events","action":"listen","data":{"handleId":"files","events":["previewClosed"],"mode":"direct"}}`)
	f.send(`{"domain":"preview","action":"showPreview","requestId":"p","data":{"items":["` + path + `"],"sourceId":"files"}}`)
	if f.h.Model().Overlay() != "preview" {
		t.Fatalf("expected an open preview")
	}
	view := f.h.View()
	if !strings.Contains(view, "hello preview") || !strings.Contains(view, "(1/1)") {
		t.Fatalf("expected the file contents, got:\n%s", view)
	}

	f.key(tea.KeyEsc)
	closed := f.page.Events("previewClosed")
	if len(closed) != 1 || closed[0].Get("reason").String() != "user" {
		t.Fatalf("expected previewClosed by user, got %v", f.page.Scripts)
	}
	if f.h.Model().Overlay() != "" {
		t.Fatalf("expected the preview to close")
	}
}

func TestSplitLayoutAndFocusOrder(t *testing.T) {
	f := newFixture(t)
	f.sidebar(t)
	f.files(t)
	f.send(`{"domain":"splitView","action":"create","requestId":"s","data":{"id":"split","children":["main","files"],"position":0.3,"vertical":true}}`)
	m := f.h.Model()
	if got := m.roots(); !sameIDs(got, "split") {
		t.Fatalf("expected the split to be the only root, got %v", got)
	}
	if got := m.focusOrder(); !sameIDs(got, "main", "files") {
		t.Fatalf("expected focus order main,files, got %v", got)
	}
	f.key(tea.KeyTab)
	if m.Focused() != "files" {
		t.Fatalf("expected focus on files, got %q", m.Focused())
	}
	f.key(tea.KeyTab)
	if m.Focused() != "main" {
		t.Fatalf("expected focus to wrap to main, got %q", m.Focused())
	}
	view := f.h.View()
	if !strings.Contains(view, "Alpha") || !strings.Contains(view, "report.pdf") {
		t.Fatalf("expected both panes, got:\n%s", view)
	}
}

func TestSetTitleAndClose(t *testing.T) {
	f := newFixture(t)
	f.send(`{"domain":"window","action":"setTitle","requestId":"1","data":{"title":"Browse"}}`)
	if got := f.h.Model().Title(); got != "Browse" {
		t.Fatalf("expected title Browse, got %q", got)
	}
	f.sidebar(t)
	f.win.Close("test")
	if got := f.h.Model().Rows("main"); got != nil {
		t.Fatalf("expected panes released on close, got %v", got)
	}
	if _, err := f.kit.NewSidebar("late", nil, native.Gestures{}); err == nil {
		t.Fatalf("expected constructors to fail after close")
	}
}
