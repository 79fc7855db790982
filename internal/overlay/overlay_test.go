package overlay

import (
	"errors"
	"os"
	"testing"

	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/eventbridge"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/native"
	"github.com/atomicstack/nativebridge/internal/native/headless"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
	"github.com/atomicstack/nativebridge/internal/testutil"
)

func TestMain(m *testing.M) {
	logging.Disable()
	os.Exit(m.Run())
}

type fixture struct {
	reg    *registry.Registry
	kit    *headless.Toolkit
	events *eventbridge.Bridge
	router *bridge.Router
	sched  *testutil.ManualScheduler
	page   *testutil.RecordingPage
	mgr    *Manager
}

type widget struct{}

func (widget) Release() {}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		reg:   registry.New("w"),
		kit:   headless.New(),
		sched: testutil.NewManualScheduler(),
		page:  &testutil.RecordingPage{},
	}
	f.events = eventbridge.New(f.sched, f.page, 0)
	f.reg.OnEvict(f.events.Evict)
	f.mgr = New(f.reg, f.kit, f.events)
	f.router = bridge.New(f.events)
	f.router.Register(protocol.DomainMenu, f.mgr.MenuActions())
	f.router.Register(protocol.DomainDrag, f.mgr.DragActions())
	f.router.Register(protocol.DomainPreview, f.mgr.PreviewActions())
	if _, err := f.reg.Create(protocol.DomainFileBrowser, "files", func(registry.Handle) (registry.Component, error) {
		return widget{}, nil
	}); err != nil {
		t.Fatalf("create widget: %v", err)
	}
	return f
}

func (f *fixture) send(raw string) {
	f.router.Dispatch([]byte(raw))
	f.sched.Drain()
}

func TestContextMenuChoice(t *testing.T) {
	f := newFixture(t)
	f.events.Listen("files", protocol.EventMenuAction, "")
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"targetId":"files","x":10,"y":20,"items":[{"id":"open"},{"id":"trash","label":"Move to Trash"}]}}`)
	menu := f.kit.LastMenu()
	if menu == nil || len(menu.Request.Items) != 2 || menu.Request.X != 10 {
		t.Fatalf("expected a native menu with two items, got %#v", menu)
	}
	if _, ok := f.page.Result("1"); ok {
		t.Fatalf("expected request to stay pending while the menu is shown")
	}
	if f.reg.CountDomain(protocol.DomainMenu) != 1 {
		t.Fatalf("expected transient menu handle while shown")
	}

	menu.Choose("trash")
	res, ok := f.page.Result("1")
	if !ok || res.Get("data.itemId").String() != "trash" {
		t.Fatalf("expected itemId trash, got %s", res.Raw)
	}
	if f.reg.CountDomain(protocol.DomainMenu) != 0 {
		t.Fatalf("expected transient menu to be released")
	}
	if f.events.Stats().Queued != 1 {
		t.Fatalf("expected polled menuAction to be queued")
	}
	f.events.Poll()
	actions := f.page.Events("menuAction")
	if len(actions) != 1 || actions[0].Get("handleId").String() != "files" || actions[0].Get("itemId").String() != "trash" {
		t.Fatalf("unexpected menuAction %v", f.page.Scripts)
	}
}

func (f *fixture) pollAll() {
	for i := 0; i < 10; i++ {
		if delivered, _ := f.events.Poll(); !delivered {
			return
		}
	}
}

func TestWildcardSeesUntargetedMenuChoice(t *testing.T) {
	f := newFixture(t)
	f.events.Listen(eventbridge.AnyHandle, protocol.EventMenuAction, "")
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"items":["a","b"]}}`)
	f.kit.LastMenu().Choose("b")
	if f.reg.CountDomain(protocol.DomainMenu) != 0 {
		t.Fatalf("expected transient menu to be released")
	}
	f.pollAll()
	actions := f.page.Events("menuAction")
	if len(actions) != 1 || actions[0].Get("itemId").String() != "b" {
		t.Fatalf("expected one menuAction for b, got %v", f.page.Scripts)
	}
	if actions[0].Get("handleId").String() != actions[0].Get("menuId").String() {
		t.Fatalf("expected the menu handle as addressee, got %s", actions[0].Raw)
	}
	if st := f.events.Stats(); st.Dropped != 0 || st.Queued != 0 {
		t.Fatalf("expected nothing dropped or left queued, got %+v", st)
	}
}

func TestWildcardSeesStoredMenuChoiceOnce(t *testing.T) {
	f := newFixture(t)
	f.events.Listen(eventbridge.AnyHandle, protocol.EventMenuAction, "")
	f.send(`{"domain":"menu","action":"setMenu","requestId":"s","data":{"id":"ctx","items":["copy","paste"]}}`)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"menuId":"ctx","targetId":"files"}}`)
	f.kit.LastMenu().Choose("copy")
	f.pollAll()
	actions := f.page.Events("menuAction")
	if len(actions) != 1 {
		t.Fatalf("expected exactly one menuAction, got %d: %v", len(actions), f.page.Scripts)
	}
	got := actions[0]
	if got.Get("handleId").String() != "files" || got.Get("menuId").String() != "ctx" || got.Get("itemId").String() != "copy" {
		t.Fatalf("expected copy on files from ctx, got %s", got.Raw)
	}
}

func TestWildcardSeesMenuDismissalOnce(t *testing.T) {
	f := newFixture(t)
	f.events.Listen(eventbridge.AnyHandle, protocol.EventMenuDismissed, "")
	f.send(`{"domain":"menu","action":"setMenu","requestId":"s","data":{"id":"ctx","items":["copy"]}}`)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"menuId":"ctx","targetId":"files"}}`)
	f.kit.LastMenu().Dismiss()
	f.pollAll()
	if got := f.page.Events("menuDismissed"); len(got) != 1 || got[0].Get("handleId").String() != "files" {
		t.Fatalf("expected one menuDismissed on files, got %v", f.page.Scripts)
	}
}

func TestSecondShowDismissesFirst(t *testing.T) {
	f := newFixture(t)
	f.send(`{"domain":"menu","action":"setMenu","requestId":"s","data":{"id":"ctx","items":["copy","paste"]}}`)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"menuId":"ctx"}}`)
	first := f.kit.LastMenu()
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"2","data":{"menuId":"ctx"}}`)
	if !first.Closed {
		t.Fatalf("expected first menu to be closed")
	}
	res, ok := f.page.Result("1")
	if !ok || !res.Get("data.cancelled").Bool() {
		t.Fatalf("expected first request cancelled, got %s", res.Raw)
	}
	f.kit.LastMenu().Dismiss()
	res, ok = f.page.Result("2")
	if !ok || !res.Get("data.cancelled").Bool() {
		t.Fatalf("expected dismissal to resolve cancelled, got %s", res.Raw)
	}
	if f.reg.CountDomain(protocol.DomainMenu) != 1 {
		t.Fatalf("expected stored menu to survive presentations")
	}
}

func TestMenuCancelledWhenTargetDestroyed(t *testing.T) {
	f := newFixture(t)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"targetId":"files","items":["a"]}}`)
	menu := f.kit.LastMenu()
	f.reg.Destroy(protocol.DomainFileBrowser, "files")
	if !menu.Closed || f.mgr.MenuShown() {
		t.Fatalf("expected menu to close with its target")
	}
	res, ok := f.page.Result("1")
	if !ok || !res.Get("data.cancelled").Bool() {
		t.Fatalf("expected cancelled result, got %s", res.Raw)
	}
	menu.Choose("a")
	if len(f.page.Events("__result")) != 1 {
		t.Fatalf("expected late choice to be ignored")
	}
}

func TestShowMenuErrors(t *testing.T) {
	f := newFixture(t)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"1","data":{"targetId":"ghost","items":["a"]}}`)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"2","data":{}}`)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"3","data":{"menuId":"nope"}}`)
	f.kit.FailNext("ShowMenu", errors.New("no display"))
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"4","data":{"items":["a"]}}`)
	want := map[string]string{"1": "HandleNotFound", "2": "MissingData", "3": "HandleNotFound", "4": "NativeCallFailed"}
	for id, code := range want {
		res, ok := f.page.Result(id)
		if !ok || res.Get("error.code").String() != code {
			t.Fatalf("expected %s for %s, got %s", code, id, res.Raw)
		}
	}
	if f.reg.CountDomain(protocol.DomainMenu) != 0 || f.mgr.MenuShown() {
		t.Fatalf("expected failed shows to leave no menu state")
	}
}

func TestDragCompletes(t *testing.T) {
	f := newFixture(t)
	f.events.Listen("files", protocol.EventDragCompleted, "direct")
	f.send(`{"domain":"drag","action":"beginDrag","requestId":"d","data":{"sourceId":"files","items":["/tmp/a.txt",{"path":"/tmp/b.png","type":"image/png"}]}}`)
	drag := f.kit.LastDrag()
	if drag == nil || len(drag.Request.Items) != 2 || drag.Request.Items[1].Type != "image/png" {
		t.Fatalf("unexpected drag request %#v", drag)
	}
	if f.reg.CountDomain(protocol.DomainDrag) != 1 {
		t.Fatalf("expected a live drag session")
	}
	drag.End("move")
	res, ok := f.page.Result("d")
	if !ok || res.Get("data.operation").String() != "move" {
		t.Fatalf("expected move, got %s", res.Raw)
	}
	done := f.page.Events("dragCompleted")
	if len(done) != 1 || done[0].Get("handleId").String() != "files" {
		t.Fatalf("expected dragCompleted for files, got %v", f.page.Scripts)
	}
	if f.reg.CountDomain(protocol.DomainDrag) != 0 {
		t.Fatalf("expected session released")
	}
}

func TestWildcardSeesUnsourcedDrag(t *testing.T) {
	f := newFixture(t)
	f.events.Listen(eventbridge.AnyHandle, protocol.EventDragCompleted, "")
	f.send(`{"domain":"drag","action":"beginDrag","requestId":"d","data":{"items":["x"]}}`)
	f.kit.LastDrag().End("copy")
	if f.reg.CountDomain(protocol.DomainDrag) != 0 {
		t.Fatalf("expected session released")
	}
	f.pollAll()
	done := f.page.Events("dragCompleted")
	if len(done) != 1 || done[0].Get("operation").String() != "copy" {
		t.Fatalf("expected one dragCompleted with copy, got %v", f.page.Scripts)
	}
	if done[0].Get("handleId").String() != done[0].Get("sessionId").String() {
		t.Fatalf("expected the session as addressee, got %s", done[0].Raw)
	}
	if f.events.Stats().Dropped != 0 {
		t.Fatalf("expected nothing dropped, got %+v", f.events.Stats())
	}
}

func TestDragCancelledWhenSourceDestroyed(t *testing.T) {
	f := newFixture(t)
	f.send(`{"domain":"drag","action":"beginDrag","requestId":"d","data":{"sourceId":"files","items":["x"]}}`)
	f.reg.Destroy(protocol.DomainFileBrowser, "files")
	res, ok := f.page.Result("d")
	if !ok || res.Get("data.operation").String() != "none" || !res.Get("data.cancelled").Bool() {
		t.Fatalf("expected cancelled drag, got %s", res.Raw)
	}
	if f.reg.Count() != 0 || f.mgr.DragActive() {
		t.Fatalf("expected no handles left, got %d", f.reg.Count())
	}
}

func TestDropTarget(t *testing.T) {
	f := newFixture(t)
	f.events.Listen("files", protocol.EventDropReceived, "")
	f.send(`{"domain":"drag","action":"registerDropTarget","requestId":"r","data":{"targetId":"files","types":["text/uri-list"]}}`)
	target := f.kit.DropTarget("files")
	if target == nil {
		t.Fatalf("expected registered drop target")
	}
	target.Drop([]native.DragItem{{ID: "x", Type: "text/plain", Value: "x"}}, "copy")
	if len(f.page.Events("dropReceived")) != 0 {
		t.Fatalf("expected mismatched type to be ignored")
	}
	target.Drop([]native.DragItem{{ID: "u", Type: "text/uri-list", Value: "file:///u"}}, "link")
	drops := f.page.Events("dropReceived")
	if len(drops) != 1 || drops[0].Get("operation").String() != "link" || drops[0].Get("items.0.value").String() != "file:///u" {
		t.Fatalf("unexpected drop %v", f.page.Scripts)
	}
	f.send(`{"domain":"drag","action":"unregisterDropTarget","requestId":"u","data":{"targetId":"files"}}`)
	if !target.Closed {
		t.Fatalf("expected unregister to close the target")
	}
	res, _ := f.page.Result("u")
	if !res.Get("data.removed").Bool() {
		t.Fatalf("expected removed true, got %s", res.Raw)
	}
}

func TestPreviewToggleAndClose(t *testing.T) {
	f := newFixture(t)
	f.events.Listen(eventbridge.AnyHandle, protocol.EventPreviewClosed, "")
	f.send(`{"domain":"preview","action":"showPreview","requestId":"p","data":{"items":["/a.png","/b.png"],"startIndex":1,"sourceId":"files"}}`)
	res, _ := f.page.Result("p")
	if res.Get("data.index").Int() != 1 || !f.mgr.PreviewOpen() {
		t.Fatalf("expected preview at index 1, got %s", res.Raw)
	}
	if f.kit.LastPreview().Request.Items[0].Title != "a.png" {
		t.Fatalf("expected base name titles")
	}

	f.send(`{"domain":"preview","action":"toggle","requestId":"t1"}`)
	if f.mgr.PreviewOpen() || len(f.page.Events("previewClosed")) == 0 {
		t.Fatalf("expected toggle to close and emit previewClosed")
	}
	f.send(`{"domain":"preview","action":"toggle","requestId":"t2"}`)
	res, _ = f.page.Result("t2")
	if !res.Get("data.open").Bool() || f.kit.LastPreview().Request.Index != 1 {
		t.Fatalf("expected toggle to reopen last items, got %s", res.Raw)
	}

	f.page.Reset()
	f.kit.LastPreview().UserClose()
	if f.mgr.PreviewOpen() || len(f.page.Events("previewClosed")) == 0 {
		t.Fatalf("expected user close to emit previewClosed")
	}
	if f.reg.CountDomain(protocol.DomainPreview) != 0 {
		t.Fatalf("expected preview handle released")
	}
	f.send(`{"domain":"preview","action":"close","requestId":"c"}`)
	res, _ = f.page.Result("c")
	if res.Get("data.closed").Bool() {
		t.Fatalf("expected close on a closed panel to be a no-op")
	}
}

func TestWildcardSeesSourcedPreviewCloseOnce(t *testing.T) {
	f := newFixture(t)
	f.events.Listen(eventbridge.AnyHandle, protocol.EventPreviewClosed, "")
	f.send(`{"domain":"preview","action":"showPreview","requestId":"p","data":{"items":["/a.png"],"sourceId":"files"}}`)
	f.kit.LastPreview().UserClose()
	closed := f.page.Events("previewClosed")
	if len(closed) != 1 || closed[0].Get("handleId").String() != "files" || closed[0].Get("sourceId").String() != "files" {
		t.Fatalf("expected one previewClosed on files, got %v", f.page.Scripts)
	}
}

func TestCancelAll(t *testing.T) {
	f := newFixture(t)
	f.send(`{"domain":"menu","action":"showContextMenu","requestId":"m","data":{"items":["a"]}}`)
	f.send(`{"domain":"drag","action":"beginDrag","requestId":"d","data":{"items":["x"]}}`)
	f.send(`{"domain":"preview","action":"showPreview","requestId":"p","data":{"items":["/a"]}}`)
	f.mgr.CancelAll()
	for _, id := range []string{"m", "d"} {
		res, ok := f.page.Result(id)
		if !ok || !res.Get("data.cancelled").Bool() {
			t.Fatalf("expected %s cancelled, got %s", id, res.Raw)
		}
	}
	if f.mgr.MenuShown() || f.mgr.DragActive() || f.mgr.PreviewOpen() {
		t.Fatalf("expected every overlay closed: %v", f.mgr.Stats())
	}
}
