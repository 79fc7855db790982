package host

import (
	"os"
	"strings"
	"testing"

	"github.com/atomicstack/nativebridge/internal/lifecycle"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/native/headless"
	"github.com/atomicstack/nativebridge/internal/testutil"
	"github.com/dop251/goja"
)

func TestMain(m *testing.M) {
	logging.Disable()
	os.Exit(m.Run())
}

type fixture struct {
	rt    *goja.Runtime
	page  *ScriptPage
	win   *lifecycle.Window
	kit   *headless.Toolkit
	sched *testutil.ManualScheduler
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		rt:    goja.New(),
		kit:   headless.New(),
		sched: testutil.NewManualScheduler(),
	}
	f.page = NewScriptPage(f.rt)
	f.win = lifecycle.Open(lifecycle.Options{
		Toolkit:   f.kit,
		Page:      f.page,
		Scheduler: f.sched,
	})
	if err := f.page.Install(f.win.Dispatch, ShimOptions{Actions: f.win.Router().Actions()}); err != nil {
		t.Fatalf("install shim: %v", err)
	}
	return f
}

func (f *fixture) run(t *testing.T, src string) {
	t.Helper()
	if err := f.page.Run("test.js", src); err != nil {
		t.Fatalf("run script: %v", err)
	}
	f.sched.Drain()
}

func (f *fixture) global(name string) string {
	v := f.rt.Get(name)
	if v == nil || goja.IsUndefined(v) {
		return ""
	}
	return v.String()
}

func TestShimHelpersResolvePromises(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		var created = "", failure = "";
		nativeBridge.sidebar.create({id: "main"}).then(function (r) { created = r.id; });
		nativeBridge.sidebar.setSelectedItem({id: "ghost", itemId: "a"}).catch(function (e) { failure = e.code; });
	`)
	if got := f.global("created"); got != "main" {
		t.Fatalf("expected created main, got %q", got)
	}
	if got := f.global("failure"); got != "HandleNotFound" {
		t.Fatalf("expected HandleNotFound, got %q", got)
	}
}

func TestShimListenersReceiveEvents(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		var picked = [];
		nativeBridge.sidebar.create({id: "main", sections: [{id: "s", children: [{id: "a"}, {id: "b"}]}]});
		nativeBridge.on("main", "selectionChanged", function (e) { picked.push(e.itemId); });
	`)
	f.kit.Sidebar("main").Click("b")
	f.kit.Sidebar("main").Click("b")
	f.kit.Sidebar("main").Click("a")
	f.sched.Drain()
	if got := f.global("picked"); got != "b,a" {
		t.Fatalf("expected b,a, got %q", got)
	}
}

func TestShimPolledEvents(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		var chosen = "", resolved = "";
		nativeBridge.fileBrowser.create({id: "files"});
		nativeBridge.on("files", "menuAction", function (e) { chosen = e.itemId; });
		nativeBridge.menu.showContextMenu({targetId: "files", items: ["Open", "Rename"]})
			.then(function (r) { resolved = r.itemId; });
	`)
	f.kit.LastMenu().Choose("rename")
	f.sched.Drain()
	if got := f.global("resolved"); got != "rename" {
		t.Fatalf("expected promise to resolve with rename, got %q", got)
	}
	if f.global("chosen") != "" {
		t.Fatalf("expected polled event to wait for a poll")
	}
	f.run(t, `nativeBridge.poll();`)
	if got := f.global("chosen"); got != "rename" {
		t.Fatalf("expected menuAction after poll, got %q", got)
	}
}

func TestShimWindowClosed(t *testing.T) {
	f := newFixture(t)
	f.run(t, `
		var closed = "";
		nativeBridge.on("*", "windowClosed", function (e) { closed = e.reason; });
		nativeBridge.window.close();
	`)
	if got := f.global("closed"); got != "script" {
		t.Fatalf("expected windowClosed with reason script, got %q", got)
	}
	if !f.win.Closed() {
		t.Fatalf("expected the window to be closed")
	}
}

func TestShimRequiresHost(t *testing.T) {
	rt := goja.New()
	_, err := rt.RunString(Shim())
	if err == nil || !strings.Contains(err.Error(), "host binding missing") {
		t.Fatalf("expected missing host error, got %v", err)
	}
}
