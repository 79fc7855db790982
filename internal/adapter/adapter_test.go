package adapter

import (
	"strconv"
	"testing"
	"time"

	"github.com/atomicstack/nativebridge/internal/model"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
	"github.com/atomicstack/nativebridge/internal/testutil"
)

type treeComponent struct{ h *model.Hierarchy }

func (c *treeComponent) Tree() *model.Hierarchy { return c.h }
func (c *treeComponent) Release()               {}

type tableComponent struct{ t *model.Table }

func (c *tableComponent) Table() *model.Table { return c.t }
func (c *tableComponent) Release()            {}

func TestTreeAdapterEnumerates(t *testing.T) {
	reg := registry.New("w")
	tree := model.NewHierarchy()
	_ = tree.AddSection(&model.Node{ID: "fav", Label: "Favourites"})
	_ = tree.AddItem("fav", &model.Node{ID: "a", Label: "Alpha", Badge: "2"})
	_ = tree.AddItem("fav", &model.Node{ID: "b", Label: "Beta"})
	h, err := reg.Create(protocol.DomainSidebar, "main", func(registry.Handle) (registry.Component, error) {
		return &treeComponent{h: tree}, nil
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a := NewTree(reg, h)
	if a.ChildCount(Root) != 1 || a.ChildAt(Root, 0) != "fav" {
		t.Fatalf("expected single root section fav")
	}
	if a.ChildCount("fav") != 2 || a.ChildAt("fav", 1) != "b" {
		t.Fatalf("unexpected children of fav")
	}
	if a.ValueAt("a", "badge") != "2" || a.ValueAt("a", "label") != "Alpha" {
		t.Fatalf("unexpected values for a")
	}
	if a.ChildAt("fav", 5) != "" || a.ValueAt("missing", "label") != "" {
		t.Fatalf("expected out-of-range queries to be empty")
	}

	reg.Destroy(protocol.DomainSidebar, "main")
	if a.ChildCount(Root) != 0 || a.ValueAt("a", "label") != "" {
		t.Fatalf("expected dead adapter to report nothing")
	}
}

func TestTableAdapterAfterDestroyReportsZero(t *testing.T) {
	reg := registry.New("w")
	tbl := model.NewTable(model.DefaultFileColumns)
	for i := 0; i < 1000; i++ {
		name := "file-" + strconv.Itoa(i)
		if _, err := tbl.Append(name, map[string]string{"name": name}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	h, _ := reg.Create(protocol.DomainFileBrowser, "files", func(registry.Handle) (registry.Component, error) {
		return &tableComponent{t: tbl}, nil
	})
	a := NewTable(reg, h)
	if a.RowCount() != 1000 || a.RowID(999) != "file-999" || a.CellAt(0, 0) != "file-0" {
		t.Fatalf("unexpected table contents: %d rows", a.RowCount())
	}
	if a.ValueAt("file-10", "name") != "file-10" {
		t.Fatalf("expected value lookup by row id")
	}

	reg.Destroy(protocol.DomainFileBrowser, "files")
	if reg.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", reg.Count())
	}
	if a.RowCount() != 0 || a.ChildCount(Root) != 0 || a.Columns() != nil {
		t.Fatalf("expected dead adapter to return zero items")
	}
}

func TestEmptyModelsRender(t *testing.T) {
	reg := registry.New("w")
	h, _ := reg.Create(protocol.DomainFileBrowser, "", func(registry.Handle) (registry.Component, error) {
		return &tableComponent{t: model.NewTable(nil)}, nil
	})
	a := NewTable(reg, h)
	if a.RowCount() != 0 || a.CellAt(0, 0) != "" || a.RowID(0) != "" {
		t.Fatalf("expected empty table to answer with zero values")
	}
}

func TestCoalescerCollapsesBurst(t *testing.T) {
	sched := testutil.NewManualScheduler()
	reloads := 0
	c := NewCoalescer("files", sched, DefaultCoalesceWindow, func() { reloads++ })
	for i := 0; i < 500; i++ {
		c.Request()
	}
	sched.Advance(DefaultCoalesceWindow)
	if reloads != 1 {
		t.Fatalf("expected one reload, got %d", reloads)
	}
	sched.Advance(time.Second)
	if reloads != 1 {
		t.Fatalf("expected no further reloads, got %d", reloads)
	}
	c.Request()
	sched.Advance(DefaultCoalesceWindow)
	if c.Reloads() != 2 {
		t.Fatalf("expected a second window to reload again, got %d", c.Reloads())
	}
}

func TestCoalescerStopAndFlush(t *testing.T) {
	sched := testutil.NewManualScheduler()
	reloads := 0
	c := NewCoalescer("side", sched, DefaultCoalesceWindow, func() { reloads++ })
	c.Request()
	c.Flush()
	if reloads != 1 || c.Pending() {
		t.Fatalf("expected flush to reload immediately, got %d", reloads)
	}
	c.Request()
	c.Stop()
	sched.Advance(time.Second)
	if reloads != 1 {
		t.Fatalf("expected stopped coalescer not to reload, got %d", reloads)
	}
}
