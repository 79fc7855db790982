package registry

import (
	"errors"
	"testing"

	"github.com/atomicstack/nativebridge/internal/protocol"
)

type fakeComponent struct {
	name     string
	released *[]string
}

func (f *fakeComponent) Release() {
	*f.released = append(*f.released, f.name)
}

func newFake(name string, log *[]string) Constructor {
	return func(Handle) (Component, error) {
		return &fakeComponent{name: name, released: log}, nil
	}
}

func TestCreateDestroyReturnsToBaseline(t *testing.T) {
	var released []string
	r := New("w")
	h, err := r.Create(protocol.DomainSidebar, "main", newFake("main", &released))
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if r.Count() != 1 {
		t.Fatalf("expected count 1, got %d", r.Count())
	}
	if !r.Destroy(protocol.DomainSidebar, "main") {
		t.Fatalf("expected destroy to report removal")
	}
	if _, ok := r.Lookup(protocol.DomainSidebar, "main"); ok {
		t.Fatalf("expected lookup to miss after destroy")
	}
	if _, ok := r.Resolve(h); ok {
		t.Fatalf("expected stale handle not to resolve")
	}
	if r.Count() != 0 {
		t.Fatalf("expected count 0, got %d", r.Count())
	}
	if len(released) != 1 {
		t.Fatalf("expected exactly one release, got %v", released)
	}
}

func TestDestroyIsIdempotent(t *testing.T) {
	var released []string
	r := New("w")
	if _, err := r.Create(protocol.DomainFileBrowser, "files", newFake("files", &released)); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	r.Destroy(protocol.DomainFileBrowser, "files")
	if r.Destroy(protocol.DomainFileBrowser, "files") {
		t.Fatalf("expected second destroy to be a no-op")
	}
	if len(released) != 1 {
		t.Fatalf("expected single release, got %v", released)
	}
}

func TestGeneratedIDsUsePrefixCounter(t *testing.T) {
	r := New("w")
	a, _ := r.Create(protocol.DomainSidebar, "", nil)
	b, _ := r.Create(protocol.DomainSidebar, "", nil)
	d, _ := r.Create(protocol.DomainDrag, "", nil)
	if a.ID != "sidebar-1" || b.ID != "sidebar-2" || d.ID != "drag-1" {
		t.Fatalf("unexpected ids %s %s %s", a.ID, b.ID, d.ID)
	}
}

func TestGeneratedIDSkipsExplicitCollision(t *testing.T) {
	r := New("w")
	if _, err := r.Create(protocol.DomainSidebar, "sidebar-1", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	h, err := r.Create(protocol.DomainSidebar, "", nil)
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if h.ID != "sidebar-2" {
		t.Fatalf("expected generated id to skip taken slot, got %s", h.ID)
	}
}

func TestDuplicateLiveIDRejected(t *testing.T) {
	r := New("w")
	if _, err := r.Create(protocol.DomainSidebar, "main", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	_, err := r.Create(protocol.DomainSidebar, "main", nil)
	if !errors.Is(err, protocol.ErrInvalidPayload) {
		t.Fatalf("expected InvalidPayload for duplicate id, got %v", err)
	}
	if _, err := r.Create(protocol.DomainFileBrowser, "main", nil); err != nil {
		t.Fatalf("expected same id in another domain to be allowed: %v", err)
	}
}

func TestSlotReuseBumpsGeneration(t *testing.T) {
	r := New("w")
	first, _ := r.Create(protocol.DomainSidebar, "main", nil)
	r.Destroy(protocol.DomainSidebar, "main")
	second, _ := r.Create(protocol.DomainSidebar, "main", nil)
	if second.Generation <= first.Generation {
		t.Fatalf("expected generation to increase on reuse: %d -> %d", first.Generation, second.Generation)
	}
	if _, ok := r.Resolve(first); ok {
		t.Fatalf("expected previous generation to stay dead")
	}
	if _, ok := r.Resolve(second); !ok {
		t.Fatalf("expected new generation to resolve")
	}
}

func TestConstructorFailureLeavesNoTrace(t *testing.T) {
	r := New("w")
	boom := errors.New("boom")
	_, err := r.Create(protocol.DomainSidebar, "main", func(Handle) (Component, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Fatalf("expected constructor error, got %v", err)
	}
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
	if _, err := r.Create(protocol.DomainSidebar, "main", nil); err != nil {
		t.Fatalf("expected id to be free after failed create: %v", err)
	}
}

func TestDestroyAllOrdersLeavesBeforeContainers(t *testing.T) {
	var released []string
	r := New("w")
	steps := []struct {
		domain protocol.Domain
		id     string
	}{
		{protocol.DomainSplitView, "split"},
		{protocol.DomainSidebar, "side"},
		{protocol.DomainFileBrowser, "files"},
		{protocol.DomainMenu, "ctx"},
		{protocol.DomainDrag, "drag"},
	}
	for _, s := range steps {
		if _, err := r.Create(s.domain, s.id, newFake(s.id, &released)); err != nil {
			t.Fatalf("create %s failed: %v", s.id, err)
		}
	}
	var evicted []string
	r.OnEvict(func(h Handle) { evicted = append(evicted, h.ID) })

	if n := r.DestroyAll(); n != len(steps) {
		t.Fatalf("expected %d evictions, got %d", len(steps), n)
	}
	want := []string{"drag", "ctx", "files", "side", "split"}
	for i, id := range want {
		if released[i] != id {
			t.Fatalf("expected release order %v, got %v", want, released)
		}
	}
	if len(evicted) != len(want) {
		t.Fatalf("expected eviction hooks for every handle, got %v", evicted)
	}
	if r.Count() != 0 {
		t.Fatalf("expected empty registry, got %d", r.Count())
	}
}

func TestEvictHookSeesDeadHandle(t *testing.T) {
	r := New("w")
	h, _ := r.Create(protocol.DomainSidebar, "main", nil)
	var resolved bool
	r.OnEvict(func(ev Handle) { _, resolved = r.Resolve(ev) })
	r.Destroy(protocol.DomainSidebar, "main")
	if resolved {
		t.Fatalf("expected handle %s to be dead inside eviction hook", h)
	}
}

func TestNonComponentDomainRejected(t *testing.T) {
	r := New("w")
	if _, err := r.Create(protocol.DomainClipboard, "x", nil); !errors.Is(err, protocol.ErrInvalidPayload) {
		t.Fatalf("expected InvalidPayload, got %v", err)
	}
}

func TestWildcardIDRejected(t *testing.T) {
	r := New("w")
	if _, err := r.Create(protocol.DomainSidebar, ReservedID, nil); !errors.Is(err, protocol.ErrInvalidPayload) {
		t.Fatalf("expected InvalidPayload for %q, got %v", ReservedID, err)
	}
	if r.Count() != 0 {
		t.Fatalf("expected nothing registered, got %d", r.Count())
	}
}
