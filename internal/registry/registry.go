// Package registry owns every live native component of a window.
//
// Components are stored in an arena of slots addressed by (domain, id).
// Everything outside the registry holds a Handle, which is a borrowed
// reference: it names the slot and the generation the slot had when the
// handle was issued. Resolve re-validates both on each access, so a handle
// that outlives its component simply stops resolving.
package registry

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/protocol"
)

// Component is a native resource owned by the registry. Release is called
// exactly once, when the component is evicted.
type Component interface {
	Release()
}

// Constructor builds the native component for a freshly reserved handle.
// Returning an error abandons the reservation without leaving a trace.
type Constructor func(Handle) (Component, error)

// Handle identifies one generation of a registry slot.
type Handle struct {
	ID         string
	Domain     protocol.Domain
	Generation uint64
	slot       int
}

// Valid reports whether the handle was issued by a registry.
func (h Handle) Valid() bool { return h.Generation > 0 }

func (h Handle) String() string {
	return fmt.Sprintf("%s/%s#%d", h.Domain, h.ID, h.Generation)
}

type key struct {
	domain protocol.Domain
	id     string
}

type slot struct {
	handle     Handle
	native     Component
	generation uint64
	seq        uint64
	live       bool
}

// Registry is confined to the UI thread and performs no locking.
type Registry struct {
	scope   string
	slots   []slot
	free    []int
	index   map[key]int
	counter map[protocol.Domain]uint64
	seq     uint64
	evict   []func(Handle)
}

// New creates an empty registry for the given window scope.
func New(scope string) *Registry {
	return &Registry{
		scope:   scope,
		index:   make(map[key]int),
		counter: make(map[protocol.Domain]uint64),
	}
}

// Scope returns the owning window's identifier.
func (r *Registry) Scope() string { return r.scope }

// OnEvict registers fn to run whenever a handle is evicted, before its
// native component is released.
func (r *Registry) OnEvict(fn func(Handle)) {
	if fn != nil {
		r.evict = append(r.evict, fn)
	}
}

// NextID returns a generated identifier of the form <prefix>-<n> that is not
// currently in use within domain.
func (r *Registry) NextID(domain protocol.Domain) string {
	for {
		r.counter[domain]++
		id := domain.IDPrefix() + "-" + strconv.FormatUint(r.counter[domain], 10)
		if _, taken := r.index[key{domain, id}]; !taken {
			return id
		}
	}
}

// ReservedID addresses every handle in listener registrations and can never
// name a component.
const ReservedID = "*"

// Create reserves id (or a generated one when id is empty) in domain and
// stores the component built by ctor.
func (r *Registry) Create(domain protocol.Domain, id string, ctor Constructor) (Handle, error) {
	if !domain.IsComponent() {
		return Handle{}, protocol.Errorf(protocol.CodeInvalidPayload, "domain %q does not own components", domain)
	}
	if id == ReservedID {
		return Handle{}, protocol.Errorf(protocol.CodeInvalidPayload, "id %q is reserved", id)
	}
	if id == "" {
		id = r.NextID(domain)
	}
	k := key{domain, id}
	if _, exists := r.index[k]; exists {
		return Handle{}, &protocol.Error{
			Code:    protocol.CodeInvalidPayload,
			Domain:  domain,
			Message: fmt.Sprintf("id %q is already in use", id),
		}
	}

	idx := r.allocate()
	s := &r.slots[idx]
	s.generation++
	r.seq++
	h := Handle{ID: id, Domain: domain, Generation: s.generation, slot: idx}
	s.handle = h
	s.seq = r.seq

	var native Component
	if ctor != nil {
		var err error
		native, err = ctor(h)
		if err != nil {
			r.slots[idx].handle = Handle{}
			r.free = append(r.free, idx)
			return Handle{}, err
		}
	}
	s = &r.slots[idx]
	s.native = native
	s.live = true
	r.index[k] = idx
	events.Registry.Create(string(domain), id, h.Generation)
	return h, nil
}

func (r *Registry) allocate() int {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		return idx
	}
	r.slots = append(r.slots, slot{})
	return len(r.slots) - 1
}

// Lookup returns the live handle for (domain, id).
func (r *Registry) Lookup(domain protocol.Domain, id string) (Handle, bool) {
	idx, ok := r.index[key{domain, id}]
	if !ok {
		return Handle{}, false
	}
	return r.slots[idx].handle, true
}

// LookupAny finds id in any component domain. Widgets are preferred over
// overlays when the same id is used in several domains.
func (r *Registry) LookupAny(id string) (Handle, bool) {
	for _, d := range protocol.ComponentDomains {
		if h, ok := r.Lookup(d, id); ok {
			return h, true
		}
	}
	return Handle{}, false
}

// Alive reports whether h still names a live component.
func (r *Registry) Alive(h Handle) bool {
	if !h.Valid() || h.slot < 0 || h.slot >= len(r.slots) {
		return false
	}
	s := &r.slots[h.slot]
	return s.live && s.generation == h.Generation
}

// Resolve returns the component for h if that exact generation is still live.
func (r *Registry) Resolve(h Handle) (Component, bool) {
	if !h.Valid() || h.slot < 0 || h.slot >= len(r.slots) {
		return nil, false
	}
	s := &r.slots[h.slot]
	if !s.live || s.generation != h.Generation {
		if s.generation != h.Generation {
			events.Registry.Stale(string(h.Domain), h.ID, h.Generation, s.generation)
		}
		return nil, false
	}
	return s.native, true
}

// Get looks up (domain, id) and returns its component, or HandleNotFound.
func (r *Registry) Get(domain protocol.Domain, id string) (Component, Handle, error) {
	h, ok := r.Lookup(domain, id)
	if !ok {
		return nil, Handle{}, protocol.HandleNotFound(domain, id)
	}
	c, _ := r.Resolve(h)
	return c, h, nil
}

// Destroy evicts (domain, id). Destroying an absent id is a no-op.
func (r *Registry) Destroy(domain protocol.Domain, id string) bool {
	idx, ok := r.index[key{domain, id}]
	if !ok {
		return false
	}
	r.evictSlot(idx)
	return true
}

func (r *Registry) evictSlot(idx int) {
	s := &r.slots[idx]
	h := s.handle
	native := s.native
	s.live = false
	s.native = nil
	delete(r.index, key{h.Domain, h.ID})

	for _, fn := range r.evict {
		fn(h)
	}
	if native != nil {
		native.Release()
	}
	r.slots[idx].handle = Handle{}
	r.free = append(r.free, idx)
	events.Registry.Destroy(string(h.Domain), h.ID, h.Generation)
}

// DestroyAll evicts every handle: transient overlays first, then leaf
// widgets, then containers, newest first within each rank.
func (r *Registry) DestroyAll() int {
	handles := r.ordered()
	count := 0
	for _, h := range handles {
		idx, ok := r.index[key{h.Domain, h.ID}]
		if !ok || r.slots[idx].generation != h.Generation {
			continue
		}
		r.evictSlot(idx)
		count++
	}
	events.Registry.DestroyAll(r.scope, count)
	return count
}

func (r *Registry) ordered() []Handle {
	type entry struct {
		h   Handle
		seq uint64
	}
	entries := make([]entry, 0, len(r.index))
	for _, idx := range r.index {
		s := r.slots[idx]
		entries = append(entries, entry{h: s.handle, seq: s.seq})
	}
	sort.Slice(entries, func(i, j int) bool {
		ri, rj := entries[i].h.Domain.TeardownRank(), entries[j].h.Domain.TeardownRank()
		if ri != rj {
			return ri < rj
		}
		return entries[i].seq > entries[j].seq
	})
	out := make([]Handle, len(entries))
	for i, e := range entries {
		out[i] = e.h
	}
	return out
}

// Count returns the number of live handles.
func (r *Registry) Count() int { return len(r.index) }

// CountDomain returns the number of live handles in domain.
func (r *Registry) CountDomain(domain protocol.Domain) int {
	n := 0
	for k := range r.index {
		if k.domain == domain {
			n++
		}
	}
	return n
}

// Handles returns the live handles of domain in creation order.
func (r *Registry) Handles(domain protocol.Domain) []Handle {
	var out []Handle
	var seqs []uint64
	for k, idx := range r.index {
		if k.domain != domain {
			continue
		}
		out = append(out, r.slots[idx].handle)
		seqs = append(seqs, r.slots[idx].seq)
	}
	sort.Sort(bySeq{out, seqs})
	return out
}

type bySeq struct {
	h   []Handle
	seq []uint64
}

func (b bySeq) Len() int           { return len(b.h) }
func (b bySeq) Less(i, j int) bool { return b.seq[i] < b.seq[j] }
func (b bySeq) Swap(i, j int) {
	b.h[i], b.h[j] = b.h[j], b.h[i]
	b.seq[i], b.seq[j] = b.seq[j], b.seq[i]
}
