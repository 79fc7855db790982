// Package eventbridge returns native events to the script page.
//
// Events reach script in one of two ways. Direct events are evaluated in the
// page right away, or on the next loop turn when the bridge is already
// inside a script-originated dispatch. Polled events wait in a bounded queue
// until the page shim asks for one with events.poll; callbacks that fire
// inside native tracking loops use this path so they never re-enter script.
package eventbridge

import (
	"encoding/json"
	"fmt"

	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/loop"
	"github.com/atomicstack/nativebridge/internal/protocol"
	"github.com/atomicstack/nativebridge/internal/registry"
)

// DefaultQueueLimit caps the polled queue.
const DefaultQueueLimit = 256

// AnyHandle registers a listener for every handle.
const AnyHandle = registry.ReservedID

// Page evaluates script in the embedded browser.
type Page interface {
	EvaluateScript(js string) error
}

// Record is one host-to-script event.
type Record struct {
	Event    protocol.EventKind
	HandleID string
	Fields   map[string]interface{}
}

// MarshalJSON flattens the record into the wire shape.
func (r Record) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(r.Fields)+2)
	for k, v := range r.Fields {
		out[k] = v
	}
	out["event"] = string(r.Event)
	if r.HandleID != "" {
		out["handleId"] = r.HandleID
	}
	return json.Marshal(out)
}

type regKey struct {
	handle string
	kind   protocol.EventKind
}

// Stats is a snapshot of delivery counters.
type Stats struct {
	Registrations int `json:"registrations"`
	Queued        int `json:"queued"`
	Delivered     int `json:"delivered"`
	Dropped       int `json:"dropped"`
}

// Bridge is confined to the UI loop.
type Bridge struct {
	sched loop.Scheduler
	page  Page
	limit int

	regs      map[regKey]protocol.DeliveryMode
	queue     []Record
	deferred  []Record
	flushing  bool
	depth     int
	selection map[string]string
	closed    bool

	delivered int
	dropped   int
}

// New creates a bridge that evaluates into page. A non-positive limit uses
// DefaultQueueLimit.
func New(sched loop.Scheduler, page Page, limit int) *Bridge {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &Bridge{
		sched:     sched,
		page:      page,
		limit:     limit,
		regs:      make(map[regKey]protocol.DeliveryMode),
		selection: make(map[string]string),
	}
}

// SetPage swaps the page events are evaluated in.
func (b *Bridge) SetPage(page Page) { b.page = page }

// Listen registers interest in kind events from handleID. An empty mode
// picks the kind's default.
func (b *Bridge) Listen(handleID string, kind protocol.EventKind, mode string) protocol.DeliveryMode {
	m := protocol.ParseDeliveryMode(mode, kind.DefaultMode())
	b.regs[regKey{handleID, kind}] = m
	events.Delivery.Listen(handleID, string(kind), string(m))
	return m
}

// Unlisten removes a registration. An empty kind removes every registration
// of handleID.
func (b *Bridge) Unlisten(handleID string, kind protocol.EventKind) int {
	n := 0
	for k := range b.regs {
		if k.handle == handleID && (kind == "" || k.kind == kind) {
			delete(b.regs, k)
			n++
		}
	}
	events.Delivery.Unlisten(handleID, string(kind))
	return n
}

// Listening reports the delivery mode registered for (handleID, kind).
func (b *Bridge) Listening(handleID string, kind protocol.EventKind) (protocol.DeliveryMode, bool) {
	if m, ok := b.regs[regKey{handleID, kind}]; ok {
		return m, true
	}
	m, ok := b.regs[regKey{AnyHandle, kind}]
	return m, ok
}

// Enter marks the start of a script-originated dispatch.
func (b *Bridge) Enter() { b.depth++ }

// Exit marks the end of a script-originated dispatch.
func (b *Bridge) Exit() {
	if b.depth > 0 {
		b.depth--
	}
}

// Deliver routes a native event for handleID to its listeners.
func (b *Bridge) Deliver(handleID string, kind protocol.EventKind, fields map[string]interface{}) {
	if b.closed {
		return
	}
	if kind == protocol.EventSelectionChanged {
		item := fmt.Sprint(fields["itemId"])
		if prev, ok := b.selection[handleID]; ok && prev == item {
			return
		}
		b.selection[handleID] = item
	}
	mode, ok := b.Listening(handleID, kind)
	if !ok {
		events.Delivery.Drop(handleID, string(kind), "unregistered")
		return
	}
	rec := Record{Event: kind, HandleID: handleID, Fields: fields}
	if mode == protocol.DeliverPolled || b.queuedFor(handleID) {
		b.enqueue(rec)
		return
	}
	b.direct(rec)
}

// Emit sends rec on the direct path regardless of registrations. It is used
// for request settlement and window-level events.
func (b *Bridge) Emit(rec Record) {
	if b.closed {
		return
	}
	b.direct(rec)
}

// ForgetSelection clears the de-duplication memory for handleID, so the
// next selection is reported even if it repeats the last one.
func (b *Bridge) ForgetSelection(handleID string) {
	delete(b.selection, handleID)
}

// Resolve settles requestID successfully.
func (b *Bridge) Resolve(requestID string, data interface{}) {
	if requestID == "" {
		return
	}
	fields := map[string]interface{}{"requestId": requestID, "ok": true}
	if data != nil {
		fields["data"] = data
	}
	events.Bridge.Result("", "", requestID)
	b.Emit(Record{Event: protocol.EventResult, Fields: fields})
}

// Reject settles requestID with err, or raises a bridgeError event when
// there is no request to reject.
func (b *Bridge) Reject(requestID string, err *protocol.Error) {
	if err == nil {
		return
	}
	message := err.Message
	if message == "" && err.Err != nil {
		message = err.Err.Error()
	}
	if requestID == "" {
		b.Emit(Record{Event: protocol.EventBridgeError, Fields: map[string]interface{}{
			"code":    string(err.Code),
			"message": message,
			"domain":  string(err.Domain),
			"action":  err.Action,
		}})
		return
	}
	b.Emit(Record{Event: protocol.EventResult, Fields: map[string]interface{}{
		"requestId": requestID,
		"ok":        false,
		"error": map[string]interface{}{
			"code":    string(err.Code),
			"message": message,
		},
	}})
}

// Poll moves the oldest queued event onto the direct path and reports how
// many remain queued.
func (b *Bridge) Poll() (delivered bool, remaining int) {
	if len(b.queue) == 0 {
		return false, 0
	}
	rec := b.queue[0]
	b.queue[0] = Record{}
	b.queue = b.queue[1:]
	events.Delivery.Drain(rec.HandleID, string(rec.Event), len(b.queue))
	b.direct(rec)
	return true, len(b.queue)
}

// Evict drops registrations, queued events and selection memory of a
// destroyed handle. It is installed as a registry eviction hook. Menus, drag
// sessions and previews are released in the same turn as their final event,
// so events already queued for them stay queued.
func (b *Bridge) Evict(h registry.Handle) {
	b.Unlisten(h.ID, "")
	delete(b.selection, h.ID)
	if outlivesHandle(h.Domain) {
		return
	}
	kept := b.queue[:0]
	for _, rec := range b.queue {
		if rec.HandleID == h.ID {
			events.Delivery.Drop(rec.HandleID, string(rec.Event), "evicted")
			b.dropped++
			continue
		}
		kept = append(kept, rec)
	}
	for i := len(kept); i < len(b.queue); i++ {
		b.queue[i] = Record{}
	}
	b.queue = kept
}

func outlivesHandle(d protocol.Domain) bool {
	switch d {
	case protocol.DomainMenu, protocol.DomainDrag, protocol.DomainPreview:
		return true
	}
	return false
}

// Close stops accepting events. Direct events already deferred are still
// flushed on the next loop turn.
func (b *Bridge) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.regs = make(map[regKey]protocol.DeliveryMode)
	b.queue = nil
	b.selection = make(map[string]string)
	if len(b.deferred) > 0 {
		b.scheduleFlush()
	}
}

// Closed reports whether Close was called.
func (b *Bridge) Closed() bool { return b.closed }

// Stats returns delivery counters.
func (b *Bridge) Stats() Stats {
	return Stats{
		Registrations: len(b.regs),
		Queued:        len(b.queue),
		Delivered:     b.delivered,
		Dropped:       b.dropped,
	}
}

func (b *Bridge) queuedFor(handleID string) bool {
	for _, rec := range b.queue {
		if rec.HandleID == handleID {
			return true
		}
	}
	return false
}

func (b *Bridge) enqueue(rec Record) {
	if len(b.queue) >= b.limit {
		oldest := b.queue[0]
		b.queue = b.queue[1:]
		b.dropped++
		events.Delivery.Drop(oldest.HandleID, string(oldest.Event), "overflow")
		logging.Errorf("event queue full (%d); dropped %s for %q", b.limit, oldest.Event, oldest.HandleID)
	}
	b.queue = append(b.queue, rec)
	events.Delivery.Enqueue(rec.HandleID, string(rec.Event), len(b.queue))
}

func (b *Bridge) direct(rec Record) {
	if b.depth > 0 || len(b.deferred) > 0 {
		b.deferred = append(b.deferred, rec)
		b.scheduleFlush()
		return
	}
	b.evaluate(rec)
}

func (b *Bridge) scheduleFlush() {
	if b.flushing {
		return
	}
	b.flushing = true
	if err := b.sched.Post(b.flush); err != nil {
		b.flushing = false
		logging.Error(fmt.Errorf("schedule event flush: %w", err))
	}
}

func (b *Bridge) flush() {
	b.flushing = false
	if b.depth > 0 {
		b.scheduleFlush()
		return
	}
	for len(b.deferred) > 0 {
		rec := b.deferred[0]
		b.deferred[0] = Record{}
		b.deferred = b.deferred[1:]
		b.evaluate(rec)
	}
}

func (b *Bridge) evaluate(rec Record) {
	if b.page == nil {
		return
	}
	data, err := json.Marshal(rec)
	if err != nil {
		logging.Error(fmt.Errorf("encode %s event: %w", rec.Event, err))
		return
	}
	events.Delivery.Direct(rec.HandleID, string(rec.Event))
	if err := b.page.EvaluateScript(DeliverScript(data)); err != nil {
		logging.Error(fmt.Errorf("deliver %s event: %w", rec.Event, err))
		return
	}
	b.delivered++
}

// DeliverScript wraps an encoded record in the page's delivery call.
func DeliverScript(record []byte) string {
	return "window.__nativeBridge.__deliver(" + string(record) + ");"
}
