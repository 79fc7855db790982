// Package bridge decodes script messages and dispatches them to domain
// action tables.
//
// The router is the trust boundary: Dispatch never panics and never returns
// an error. Every failure becomes a rejection of the message's request, or
// a bridgeError event when the message carried no request id.
package bridge

import (
	"fmt"
	"sort"

	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/protocol"
)

// Handler runs one action. A nil error resolves the request with the
// returned value unless the handler called Request.Defer.
type Handler func(req *Request) (interface{}, error)

// Actions maps action names to handlers for one domain.
type Actions map[string]Handler

// Settler delivers request outcomes to the page.
type Settler interface {
	Enter()
	Exit()
	Resolve(requestID string, data interface{})
	Reject(requestID string, err *protocol.Error)
}

// Router holds the action tables. It keeps no per-widget state.
type Router struct {
	domains map[protocol.Domain]Actions
	settle  Settler
}

// New creates a router that reports outcomes through settle.
func New(settle Settler) *Router {
	return &Router{domains: make(map[protocol.Domain]Actions), settle: settle}
}

// Register installs the action table of domain, merging with any actions
// registered earlier.
func (r *Router) Register(domain protocol.Domain, actions Actions) {
	table, ok := r.domains[domain]
	if !ok {
		table = make(Actions, len(actions))
		r.domains[domain] = table
	}
	for name, h := range actions {
		table[name] = h
	}
}

// Actions lists the registered "domain.action" names, sorted.
func (r *Router) Actions() []string {
	var out []string
	for d, table := range r.domains {
		for name := range table {
			out = append(out, string(d)+"."+name)
		}
	}
	sort.Strings(out)
	return out
}

// Dispatch handles one script-originated message.
func (r *Router) Dispatch(raw []byte) {
	r.settle.Enter()
	defer r.settle.Exit()

	msg, err := protocol.Decode(raw)
	if err != nil {
		r.fail(msg.Domain, msg.Action, msg.RequestID, err)
		return
	}
	events.Bridge.Dispatch(string(msg.Domain), msg.Action, msg.RequestID)

	table, ok := r.domains[msg.Domain]
	if !ok {
		r.fail(msg.Domain, msg.Action, msg.RequestID, protocol.Errorf(protocol.CodeUnknownAction, "unknown domain %q", msg.Domain))
		return
	}
	handler, ok := table[msg.Action]
	if !ok {
		r.fail(msg.Domain, msg.Action, msg.RequestID, protocol.Errorf(protocol.CodeUnknownAction, "unknown action %q", msg.Action))
		return
	}

	req := &Request{
		Domain:    msg.Domain,
		Action:    msg.Action,
		RequestID: msg.RequestID,
		Data:      msg.Data(),
		router:    r,
	}
	result, err := r.invoke(handler, req)
	if err != nil {
		if req.deferred != nil {
			req.deferred.settled = true
		}
		r.fail(msg.Domain, msg.Action, msg.RequestID, err)
		return
	}
	if req.deferred == nil {
		r.settle.Resolve(msg.RequestID, result)
	}
}

func (r *Router) invoke(h Handler, req *Request) (result interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			events.Bridge.Panic(string(req.Domain), req.Action, rec)
			result = nil
			err = protocol.Errorf(protocol.CodeNativeCallFailed, "handler panicked: %v", rec)
		}
	}()
	return h(req)
}

func (r *Router) fail(domain protocol.Domain, action, requestID string, err error) {
	be := protocol.AsError(err, domain, action)
	message := be.Message
	if message == "" && be.Err != nil {
		message = be.Err.Error()
	}
	events.Bridge.Error(string(be.Domain), be.Action, string(be.Code), message)
	logging.Error(fmt.Errorf("bridge %s.%s: %w", domain, action, be))
	r.settle.Reject(requestID, be)
}

// Request is one in-flight action invocation.
type Request struct {
	Domain    protocol.Domain
	Action    string
	RequestID string
	Data      protocol.Payload

	router   *Router
	deferred *Promise
}

// Defer detaches settlement from the handler's return. The returned promise
// must be resolved or rejected later on the UI loop.
func (r *Request) Defer() *Promise {
	if r.deferred == nil {
		r.deferred = &Promise{
			router:    r.router,
			domain:    r.Domain,
			action:    r.Action,
			requestID: r.RequestID,
		}
	}
	return r.deferred
}

// Promise settles a deferred request exactly once.
type Promise struct {
	router    *Router
	domain    protocol.Domain
	action    string
	requestID string
	settled   bool
}

// Settled reports whether the promise was resolved or rejected.
func (p *Promise) Settled() bool { return p == nil || p.settled }

// Resolve fulfils the request with data.
func (p *Promise) Resolve(data interface{}) {
	if p.Settled() {
		return
	}
	p.settled = true
	p.router.settle.Resolve(p.requestID, data)
}

// Reject fails the request with err.
func (p *Promise) Reject(err error) {
	if p.Settled() {
		return
	}
	p.settled = true
	p.router.fail(p.domain, p.action, p.requestID, err)
}

// Cancel resolves the request as cancelled.
func (p *Promise) Cancel() {
	p.Resolve(map[string]interface{}{"cancelled": true})
}
