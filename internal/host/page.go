// Package host provides the script pages the bridge talks to: an embedded
// goja runtime driven by the UI loop, and (with the webview build tag) a
// real browser view.
//
// Both install the same shim, bridge.js, which gives page scripts
// nativeBridge.call and per-domain helpers returning promises.
package host

import (
	_ "embed"
	"fmt"
	"time"

	"github.com/dop251/goja"
)

//go:embed bridge.js
var shimSource string

// Shim returns the page shim source.
func Shim() string { return shimSource }

// DefaultPollInterval is how often the shim asks for a polled event.
const DefaultPollInterval = 25 * time.Millisecond

// ShimOptions configure the installed shim.
type ShimOptions struct {
	// PollInterval drives events.poll; zero disables polling.
	PollInterval time.Duration
	// Actions lists "domain.action" names that get helper functions.
	Actions []string
}

// ScriptPage is a page backed by a goja runtime. It must only be used on
// the loop goroutine that owns the runtime.
type ScriptPage struct {
	rt       *goja.Runtime
	dispatch func(raw []byte)
}

// NewScriptPage wraps rt.
func NewScriptPage(rt *goja.Runtime) *ScriptPage {
	return &ScriptPage{rt: rt}
}

// Runtime returns the underlying runtime.
func (p *ScriptPage) Runtime() *goja.Runtime { return p.rt }

// Install binds the host object to dispatch and evaluates the shim.
func (p *ScriptPage) Install(dispatch func(raw []byte), opts ShimOptions) error {
	p.dispatch = dispatch
	hostObj := p.rt.NewObject()
	if err := hostObj.Set("postMessage", func(msg string) {
		p.dispatch([]byte(msg))
	}); err != nil {
		return fmt.Errorf("bind postMessage: %w", err)
	}
	if err := hostObj.Set("pollInterval", opts.PollInterval.Milliseconds()); err != nil {
		return fmt.Errorf("bind pollInterval: %w", err)
	}
	actions := make([]interface{}, 0, len(opts.Actions))
	for _, a := range opts.Actions {
		actions = append(actions, a)
	}
	if err := hostObj.Set("actions", p.rt.NewArray(actions...)); err != nil {
		return fmt.Errorf("bind actions: %w", err)
	}
	if err := p.rt.Set("__nativeBridgeHost", hostObj); err != nil {
		return fmt.Errorf("install host object: %w", err)
	}
	if _, err := p.rt.RunScript("bridge.js", shimSource); err != nil {
		return fmt.Errorf("evaluate shim: %w", err)
	}
	return nil
}

// EvaluateScript implements eventbridge.Page.
func (p *ScriptPage) EvaluateScript(js string) error {
	_, err := p.rt.RunString(js)
	return err
}

// Run evaluates a page script under name.
func (p *ScriptPage) Run(name, src string) error {
	if _, err := p.rt.RunScript(name, src); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}
