package testutil

import (
	"strings"

	"github.com/tidwall/gjson"
)

const deliverPrefix = "window.__nativeBridge.__deliver("

// RecordingPage captures every script evaluated against it. Delivery calls
// are decoded so tests can assert on event records directly.
type RecordingPage struct {
	Scripts []string
	Fail    error
}

// EvaluateScript records js.
func (p *RecordingPage) EvaluateScript(js string) error {
	if p.Fail != nil {
		return p.Fail
	}
	p.Scripts = append(p.Scripts, js)
	return nil
}

// Records returns the JSON records passed to __deliver, in order.
func (p *RecordingPage) Records() []gjson.Result {
	var out []gjson.Result
	for _, js := range p.Scripts {
		if !strings.HasPrefix(js, deliverPrefix) {
			continue
		}
		body := strings.TrimSuffix(strings.TrimPrefix(js, deliverPrefix), ");")
		body = strings.TrimSuffix(body, ")")
		out = append(out, gjson.Parse(body))
	}
	return out
}

// Events returns records whose event field equals kind.
func (p *RecordingPage) Events(kind string) []gjson.Result {
	var out []gjson.Result
	for _, r := range p.Records() {
		if r.Get("event").String() == kind {
			out = append(out, r)
		}
	}
	return out
}

// Result returns the settlement record for requestID.
func (p *RecordingPage) Result(requestID string) (gjson.Result, bool) {
	for _, r := range p.Events("__result") {
		if r.Get("requestId").String() == requestID {
			return r, true
		}
	}
	return gjson.Result{}, false
}

// Reset forgets recorded scripts.
func (p *RecordingPage) Reset() { p.Scripts = nil }
