package events

import "github.com/atomicstack/nativebridge/internal/logging"

type TermTracer struct{}

type FilterTracer struct{}

var (
	Term   = TermTracer{}
	Filter = FilterTracer{}
)

func (TermTracer) Key(pane, key string) {
	logging.Trace("term.key", map[string]interface{}{"pane": pane, "key": key})
}

func (TermTracer) Focus(pane string) {
	logging.Trace("term.focus", map[string]interface{}{"pane": pane})
}

func (TermTracer) Snapshot(pane string, rows int) {
	logging.Trace("term.snapshot", map[string]interface{}{"pane": pane, "rows": rows})
}

func (TermTracer) Overlay(kind, token, state string) {
	logging.Trace("term.overlay", map[string]interface{}{"kind": kind, "token": token, "state": state})
}

func (TermTracer) Resize(width, height int) {
	logging.Trace("term.resize", map[string]interface{}{"width": width, "height": height})
}

func (FilterTracer) Changed(pane, query string, visible int) {
	logging.Trace("filter.changed", map[string]interface{}{"pane": pane, "query": query, "visible": visible})
}

func (FilterTracer) Cleared(pane string) {
	logging.Trace("filter.cleared", map[string]interface{}{"pane": pane})
}
