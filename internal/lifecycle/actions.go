package lifecycle

import (
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/logging/events"
	"github.com/atomicstack/nativebridge/internal/protocol"
)

func (w *Window) actions() bridge.Actions {
	return bridge.Actions{
		"setTitle": w.setTitle,
		"close":    w.closeAction,
		"stats":    w.statsAction,
	}
}

func (w *Window) setTitle(req *bridge.Request) (interface{}, error) {
	title, ok := req.Data.Get("title").Str()
	if !ok {
		return nil, protocol.Errorf(protocol.CodeMissingData, "setTitle requires title")
	}
	w.title = title
	w.kit.SetTitle(title)
	events.Window.Title(w.id, title)
	return map[string]interface{}{"title": title}, nil
}

// closeAction resolves first and tears down on the next loop turn, so the
// caller's promise settles before windowClosed arrives.
func (w *Window) closeAction(*bridge.Request) (interface{}, error) {
	if err := w.sched.Post(func() { w.Close("script") }); err != nil {
		return nil, protocol.Wrap(protocol.CodeNativeCallFailed, err, "schedule window close")
	}
	return map[string]interface{}{"closing": true}, nil
}

func (w *Window) statsAction(*bridge.Request) (interface{}, error) {
	return w.Stats(), nil
}
