package events

import "github.com/atomicstack/nativebridge/internal/logging"

type WidgetTracer struct{}

type WindowTracer struct{}

var (
	Widget = WidgetTracer{}
	Window = WindowTracer{}
)

func (WidgetTracer) Reload(id string, coalesced int) {
	logging.Trace("widget.reload", map[string]interface{}{"id": id, "coalesced": coalesced})
}

func (WidgetTracer) Select(id, item string) {
	logging.Trace("widget.select", map[string]interface{}{"id": id, "item": item})
}

func (WidgetTracer) Gesture(id, gesture, item string) {
	logging.Trace("widget.gesture", map[string]interface{}{"id": id, "gesture": gesture, "item": item})
}

func (WindowTracer) Open(id, title string) {
	logging.Trace("window.open", map[string]interface{}{"id": id, "title": title})
}

func (WindowTracer) Title(id, title string) {
	logging.Trace("window.title", map[string]interface{}{"id": id, "title": title})
}

func (WindowTracer) Close(id string, evicted int) {
	logging.Trace("window.close", map[string]interface{}{"id": id, "evicted": evicted})
}
