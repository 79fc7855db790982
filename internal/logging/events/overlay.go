package events

import "github.com/atomicstack/nativebridge/internal/logging"

type MenuTracer struct{}

type DragTracer struct{}

type PreviewTracer struct{}

var (
	Menu    = MenuTracer{}
	Drag    = DragTracer{}
	Preview = PreviewTracer{}
)

func (MenuTracer) Show(target string, x, y float64, entries int) {
	logging.Trace("menu.show", map[string]interface{}{"target": target, "x": x, "y": y, "entries": entries})
}

func (MenuTracer) Action(target, item string) {
	logging.Trace("menu.action", map[string]interface{}{"target": target, "item": item})
}

func (MenuTracer) Dismiss(target, reason string) {
	logging.Trace("menu.dismiss", map[string]interface{}{"target": target, "reason": reason})
}

func (DragTracer) Begin(session, source string, items int) {
	logging.Trace("drag.begin", map[string]interface{}{"session": session, "source": source, "items": items})
}

func (DragTracer) End(session, source, operation string) {
	logging.Trace("drag.end", map[string]interface{}{"session": session, "source": source, "operation": operation})
}

func (DragTracer) Drop(target, operation string, items int) {
	logging.Trace("drag.drop", map[string]interface{}{"target": target, "operation": operation, "items": items})
}

func (PreviewTracer) Open(items, index int) {
	logging.Trace("preview.open", map[string]interface{}{"items": items, "index": index})
}

func (PreviewTracer) Toggle(open bool) {
	logging.Trace("preview.toggle", map[string]interface{}{"open": open})
}

func (PreviewTracer) Close(reason string) {
	logging.Trace("preview.close", map[string]interface{}{"reason": reason})
}
