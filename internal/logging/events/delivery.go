package events

import "github.com/atomicstack/nativebridge/internal/logging"

type DeliveryTracer struct{}

var Delivery = DeliveryTracer{}

func (DeliveryTracer) Listen(handle, kind, mode string) {
	logging.Trace("event.listen", map[string]interface{}{"handle": handle, "kind": kind, "mode": mode})
}

func (DeliveryTracer) Unlisten(handle, kind string) {
	logging.Trace("event.unlisten", map[string]interface{}{"handle": handle, "kind": kind})
}

func (DeliveryTracer) Direct(handle, kind string) {
	logging.Trace("event.direct", map[string]interface{}{"handle": handle, "kind": kind})
}

func (DeliveryTracer) Enqueue(handle, kind string, depth int) {
	logging.Trace("event.enqueue", map[string]interface{}{"handle": handle, "kind": kind, "depth": depth})
}

func (DeliveryTracer) Drain(handle, kind string, remaining int) {
	logging.Trace("event.drain", map[string]interface{}{"handle": handle, "kind": kind, "remaining": remaining})
}

func (DeliveryTracer) Drop(handle, kind, reason string) {
	logging.Trace("event.drop", map[string]interface{}{"handle": handle, "kind": kind, "reason": reason})
}
