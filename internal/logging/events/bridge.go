package events

import "github.com/atomicstack/nativebridge/internal/logging"

type BridgeTracer struct{}

var Bridge = BridgeTracer{}

func (BridgeTracer) Dispatch(domain, action, requestID string) {
	logging.Trace("bridge.dispatch", map[string]interface{}{
		"domain":    domain,
		"action":    action,
		"requestId": requestID,
	})
}

func (BridgeTracer) Result(domain, action, requestID string) {
	logging.Trace("bridge.result", map[string]interface{}{
		"domain":    domain,
		"action":    action,
		"requestId": requestID,
	})
}

func (BridgeTracer) Error(domain, action, code, message string) {
	logging.Trace("bridge.error", map[string]interface{}{
		"domain":  domain,
		"action":  action,
		"code":    code,
		"message": message,
	})
}

func (BridgeTracer) Panic(domain, action string, recovered interface{}) {
	logging.Trace("bridge.panic", map[string]interface{}{
		"domain":    domain,
		"action":    action,
		"recovered": recovered,
	})
}
