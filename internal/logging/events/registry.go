package events

import "github.com/atomicstack/nativebridge/internal/logging"

type RegistryTracer struct{}

var Registry = RegistryTracer{}

func (RegistryTracer) Create(domain, id string, generation uint64) {
	logging.Trace("registry.create", map[string]interface{}{"domain": domain, "id": id, "generation": generation})
}

func (RegistryTracer) Destroy(domain, id string, generation uint64) {
	logging.Trace("registry.destroy", map[string]interface{}{"domain": domain, "id": id, "generation": generation})
}

func (RegistryTracer) DestroyAll(scope string, count int) {
	logging.Trace("registry.destroy-all", map[string]interface{}{"scope": scope, "count": count})
}

func (RegistryTracer) Stale(domain, id string, want, have uint64) {
	logging.Trace("registry.stale", map[string]interface{}{"domain": domain, "id": id, "want": want, "have": have})
}
