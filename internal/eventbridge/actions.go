package eventbridge

import (
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/protocol"
)

var knownEvents = map[protocol.EventKind]struct{}{
	protocol.EventSelectionChanged: {},
	protocol.EventDoubleClicked:    {},
	protocol.EventMenuAction:       {},
	protocol.EventMenuDismissed:    {},
	protocol.EventDragCompleted:    {},
	protocol.EventDropReceived:     {},
	protocol.EventPreviewClosed:    {},
}

// Actions returns the events domain's action table.
func (b *Bridge) Actions() bridge.Actions {
	return bridge.Actions{
		"listen":   b.listenAction,
		"unlisten": b.unlistenAction,
		"poll":     b.pollAction,
	}
}

func eventKinds(p protocol.Payload) ([]protocol.EventKind, error) {
	names := p.Strings("events")
	if len(names) == 0 {
		if name := p.String("event", ""); name != "" {
			names = []string{name}
		}
	}
	kinds := make([]protocol.EventKind, 0, len(names))
	for _, n := range names {
		k := protocol.EventKind(n)
		if _, ok := knownEvents[k]; !ok {
			return nil, protocol.Errorf(protocol.CodeInvalidPayload, "unknown event %q", n)
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func (b *Bridge) listenAction(req *bridge.Request) (interface{}, error) {
	handleID, err := req.Data.RequireString("handleId")
	if err != nil {
		return nil, err
	}
	kinds, err := eventKinds(req.Data)
	if err != nil {
		return nil, err
	}
	if len(kinds) == 0 {
		return nil, protocol.Errorf(protocol.CodeMissingData, "listen requires event or events")
	}
	mode := req.Data.String("mode", "")
	modes := make(map[string]interface{}, len(kinds))
	for _, k := range kinds {
		modes[string(k)] = string(b.Listen(handleID, k, mode))
	}
	return map[string]interface{}{"handleId": handleID, "modes": modes}, nil
}

func (b *Bridge) unlistenAction(req *bridge.Request) (interface{}, error) {
	handleID, err := req.Data.RequireString("handleId")
	if err != nil {
		return nil, err
	}
	kinds, err := eventKinds(req.Data)
	if err != nil {
		return nil, err
	}
	removed := 0
	if len(kinds) == 0 {
		removed = b.Unlisten(handleID, "")
	}
	for _, k := range kinds {
		removed += b.Unlisten(handleID, k)
	}
	return map[string]interface{}{"removed": removed}, nil
}

func (b *Bridge) pollAction(*bridge.Request) (interface{}, error) {
	delivered, remaining := b.Poll()
	return map[string]interface{}{"delivered": delivered, "remaining": remaining}, nil
}
