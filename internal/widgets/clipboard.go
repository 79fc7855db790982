package widgets

import (
	"github.com/atomicstack/nativebridge/internal/bridge"
	"github.com/atomicstack/nativebridge/internal/logging"
	"github.com/atomicstack/nativebridge/internal/protocol"
)

// ClipboardActions returns the clipboard domain's action table.
func (w *Widgets) ClipboardActions() bridge.Actions {
	return bridge.Actions{
		"readText":  w.readClipboard,
		"writeText": w.writeClipboard,
	}
}

func (w *Widgets) readClipboard(*bridge.Request) (interface{}, error) {
	text, err := w.clip.ReadText()
	if err != nil {
		return nil, protocol.Wrap(protocol.CodeNativeCallFailed, err, "read clipboard")
	}
	return map[string]interface{}{"text": text}, nil
}

func (w *Widgets) writeClipboard(req *bridge.Request) (interface{}, error) {
	// an empty string is a valid clipboard value, so only absence is an error
	text, ok := req.Data.Get("text").Str()
	if !ok {
		return nil, protocol.Errorf(protocol.CodeMissingData, "writeText requires text")
	}
	if err := w.clip.WriteText(text); err != nil {
		return nil, protocol.Wrap(protocol.CodeNativeCallFailed, err, "write clipboard")
	}
	logging.Trace("clipboard.write", map[string]interface{}{"bytes": len(text)})
	return map[string]interface{}{"written": len(text)}, nil
}
