package protocol

import (
	"bytes"

	"github.com/tidwall/gjson"
)

// Message is a decoded script-to-host envelope. Payload holds the raw JSON of
// the data field and is only interpreted by the domain handler.
type Message struct {
	Domain    Domain
	Action    string
	RequestID string
	Payload   []byte
}

// Data returns the payload wrapped for tolerant field access.
func (m Message) Data() Payload {
	return ParsePayload(m.Payload)
}

// Decode extracts the envelope fields from raw. Each field is scanned on its
// own so a malformed data value does not hide the domain, action or request
// id; the returned Message carries whatever could be read even when err is
// non-nil, which lets the router reject the right request.
func Decode(raw []byte) (Message, error) {
	var msg Message
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return msg, Errorf(CodeInvalidPayload, "empty message")
	}
	msg.Domain = Domain(scanString(trimmed, "domain"))
	msg.Action = scanString(trimmed, "action")
	msg.RequestID = scanString(trimmed, "requestId")

	if trimmed[0] != '{' || !gjson.ValidBytes(trimmed) {
		return msg, Errorf(CodeInvalidPayload, "message is not a valid JSON object")
	}
	if msg.Domain == "" {
		return msg, Errorf(CodeInvalidPayload, "message has no domain")
	}
	if msg.Action == "" {
		return msg, &Error{Code: CodeInvalidPayload, Domain: msg.Domain, Message: "message has no action"}
	}

	data := gjson.GetBytes(trimmed, "data")
	if !data.Exists() {
		data = gjson.GetBytes(trimmed, "payload")
	}
	if data.Exists() && data.Type != gjson.Null {
		msg.Payload = []byte(data.Raw)
	}
	return msg, nil
}

func scanString(raw []byte, field string) string {
	res := gjson.GetBytes(raw, field)
	if res.Type != gjson.String {
		if res.Type == gjson.Number {
			return res.Raw
		}
		return ""
	}
	return res.Str
}
