package protocol

import (
	"github.com/tidwall/gjson"
)

// Payload gives handlers tolerant, schema-less access to action data. A
// missing or mistyped field never aborts reading its siblings; required
// fields are enforced explicitly through the Require helpers.
type Payload struct {
	res gjson.Result
}

// ParsePayload wraps raw JSON. Invalid JSON yields an empty payload; the
// envelope decoder already rejects messages that are not well formed.
func ParsePayload(raw []byte) Payload {
	if len(raw) == 0 {
		return Payload{}
	}
	return Payload{res: gjson.ParseBytes(raw)}
}

func payloadOf(res gjson.Result) Payload { return Payload{res: res} }

// Exists reports whether the payload carries a value.
func (p Payload) Exists() bool { return p.res.Exists() && p.res.Type != gjson.Null }

// IsObject reports whether the payload is a JSON object.
func (p Payload) IsObject() bool { return p.res.IsObject() }

// IsArray reports whether the payload is a JSON array.
func (p Payload) IsArray() bool { return p.res.IsArray() }

// Raw returns the payload's JSON text.
func (p Payload) Raw() string { return p.res.Raw }

// Get returns the nested value at path.
func (p Payload) Get(path string) Payload {
	if !p.res.Exists() {
		return Payload{}
	}
	return payloadOf(p.res.Get(path))
}

// Has reports whether field is present and not null.
func (p Payload) Has(field string) bool {
	return p.Get(field).Exists()
}

// Str returns the payload itself as a string. Numbers and booleans are
// rendered with their JSON text so ids like 42 are still usable.
func (p Payload) Str() (string, bool) {
	switch p.res.Type {
	case gjson.String:
		return p.res.Str, true
	case gjson.Number, gjson.True, gjson.False:
		return p.res.Raw, true
	default:
		return "", false
	}
}

// String returns the string at field or fallback.
func (p Payload) String(field, fallback string) string {
	if v, ok := p.Get(field).Str(); ok {
		return v
	}
	return fallback
}

// RequireString returns a non-empty string field or a MissingData error.
func (p Payload) RequireString(field string) (string, error) {
	v := p.Get(field)
	if !v.Exists() {
		return "", Errorf(CodeMissingData, "missing required field %q", field)
	}
	s, ok := v.Str()
	if !ok {
		return "", Errorf(CodeInvalidPayload, "field %q must be a string", field)
	}
	if s == "" {
		return "", Errorf(CodeMissingData, "field %q must not be empty", field)
	}
	return s, nil
}

// Bool returns the boolean at field or fallback.
func (p Payload) Bool(field string, fallback bool) bool {
	v := p.Get(field)
	switch v.res.Type {
	case gjson.True:
		return true
	case gjson.False:
		return false
	default:
		return fallback
	}
}

// Int returns the integer at field or fallback.
func (p Payload) Int(field string, fallback int) int {
	v := p.Get(field)
	if v.res.Type != gjson.Number {
		return fallback
	}
	return int(v.res.Int())
}

// Float returns the number at field or fallback.
func (p Payload) Float(field string, fallback float64) float64 {
	v := p.Get(field)
	if v.res.Type != gjson.Number {
		return fallback
	}
	return v.res.Float()
}

// Array returns the elements of the array at field. A single non-array value
// is treated as a one-element array.
func (p Payload) Array(field string) []Payload {
	v := p.res
	if field != "" {
		v = p.res.Get(field)
	}
	if !v.Exists() || v.Type == gjson.Null {
		return nil
	}
	if !v.IsArray() {
		return []Payload{payloadOf(v)}
	}
	items := v.Array()
	out := make([]Payload, 0, len(items))
	for _, item := range items {
		out = append(out, payloadOf(item))
	}
	return out
}

// Strings returns the string elements of the array at field, skipping
// values that are not scalars.
func (p Payload) Strings(field string) []string {
	items := p.Array(field)
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.Str(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Fields returns the scalar members of an object in document order.
func (p Payload) Fields() []KeyValue {
	if !p.res.IsObject() {
		return nil
	}
	var out []KeyValue
	p.res.ForEach(func(key, value gjson.Result) bool {
		kv := KeyValue{Key: key.String()}
		if s, ok := payloadOf(value).Str(); ok {
			kv.Value = s
		} else {
			kv.Value = value.Raw
		}
		out = append(out, kv)
		return true
	})
	return out
}

// KeyValue is an ordered object member.
type KeyValue struct {
	Key   string
	Value string
}
