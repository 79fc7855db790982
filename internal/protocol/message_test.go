package protocol

import (
	"errors"
	"testing"
)

func TestDecodeEnvelope(t *testing.T) {
	msg, err := Decode([]byte(`{"domain":"sidebar","action":"create","requestId":"r1","data":{"id":"main"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Domain != DomainSidebar || msg.Action != "create" || msg.RequestID != "r1" {
		t.Fatalf("unexpected envelope %#v", msg)
	}
	if got := msg.Data().String("id", ""); got != "main" {
		t.Fatalf("expected id main, got %q", got)
	}
}

func TestDecodeAcceptsPayloadAlias(t *testing.T) {
	msg, err := Decode([]byte(`{"domain":"fileBrowser","action":"addRow","payload":{"id":"r"}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := msg.Data().String("id", ""); got != "r" {
		t.Fatalf("expected payload alias to be read, got %q", got)
	}
}

func TestDecodeTruncatedKeepsSiblings(t *testing.T) {
	msg, err := Decode([]byte(`{"domain":"sidebar","action":"create","requestId":"r9","data":{"id":"ma`))
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected InvalidPayload, got %v", err)
	}
	if msg.Domain != DomainSidebar || msg.Action != "create" || msg.RequestID != "r9" {
		t.Fatalf("expected scanned envelope fields, got %#v", msg)
	}
}

func TestDecodeMissingFields(t *testing.T) {
	cases := map[string]string{
		"empty":     ``,
		"no action": `{"domain":"sidebar","data":{}}`,
		"no domain": `{"action":"create"}`,
		"array":     `[1,2,3]`,
	}
	for name, raw := range cases {
		if _, err := Decode([]byte(raw)); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("%s: expected InvalidPayload, got %v", name, err)
		}
	}
}

func TestPayloadRequireString(t *testing.T) {
	p := ParsePayload([]byte(`{"id":"a","n":3,"empty":"","obj":{}}`))
	if v, err := p.RequireString("id"); err != nil || v != "a" {
		t.Fatalf("expected a, got %q (%v)", v, err)
	}
	if v, err := p.RequireString("n"); err != nil || v != "3" {
		t.Fatalf("expected numeric id to render as 3, got %q (%v)", v, err)
	}
	if _, err := p.RequireString("missing"); !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected MissingData, got %v", err)
	}
	if _, err := p.RequireString("empty"); !errors.Is(err, ErrMissingData) {
		t.Fatalf("expected MissingData for empty string, got %v", err)
	}
	if _, err := p.RequireString("obj"); !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("expected InvalidPayload for object, got %v", err)
	}
}

func TestPayloadFieldsPreserveOrder(t *testing.T) {
	p := ParsePayload([]byte(`{"name":"a.txt","size":12,"kind":"file"}`))
	fields := p.Fields()
	if len(fields) != 3 || fields[0].Key != "name" || fields[1].Value != "12" || fields[2].Value != "file" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}

func TestAsErrorAnnotates(t *testing.T) {
	err := AsError(Errorf(CodeMissingData, "x"), DomainSidebar, "addItem")
	if err.Domain != DomainSidebar || err.Action != "addItem" {
		t.Fatalf("expected annotation, got %#v", err)
	}
	plain := AsError(errors.New("boom"), DomainMenu, "setMenu")
	if plain.Code != CodeNativeCallFailed {
		t.Fatalf("expected NativeCallFailed for foreign errors, got %s", plain.Code)
	}
}
