package ws_test

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"warptrade.io/internal/transport/ws"
)

func TestEnvelopeSchema_ValidateSamples(t *testing.T) {
	p := filepath.Join("..", "..", "..", "schemas", "envelope.schema.json")
	schema, err := jsonschema.Compile(p)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	roundTrip := func(env ws.Envelope) any {
		t.Helper()
		b, err := json.Marshal(env)
		if err != nil {
			t.Fatal(err)
		}
		var v any
		if err := json.Unmarshal(b, &v); err != nil {
			t.Fatal(err)
		}
		return v
	}

	samples := []ws.Envelope{
		{Type: ws.TypeLine, Line: "USER Kirk:tribbles:"},
		{Type: ws.TypeLine, Line: "PORT TRADE 0:10:0:"},
		{Type: ws.TypeReply, Line: "OK: Sector 1:Warps 2,5"},
		{Type: ws.TypeReply, Line: "BAD: no matching command"},
	}
	for _, env := range samples {
		if err := schema.Validate(roundTrip(env)); err != nil {
			t.Fatalf("validate %+v: %v", env, err)
		}
	}

	var bad any
	_ = json.Unmarshal([]byte(`{"type":"PING","line":"x"}`), &bad)
	if err := schema.Validate(bad); err == nil {
		t.Fatal("unknown envelope type accepted")
	}
}
