package core

import (
	"encoding/json"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		raw  string
		kind Kind
		len  int
	}{
		{`[{"id":1},{"id":2}]`, KindSequence, 2},
		{`{"a":1}`, KindMapping, 1},
		{`"text"`, KindScalar, 0},
		{`12345678901234567890`, KindScalar, 0},
		{`null`, KindScalar, 0},
	}
	for _, tt := range tests {
		v, err := ParseValue(tt.raw)
		if err != nil {
			t.Fatalf("ParseValue(%s) failed: %v", tt.raw, err)
		}
		if v.Kind() != tt.kind || v.Len() != tt.len {
			t.Errorf("ParseValue(%s) = %s len %d, want %s len %d", tt.raw, v.Kind(), v.Len(), tt.kind, tt.len)
		}
	}

	for _, bad := range []string{``, `{`, `[1] [2]`, `nope`} {
		if _, err := ParseValue(bad); err == nil {
			t.Errorf("ParseValue(%q) should fail", bad)
		}
	}
}

func TestValueEncodeKeepsNumbers(t *testing.T) {
	v, err := ParseValue(`{"big":12345678901234567890,"f":0.1}`)
	if err != nil {
		t.Fatal(err)
	}
	got, err := v.Encode()
	if err != nil {
		t.Fatal(err)
	}
	if got != `{"big":12345678901234567890,"f":0.1}` {
		t.Errorf("numbers changed: %s", got)
	}
}

func TestConstructorsNeverEncodeNull(t *testing.T) {
	if s, _ := Sequence(nil).Encode(); s != "[]" {
		t.Errorf("Sequence(nil) encodes as %s", s)
	}
	if s, _ := Mapping(nil).Encode(); s != "{}" {
		t.Errorf("Mapping(nil) encodes as %s", s)
	}
}

func TestTruthy(t *testing.T) {
	falsy := []any{nil, false, "", json.Number("0"), json.Number("0.0"), 0.0}
	for _, v := range falsy {
		if Truthy(v) {
			t.Errorf("Truthy(%#v) = true", v)
		}
	}
	truthy := []any{true, "0", json.Number("7"), []any{}, map[string]any{}}
	for _, v := range truthy {
		if !Truthy(v) {
			t.Errorf("Truthy(%#v) = false", v)
		}
	}
	if !Sequence(nil).Truthy() || ValueOf(nil).Truthy() {
		t.Error("Value.Truthy disagrees with Truthy")
	}
}

func TestIdentityOf(t *testing.T) {
	tests := []struct {
		item any
		id   string
		ok   bool
	}{
		{map[string]any{"id": "p1"}, "s:p1", true},
		{map[string]any{"id": json.Number("42")}, "n:42", true},
		{map[string]any{"id": "42"}, "s:42", true},
		{map[string]any{"id": json.Number("42.0")}, "n:42", true},
		{map[string]any{"id": json.Number("4.2e1")}, "n:42", true},
		{map[string]any{"id": json.Number("1.5")}, "n:1.5", true},
		{map[string]any{"id": json.Number("1700000000000")}, "n:1700000000000", true},
		{map[string]any{"id": json.Number("9007199254740993")}, "n:9007199254740993", true},
		{map[string]any{"id": float64(7)}, "n:7", true},
		{map[string]any{"id": ""}, "", false},
		{map[string]any{"id": json.Number("0")}, "", false},
		{map[string]any{"id": true}, "", false},
		{map[string]any{"name": "x"}, "", false},
		{"not a record", "", false},
	}
	for _, tt := range tests {
		id, ok := IdentityOf(tt.item)
		if id != tt.id || ok != tt.ok {
			t.Errorf("IdentityOf(%#v) = %q %v, want %q %v", tt.item, id, ok, tt.id, tt.ok)
		}
	}
}

func TestIdentitiesOf(t *testing.T) {
	if got := IdentitiesOf("pet_1"); len(got) != 1 || got[0] != "s:pet_1" {
		t.Errorf("unexpected identities %v", got)
	}
	got := IdentitiesOf("1.0")
	if len(got) != 2 || got[0] != "s:1.0" || got[1] != "n:1" {
		t.Errorf("unexpected identities %v", got)
	}
}

func TestIDString(t *testing.T) {
	if s, ok := IDString(json.Number("7")); !ok || s != "7" {
		t.Errorf("got %q %v", s, ok)
	}
	if _, ok := IDString(map[string]any{}); ok {
		t.Error("mappings are not ids")
	}
}
