package core

import (
	"encoding/json"
	"testing"
)

func TestIDJSON(t *testing.T) {
	var p Pet
	if err := json.Unmarshal([]byte(`{"id":1700000000000,"name":"Milo"}`), &p); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if p.RecordID() != "1700000000000" {
		t.Errorf("unexpected id %q", p.RecordID())
	}
	out, _ := json.Marshal(p)
	if string(out) != `{"id":1700000000000,"name":"Milo"}` {
		t.Errorf("numeric id must stay numeric, got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"id":"pet_1"}`), &p); err != nil {
		t.Fatal(err)
	}
	out, _ = json.Marshal(p.ID)
	if string(out) != `"pet_1"` {
		t.Errorf("string id must stay a string, got %s", out)
	}

	if err := json.Unmarshal([]byte(`{"id":{"nested":true}}`), &p); err == nil {
		t.Error("expected error for object id")
	}
}

func TestUserProfileOmitsEmptyIDs(t *testing.T) {
	out, err := json.Marshal(UserProfile{Name: "Ana"})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"name":"Ana"}` {
		t.Errorf("unexpected profile JSON %s", out)
	}
}
