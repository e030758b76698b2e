package core

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ID is a record id. Stored ids may be JSON strings or numbers; the kind is
// kept so records written back keep the id the merge engine matches on.
type ID struct {
	text    string
	numeric bool
}

// StringID returns a string id.
func StringID(s string) ID { return ID{text: s} }

// String returns the textual form of the id.
func (id ID) String() string { return id.text }

// IsZero reports whether the id is empty.
func (id ID) IsZero() bool { return id.text == "" }

// MarshalJSON implements json.Marshaler.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.numeric {
		return []byte(id.text), nil
	}
	return json.Marshal(id.text)
}

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ID{}
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID{text: s}
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("record id must be a string or number: %w", err)
		}
		*id = ID{text: n.String(), numeric: true}
	}
	return nil
}

// Pet is a pet profile stored in the "pets" slot.
type Pet struct {
	ID          ID     `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type,omitempty"` // Cat, Dog, ...
	Breed       string `json:"breed,omitempty"`
	Gender      string `json:"gender,omitempty"`
	Age         string `json:"age,omitempty"`
	Weight      string `json:"weight,omitempty"`
	Description string `json:"description,omitempty"`
	Notes       string `json:"notes,omitempty"`
	Image       string `json:"image,omitempty"`
}

// RecordID implements typed.Identifiable.
func (p Pet) RecordID() string { return p.ID.String() }

// Task is a care task or reminder stored in the "tasks" slot.
type Task struct {
	ID          ID     `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	PetIDs      []ID   `json:"pets,omitempty"`
	Type        string `json:"type,omitempty"`
	Priority    string `json:"priority,omitempty"` // low, normal, high
	Reminder    string `json:"reminder,omitempty"` // off, 15m, 1h, 1d, custom
	RemindAt    string `json:"remindAt,omitempty"` // set when Reminder is custom
	Done        bool   `json:"done,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

// RecordID implements typed.Identifiable.
func (t Task) RecordID() string { return t.ID.String() }

// UserProfile is the subset of the "user_profile" slot the engine reads.
type UserProfile struct {
	ID     ID     `json:"id,omitzero"`
	UserID ID     `json:"userId,omitzero"`
	Name   string `json:"name,omitempty"`
}
