// Package core holds the domain types shared by the store adapters and the
// backup engine.
package core

import (
	"fmt"
	"time"
)

// Slot keys used by the application.
const (
	KeyPets          = "pets"
	KeyTasks         = "tasks"
	KeySettings      = "settings"
	KeyPetProfiles   = "pet_profiles"
	KeyUserProfile   = "user_profile"
	KeyAppState      = "app_state"
	KeyNotifications = "catcare_notifications"
	KeyGuestSettings = "catcare_guest_settings"
	KeyAvatar        = "catcare_profile_avatar"

	// Legacy locations of the current user id, consulted when there is no
	// user_profile slot.
	KeyUserProfileID = "user_profile_id"
	KeyUserID        = "user_id"
)

// ExportKeys is the allow-list of slots written to a backup, in export order.
// The avatar is handled separately.
var ExportKeys = []string{
	KeyNotifications,
	KeyGuestSettings,
	KeyPets,
	KeyTasks,
	KeyPetProfiles,
	KeyUserProfile,
	KeyAppState,
}

// RecognizedKeys are the top-level keys an import must contain at least one of.
var RecognizedKeys = []string{
	KeyPets,
	KeyTasks,
	KeySettings,
	KeyNotifications,
	KeyGuestSettings,
	KeyUserProfile,
}

// ApplyKeys are the slots the merge engine writes when present in an import.
var ApplyKeys = []string{
	KeyPets,
	KeyTasks,
	KeySettings,
	KeyNotifications,
	KeyGuestSettings,
	KeyUserProfile,
	KeyAppState,
	KeyPetProfiles,
}

// EventType represents the type of change in the store.
type EventType string

const (
	EventSet    EventType = "SET"
	EventRemove EventType = "REMOVE"
)

// Event represents a change to a single slot.
type Event struct {
	Type      EventType
	Key       string
	Timestamp int64 // Unix timestamp
}

// String implements lifecycle.Event.
func (e Event) String() string {
	return fmt.Sprintf("%s %s", e.Type, e.Key)
}

// NewEvent stamps an event with the current time.
func NewEvent(t EventType, key string) Event {
	return Event{Type: t, Key: key, Timestamp: time.Now().Unix()}
}
