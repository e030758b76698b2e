// Package settings implements the user-facing settings persisted in the
// store: notification toggles, guest access and the profile avatar.
package settings

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

// Notification channels.
const (
	NotifyFeeding    = "feeding"
	NotifyGrooming   = "grooming"
	NotifyVet        = "vet"
	NotifyUpdates    = "updates"
	NotifyPromotions = "promotions"
)

// NotificationSettings holds the per-channel notification switches.
type NotificationSettings struct {
	Feeding    bool `json:"feeding"`
	Grooming   bool `json:"grooming"`
	Vet        bool `json:"vet"`
	Updates    bool `json:"updates"`
	Promotions bool `json:"promotions"`
}

// DefaultNotifications enables every channel except promotions.
func DefaultNotifications() NotificationSettings {
	return NotificationSettings{
		Feeding:  true,
		Grooming: true,
		Vet:      true,
		Updates:  true,
	}
}

func (n *NotificationSettings) field(name string) (*bool, error) {
	switch name {
	case NotifyFeeding:
		return &n.Feeding, nil
	case NotifyGrooming:
		return &n.Grooming, nil
	case NotifyVet:
		return &n.Vet, nil
	case NotifyUpdates:
		return &n.Updates, nil
	case NotifyPromotions:
		return &n.Promotions, nil
	default:
		return nil, fmt.Errorf("unknown notification %q", name)
	}
}

// Toggle flips one channel.
func (n NotificationSettings) Toggle(name string) (NotificationSettings, error) {
	f, err := n.field(name)
	if err != nil {
		return n, err
	}
	*f = !*f
	return n, nil
}

// EnabledCount is the number of channels switched on.
func (n NotificationSettings) EnabledCount() int {
	count := 0
	for _, on := range []bool{n.Feeding, n.Grooming, n.Vet, n.Updates, n.Promotions} {
		if on {
			count++
		}
	}
	return count
}

// Guest permissions.
const (
	PermViewPets      = "viewPets"
	PermViewTasks     = "viewTasks"
	PermMarkTasksDone = "markTasksDone"
	PermEditTasks     = "editTasks"
	PermEditPets      = "editPets"
)

// GuestSettings controls read-mostly access for a pet sitter.
type GuestSettings struct {
	GuestMode        bool            `json:"guestMode"`
	GuestPermissions map[string]bool `json:"guestPermissions"`
	GuestCode        *string         `json:"guestCode"`
}

// DefaultGuest has guest mode off, viewing and ticking tasks allowed, editing denied.
func DefaultGuest() GuestSettings {
	return GuestSettings{
		GuestPermissions: map[string]bool{
			PermViewPets:      true,
			PermViewTasks:     true,
			PermMarkTasksDone: true,
			PermEditTasks:     false,
			PermEditPets:      false,
		},
	}
}

// Code returns the guest code, empty when none was generated.
func (g GuestSettings) Code() string {
	if g.GuestCode == nil {
		return ""
	}
	return *g.GuestCode
}

func (g GuestSettings) clone() GuestSettings {
	perms := make(map[string]bool, len(g.GuestPermissions))
	for k, v := range g.GuestPermissions {
		perms[k] = v
	}
	g.GuestPermissions = perms
	return g
}

// guestCodeAlphabet omits characters that are easy to misread (I, O, 0, 1).
const guestCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GuestCodeLength is the number of characters in a guest code.
const GuestCodeLength = 6

// NewGuestCode returns a random guest code.
func NewGuestCode() (string, error) {
	var b strings.Builder
	max := big.NewInt(int64(len(guestCodeAlphabet)))
	for i := 0; i < GuestCodeLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate guest code: %w", err)
		}
		b.WriteByte(guestCodeAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// ValidGuestCode reports whether code could have been produced by NewGuestCode.
func ValidGuestCode(code string) bool {
	if len(code) != GuestCodeLength {
		return false
	}
	for _, r := range code {
		if !strings.ContainsRune(guestCodeAlphabet, r) {
			return false
		}
	}
	return true
}
