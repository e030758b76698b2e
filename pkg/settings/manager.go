package settings

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/catcare/pkg/core"
	"github.com/aretw0/catcare/pkg/typed"
)

// Manager persists settings through the store and keeps in-memory mirrors
// of the notification and guest settings.
type Manager struct {
	store  core.Store
	logger *slog.Logger
	notif  *typed.Slot[NotificationSettings]
	guest  *typed.Slot[GuestSettings]

	mu            sync.RWMutex
	notifications NotificationSettings
	guestSettings GuestSettings
}

// NewManager creates a Manager with default mirrors. Call Load to read the store.
func NewManager(store core.Store, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		store:         store,
		logger:        logger,
		notif:         typed.NewSlot[NotificationSettings](store, core.KeyNotifications),
		guest:         typed.NewSlot[GuestSettings](store, core.KeyGuestSettings),
		notifications: DefaultNotifications(),
		guestSettings: DefaultGuest(),
	}
}

// Load initializes the mirrors from the store; absent or unreadable slots
// fall back to the defaults.
func (m *Manager) Load(ctx context.Context) {
	n := m.notif.LoadOr(ctx, DefaultNotifications())
	g := m.guest.LoadOr(ctx, DefaultGuest())

	m.mu.Lock()
	defer m.mu.Unlock()
	m.notifications = n
	m.guestSettings = g
}

// Refresh re-reads the mirrors after an import. A slot that is absent or
// cannot be decoded leaves the current mirror untouched.
func (m *Manager) Refresh(ctx context.Context) {
	n, nerr := m.notif.Load(ctx)
	g, gerr := m.guest.Load(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if nerr == nil {
		m.notifications = n
	} else {
		m.logger.Debug("keeping notification settings", "error", nerr)
	}
	if gerr == nil {
		m.guestSettings = g
	} else {
		m.logger.Debug("keeping guest settings", "error", gerr)
	}
}

// Notifications returns the mirrored notification settings.
func (m *Manager) Notifications() NotificationSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.notifications
}

// Guest returns a copy of the mirrored guest settings.
func (m *Manager) Guest() GuestSettings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guestSettings.clone()
}

// SetNotifications replaces the notification settings.
func (m *Manager) SetNotifications(ctx context.Context, n NotificationSettings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.notif.Save(ctx, n); err != nil {
		return err
	}
	m.notifications = n
	return nil
}

// ToggleNotification flips one channel.
func (m *Manager) ToggleNotification(ctx context.Context, name string) (NotificationSettings, error) {
	next, err := m.Notifications().Toggle(name)
	if err != nil {
		return m.Notifications(), err
	}
	return next, m.SetNotifications(ctx, next)
}

// TurnOffAll disables every notification channel.
func (m *Manager) TurnOffAll(ctx context.Context) error {
	return m.SetNotifications(ctx, NotificationSettings{})
}

func (m *Manager) updateGuest(ctx context.Context, fn func(GuestSettings) (GuestSettings, error)) (GuestSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, err := fn(m.guestSettings.clone())
	if err != nil {
		return m.guestSettings.clone(), err
	}
	if err := m.guest.Save(ctx, next); err != nil {
		return m.guestSettings.clone(), err
	}
	m.guestSettings = next
	return next.clone(), nil
}

// EnableGuestMode switches guest mode on, generating a code if there is none.
func (m *Manager) EnableGuestMode(ctx context.Context) (GuestSettings, error) {
	return m.updateGuest(ctx, func(g GuestSettings) (GuestSettings, error) {
		g.GuestMode = true
		if g.Code() == "" {
			code, err := NewGuestCode()
			if err != nil {
				return g, err
			}
			g.GuestCode = &code
		}
		return g, nil
	})
}

// DisableGuestMode switches guest mode off. The code is kept for next time.
func (m *Manager) DisableGuestMode(ctx context.Context) (GuestSettings, error) {
	return m.updateGuest(ctx, func(g GuestSettings) (GuestSettings, error) {
		g.GuestMode = false
		return g, nil
	})
}

// RegenerateGuestCode replaces the guest code.
func (m *Manager) RegenerateGuestCode(ctx context.Context) (GuestSettings, error) {
	return m.updateGuest(ctx, func(g GuestSettings) (GuestSettings, error) {
		code, err := NewGuestCode()
		if err != nil {
			return g, err
		}
		g.GuestCode = &code
		return g, nil
	})
}

// TogglePermission flips one guest permission.
func (m *Manager) TogglePermission(ctx context.Context, perm string) (GuestSettings, error) {
	return m.updateGuest(ctx, func(g GuestSettings) (GuestSettings, error) {
		if _, ok := DefaultGuest().GuestPermissions[perm]; !ok {
			if _, known := g.GuestPermissions[perm]; !known {
				return g, fmt.Errorf("unknown guest permission %q", perm)
			}
		}
		g.GuestPermissions[perm] = !g.GuestPermissions[perm]
		return g, nil
	})
}

// Avatar returns the stored avatar, or the first preset when none is stored.
// custom is true for anything that is not a preset (an uploaded image).
func (m *Manager) Avatar(ctx context.Context) (src string, custom bool, err error) {
	raw, ok, err := m.store.Get(ctx, core.KeyAvatar)
	if err != nil {
		return "", false, err
	}
	if !ok || raw == "" {
		return PresetAvatars[0], false, nil
	}
	return raw, !IsPresetAvatar(raw), nil
}

// SelectPreset stores one of the bundled avatars.
func (m *Manager) SelectPreset(ctx context.Context, src string) error {
	if !IsPresetAvatar(src) {
		return fmt.Errorf("unknown preset avatar %q", src)
	}
	return m.store.Set(ctx, core.KeyAvatar, src)
}

// SetCustomAvatar stores an uploaded image, given as a data URI.
func (m *Manager) SetCustomAvatar(ctx context.Context, dataURI string) error {
	if !IsInlineAvatar(dataURI) {
		return fmt.Errorf("custom avatar must be a data URI")
	}
	return m.store.Set(ctx, core.KeyAvatar, dataURI)
}

// ResetAvatar removes a custom avatar and picks a random preset.
func (m *Manager) ResetAvatar(ctx context.Context) (string, error) {
	if err := m.store.Remove(ctx, core.KeyAvatar); err != nil {
		return "", err
	}
	src := RandomPreset()
	if err := m.store.Set(ctx, core.KeyAvatar, src); err != nil {
		return "", err
	}
	return src, nil
}
