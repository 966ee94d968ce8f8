package domain

import (
	"time"

	"github.com/google/uuid"
)

type Theme string

const (
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
	ThemeSystem Theme = "system"
)

type Settings struct {
	UserID               uuid.UUID `json:"-" db:"user_id"`
	Theme                Theme     `json:"theme" db:"theme"`
	NotificationsEnabled bool      `json:"notifications_enabled" db:"notifications_enabled"`
	UpdatedAt            time.Time `json:"updated_at" db:"updated_at"`
}

// DefaultSettings are returned for users who never touched their settings.
func DefaultSettings(userID uuid.UUID) *Settings {
	return &Settings{
		UserID:               userID,
		Theme:                ThemeSystem,
		NotificationsEnabled: true,
	}
}
