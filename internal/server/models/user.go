// Package models defines server-side data models persisted in the database.
package models

import "time"

const (
	// DefaultDailyGoal is the goal in ml assigned when none is configured.
	DefaultDailyGoal = 2000
	// DefaultProfilePicture is the storage key meaning "no uploaded picture".
	DefaultProfilePicture = "default.png"
)

// Theme is the UI color scheme a user picked.
type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Valid reports whether t is one of the known themes.
func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type User struct {
	ID             int64
	UserName       string
	Email          string
	PasswordHash   []byte
	DailyGoal      int
	Theme          Theme
	ProfilePicture string
	CreatedAt      time.Time
}
