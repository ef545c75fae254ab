// File: internal/domain/user.go
package domain

import (
	"errors"
	"strings"
	"time"
)

// User is an account identified by its email address. Accounts are created
// lazily on the first successful OTP verification and are never hard-deleted.
type User struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Email     string    `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Name      string    `gorm:"size:100" json:"name"`
	Phone     string    `gorm:"size:20" json:"phone"`
	AvatarURL string    `gorm:"size:512" json:"avatarUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeEmail lowercases and trims an address so lookups are
// case-insensitive regardless of how the client typed it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// IsProfileComplete reports whether the user finished onboarding. Clients use
// this flag after OTP verification to decide whether to show the profile form.
func (u *User) IsProfileComplete() bool {
	return u.Name != "" && u.Phone != ""
}

func (u *User) IsValid() error {
	email := NormalizeEmail(u.Email)
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("a valid email address is required")
	}
	return nil
}
