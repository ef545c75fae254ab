// File: internal/domain/device_token.go
package domain

import "time"

// DeviceToken is a push-notification registration for one of a user's
// devices. Upserted on every app start; rows whose token the gateway reports
// as invalid are pruned by the push fan-out.
type DeviceToken struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex:idx_user_device;not null" json:"userId"`
	Token     string    `gorm:"uniqueIndex:idx_user_device;not null;size:512" json:"token"`
	Platform  string    `gorm:"size:20" json:"platform"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
