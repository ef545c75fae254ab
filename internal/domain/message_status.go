// File: internal/domain/message_status.go
package domain

import "time"

// StatusValue is the WhatsApp-style tick state for one (message, recipient)
// pair: sent < delivered < read.
type StatusValue string

const (
	StatusSent      StatusValue = "sent"
	StatusDelivered StatusValue = "delivered"
	StatusRead      StatusValue = "read"
)

// Rank orders status values so callers can compare progression. The ledger
// itself never downgrades a display state; callers rely on this ordering to
// avoid issuing a backwards transition.
func (s StatusValue) Rank() int {
	switch s {
	case StatusSent:
		return 1
	case StatusDelivered:
		return 2
	case StatusRead:
		return 3
	default:
		return 0
	}
}

// MessageStatus is the delivery ledger's storage row: one per (message, user)
// for every chat member, except self chats where the sender's row collapses
// to an immediate read. Unique on the pair; writes are insert-or-update so
// re-applying the same status is idempotent.
type MessageStatus struct {
	ID        uint        `gorm:"primarykey" json:"id"`
	MessageID uint        `gorm:"uniqueIndex:idx_status_message_user;not null" json:"messageId"`
	UserID    uint        `gorm:"uniqueIndex:idx_status_message_user;not null" json:"userId"`
	Status    StatusValue `gorm:"not null;size:10" json:"status"`
	StatusAt  time.Time   `gorm:"not null" json:"statusAt"`
}
