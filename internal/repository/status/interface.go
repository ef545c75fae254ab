package status

import (
	"context"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

// StatusRepository is the delivery ledger's storage: one row per
// (message, recipient) with insert-or-update semantics.
type StatusRepository interface {
	// Upsert inserts the row or overwrites the status of an existing
	// (message, user) pair. Re-applying the same status is idempotent.
	Upsert(ctx context.Context, st *domain.MessageStatus) error
	// FindByMessageAndUser returns (nil, nil) when no row exists; a missing
	// row is expected state, not an error.
	FindByMessageAndUser(ctx context.Context, messageID, userID uint) (*domain.MessageStatus, error)
	// FindRecipientStatuses returns all rows for the message except the
	// excluded user's (the sender, for aggregation).
	FindRecipientStatuses(ctx context.Context, messageID, excludeUserID uint) ([]domain.MessageStatus, error)
	// MarkAllAsRead flips every not-yet-read row of the user in the chat to
	// read and returns the affected message ids. Empty on a repeat call.
	MarkAllAsRead(ctx context.Context, chatID, userID uint) ([]uint, error)
	// CountUnread counts messages in the chat not sent by the user whose
	// status row for the user has not reached read.
	CountUnread(ctx context.Context, chatID, userID uint) (int64, error)
}
