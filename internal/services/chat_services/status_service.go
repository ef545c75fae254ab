// File: internal/services/chat_services/status_service.go
package chat_services

import (
	"context"
	"fmt"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/status"
)

// StatusService is the delivery ledger: it tracks per-recipient tick state
// and computes the aggregate the sender sees. The aggregate is recomputed
// from current rows on every call; nothing here is cached.
type StatusService struct {
	statusRepo status.StatusRepository
	members    memberLister
	logger     Logger
}

func NewStatusService(statusRepo status.StatusRepository, members memberLister, logger Logger) *StatusService {
	return &StatusService{statusRepo: statusRepo, members: members, logger: logger}
}

// CreateStatus writes the initial row for one (message, recipient). Upsert:
// calling it again with a different status equals a single UpdateStatus.
func (s *StatusService) CreateStatus(ctx context.Context, messageID, userID uint, value domain.StatusValue) error {
	return s.statusRepo.Upsert(ctx, &domain.MessageStatus{
		MessageID: messageID,
		UserID:    userID,
		Status:    value,
		StatusAt:  time.Now().UTC(),
	})
}

// UpdateStatus moves a single recipient's status forward. The ledger does
// not enforce monotonicity; callers must not pass a lower value than the
// one currently stored.
func (s *StatusService) UpdateStatus(ctx context.Context, messageID, userID uint, value domain.StatusValue) error {
	return s.CreateStatus(ctx, messageID, userID, value)
}

// MarkAllAsRead flips everything unread for the user in the chat and
// returns the affected message ids so the caller can fan the change out.
// Idempotent: the second call returns an empty set.
func (s *StatusService) MarkAllAsRead(ctx context.Context, chatID, userID uint) ([]uint, error) {
	ids, err := s.statusRepo.MarkAllAsRead(ctx, chatID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to mark chat as read: %w", err)
	}
	if len(ids) > 0 {
		s.logger.Debug("marked messages as read", "chat_id", chatID, "user_id", userID, "count", len(ids))
	}
	return ids, nil
}

// AggregateForSender computes the sender's displayed tick from all
// non-sender rows:
//
//	read:      every recipient has read
//	delivered: at least one recipient progressed past sent, but not all read
//	sent:      nobody progressed, or there are zero recipients
//
// The aggregate is computed against the chat's current membership, not just
// the rows on file: a recipient without a row counts as still at sent, so
// "all read" requires a read row from every recipient.
func (s *StatusService) AggregateForSender(ctx context.Context, msg *domain.Message) (domain.StatusValue, error) {
	rows, err := s.statusRepo.FindRecipientStatuses(ctx, msg.ID, msg.SenderID)
	if err != nil {
		return "", fmt.Errorf("failed to load recipient statuses: %w", err)
	}
	members, err := s.members.FindMembers(ctx, msg.ChatID)
	if err != nil {
		return "", fmt.Errorf("failed to load chat members: %w", err)
	}
	recipientCount := 0
	for _, m := range members {
		if m.UserID != msg.SenderID {
			recipientCount++
		}
	}
	if recipientCount == 0 || len(rows) == 0 {
		return domain.StatusSent, nil
	}

	allRead := len(rows) >= recipientCount
	anyProgressed := false
	for _, row := range rows {
		if row.Status != domain.StatusRead {
			allRead = false
		}
		if row.Status.Rank() >= domain.StatusDelivered.Rank() {
			anyProgressed = true
		}
	}

	switch {
	case allRead:
		return domain.StatusRead, nil
	case anyProgressed:
		return domain.StatusDelivered, nil
	default:
		return domain.StatusSent, nil
	}
}

// StatusForViewer resolves what one viewer should see: the sender gets the
// aggregate, everyone else their own row. A missing row defaults to
// delivered; the recipient is looking at the message, so under-reporting
// beats an error or a phantom "sent".
func (s *StatusService) StatusForViewer(ctx context.Context, msg *domain.Message, viewerID uint) (domain.StatusValue, error) {
	if viewerID == msg.SenderID {
		return s.AggregateForSender(ctx, msg)
	}

	row, err := s.statusRepo.FindByMessageAndUser(ctx, msg.ID, viewerID)
	if err != nil {
		return "", fmt.Errorf("failed to load viewer status: %w", err)
	}
	if row == nil {
		return domain.StatusDelivered, nil
	}
	return row.Status, nil
}

// CountUnread returns the viewer's live unread count for a chat.
func (s *StatusService) CountUnread(ctx context.Context, chatID, userID uint) (int64, error) {
	return s.statusRepo.CountUnread(ctx, chatID, userID)
}
