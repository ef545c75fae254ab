// File: internal/repository/status/status_repository.go
package status

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

type gormStatusRepository struct {
	db *gorm.DB
}

func NewStatusRepository(db *gorm.DB) StatusRepository {
	return &gormStatusRepository{db: db}
}

func (r *gormStatusRepository) Upsert(ctx context.Context, st *domain.MessageStatus) error {
	if st.MessageID == 0 || st.UserID == 0 {
		return errors.New("message ID and user ID are required")
	}
	if st.Status.Rank() == 0 {
		return errors.New("invalid status value")
	}
	if st.StatusAt.IsZero() {
		st.StatusAt = time.Now().UTC()
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "status_at"}),
		}).
		Create(st).Error
	if err != nil {
		log.Printf("[StatusRepository] Database error upserting status for message %d user %d: %v", st.MessageID, st.UserID, err)
		return errors.New("database error writing message status")
	}
	return nil
}

func (r *gormStatusRepository) FindByMessageAndUser(ctx context.Context, messageID, userID uint) (*domain.MessageStatus, error) {
	if messageID == 0 || userID == 0 {
		return nil, errors.New("invalid message ID or user ID")
	}

	var st domain.MessageStatus
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id = ?", messageID, userID).
		First(&st).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		log.Printf("[StatusRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &st, nil
}

func (r *gormStatusRepository) FindRecipientStatuses(ctx context.Context, messageID, excludeUserID uint) ([]domain.MessageStatus, error) {
	if messageID == 0 {
		return nil, errors.New("invalid message ID")
	}

	var statuses []domain.MessageStatus
	err := r.db.WithContext(ctx).
		Where("message_id = ? AND user_id <> ?", messageID, excludeUserID).
		Find(&statuses).Error
	if err != nil {
		log.Printf("[StatusRepository] Database error fetching statuses for message %d: %v", messageID, err)
		return nil, errors.New("database error fetching message statuses")
	}
	return statuses, nil
}

// MarkAllAsRead selects the affected ids first, then updates them. The two
// steps are not atomic; a status arriving in between is absorbed by the
// upsert semantics on the next write.
func (r *gormStatusRepository) MarkAllAsRead(ctx context.Context, chatID, userID uint) ([]uint, error) {
	if chatID == 0 || userID == 0 {
		return nil, errors.New("invalid chat ID or user ID")
	}

	var messageIDs []uint
	err := r.db.WithContext(ctx).
		Model(&domain.MessageStatus{}).
		Joins("JOIN messages ON messages.id = message_statuses.message_id").
		Where("messages.chat_id = ? AND message_statuses.user_id = ? AND message_statuses.status <> ?",
			chatID, userID, domain.StatusRead).
		Where("messages.sender_id <> ?", userID).
		Pluck("message_statuses.message_id", &messageIDs).Error
	if err != nil {
		log.Printf("[StatusRepository] Database error selecting unread rows for chat %d user %d: %v", chatID, userID, err)
		return nil, errors.New("database error marking chat as read")
	}
	if len(messageIDs) == 0 {
		return nil, nil
	}

	err = r.db.WithContext(ctx).
		Model(&domain.MessageStatus{}).
		Where("message_id IN ? AND user_id = ?", messageIDs, userID).
		Updates(map[string]interface{}{
			"status":    domain.StatusRead,
			"status_at": time.Now().UTC(),
		}).Error
	if err != nil {
		log.Printf("[StatusRepository] Database error marking chat %d as read for user %d: %v", chatID, userID, err)
		return nil, errors.New("database error marking chat as read")
	}
	return messageIDs, nil
}

func (r *gormStatusRepository) CountUnread(ctx context.Context, chatID, userID uint) (int64, error) {
	if chatID == 0 || userID == 0 {
		return 0, errors.New("invalid chat ID or user ID")
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.MessageStatus{}).
		Joins("JOIN messages ON messages.id = message_statuses.message_id").
		Where("messages.chat_id = ? AND message_statuses.user_id = ? AND message_statuses.status <> ?",
			chatID, userID, domain.StatusRead).
		Where("messages.sender_id <> ?", userID).
		Count(&count).Error
	if err != nil {
		log.Printf("[StatusRepository] Database error counting unread for chat %d user %d: %v", chatID, userID, err)
		return 0, errors.New("database error counting unread messages")
	}
	return count, nil
}
