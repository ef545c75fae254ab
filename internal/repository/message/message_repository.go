// File: internal/repository/message/message_repository.go
package message

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

var ErrMessageNotFound = errors.New("message not found")

const defaultPageSize = 50

type gormMessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) MessageRepository {
	return &gormMessageRepository{db: db}
}

func (r *gormMessageRepository) Create(ctx context.Context, message *domain.Message) (*domain.Message, error) {
	if message.ChatID == 0 || message.SenderID == 0 {
		return nil, errors.New("chat ID and sender ID are required")
	}
	if !message.HasContent() {
		return nil, errors.New("message has no content")
	}
	if message.Type == "" {
		message.Type = domain.MessageTypeText
	}

	if err := r.db.WithContext(ctx).Create(message).Error; err != nil {
		log.Printf("[MessageRepository] Database error creating message in chat %d: %v", message.ChatID, err)
		return nil, errors.New("database error creating message")
	}
	return message, nil
}

func (r *gormMessageRepository) FindByID(ctx context.Context, messageID uint) (*domain.Message, error) {
	if messageID == 0 {
		return nil, errors.New("invalid message ID")
	}

	var message domain.Message
	err := r.db.WithContext(ctx).First(&message, messageID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		log.Printf("[MessageRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &message, nil
}

func (r *gormMessageRepository) FindByChatID(ctx context.Context, chatID, viewerID uint, limit int, beforeID uint) ([]domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}
	if limit <= 0 || limit > 200 {
		limit = defaultPageSize
	}

	hidden := r.db.Model(&domain.MessageHide{}).Select("message_id").Where("user_id = ?", viewerID)
	query := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Where("id NOT IN (?)", hidden)
	if beforeID > 0 {
		query = query.Where("id < ?", beforeID)
	}

	var messages []domain.Message
	if err := query.Order("id DESC").Limit(limit).Find(&messages).Error; err != nil {
		log.Printf("[MessageRepository] Database error fetching messages for chat %d: %v", chatID, err)
		return nil, errors.New("database error fetching messages")
	}
	return messages, nil
}

func (r *gormMessageRepository) LastVisibleMessage(ctx context.Context, chatID, viewerID uint) (*domain.Message, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	hidden := r.db.Model(&domain.MessageHide{}).Select("message_id").Where("user_id = ?", viewerID)

	var message domain.Message
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Where("id NOT IN (?)", hidden).
		Order("id DESC").
		First(&message).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		log.Printf("[MessageRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &message, nil
}

func (r *gormMessageRepository) Delete(ctx context.Context, messageID uint) error {
	if messageID == 0 {
		return errors.New("invalid message ID")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", messageID).Delete(&domain.MessageStatus{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id = ?", messageID).Delete(&domain.MessageHide{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&domain.Message{}, messageID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrMessageNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrMessageNotFound) {
			return err
		}
		log.Printf("[MessageRepository] Database error deleting message ID %d: %v", messageID, err)
		return errors.New("database error deleting message")
	}
	return nil
}

// Hide is an upsert: hiding an already hidden message is a no-op.
func (r *gormMessageRepository) Hide(ctx context.Context, messageID, userID uint) error {
	if messageID == 0 || userID == 0 {
		return errors.New("invalid message ID or user ID")
	}

	hide := domain.MessageHide{MessageID: messageID, UserID: userID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&hide).Error
	if err != nil {
		log.Printf("[MessageRepository] Database error hiding message %d for user %d: %v", messageID, userID, err)
		return errors.New("database error hiding message")
	}
	return nil
}

func (r *gormMessageRepository) UpdateText(ctx context.Context, messageID uint, text string) error {
	if messageID == 0 {
		return errors.New("invalid message ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Message{}).
		Where("id = ?", messageID).
		Update("text", text)
	if result.Error != nil {
		log.Printf("[MessageRepository] Database error updating text for message ID %d: %v", messageID, result.Error)
		return errors.New("database error updating message")
	}
	if result.RowsAffected == 0 {
		return ErrMessageNotFound
	}
	return nil
}
