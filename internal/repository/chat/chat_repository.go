// File: internal/repository/chat/chat_repository.go
package chat

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

var (
	ErrChatNotFound = errors.New("chat not found")
	ErrNotMember    = errors.New("user is not a member of this chat")
)

type gormChatRepository struct {
	db *gorm.DB
}

func NewChatRepository(db *gorm.DB) ChatRepository {
	return &gormChatRepository{db: db}
}

func (r *gormChatRepository) Create(ctx context.Context, chat *domain.Chat, members []domain.ChatMember) (*domain.Chat, error) {
	if chat.Type == "" || chat.CreatedBy == 0 {
		return nil, errors.New("chat type and creator are required")
	}
	if len(members) == 0 {
		return nil, errors.New("a chat needs at least one member")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chat).Error; err != nil {
			return err
		}
		for i := range members {
			members[i].ChatID = chat.ID
		}
		return tx.Create(&members).Error
	})
	if err != nil {
		log.Printf("[ChatRepository] Database error during chat creation for user ID %d: %v", chat.CreatedBy, err)
		return nil, errors.New("database error creating chat")
	}
	return chat, nil
}

func (r *gormChatRepository) FindByID(ctx context.Context, chatID uint) (*domain.Chat, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).First(&chat, chatID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &chat, nil
}

// FindChatsForUser returns the user's chats, most recently active first.
func (r *gormChatRepository) FindChatsForUser(ctx context.Context, userID uint) ([]domain.Chat, error) {
	if userID == 0 {
		return nil, errors.New("invalid user ID")
	}

	var chats []domain.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_members ON chat_members.chat_id = chats.id").
		Where("chat_members.user_id = ?", userID).
		Order("chats.updated_at DESC, chats.id DESC").
		Find(&chats).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding chats for user ID %d: %v", userID, err)
		return nil, errors.New("database error fetching chats")
	}
	return chats, nil
}

func (r *gormChatRepository) FindMembers(ctx context.Context, chatID uint) ([]domain.ChatMember, error) {
	if chatID == 0 {
		return nil, errors.New("invalid chat ID")
	}

	var members []domain.ChatMember
	err := r.db.WithContext(ctx).Where("chat_id = ?", chatID).Find(&members).Error
	if err != nil {
		log.Printf("[ChatRepository] Database error finding members for chat ID %d: %v", chatID, err)
		return nil, errors.New("database error fetching chat members")
	}
	return members, nil
}

// MemberRole returns the member's role, or ErrNotMember when the user has no
// row in the chat. Callers use it both for authorization and role checks.
func (r *gormChatRepository) MemberRole(ctx context.Context, chatID, userID uint) (domain.MemberRole, error) {
	if chatID == 0 || userID == 0 {
		return "", errors.New("invalid chat ID or user ID")
	}

	var member domain.ChatMember
	err := r.db.WithContext(ctx).
		Where("chat_id = ? AND user_id = ?", chatID, userID).
		First(&member).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrNotMember
		}
		log.Printf("[ChatRepository] Database query error: %v", err)
		return "", errors.New("database query failed")
	}
	return member.Role, nil
}

func (r *gormChatRepository) FindPrivateChatBetween(ctx context.Context, userA, userB uint) (*domain.Chat, error) {
	if userA == 0 || userB == 0 {
		return nil, errors.New("invalid user IDs")
	}

	var chat domain.Chat
	err := r.db.WithContext(ctx).
		Joins("JOIN chat_members m1 ON m1.chat_id = chats.id AND m1.user_id = ?", userA).
		Joins("JOIN chat_members m2 ON m2.chat_id = chats.id AND m2.user_id = ?", userB).
		Where("chats.type = ?", domain.ChatTypePrivate).
		First(&chat).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChatNotFound
		}
		log.Printf("[ChatRepository] Database query error: %v", err)
		return nil, errors.New("database query failed")
	}
	return &chat, nil
}

func (r *gormChatRepository) AddMember(ctx context.Context, member *domain.ChatMember) error {
	if member.ChatID == 0 || member.UserID == 0 {
		return errors.New("invalid chat ID or user ID")
	}
	if member.Role == "" {
		member.Role = domain.RoleMember
	}

	if err := r.db.WithContext(ctx).Create(member).Error; err != nil {
		log.Printf("[ChatRepository] Database error adding member %d to chat %d: %v", member.UserID, member.ChatID, err)
		return errors.New("database error adding chat member")
	}
	return nil
}

// Delete removes the chat and everything hanging off it. Statuses and hides
// go first since they reference messages; sqlite has no FK cascade enabled
// here so the order matters.
func (r *gormChatRepository) Delete(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messageIDs := tx.Model(&domain.Message{}).Select("id").Where("chat_id = ?", chatID)
		if err := tx.Where("message_id IN (?)", messageIDs).Delete(&domain.MessageStatus{}).Error; err != nil {
			return err
		}
		if err := tx.Where("message_id IN (?)", messageIDs).Delete(&domain.MessageHide{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chatID).Delete(&domain.Message{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chat_id = ?", chatID).Delete(&domain.ChatMember{}).Error; err != nil {
			return err
		}
		return tx.Delete(&domain.Chat{}, chatID).Error
	})
	if err != nil {
		log.Printf("[ChatRepository] Database error deleting chat ID %d: %v", chatID, err)
		return errors.New("database error deleting chat")
	}
	return nil
}

func (r *gormChatRepository) TouchUpdatedAt(ctx context.Context, chatID uint) error {
	if chatID == 0 {
		return errors.New("invalid chat ID")
	}

	result := r.db.WithContext(ctx).
		Model(&domain.Chat{}).
		Where("id = ?", chatID).
		Update("updated_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if result.Error != nil {
		log.Printf("[ChatRepository] Database error updating timestamp for chat ID %d: %v", chatID, result.Error)
		return errors.New("database error updating chat timestamp")
	}
	if result.RowsAffected == 0 {
		return ErrChatNotFound
	}
	return nil
}
