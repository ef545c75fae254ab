package chat

import (
	"context"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

// ChatRepository handles chat and membership data operations.
type ChatRepository interface {
	// Create persists the chat and its initial member rows in one
	// transaction.
	Create(ctx context.Context, chat *domain.Chat, members []domain.ChatMember) (*domain.Chat, error)
	FindByID(ctx context.Context, chatID uint) (*domain.Chat, error)
	FindChatsForUser(ctx context.Context, userID uint) ([]domain.Chat, error)
	FindMembers(ctx context.Context, chatID uint) ([]domain.ChatMember, error)
	MemberRole(ctx context.Context, chatID, userID uint) (domain.MemberRole, error)
	// FindPrivateChatBetween returns the existing private chat for the
	// unordered user pair, or ErrChatNotFound.
	FindPrivateChatBetween(ctx context.Context, userA, userB uint) (*domain.Chat, error)
	AddMember(ctx context.Context, member *domain.ChatMember) error
	// Delete removes the chat, its members, its messages and their status
	// rows in one transaction (the Chat -> Message -> MessageStatus cascade).
	Delete(ctx context.Context, chatID uint) error
	TouchUpdatedAt(ctx context.Context, chatID uint) error
}
