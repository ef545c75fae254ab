package message

import (
	"context"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

// MessageRepository handles message data operations.
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) (*domain.Message, error)
	FindByID(ctx context.Context, messageID uint) (*domain.Message, error)
	// FindByChatID pages backwards through a chat's history, newest first,
	// skipping messages the viewer deleted "for me". beforeID == 0 means
	// start from the newest message.
	FindByChatID(ctx context.Context, chatID, viewerID uint, limit int, beforeID uint) ([]domain.Message, error)
	// LastVisibleMessage returns the newest message in the chat the viewer
	// has not hidden, or ErrMessageNotFound for an empty chat.
	LastVisibleMessage(ctx context.Context, chatID, viewerID uint) (*domain.Message, error)
	// Delete hard-deletes the message together with its status and hide rows.
	Delete(ctx context.Context, messageID uint) error
	// Hide records a "delete for me" for the viewer.
	Hide(ctx context.Context, messageID, userID uint) error
	// UpdateText edits the body. Data-layer support only; no route calls it.
	UpdateText(ctx context.Context, messageID uint, text string) error
}
