package chat_services

import (
	"context"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/realtime"
)

// Logger interface for all chat services.
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// Emitter is the slice of the real-time hub the pipelines need. Tests swap
// in a recorder.
type Emitter interface {
	EmitToUser(userID uint, event realtime.Event)
	EmitToUsers(userIDs []uint, event realtime.Event)
}

// userFinder is the read-only corner of the user repository the message
// pipeline needs for sender names.
type userFinder interface {
	FindByID(ctx context.Context, id uint) (*domain.User, error)
}

// memberLister is the corner of the chat repository the status ledger needs
// to know how many recipients a message has.
type memberLister interface {
	FindMembers(ctx context.Context, chatID uint) ([]domain.ChatMember, error)
}
