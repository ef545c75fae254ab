// File: internal/domain/message.go
package domain

import "time"

// MessageType mirrors the attachment kind the client rendered the message as.
type MessageType string

const (
	MessageTypeText     MessageType = "text"
	MessageTypeImage    MessageType = "image"
	MessageTypeVideo    MessageType = "video"
	MessageTypeAudio    MessageType = "audio"
	MessageTypeDocument MessageType = "document"
)

// Message is a single message within a chat. Messages are immutable except
// for text edits (data-layer only) and deletion; their lifetime is bounded by
// the owning chat.
type Message struct {
	ID         uint        `gorm:"primarykey" json:"id"`
	ChatID     uint        `gorm:"not null;index" json:"chatId"`
	SenderID   uint        `gorm:"not null;index" json:"senderId"`
	Text       string      `gorm:"type:text" json:"text"`
	Type       MessageType `gorm:"not null;size:10;default:text" json:"type"`
	FileURL    string      `gorm:"size:512" json:"fileUrl"`
	FilePath   string      `gorm:"size:512" json:"-"`
	FileName   string      `gorm:"size:255" json:"fileName"`
	FileSize   int64       `json:"fileSize"`
	DocumentID *uint       `gorm:"index" json:"documentId,omitempty"`
	ReplyToID  *uint       `gorm:"index" json:"replyToId,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// HasContent reports whether the message carries anything worth storing:
// text, an uploaded attachment, or a reference to an existing document.
func (m *Message) HasContent() bool {
	return m.Text != "" || m.FileURL != "" || m.DocumentID != nil
}

// MessageHide records a "delete for me": the message stays for everyone else
// but is filtered out of this user's history reads.
type MessageHide struct {
	ID        uint      `gorm:"primarykey"`
	MessageID uint      `gorm:"uniqueIndex:idx_hide_message_user;not null"`
	UserID    uint      `gorm:"uniqueIndex:idx_hide_message_user;not null"`
	CreatedAt time.Time
}
