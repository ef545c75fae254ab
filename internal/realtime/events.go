// File: internal/realtime/events.go
package realtime

import (
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

// Server-to-client event names.
const (
	EventNewMessage          = "new_message"
	EventChatListUpdate      = "chat_list_update"
	EventMessageStatusUpdate = "message_status_update"
	EventMessageDeleted      = "message_deleted"
	EventUserTyping          = "user_typing"
)

// Event is one frame on the wire: a name and its payload.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// NewMessagePayload mirrors the fields the mobile clients render from.
type NewMessagePayload struct {
	ID         uint               `json:"id"`
	Text       string             `json:"text"`
	Type       domain.MessageType `json:"type"`
	FileURL    string             `json:"fileUrl,omitempty"`
	FileName   string             `json:"fileName,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
	IsSent     bool               `json:"isSent"`
	Status     domain.StatusValue `json:"status"`
	SenderID   uint               `json:"senderId"`
	SenderName string             `json:"senderName"`
	ChatID     uint               `json:"chatId"`
	ReplyTo    *ReplyPreview      `json:"replyTo,omitempty"`
}

// ReplyPreview echoes the quoted message inside a reply.
type ReplyPreview struct {
	ID         uint   `json:"id"`
	Text       string `json:"text"`
	SenderName string `json:"senderName"`
}

// ChatListUpdatePayload carries the chat-list row refresh: preview of the
// last message plus the receiving user's unread count, computed at emission
// time.
type ChatListUpdatePayload struct {
	ChatID          uint      `json:"chatId"`
	LastMessage     string    `json:"lastMessage"`
	LastMessageTime time.Time `json:"lastMessageTime"`
	SenderName      string    `json:"senderName"`
	UnreadCount     int64     `json:"unreadCount"`
}

// MessageStatusUpdatePayload tells the sender their aggregate tick state
// changed.
type MessageStatusUpdatePayload struct {
	MessageID uint               `json:"messageId"`
	Status    domain.StatusValue `json:"status"`
	ChatID    uint               `json:"chatId"`
}

// MessageDeletedPayload is broadcast for "delete for everyone" only.
type MessageDeletedPayload struct {
	MessageID uint `json:"messageId"`
	ChatID    uint `json:"chatId"`
	DeletedBy uint `json:"deletedBy"`
}

// UserTypingPayload is the ephemeral, room-scoped typing indicator.
type UserTypingPayload struct {
	UserID   uint `json:"userId"`
	IsTyping bool `json:"isTyping"`
}

// ClientEvent is a client-originated frame: join/leave a chat room, typing,
// clear unread.
type ClientEvent struct {
	Action   string `json:"action"`
	ChatID   uint   `json:"chatId"`
	IsTyping bool   `json:"isTyping"`
}

// Client-to-server actions.
const (
	ActionJoinChat    = "joinChat"
	ActionLeaveChat   = "leaveChat"
	ActionTyping      = "typing"
	ActionClearUnread = "clearUnread"
)
