// File: internal/domain/chat.go
package domain

import "time"

// ChatType distinguishes the three conversation shapes the app supports.
type ChatType string

const (
	ChatTypeSelf    ChatType = "self"    // single member, personal notes
	ChatTypePrivate ChatType = "private" // exactly two members
	ChatTypeGroup   ChatType = "group"   // one or more members with roles
)

// MemberRole is a member's role inside a group chat.
type MemberRole string

const (
	RoleAdmin  MemberRole = "admin"
	RoleMember MemberRole = "member"
)

// Chat represents a single conversation thread.
type Chat struct {
	ID        uint     `gorm:"primarykey" json:"id"`
	Type      ChatType `gorm:"not null;size:10;index" json:"type"`
	Title     string   `gorm:"size:100" json:"title"`
	AvatarURL string   `gorm:"size:512" json:"avatarUrl"`
	CreatedBy uint     `gorm:"not null" json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ChatMember links a user to a chat. The (chat, user) pair is unique; rows
// are removed only when the owning chat is deleted.
//
// NOTE: private-chat uniqueness per user pair is enforced by an existence
// check in the service, not by a canonical sorted-pair unique index. Two
// concurrent creations between the same pair can therefore still race.
type ChatMember struct {
	ID        uint       `gorm:"primarykey" json:"id"`
	ChatID    uint       `gorm:"uniqueIndex:idx_chat_member;not null;constraint:OnDelete:CASCADE" json:"chatId"`
	UserID    uint       `gorm:"uniqueIndex:idx_chat_member;not null" json:"userId"`
	Role      MemberRole `gorm:"not null;size:10;default:member" json:"role"`
	CreatedAt time.Time  `json:"createdAt"`
}

// IsGroup reports whether the chat carries group semantics (roles, title).
func (c *Chat) IsGroup() bool { return c.Type == ChatTypeGroup }

// IsSelf reports whether the chat is the owner's notes-to-self thread.
func (c *Chat) IsSelf() bool { return c.Type == ChatTypeSelf }
