// File: internal/services/chat_services/chat_service.go
package chat_services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
)

var (
	ErrForbidden = errors.New("not allowed")
	ErrNotMember = chat.ErrNotMember
)

// ChatSummary is one row of the chat list: identity plus the last-message
// preview and the viewer's unread count.
type ChatSummary struct {
	ChatID          uint            `json:"chatId"`
	Type            domain.ChatType `json:"type"`
	Title           string          `json:"title"`
	AvatarURL       string          `json:"avatarUrl,omitempty"`
	LastMessage     string          `json:"lastMessage"`
	LastMessageTime time.Time       `json:"lastMessageTime"`
	SenderName      string          `json:"senderName"`
	UnreadCount     int64           `json:"unreadCount"`
}

// MemberView is a chat member with the profile fields clients render.
type MemberView struct {
	UserID    uint              `json:"userId"`
	Name      string            `json:"name"`
	Email     string            `json:"email"`
	AvatarURL string            `json:"avatarUrl,omitempty"`
	Role      domain.MemberRole `json:"role"`
}

// ChatService covers chat creation, membership and the chat list.
type ChatService struct {
	chatRepo      chat.ChatRepository
	messageRepo   message.MessageRepository
	userRepo      user.UserRepository
	statusService *StatusService
	logger        Logger
}

func NewChatService(chatRepo chat.ChatRepository, messageRepo message.MessageRepository, userRepo user.UserRepository, statusService *StatusService, logger Logger) *ChatService {
	return &ChatService{
		chatRepo:      chatRepo,
		messageRepo:   messageRepo,
		userRepo:      userRepo,
		statusService: statusService,
		logger:        logger,
	}
}

// CreateSelfChat returns the user's notes-to-self chat, creating it on first
// use. A user has at most one.
func (s *ChatService) CreateSelfChat(ctx context.Context, userID uint) (*domain.Chat, error) {
	chats, err := s.chatRepo.FindChatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range chats {
		if chats[i].Type == domain.ChatTypeSelf {
			return &chats[i], nil
		}
	}

	return s.chatRepo.Create(ctx,
		&domain.Chat{Type: domain.ChatTypeSelf, CreatedBy: userID},
		[]domain.ChatMember{{UserID: userID, Role: domain.RoleAdmin}},
	)
}

// CreatePrivateChat opens (or returns) the 1:1 chat with the user behind the
// given email. Uniqueness per pair relies on this existence check; there is
// no database constraint, so two concurrent calls can still both create.
func (s *ChatService) CreatePrivateChat(ctx context.Context, creatorID uint, email string) (*domain.Chat, error) {
	peer, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if peer.ID == creatorID {
		return nil, errors.New("use a self chat to message yourself")
	}

	existing, err := s.chatRepo.FindPrivateChatBetween(ctx, creatorID, peer.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, chat.ErrChatNotFound) {
		return nil, err
	}

	created, err := s.chatRepo.Create(ctx,
		&domain.Chat{Type: domain.ChatTypePrivate, CreatedBy: creatorID},
		[]domain.ChatMember{
			{UserID: creatorID, Role: domain.RoleMember},
			{UserID: peer.ID, Role: domain.RoleMember},
		},
	)
	if err != nil {
		return nil, err
	}
	s.logger.Info("private chat created", "chat_id", created.ID, "creator_id", creatorID, "peer_id", peer.ID)
	return created, nil
}

// CreateGroupChat creates a group with the creator as admin and everyone
// else as member.
func (s *ChatService) CreateGroupChat(ctx context.Context, creatorID uint, title string, memberIDs []uint) (*domain.Chat, error) {
	if title == "" {
		return nil, errors.New("group title is required")
	}

	members := []domain.ChatMember{{UserID: creatorID, Role: domain.RoleAdmin}}
	seen := map[uint]bool{creatorID: true}
	for _, id := range memberIDs {
		if seen[id] {
			continue
		}
		if _, err := s.userRepo.FindByID(ctx, id); err != nil {
			return nil, fmt.Errorf("member %d: %w", id, err)
		}
		members = append(members, domain.ChatMember{UserID: id, Role: domain.RoleMember})
		seen[id] = true
	}

	created, err := s.chatRepo.Create(ctx,
		&domain.Chat{Type: domain.ChatTypeGroup, Title: title, CreatedBy: creatorID},
		members,
	)
	if err != nil {
		return nil, err
	}
	s.logger.Info("group chat created", "chat_id", created.ID, "creator_id", creatorID, "members", len(members))
	return created, nil
}

// AddGroupMember adds a user to a group; only admins may.
func (s *ChatService) AddGroupMember(ctx context.Context, chatID, adminID, newUserID uint) error {
	c, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return err
	}
	if !c.IsGroup() {
		return errors.New("members can only be added to group chats")
	}

	role, err := s.chatRepo.MemberRole(ctx, chatID, adminID)
	if err != nil {
		return err
	}
	if role != domain.RoleAdmin {
		return ErrForbidden
	}

	if _, err := s.userRepo.FindByID(ctx, newUserID); err != nil {
		return err
	}
	return s.chatRepo.AddMember(ctx, &domain.ChatMember{
		ChatID: chatID,
		UserID: newUserID,
		Role:   domain.RoleMember,
	})
}

// DeleteChat removes the chat and everything in it. Allowed for the creator
// or, in groups, any admin.
func (s *ChatService) DeleteChat(ctx context.Context, chatID, userID uint) error {
	c, err := s.chatRepo.FindByID(ctx, chatID)
	if err != nil {
		return err
	}

	role, err := s.chatRepo.MemberRole(ctx, chatID, userID)
	if err != nil {
		return err
	}
	if c.CreatedBy != userID && role != domain.RoleAdmin {
		return ErrForbidden
	}

	if err := s.chatRepo.Delete(ctx, chatID); err != nil {
		return err
	}
	s.logger.Info("chat deleted", "chat_id", chatID, "user_id", userID)
	return nil
}

// RequireMember authorizes chat access before any content is read.
func (s *ChatService) RequireMember(ctx context.Context, chatID, userID uint) (domain.MemberRole, error) {
	return s.chatRepo.MemberRole(ctx, chatID, userID)
}

// Members lists a chat's members; callers must be members themselves.
func (s *ChatService) Members(ctx context.Context, chatID, requesterID uint) ([]MemberView, error) {
	if _, err := s.chatRepo.MemberRole(ctx, chatID, requesterID); err != nil {
		return nil, err
	}

	members, err := s.chatRepo.FindMembers(ctx, chatID)
	if err != nil {
		return nil, err
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]domain.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	views := make([]MemberView, 0, len(members))
	for _, m := range members {
		u := byID[m.UserID]
		views = append(views, MemberView{
			UserID:    m.UserID,
			Name:      u.Name,
			Email:     u.Email,
			AvatarURL: u.AvatarURL,
			Role:      m.Role,
		})
	}
	return views, nil
}

// ListChats builds the viewer's chat list: title resolution for private
// chats, last-message preview and a live unread count per chat.
func (s *ChatService) ListChats(ctx context.Context, userID uint) ([]ChatSummary, error) {
	chats, err := s.chatRepo.FindChatsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	summaries := make([]ChatSummary, 0, len(chats))
	for i := range chats {
		summary, err := s.summarize(ctx, &chats[i], userID)
		if err != nil {
			// One broken chat must not take the whole list down.
			s.logger.Warn("failed to summarize chat", "chat_id", chats[i].ID, "error", err)
			continue
		}
		summaries = append(summaries, *summary)
	}
	return summaries, nil
}

func (s *ChatService) summarize(ctx context.Context, c *domain.Chat, viewerID uint) (*ChatSummary, error) {
	summary := &ChatSummary{
		ChatID:    c.ID,
		Type:      c.Type,
		Title:     c.Title,
		AvatarURL: c.AvatarURL,
	}

	if c.Type == domain.ChatTypePrivate || c.Type == domain.ChatTypeSelf {
		if err := s.resolvePeerTitle(ctx, c, viewerID, summary); err != nil {
			return nil, err
		}
	}

	last, err := s.messageRepo.LastVisibleMessage(ctx, c.ID, viewerID)
	if err != nil && !errors.Is(err, message.ErrMessageNotFound) {
		return nil, err
	}
	if last != nil {
		summary.LastMessage = previewText(last)
		summary.LastMessageTime = last.CreatedAt
		if sender, err := s.userRepo.FindByID(ctx, last.SenderID); err == nil {
			summary.SenderName = sender.Name
		}
	}

	unread, err := s.statusService.CountUnread(ctx, c.ID, viewerID)
	if err != nil {
		return nil, err
	}
	summary.UnreadCount = unread
	return summary, nil
}

// resolvePeerTitle names a private chat after the other member and a self
// chat after the owner.
func (s *ChatService) resolvePeerTitle(ctx context.Context, c *domain.Chat, viewerID uint, summary *ChatSummary) error {
	members, err := s.chatRepo.FindMembers(ctx, c.ID)
	if err != nil {
		return err
	}
	peerID := viewerID
	for _, m := range members {
		if m.UserID != viewerID {
			peerID = m.UserID
			break
		}
	}
	peer, err := s.userRepo.FindByID(ctx, peerID)
	if err != nil {
		return err
	}
	summary.Title = peer.Name
	if summary.Title == "" {
		summary.Title = peer.Email
	}
	summary.AvatarURL = peer.AvatarURL
	return nil
}

// previewText is what the chat list shows for the last message.
func previewText(m *domain.Message) string {
	if m.Text != "" {
		return m.Text
	}
	switch m.Type {
	case domain.MessageTypeImage:
		return "📷 Photo"
	case domain.MessageTypeVideo:
		return "🎥 Video"
	case domain.MessageTypeAudio:
		return "🎵 Audio"
	case domain.MessageTypeDocument:
		return "📄 " + m.FileName
	default:
		return m.FileName
	}
}
