// File: internal/services/chat_services/message_service.go
package chat_services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/realtime"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/devicetoken"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/document"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/push"
)

var (
	ErrEmptyMessage = errors.New("message has no content")
	ErrNotSender    = errors.New("only the sender can do that")
)

// fanOutTimeout caps the detached delivery work per message. The sender's
// request has already returned by the time this budget applies.
const fanOutTimeout = 30 * time.Second

// SendInput is everything a client supplies for one outgoing message.
type SendInput struct {
	ChatID     uint
	Text       string
	Type       domain.MessageType
	FileURL    string
	FilePath   string
	FileName   string
	FileSize   int64
	DocumentID *uint
	ReplyToID  *uint
}

// MessageView is a message as one particular viewer sees it, status included.
type MessageView struct {
	ID         uint                   `json:"id"`
	ChatID     uint                   `json:"chatId"`
	SenderID   uint                   `json:"senderId"`
	SenderName string                 `json:"senderName"`
	Text       string                 `json:"text"`
	Type       domain.MessageType     `json:"type"`
	FileURL    string                 `json:"fileUrl,omitempty"`
	FileName   string                 `json:"fileName,omitempty"`
	FileSize   int64                  `json:"fileSize,omitempty"`
	IsSent     bool                   `json:"isSent"`
	Status     domain.StatusValue     `json:"status"`
	Timestamp  time.Time              `json:"timestamp"`
	ReplyTo    *realtime.ReplyPreview `json:"replyTo,omitempty"`
}

// MessageService owns the send pipeline, history reads, read receipts and
// deletion.
type MessageService struct {
	messageRepo     message.MessageRepository
	chatRepo        chat.ChatRepository
	userRepo        userFinder
	statusService   *StatusService
	documentRepo    document.DocumentRepository
	deviceTokenRepo devicetoken.DeviceTokenRepository
	pushService     push.Service
	emitter         Emitter
	logger          Logger

	// fanOut is swapped in tests to run synchronously.
	fanOut func(msg *domain.Message, view *MessageView, recipients []uint)
}

func NewMessageService(
	messageRepo message.MessageRepository,
	chatRepo chat.ChatRepository,
	userRepo userFinder,
	statusService *StatusService,
	documentRepo document.DocumentRepository,
	deviceTokenRepo devicetoken.DeviceTokenRepository,
	pushService push.Service,
	emitter Emitter,
	logger Logger,
) *MessageService {
	s := &MessageService{
		messageRepo:     messageRepo,
		chatRepo:        chatRepo,
		userRepo:        userRepo,
		statusService:   statusService,
		documentRepo:    documentRepo,
		deviceTokenRepo: deviceTokenRepo,
		pushService:     pushService,
		emitter:         emitter,
		logger:          logger,
	}
	s.fanOut = func(msg *domain.Message, view *MessageView, recipients []uint) {
		go s.fanOutNewMessage(msg, view, recipients)
	}
	return s
}

// Send persists a message, initializes its status ledger and returns the
// sender's view. Delivery to other members happens after return, detached
// from the request.
func (s *MessageService) Send(ctx context.Context, senderID uint, in SendInput) (*MessageView, error) {
	msg := &domain.Message{
		ChatID:     in.ChatID,
		SenderID:   senderID,
		Text:       in.Text,
		Type:       in.Type,
		FileURL:    in.FileURL,
		FilePath:   in.FilePath,
		FileName:   in.FileName,
		FileSize:   in.FileSize,
		DocumentID: in.DocumentID,
		ReplyToID:  in.ReplyToID,
	}
	if msg.Type == "" {
		msg.Type = domain.MessageTypeText
	}
	if !msg.HasContent() {
		return nil, ErrEmptyMessage
	}

	c, err := s.chatRepo.FindByID(ctx, in.ChatID)
	if err != nil {
		return nil, err
	}
	if _, err := s.chatRepo.MemberRole(ctx, c.ID, senderID); err != nil {
		return nil, err
	}
	members, err := s.chatRepo.FindMembers(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	if msg.DocumentID != nil {
		if err := s.documentRepo.IncrementRef(ctx, *msg.DocumentID); err != nil {
			return nil, err
		}
	}

	if msg, err = s.messageRepo.Create(ctx, msg); err != nil {
		return nil, err
	}
	if err := s.chatRepo.TouchUpdatedAt(ctx, c.ID); err != nil {
		s.logger.Warn("failed to bump chat timestamp", "chat_id", c.ID, "error", err)
	}

	// The sender's own row starts at sent; only a self chat, where the
	// sender is the sole reader, jumps straight to read. Recipients start
	// at delivered: the server has the message, and the unread count is
	// driven by these rows.
	senderInit := domain.StatusSent
	if c.IsSelf() {
		senderInit = domain.StatusRead
	}
	if err := s.statusService.CreateStatus(ctx, msg.ID, senderID, senderInit); err != nil {
		s.logger.Error("failed to init sender status", "message_id", msg.ID, "error", err)
	}

	recipients := make([]uint, 0, len(members))
	for _, m := range members {
		if m.UserID == senderID {
			continue
		}
		if err := s.statusService.CreateStatus(ctx, msg.ID, m.UserID, domain.StatusDelivered); err != nil {
			s.logger.Error("failed to init recipient status", "message_id", msg.ID, "recipient_id", m.UserID, "error", err)
		}
		recipients = append(recipients, m.UserID)
	}

	view := s.viewForSender(ctx, msg, senderID, len(recipients), c.IsSelf())
	s.fanOut(msg, view, recipients)
	return view, nil
}

func (s *MessageService) viewForSender(ctx context.Context, msg *domain.Message, senderID uint, recipientCount int, selfChat bool) *MessageView {
	view := &MessageView{
		ID:        msg.ID,
		ChatID:    msg.ChatID,
		SenderID:  senderID,
		Text:      msg.Text,
		Type:      msg.Type,
		FileURL:   msg.FileURL,
		FileName:  msg.FileName,
		FileSize:  msg.FileSize,
		IsSent:    true,
		Status:    domain.StatusSent,
		Timestamp: msg.CreatedAt,
	}
	switch {
	case recipientCount > 0:
		// Recipient rows were just written at delivered, so that is the
		// aggregate the sender would see on a reload.
		view.Status = domain.StatusDelivered
	case selfChat:
		// A self chat has no one left to deliver to.
		view.Status = domain.StatusRead
	}
	if sender, err := s.userRepo.FindByID(ctx, senderID); err == nil {
		view.SenderName = sender.Name
	}
	view.ReplyTo = s.replyPreview(ctx, msg.ReplyToID)
	return view
}

// replyPreview is best effort; a deleted parent just drops the preview.
func (s *MessageService) replyPreview(ctx context.Context, replyToID *uint) *realtime.ReplyPreview {
	if replyToID == nil {
		return nil
	}
	parent, err := s.messageRepo.FindByID(ctx, *replyToID)
	if err != nil {
		return nil
	}
	preview := &realtime.ReplyPreview{ID: parent.ID, Text: parent.Text}
	if sender, err := s.userRepo.FindByID(ctx, parent.SenderID); err == nil {
		preview.SenderName = sender.Name
	}
	return preview
}

// fanOutNewMessage delivers one message to every other member: websocket
// events for the session layer, push for everyone. Failures are isolated
// per recipient so one dead token or slow socket cannot stall the rest.
func (s *MessageService) fanOutNewMessage(msg *domain.Message, view *MessageView, recipients []uint) {
	ctx, cancel := context.WithTimeout(context.Background(), fanOutTimeout)
	defer cancel()

	s.emitter.EmitToUser(msg.SenderID, realtime.Event{
		Name: realtime.EventChatListUpdate,
		Payload: realtime.ChatListUpdatePayload{
			ChatID:          msg.ChatID,
			LastMessage:     previewText(msg),
			LastMessageTime: msg.CreatedAt,
			SenderName:      view.SenderName,
			UnreadCount:     0,
		},
	})

	var pushTargets []uint
	for _, recipientID := range recipients {
		if err := s.deliverToRecipient(ctx, msg, view, recipientID); err != nil {
			s.logger.Error("fan-out delivery failed", "message_id", msg.ID, "recipient_id", recipientID, "error", err)
			continue
		}
		pushTargets = append(pushTargets, recipientID)
	}

	if len(pushTargets) > 0 {
		s.pushNewMessage(ctx, msg, view, pushTargets)
	}
}

func (s *MessageService) deliverToRecipient(ctx context.Context, msg *domain.Message, view *MessageView, recipientID uint) error {
	unread, err := s.statusService.CountUnread(ctx, msg.ChatID, recipientID)
	if err != nil {
		return err
	}

	s.emitter.EmitToUser(recipientID, realtime.Event{
		Name: realtime.EventNewMessage,
		Payload: realtime.NewMessagePayload{
			ID:         msg.ID,
			Text:       msg.Text,
			Type:       msg.Type,
			FileURL:    msg.FileURL,
			FileName:   msg.FileName,
			Timestamp:  msg.CreatedAt,
			IsSent:     false,
			Status:     domain.StatusDelivered,
			SenderID:   msg.SenderID,
			SenderName: view.SenderName,
			ChatID:     msg.ChatID,
			ReplyTo:    view.ReplyTo,
		},
	})
	s.emitter.EmitToUser(recipientID, realtime.Event{
		Name: realtime.EventChatListUpdate,
		Payload: realtime.ChatListUpdatePayload{
			ChatID:          msg.ChatID,
			LastMessage:     previewText(msg),
			LastMessageTime: msg.CreatedAt,
			SenderName:      view.SenderName,
			UnreadCount:     unread,
		},
	})
	return nil
}

// pushNewMessage raises a notification on every registered device of the
// recipients and prunes tokens the gateway reports as dead.
func (s *MessageService) pushNewMessage(ctx context.Context, msg *domain.Message, view *MessageView, recipients []uint) {
	tokens, err := s.deviceTokenRepo.FindByUserIDs(ctx, recipients)
	if err != nil {
		s.logger.Error("failed to load device tokens", "message_id", msg.ID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	tokenStrings := make([]string, 0, len(tokens))
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	results, err := s.pushService.SendToTokens(ctx, tokenStrings, push.Notification{
		Title: view.SenderName,
		Body:  previewText(msg),
		Data: map[string]string{
			"chatId":    strconv.FormatUint(uint64(msg.ChatID), 10),
			"messageId": strconv.FormatUint(uint64(msg.ID), 10),
		},
	})
	if err != nil {
		s.logger.Error("push send failed", "message_id", msg.ID, "error", err)
		return
	}

	var dead []string
	for _, r := range results {
		if r.Invalid {
			dead = append(dead, r.Token)
		}
	}
	if len(dead) > 0 {
		if err := s.deviceTokenRepo.DeleteTokens(ctx, dead); err != nil {
			s.logger.Warn("failed to prune dead device tokens", "count", len(dead), "error", err)
		}
	}
}

// ListMessages pages through a chat's history for one viewer, newest first,
// with each message's status computed for that viewer.
func (s *MessageService) ListMessages(ctx context.Context, chatID, viewerID uint, limit int, beforeID uint) ([]MessageView, error) {
	if _, err := s.chatRepo.MemberRole(ctx, chatID, viewerID); err != nil {
		return nil, err
	}

	msgs, err := s.messageRepo.FindByChatID(ctx, chatID, viewerID, limit, beforeID)
	if err != nil {
		return nil, err
	}

	senderNames := map[uint]string{}
	views := make([]MessageView, 0, len(msgs))
	for i := range msgs {
		m := &msgs[i]
		status, err := s.statusService.StatusForViewer(ctx, m, viewerID)
		if err != nil {
			return nil, err
		}
		name, ok := senderNames[m.SenderID]
		if !ok {
			if sender, err := s.userRepo.FindByID(ctx, m.SenderID); err == nil {
				name = sender.Name
			}
			senderNames[m.SenderID] = name
		}
		views = append(views, MessageView{
			ID:         m.ID,
			ChatID:     m.ChatID,
			SenderID:   m.SenderID,
			SenderName: name,
			Text:       m.Text,
			Type:       m.Type,
			FileURL:    m.FileURL,
			FileName:   m.FileName,
			FileSize:   m.FileSize,
			IsSent:     m.SenderID == viewerID,
			Status:     status,
			Timestamp:  m.CreatedAt,
			ReplyTo:    s.replyPreview(ctx, m.ReplyToID),
		})
	}
	return views, nil
}

// MarkChatAsRead flips every unread message in the chat to read for the
// viewer and tells each affected sender the new aggregate.
func (s *MessageService) MarkChatAsRead(ctx context.Context, chatID, viewerID uint) error {
	if _, err := s.chatRepo.MemberRole(ctx, chatID, viewerID); err != nil {
		return err
	}

	messageIDs, err := s.statusService.MarkAllAsRead(ctx, chatID, viewerID)
	if err != nil {
		return err
	}

	for _, msgID := range messageIDs {
		msg, err := s.messageRepo.FindByID(ctx, msgID)
		if err != nil {
			continue
		}
		agg, err := s.statusService.AggregateForSender(ctx, msg)
		if err != nil {
			s.logger.Warn("failed to aggregate status", "message_id", msgID, "error", err)
			continue
		}
		s.emitter.EmitToUser(msg.SenderID, realtime.Event{
			Name: realtime.EventMessageStatusUpdate,
			Payload: realtime.MessageStatusUpdatePayload{
				MessageID: msg.ID,
				Status:    agg,
				ChatID:    chatID,
			},
		})
	}
	return nil
}

// Delete removes a message either for the caller alone or for everyone.
// For-everyone is sender only, drops the document reference if any, and is
// broadcast to all members.
func (s *MessageService) Delete(ctx context.Context, messageID, userID uint, forEveryone bool) error {
	msg, err := s.messageRepo.FindByID(ctx, messageID)
	if err != nil {
		return err
	}
	if _, err := s.chatRepo.MemberRole(ctx, msg.ChatID, userID); err != nil {
		return err
	}

	if !forEveryone {
		return s.messageRepo.Hide(ctx, messageID, userID)
	}

	if msg.SenderID != userID {
		return ErrNotSender
	}
	if err := s.messageRepo.Delete(ctx, messageID); err != nil {
		return err
	}
	if msg.DocumentID != nil {
		if err := s.documentRepo.DecrementRef(ctx, *msg.DocumentID); err != nil {
			s.logger.Warn("failed to release document reference", "document_id", *msg.DocumentID, "error", err)
		}
	}

	members, err := s.chatRepo.FindMembers(ctx, msg.ChatID)
	if err != nil {
		return nil
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	s.emitter.EmitToUsers(ids, realtime.Event{
		Name: realtime.EventMessageDeleted,
		Payload: realtime.MessageDeletedPayload{
			MessageID: messageID,
			ChatID:    msg.ChatID,
			DeletedBy: userID,
		},
	})
	return nil
}
