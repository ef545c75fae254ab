// File: internal/services/chat_services/message_service_test.go
package chat_services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/realtime"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/devicetoken"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/document"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/push"
)

// recordingEmitter captures emitted events per user.
type recordingEmitter struct {
	mu     sync.Mutex
	events map[uint][]realtime.Event
}

func newRecordingEmitter() *recordingEmitter {
	return &recordingEmitter{events: make(map[uint][]realtime.Event)}
}

func (e *recordingEmitter) EmitToUser(userID uint, event realtime.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.events[userID] = append(e.events[userID], event)
}

func (e *recordingEmitter) EmitToUsers(userIDs []uint, event realtime.Event) {
	for _, id := range userIDs {
		e.EmitToUser(id, event)
	}
}

func (e *recordingEmitter) eventsFor(userID uint) []realtime.Event {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]realtime.Event(nil), e.events[userID]...)
}

func (e *recordingEmitter) names(userID uint) []string {
	var names []string
	for _, ev := range e.eventsFor(userID) {
		names = append(names, ev.Name)
	}
	return names
}

// fakePushService records the tokens of the last send and can flag some of
// them as invalid.
type fakePushService struct {
	mu      sync.Mutex
	sent    [][]string
	invalid map[string]bool
}

func (f *fakePushService) SendToTokens(ctx context.Context, tokens []string, n push.Notification) ([]push.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]string(nil), tokens...))
	results := make([]push.Result, 0, len(tokens))
	for _, tok := range tokens {
		results = append(results, push.Result{Token: tok, Invalid: f.invalid[tok]})
	}
	return results, nil
}

func (f *fakePushService) sentTokens() [][]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent
}

type messageFixture struct {
	db      *gorm.DB
	svc     *MessageService
	emitter *recordingEmitter
	pusher  *fakePushService
	chatID  uint
}

// newMessageFixture builds a group of users 1..3 with a synchronous fan-out
// so tests can assert right after Send returns.
func newMessageFixture(t *testing.T) *messageFixture {
	t.Helper()
	ctx := context.Background()
	db := newTestDB(t)

	userRepo := user.NewGormUserRepository(db)
	for _, u := range []domain.User{
		{Email: "alice@example.com", Name: "Alice"},
		{Email: "bob@example.com", Name: "Bob"},
		{Email: "carol@example.com", Name: "Carol"},
	} {
		u := u
		_, err := userRepo.Create(ctx, &u)
		require.NoError(t, err)
	}

	chatRepo := chat.NewChatRepository(db)
	c, err := chatRepo.Create(ctx,
		&domain.Chat{Type: domain.ChatTypeGroup, Title: "team", CreatedBy: 1},
		[]domain.ChatMember{
			{UserID: 1, Role: domain.RoleAdmin},
			{UserID: 2, Role: domain.RoleMember},
			{UserID: 3, Role: domain.RoleMember},
		},
	)
	require.NoError(t, err)

	emitter := newRecordingEmitter()
	pusher := &fakePushService{invalid: map[string]bool{}}
	svc := NewMessageService(
		message.NewMessageRepository(db),
		chatRepo,
		userRepo,
		newStatusService(t, db),
		document.NewDocumentRepository(db),
		devicetoken.NewDeviceTokenRepository(db),
		pusher,
		emitter,
		&services.NoOpLogger{},
	)
	svc.fanOut = func(msg *domain.Message, view *MessageView, recipients []uint) {
		svc.fanOutNewMessage(msg, view, recipients)
	}

	return &messageFixture{db: db, svc: svc, emitter: emitter, pusher: pusher, chatID: c.ID}
}

func TestSend_PersistsAndFansOut(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	view, err := f.svc.Send(ctx, 1, SendInput{ChatID: f.chatID, Text: "hello team"})
	require.NoError(t, err)
	// Recipient rows are written at delivered, so that is what the sender
	// is told right away.
	assert.Equal(t, domain.StatusDelivered, view.Status)
	assert.True(t, view.IsSent)
	assert.Equal(t, "Alice", view.SenderName)

	// The sender only gets a chat list refresh, never their own message.
	assert.Equal(t, []string{realtime.EventChatListUpdate}, f.emitter.names(1))

	for _, recipientID := range []uint{2, 3} {
		names := f.emitter.names(recipientID)
		assert.Equal(t, []string{realtime.EventNewMessage, realtime.EventChatListUpdate}, names,
			"recipient %d", recipientID)

		payload := f.emitter.eventsFor(recipientID)[0].Payload.(realtime.NewMessagePayload)
		assert.Equal(t, "hello team", payload.Text)
		assert.Equal(t, uint(1), payload.SenderID)
		assert.False(t, payload.IsSent)

		listPayload := f.emitter.eventsFor(recipientID)[1].Payload.(realtime.ChatListUpdatePayload)
		assert.Equal(t, int64(1), listPayload.UnreadCount)
	}
}

func TestSend_RejectsEmptyMessage(t *testing.T) {
	f := newMessageFixture(t)

	_, err := f.svc.Send(context.Background(), 1, SendInput{ChatID: f.chatID})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestSend_RequiresMembership(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	u, err := user.NewGormUserRepository(f.db).Create(ctx, &domain.User{Email: "mallory@example.com", Name: "Mallory"})
	require.NoError(t, err)

	_, err = f.svc.Send(ctx, u.ID, SendInput{ChatID: f.chatID, Text: "let me in"})
	assert.ErrorIs(t, err, chat.ErrNotMember)
}

func TestSend_SelfChatReportsRead(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	c, err := chat.NewChatRepository(f.db).Create(ctx,
		&domain.Chat{Type: domain.ChatTypeSelf, CreatedBy: 1},
		[]domain.ChatMember{{UserID: 1, Role: domain.RoleAdmin}},
	)
	require.NoError(t, err)

	view, err := f.svc.Send(ctx, 1, SendInput{ChatID: c.ID, Text: "remember this"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, view.Status)

	var row domain.MessageStatus
	require.NoError(t, f.db.Where("message_id = ? AND user_id = ?", view.ID, 1).First(&row).Error)
	assert.Equal(t, domain.StatusRead, row.Status)
}

func TestSend_InitializesStatusLedger(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	view, err := f.svc.Send(ctx, 1, SendInput{ChatID: f.chatID, Text: "ledger check"})
	require.NoError(t, err)

	// The sender's own row stays at sent until recipients catch up; only
	// recipient rows start at delivered.
	var rows []domain.MessageStatus
	require.NoError(t, f.db.Where("message_id = ?", view.ID).Order("user_id").Find(&rows).Error)
	require.Len(t, rows, 3)
	assert.Equal(t, domain.StatusSent, rows[0].Status)
	assert.Equal(t, domain.StatusDelivered, rows[1].Status)
	assert.Equal(t, domain.StatusDelivered, rows[2].Status)
}

func TestSend_PushesAndPrunesDeadTokens(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	tokenRepo := devicetoken.NewDeviceTokenRepository(f.db)
	require.NoError(t, tokenRepo.Upsert(ctx, &domain.DeviceToken{UserID: 2, Token: "tok-bob", Platform: "android"}))
	require.NoError(t, tokenRepo.Upsert(ctx, &domain.DeviceToken{UserID: 3, Token: "tok-carol", Platform: "ios"}))
	f.pusher.invalid["tok-carol"] = true

	_, err := f.svc.Send(ctx, 1, SendInput{ChatID: f.chatID, Text: "ping"})
	require.NoError(t, err)

	sent := f.pusher.sentTokens()
	require.Len(t, sent, 1)
	assert.ElementsMatch(t, []string{"tok-bob", "tok-carol"}, sent[0])

	// The gateway flagged Carol's token; it must be gone.
	remaining, err := tokenRepo.FindByUserIDs(ctx, []uint{2, 3})
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "tok-bob", remaining[0].Token)
}

func TestMarkChatAsRead_NotifiesSenderWithAggregate(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	view, err := f.svc.Send(ctx, 1, SendInput{ChatID: f.chatID, Text: "hello"})
	require.NoError(t, err)

	require.NoError(t, f.svc.MarkChatAsRead(ctx, f.chatID, 2))

	// Carol has not read yet, so the sender sees delivered.
	events := f.emitter.eventsFor(1)
	last := events[len(events)-1]
	require.Equal(t, realtime.EventMessageStatusUpdate, last.Name)
	payload := last.Payload.(realtime.MessageStatusUpdatePayload)
	assert.Equal(t, view.ID, payload.MessageID)
	assert.Equal(t, domain.StatusDelivered, payload.Status)

	require.NoError(t, f.svc.MarkChatAsRead(ctx, f.chatID, 3))
	events = f.emitter.eventsFor(1)
	last = events[len(events)-1]
	require.Equal(t, realtime.EventMessageStatusUpdate, last.Name)
	assert.Equal(t, domain.StatusRead, last.Payload.(realtime.MessageStatusUpdatePayload).Status)
}

func TestDelete_ForMeHidesOnlyForCaller(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	view, err := f.svc.Send(ctx, 1, SendInput{ChatID: f.chatID, Text: "oops"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Delete(ctx, view.ID, 2, false))

	forBob, err := f.svc.ListMessages(ctx, f.chatID, 2, 0, 0)
	require.NoError(t, err)
	assert.Empty(t, forBob)

	forAlice, err := f.svc.ListMessages(ctx, f.chatID, 1, 0, 0)
	require.NoError(t, err)
	require.Len(t, forAlice, 1)
	assert.Equal(t, view.ID, forAlice[0].ID)
}

func TestDelete_ForEveryone(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	view, err := f.svc.Send(ctx, 1, SendInput{ChatID: f.chatID, Text: "retracted"})
	require.NoError(t, err)

	// Only the sender may delete for everyone.
	err = f.svc.Delete(ctx, view.ID, 2, true)
	assert.ErrorIs(t, err, ErrNotSender)

	require.NoError(t, f.svc.Delete(ctx, view.ID, 1, true))

	_, err = message.NewMessageRepository(f.db).FindByID(ctx, view.ID)
	assert.ErrorIs(t, err, message.ErrMessageNotFound)

	// Every member, sender included, hears about the removal.
	for _, memberID := range []uint{1, 2, 3} {
		events := f.emitter.eventsFor(memberID)
		last := events[len(events)-1]
		require.Equal(t, realtime.EventMessageDeleted, last.Name, "member %d", memberID)
		payload := last.Payload.(realtime.MessageDeletedPayload)
		assert.Equal(t, view.ID, payload.MessageID)
		assert.Equal(t, uint(1), payload.DeletedBy)
	}
}

func TestDelete_ForEveryoneReleasesDocument(t *testing.T) {
	ctx := context.Background()
	f := newMessageFixture(t)

	docRepo := document.NewDocumentRepository(f.db)
	doc, err := docRepo.Create(ctx,
		&domain.Document{UserID: 1, FileName: "plan.pdf", FileType: domain.MessageTypeDocument, StoragePath: "documents/1/x.pdf"})
	require.NoError(t, err)

	view, err := f.svc.Send(ctx, 1, SendInput{
		ChatID:     f.chatID,
		Type:       domain.MessageTypeDocument,
		FileName:   "plan.pdf",
		DocumentID: &doc.ID,
	})
	require.NoError(t, err)

	stored, err := docRepo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.RefCount)

	require.NoError(t, f.svc.Delete(ctx, view.ID, 1, true))

	stored, err = docRepo.FindByID(ctx, doc.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.RefCount)
}
