// File: internal/services/chat_services/chat_service_test.go
package chat_services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

func newChatService(t *testing.T, db *gorm.DB) *ChatService {
	t.Helper()
	return NewChatService(
		chat.NewChatRepository(db),
		message.NewMessageRepository(db),
		user.NewGormUserRepository(db),
		newStatusService(t, db),
		&services.NoOpLogger{},
	)
}

func seedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	repo := user.NewGormUserRepository(db)
	for _, u := range []domain.User{
		{Email: "alice@example.com", Name: "Alice"},
		{Email: "bob@example.com", Name: "Bob"},
		{Email: "carol@example.com", Name: "Carol"},
	} {
		u := u
		_, err := repo.Create(context.Background(), &u)
		require.NoError(t, err)
	}
}

func TestCreateSelfChat_Singleton(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	first, err := svc.CreateSelfChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ChatTypeSelf, first.Type)

	second, err := svc.CreateSelfChat(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestCreatePrivateChat_ReusesExistingPair(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	first, err := svc.CreatePrivateChat(ctx, 1, "bob@example.com")
	require.NoError(t, err)

	// Opening from the other side lands in the same chat.
	second, err := svc.CreatePrivateChat(ctx, 2, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	// A different pair gets a different chat.
	third, err := svc.CreatePrivateChat(ctx, 1, "carol@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestCreatePrivateChat_RejectsSelf(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	_, err := svc.CreatePrivateChat(context.Background(), 1, "alice@example.com")
	assert.Error(t, err)
}

func TestCreatePrivateChat_UnknownEmail(t *testing.T) {
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	_, err := svc.CreatePrivateChat(context.Background(), 1, "nobody@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestCreateGroupChat_RolesAndDedup(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	// The creator appearing in memberIDs must not produce a duplicate row.
	c, err := svc.CreateGroupChat(ctx, 1, "team", []uint{1, 2, 3, 2})
	require.NoError(t, err)

	members, err := svc.Members(ctx, c.ID, 1)
	require.NoError(t, err)
	require.Len(t, members, 3)

	roles := map[uint]domain.MemberRole{}
	for _, m := range members {
		roles[m.UserID] = m.Role
	}
	assert.Equal(t, domain.RoleAdmin, roles[1])
	assert.Equal(t, domain.RoleMember, roles[2])
	assert.Equal(t, domain.RoleMember, roles[3])
}

func TestAddGroupMember_AdminOnly(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	c, err := svc.CreateGroupChat(ctx, 1, "team", []uint{2})
	require.NoError(t, err)

	err = svc.AddGroupMember(ctx, c.ID, 2, 3)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.AddGroupMember(ctx, c.ID, 1, 3))
	members, err := svc.Members(ctx, c.ID, 1)
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestMembers_RequiresMembership(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	c, err := svc.CreateGroupChat(ctx, 1, "team", []uint{2})
	require.NoError(t, err)

	_, err = svc.Members(ctx, c.ID, 3)
	assert.ErrorIs(t, err, chat.ErrNotMember)
}

func TestListChats_ResolvesPeerTitleAndUnread(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	c, err := svc.CreatePrivateChat(ctx, 1, "bob@example.com")
	require.NoError(t, err)

	msgRepo := message.NewMessageRepository(db)
	msg, err := msgRepo.Create(ctx,
		&domain.Message{ChatID: c.ID, SenderID: 1, Text: "hey bob", Type: domain.MessageTypeText})
	require.NoError(t, err)
	statusSvc := newStatusService(t, db)
	require.NoError(t, statusSvc.CreateStatus(ctx, msg.ID, 1, domain.StatusRead))
	require.NoError(t, statusSvc.CreateStatus(ctx, msg.ID, 2, domain.StatusDelivered))

	// Alice sees Bob's name, no unread.
	chats, err := svc.ListChats(ctx, 1)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Bob", chats[0].Title)
	assert.Equal(t, "hey bob", chats[0].LastMessage)
	assert.Equal(t, "Alice", chats[0].SenderName)
	assert.Zero(t, chats[0].UnreadCount)

	// Bob sees Alice's name and one unread message.
	chats, err = svc.ListChats(ctx, 2)
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Alice", chats[0].Title)
	assert.Equal(t, int64(1), chats[0].UnreadCount)
}

func TestDeleteChat_CascadesAndAuthorizes(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedUsers(t, db)
	svc := newChatService(t, db)

	c, err := svc.CreateGroupChat(ctx, 1, "team", []uint{2, 3})
	require.NoError(t, err)

	msgRepo := message.NewMessageRepository(db)
	_, err = msgRepo.Create(ctx,
		&domain.Message{ChatID: c.ID, SenderID: 1, Text: "going away", Type: domain.MessageTypeText})
	require.NoError(t, err)

	err = svc.DeleteChat(ctx, c.ID, 2)
	assert.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, svc.DeleteChat(ctx, c.ID, 1))

	var count int64
	require.NoError(t, db.Model(&domain.Message{}).Where("chat_id = ?", c.ID).Count(&count).Error)
	assert.Zero(t, count)

	chats, err := svc.ListChats(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, chats)
}
