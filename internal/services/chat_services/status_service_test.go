// File: internal/services/chat_services/status_service_test.go
package chat_services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/chat"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/message"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/status"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Chat{},
		&domain.ChatMember{},
		&domain.Message{},
		&domain.MessageStatus{},
		&domain.MessageHide{},
		&domain.Document{},
		&domain.DeviceToken{},
	))
	return db
}

func newStatusService(t *testing.T, db *gorm.DB) *StatusService {
	t.Helper()
	return NewStatusService(status.NewStatusRepository(db), chat.NewChatRepository(db), &services.NoOpLogger{})
}

// seedGroupMessage creates a 3-member group with one message from user 1 and
// the sender's own sent row, mirroring what the send pipeline writes.
func seedGroupMessage(t *testing.T, db *gorm.DB) (*domain.Message, *StatusService) {
	t.Helper()
	ctx := context.Background()

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

	msg, err := message.NewMessageRepository(db).Create(ctx,
		&domain.Message{ChatID: c.ID, SenderID: 1, Text: "hello", Type: domain.MessageTypeText})
	require.NoError(t, err)

	svc := newStatusService(t, db)
	require.NoError(t, svc.CreateStatus(ctx, msg.ID, 1, domain.StatusSent))
	return msg, svc
}

func TestAggregateForSender_Progression(t *testing.T) {
	ctx := context.Background()
	msg, svc := seedGroupMessage(t, newTestDB(t))

	// No recipient rows yet.
	agg, err := svc.AggregateForSender(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, agg)

	// One recipient delivered: the whole message shows delivered.
	require.NoError(t, svc.UpdateStatus(ctx, msg.ID, 2, domain.StatusDelivered))
	agg, err = svc.AggregateForSender(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, agg)

	// One read, one still missing: still delivered.
	require.NoError(t, svc.UpdateStatus(ctx, msg.ID, 2, domain.StatusRead))
	agg, err = svc.AggregateForSender(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, agg)

	// Everyone read.
	require.NoError(t, svc.UpdateStatus(ctx, msg.ID, 3, domain.StatusRead))
	agg, err = svc.AggregateForSender(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, agg)
}

func TestAggregateForSender_NoRecipients(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	chatRepo := chat.NewChatRepository(db)
	c, err := chatRepo.Create(ctx,
		&domain.Chat{Type: domain.ChatTypeSelf, CreatedBy: 1},
		[]domain.ChatMember{{UserID: 1, Role: domain.RoleAdmin}},
	)
	require.NoError(t, err)

	msg, err := message.NewMessageRepository(db).Create(ctx,
		&domain.Message{ChatID: c.ID, SenderID: 1, Text: "note", Type: domain.MessageTypeText})
	require.NoError(t, err)

	svc := newStatusService(t, db)
	require.NoError(t, svc.CreateStatus(ctx, msg.ID, 1, domain.StatusRead))

	agg, err := svc.AggregateForSender(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSent, agg)
}

func TestCreateStatus_UpsertIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	msg, svc := seedGroupMessage(t, db)

	require.NoError(t, svc.CreateStatus(ctx, msg.ID, 2, domain.StatusDelivered))
	require.NoError(t, svc.CreateStatus(ctx, msg.ID, 2, domain.StatusRead))

	var count int64
	require.NoError(t, db.Model(&domain.MessageStatus{}).
		Where("message_id = ? AND user_id = ?", msg.ID, 2).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	st, err := svc.StatusForViewer(ctx, msg, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, st)
}

func TestStatusForViewer_MissingRowDefaultsToDelivered(t *testing.T) {
	ctx := context.Background()
	msg, svc := seedGroupMessage(t, newTestDB(t))

	// User 3 has no ledger row for this message at all.
	st, err := svc.StatusForViewer(ctx, msg, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, st)
}

func TestMarkAllAsRead_Idempotent(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	msg, svc := seedGroupMessage(t, db)

	require.NoError(t, svc.CreateStatus(ctx, msg.ID, 2, domain.StatusDelivered))

	ids, err := svc.MarkAllAsRead(ctx, msg.ChatID, 2)
	require.NoError(t, err)
	assert.Equal(t, []uint{msg.ID}, ids)

	st, err := svc.StatusForViewer(ctx, msg, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRead, st)

	// Second call finds nothing left to flip.
	ids, err = svc.MarkAllAsRead(ctx, msg.ChatID, 2)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestCountUnread_ExcludesOwnMessages(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	msg, svc := seedGroupMessage(t, db)

	require.NoError(t, svc.CreateStatus(ctx, msg.ID, 2, domain.StatusDelivered))

	// The sender's own message never counts against them.
	unread, err := svc.CountUnread(ctx, msg.ChatID, 1)
	require.NoError(t, err)
	assert.Zero(t, unread)

	unread, err = svc.CountUnread(ctx, msg.ChatID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	_, err = svc.MarkAllAsRead(ctx, msg.ChatID, 2)
	require.NoError(t, err)
	unread, err = svc.CountUnread(ctx, msg.ChatID, 2)
	require.NoError(t, err)
	assert.Zero(t, unread)
}
