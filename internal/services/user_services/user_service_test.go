// File: internal/services/user_services/user_service_test.go
package user_services

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

func newUserFixture(t *testing.T) (*UserService, *domain.User) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	repo := user.NewGormUserRepository(db)
	u, err := repo.Create(context.Background(), &domain.User{Email: "alice@example.com"})
	require.NoError(t, err)
	return NewUserService(repo, &services.NoOpLogger{}), u
}

func TestUpdateProfile_CompletesProfile(t *testing.T) {
	ctx := context.Background()
	svc, u := newUserFixture(t)

	updated, err := svc.UpdateProfile(ctx, u.ID, "Alice", "+491701234567", "https://cdn.example.com/a.png")
	require.NoError(t, err)
	assert.Equal(t, "Alice", updated.Name)
	assert.Equal(t, "+491701234567", updated.Phone)
	assert.True(t, updated.IsProfileComplete())
}

func TestUpdateProfile_EmptyFieldsUntouched(t *testing.T) {
	ctx := context.Background()
	svc, u := newUserFixture(t)

	_, err := svc.UpdateProfile(ctx, u.ID, "Alice", "+491701234567", "")
	require.NoError(t, err)

	// A partial update with only a new name keeps the stored phone.
	updated, err := svc.UpdateProfile(ctx, u.ID, "Alice B", "", "")
	require.NoError(t, err)
	assert.Equal(t, "Alice B", updated.Name)
	assert.Equal(t, "+491701234567", updated.Phone)
}

func TestUpdateProfile_RejectsBadPhone(t *testing.T) {
	ctx := context.Background()
	svc, u := newUserFixture(t)

	_, err := svc.UpdateProfile(ctx, u.ID, "", "not a phone", "")
	assert.Error(t, err)
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	svc, _ := newUserFixture(t)

	_, err := svc.UpdateProfile(context.Background(), 999, "Ghost", "", "")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
