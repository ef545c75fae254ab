// File: internal/services/user_services/auth_service_test.go
package user_services

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

const testSecret = "test-secret-key"

// memoryCodeStore is an in-process stand-in for the Redis OTP store.
type memoryCodeStore struct {
	codes map[string]string
}

func newMemoryCodeStore() *memoryCodeStore {
	return &memoryCodeStore{codes: make(map[string]string)}
}

func (s *memoryCodeStore) Set(ctx context.Context, key, code string, ttl time.Duration) error {
	s.codes[key] = code
	return nil
}

func (s *memoryCodeStore) Verify(ctx context.Context, key, code string) (bool, error) {
	stored, ok := s.codes[key]
	if !ok || stored != code {
		return false, nil
	}
	delete(s.codes, key)
	return true, nil
}

// recordingMailService captures the last code instead of sending mail.
type recordingMailService struct {
	to   string
	code string
}

func (m *recordingMailService) SendOTP(ctx context.Context, to, code string) error {
	m.to = to
	m.code = code
	return nil
}

func newAuthFixture(t *testing.T) (*AuthService, *memoryCodeStore, *recordingMailService) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.User{}))

	store := newMemoryCodeStore()
	mailer := &recordingMailService{}
	svc := NewAuthService(user.NewGormUserRepository(db), store, mailer,
		testSecret, 10*time.Minute, &services.NoOpLogger{})
	return svc, store, mailer
}

func TestRequestOTP_StoresAndMailsCode(t *testing.T) {
	ctx := context.Background()
	svc, store, mailer := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "Alice@Example.com "))

	// Address is normalized before it is used as the store key.
	code, ok := store.codes["alice@example.com"]
	require.True(t, ok)
	assert.Len(t, code, 6)
	assert.Equal(t, "alice@example.com", mailer.to)
	assert.Equal(t, code, mailer.code)
}

func TestRequestOTP_RejectsInvalidAddress(t *testing.T) {
	svc, _, _ := newAuthFixture(t)
	assert.Error(t, svc.RequestOTP(context.Background(), "not-an-email"))
	assert.Error(t, svc.RequestOTP(context.Background(), ""))
}

func TestVerifyOTP_CreatesAccountOnFirstLogin(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))
	result, err := svc.VerifyOTP(ctx, "alice@example.com", mailer.code)
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.False(t, result.IsProfileComplete, "fresh account has no name yet")
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	// The access token resolves back to the new account.
	userID, err := svc.ValidateAccessToken(result.Tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

func TestVerifyOTP_ReusesExistingAccount(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))
	first, err := svc.VerifyOTP(ctx, "alice@example.com", mailer.code)
	require.NoError(t, err)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))
	second, err := svc.VerifyOTP(ctx, "alice@example.com", mailer.code)
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
}

func TestVerifyOTP_RejectsBadCode(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))

	_, err := svc.VerifyOTP(ctx, "alice@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.VerifyOTP(ctx, "alice@example.com", "12345")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyOTP_CodeIsSingleUse(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))
	code := mailer.code

	_, err := svc.VerifyOTP(ctx, "alice@example.com", code)
	require.NoError(t, err)

	_, err = svc.VerifyOTP(ctx, "alice@example.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestRefresh_IssuesNewPair(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))
	result, err := svc.VerifyOTP(ctx, "alice@example.com", mailer.code)
	require.NoError(t, err)

	pair, err := svc.Refresh(ctx, result.Tokens.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)

	userID, err := svc.ValidateAccessToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, userID)
}

func TestRefresh_RejectsAccessTokenAsRefresh(t *testing.T) {
	ctx := context.Background()
	svc, _, mailer := newAuthFixture(t)

	require.NoError(t, svc.RequestOTP(ctx, "alice@example.com"))
	result, err := svc.VerifyOTP(ctx, "alice@example.com", mailer.code)
	require.NoError(t, err)

	// Token types are not interchangeable.
	_, err = svc.Refresh(ctx, result.Tokens.AccessToken)
	assert.Error(t, err)
	_, err = svc.ValidateAccessToken(result.Tokens.RefreshToken)
	assert.Error(t, err)
}
