// File: internal/services/user_services/auth_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/auth"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/mail"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services/otp"
)

const otpLength = 6

var ErrInvalidCode = errors.New("invalid or expired verification code")

// AuthResult is what a successful OTP verification hands back to the client.
type AuthResult struct {
	User              *domain.User
	Tokens            *auth.TokenPair
	IsProfileComplete bool
}

// AuthService runs the emailed-OTP login flow: request a code, verify it,
// find-or-create the account, issue a token pair.
type AuthService struct {
	userRepo     user.UserRepository
	codeStore    otp.CodeStore
	mailService  mail.Service
	jwtSecretKey string
	otpTTL       time.Duration
	logger       Logger
}

func NewAuthService(userRepo user.UserRepository, codeStore otp.CodeStore, mailService mail.Service, jwtSecretKey string, otpTTL time.Duration, logger Logger) *AuthService {
	return &AuthService{
		userRepo:     userRepo,
		codeStore:    codeStore,
		mailService:  mailService,
		jwtSecretKey: jwtSecretKey,
		otpTTL:       otpTTL,
		logger:       logger,
	}
}

// RequestOTP generates a code for the address and mails it. It succeeds for
// unknown addresses too: the account is only created on verification, and
// the response never reveals whether an account exists.
func (s *AuthService) RequestOTP(ctx context.Context, email string) error {
	email = domain.NormalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return errors.New("a valid email address is required")
	}

	code, err := otp.GenerateCode(otpLength)
	if err != nil {
		s.logger.Error("OTP generation failed", "error", err)
		return fmt.Errorf("failed to generate code: %w", err)
	}

	if err := s.codeStore.Set(ctx, email, code, s.otpTTL); err != nil {
		s.logger.Error("failed to store OTP", "error", err, "email", maskEmail(email))
		return fmt.Errorf("failed to store code: %w", err)
	}

	if err := s.mailService.SendOTP(ctx, email, code); err != nil {
		s.logger.Error("OTP mail sending failed", "error", err, "email", maskEmail(email))
		return fmt.Errorf("failed to send mail: %w", err)
	}

	s.logger.Info("OTP sent", "email", maskEmail(email))
	return nil
}

// VerifyOTP consumes the code, finds or creates the account for the address
// and returns a fresh token pair plus the profile-completion flag.
func (s *AuthService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	email = domain.NormalizeEmail(email)
	if email == "" || len(code) != otpLength {
		return nil, ErrInvalidCode
	}

	ok, err := s.codeStore.Verify(ctx, email, code)
	if err != nil {
		s.logger.Error("OTP verification failed", "error", err, "email", maskEmail(email))
		return nil, fmt.Errorf("failed to verify code: %w", err)
	}
	if !ok {
		s.logger.Warn("OTP rejected", "email", maskEmail(email))
		return nil, ErrInvalidCode
	}

	u, err := s.userRepo.FindByEmail(ctx, email)
	if errors.Is(err, user.ErrUserNotFound) {
		u, err = s.userRepo.Create(ctx, &domain.User{Email: email})
		if err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		s.logger.Info("user created on first verification", "user_id", u.ID)
	} else if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	tokens, err := auth.GenerateTokenPair(u.ID, []byte(s.jwtSecretKey))
	if err != nil {
		s.logger.Error("token generation failed", "error", err, "user_id", u.ID)
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.Info("login successful", "user_id", u.ID, "profile_complete", u.IsProfileComplete())
	return &AuthResult{
		User:              u,
		Tokens:            tokens,
		IsProfileComplete: u.IsProfileComplete(),
	}, nil
}

// Refresh swaps a valid refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*auth.TokenPair, error) {
	userID, err := auth.ValidateRefreshToken(refreshToken, []byte(s.jwtSecretKey))
	if err != nil {
		return nil, auth.ErrInvalidToken
	}

	// The account must still exist; tokens for removed accounts die here.
	if _, err := s.userRepo.FindByID(ctx, userID); err != nil {
		return nil, auth.ErrInvalidToken
	}

	return auth.GenerateTokenPair(userID, []byte(s.jwtSecretKey))
}

// ValidateAccessToken is used by the HTTP middleware and the websocket
// upgrade to resolve the caller.
func (s *AuthService) ValidateAccessToken(token string) (uint, error) {
	return auth.ValidateAccessToken(token, []byte(s.jwtSecretKey))
}

// maskEmail keeps logs useful without writing full addresses into them.
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return "****"
	}
	return email[:2] + "****" + email[at:]
}
