// File: internal/services/user_services/device_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/devicetoken"
)

// DeviceService registers push tokens for a user's devices.
type DeviceService struct {
	tokenRepo devicetoken.DeviceTokenRepository
	logger    Logger
}

func NewDeviceService(tokenRepo devicetoken.DeviceTokenRepository, logger Logger) *DeviceService {
	return &DeviceService{tokenRepo: tokenRepo, logger: logger}
}

// RegisterDevice upserts the token; apps call it on every start so repeats
// are the normal case.
func (s *DeviceService) RegisterDevice(ctx context.Context, userID uint, token, platform string) error {
	if userID == 0 {
		return errors.New("user ID is required")
	}
	if token == "" {
		return errors.New("device token is required")
	}

	err := s.tokenRepo.Upsert(ctx, &domain.DeviceToken{
		UserID:   userID,
		Token:    token,
		Platform: platform,
	})
	if err != nil {
		s.logger.Error("device registration failed", "error", err, "user_id", userID)
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}
