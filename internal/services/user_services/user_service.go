// File: internal/services/user_services/user_service.go
package user_services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/repository/user"
)

var phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// UserService covers profile reads and updates.
type UserService struct {
	userRepo user.UserRepository
	logger   Logger
}

func NewUserService(userRepo user.UserRepository, logger Logger) *UserService {
	return &UserService{userRepo: userRepo, logger: logger}
}

func (s *UserService) GetByID(ctx context.Context, userID uint) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userID)
}

// UpdateProfile sets name, phone and avatar. Empty fields are left untouched
// so clients can update a single field without resending the rest.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, name, phone, avatarURL string) (*domain.User, error) {
	u, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if name = strings.TrimSpace(name); name != "" {
		if len(name) > 100 {
			return nil, errors.New("name must be at most 100 characters")
		}
		u.Name = name
	}
	if phone = strings.TrimSpace(phone); phone != "" {
		if !phoneRegex.MatchString(phone) {
			return nil, errors.New("phone number format invalid")
		}
		u.Phone = phone
	}
	if avatarURL = strings.TrimSpace(avatarURL); avatarURL != "" {
		u.AvatarURL = avatarURL
	}

	if err := s.userRepo.Update(ctx, u); err != nil {
		s.logger.Error("profile update failed", "error", err, "user_id", userID)
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("profile updated", "user_id", userID, "profile_complete", u.IsProfileComplete())
	return u, nil
}
