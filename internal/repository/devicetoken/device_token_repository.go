// File: internal/repository/devicetoken/device_token_repository.go
package devicetoken

import (
	"context"
	"errors"
	"log"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

type gormDeviceTokenRepository struct {
	db *gorm.DB
}

func NewDeviceTokenRepository(db *gorm.DB) DeviceTokenRepository {
	return &gormDeviceTokenRepository{db: db}
}

func (r *gormDeviceTokenRepository) Upsert(ctx context.Context, token *domain.DeviceToken) error {
	if token.UserID == 0 || token.Token == "" {
		return errors.New("user ID and token are required")
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "token"}},
			DoUpdates: clause.AssignmentColumns([]string{"platform", "updated_at"}),
		}).
		Create(token).Error
	if err != nil {
		log.Printf("[DeviceTokenRepository] Database error upserting token for user %d: %v", token.UserID, err)
		return errors.New("database error registering device token")
	}
	return nil
}

func (r *gormDeviceTokenRepository) FindByUserIDs(ctx context.Context, userIDs []uint) ([]domain.DeviceToken, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	var tokens []domain.DeviceToken
	err := r.db.WithContext(ctx).Where("user_id IN ?", userIDs).Find(&tokens).Error
	if err != nil {
		log.Printf("[DeviceTokenRepository] Database error fetching tokens: %v", err)
		return nil, errors.New("database error fetching device tokens")
	}
	return tokens, nil
}

func (r *gormDeviceTokenRepository) DeleteTokens(ctx context.Context, tokens []string) error {
	if len(tokens) == 0 {
		return nil
	}

	err := r.db.WithContext(ctx).Where("token IN ?", tokens).Delete(&domain.DeviceToken{}).Error
	if err != nil {
		log.Printf("[DeviceTokenRepository] Database error pruning %d tokens: %v", len(tokens), err)
		return errors.New("database error pruning device tokens")
	}
	return nil
}
