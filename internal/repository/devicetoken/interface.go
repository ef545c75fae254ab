package devicetoken

import (
	"context"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/domain"
)

// DeviceTokenRepository handles push-token registrations.
type DeviceTokenRepository interface {
	// Upsert registers the token for the user; re-registering refreshes the
	// row instead of duplicating it.
	Upsert(ctx context.Context, token *domain.DeviceToken) error
	FindByUserIDs(ctx context.Context, userIDs []uint) ([]domain.DeviceToken, error)
	// DeleteTokens prunes rows whose token the push gateway reported as
	// invalid or expired.
	DeleteTokens(ctx context.Context, tokens []string) error
}
