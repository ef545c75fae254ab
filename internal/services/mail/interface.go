package mail

import "context"

// Provider sends transactional mail through a concrete backend.
type Provider interface {
	SendOTP(ctx context.Context, to, code string) error
}

// Service is what the auth flow consumes: provider plus retry policy.
type Service interface {
	SendOTP(ctx context.Context, to, code string) error
}
