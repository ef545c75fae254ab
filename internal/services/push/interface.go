package push

import "context"

// Notification is the cross-platform payload shown on the lock screen plus
// opaque data the app uses to route the tap.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Result reports the outcome for a single token. Invalid marks registrations
// the gateway no longer recognizes; callers prune those from storage.
type Result struct {
	Token   string
	Err     error
	Invalid bool
}

// Provider talks to a concrete push gateway.
type Provider interface {
	Send(ctx context.Context, tokens []string, n Notification) ([]Result, error)
}

// Service is what the message pipeline consumes: provider plus retry policy.
type Service interface {
	SendToTokens(ctx context.Context, tokens []string, n Notification) ([]Result, error)
}
