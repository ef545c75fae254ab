// File: internal/services/push/gateway_provider.go
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// GatewayProvider talks to an FCM-style token push endpoint: one POST per
// batch, per-token verdicts in the response body.
type GatewayProvider struct {
	config *Config
	client *http.Client
}

func NewGatewayProvider(config *Config) (*GatewayProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, &PushError{Type: ErrTypeConfig, Message: "invalid push configuration", Cause: err}
	}
	return &GatewayProvider{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
	}, nil
}

type gatewayRequest struct {
	RegistrationIDs []string          `json:"registration_ids"`
	Notification    map[string]string `json:"notification"`
	Data            map[string]string `json:"data,omitempty"`
}

type gatewayResponse struct {
	Results []struct {
		MessageID string `json:"message_id"`
		Error     string `json:"error"`
	} `json:"results"`
}

func (p *GatewayProvider) Send(ctx context.Context, tokens []string, n Notification) ([]Result, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	payload := gatewayRequest{
		RegistrationIDs: tokens,
		Notification:    map[string]string{"title": n.Title, "body": n.Body},
		Data:            n.Data,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &PushError{Type: ErrTypeValidation, Message: "invalid payload", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.APIURL, bytes.NewBuffer(body))
	if err != nil {
		return nil, &PushError{Type: ErrTypeNetwork, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "key="+p.config.ServerKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &PushError{Type: ErrTypeNetwork, Message: "request failed", Cause: err}
	}
	defer resp.Body.Close()

	return p.handleResponse(resp, tokens)
}

func (p *GatewayProvider) handleResponse(resp *http.Response, tokens []string) ([]Result, error) {
	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, &PushError{Type: ErrTypeRateLimit, Code: resp.StatusCode, Message: "rate limit exceeded"}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		responseBody, _ := io.ReadAll(resp.Body)
		return nil, &PushError{Type: ErrTypeProvider, Code: resp.StatusCode, Message: string(responseBody)}
	}

	var parsed gatewayResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, &PushError{Type: ErrTypeProvider, Message: "malformed gateway response", Cause: err}
	}

	results := make([]Result, 0, len(tokens))
	for i, token := range tokens {
		r := Result{Token: token}
		if i < len(parsed.Results) && parsed.Results[i].Error != "" {
			r.Err = &PushError{Type: ErrTypeProvider, Message: parsed.Results[i].Error}
			// These verdicts mean the registration is gone for good.
			r.Invalid = parsed.Results[i].Error == "NotRegistered" ||
				parsed.Results[i].Error == "InvalidRegistration"
		}
		results = append(results, r)
	}
	return results, nil
}

// service wraps a provider with retry behavior.
type service struct {
	provider Provider
	retry    *RetryConfig
}

// NewService builds the Service the message pipeline consumes.
func NewService(provider Provider, retry *RetryConfig) Service {
	if retry == nil {
		retry = DefaultRetryConfig()
	}
	return &service{provider: provider, retry: retry}
}

func (s *service) SendToTokens(ctx context.Context, tokens []string, n Notification) ([]Result, error) {
	var results []Result
	err := retryWithBackoff(ctx, s.retry, func(ctx context.Context) error {
		var sendErr error
		results, sendErr = s.provider.Send(ctx, tokens, n)
		return sendErr
	})
	return results, err
}
