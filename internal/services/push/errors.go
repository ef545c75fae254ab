package push

import "fmt"

type ErrorType string

const (
	ErrTypeConfig     ErrorType = "CONFIG"
	ErrTypeNetwork    ErrorType = "NETWORK"
	ErrTypeProvider   ErrorType = "PROVIDER"
	ErrTypeRateLimit  ErrorType = "RATE_LIMIT"
	ErrTypeValidation ErrorType = "VALIDATION"
)

type PushError struct {
	Type    ErrorType
	Code    int
	Message string
	Cause   error
}

func (e *PushError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("push %s error: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("push %s error: %s", e.Type, e.Message)
}

func (e *PushError) Unwrap() error { return e.Cause }
