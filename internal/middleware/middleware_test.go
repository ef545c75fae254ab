// File: internal/middleware/middleware_test.go
package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingLogger captures log calls so tests can assert on them.
type recordingLogger struct {
	mu     sync.Mutex
	infos  []string
	errors []string
}

func (l *recordingLogger) Info(msg string, kv ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.infos = append(l.infos, msg)
}

func (l *recordingLogger) Error(msg string, kv ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) {}
func (l *recordingLogger) Warn(msg string, kv ...interface{})  {}

func TestLoggingMiddleware(t *testing.T) {
	logger := &recordingLogger{}
	handler := LoggingMiddleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/chats", nil))

	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, logger.infos, 1)
	assert.Equal(t, "request handled", logger.infos[0])
}

func TestRecoverPanicReturns500(t *testing.T) {
	logger := &recordingLogger{}
	handler := RecoverPanic(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/api/chats", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Len(t, logger.errors, 1)
	assert.Equal(t, "handler panicked", logger.errors[0])
}
