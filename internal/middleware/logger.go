// File: internal/middleware/logger.go
package middleware

import (
	"net/http"
	"time"

	"github.com/SoftwareDivision/Teamly-Chat-Application-sub001/internal/services"
)

// LoggingMiddleware logs every request with its status and duration. A WS
// upgrade shows up once, when the connection closes.
func LoggingMiddleware(logger services.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

			next.ServeHTTP(wrapper, r)

			logger.Info("request handled",
				"method", r.Method,
				"path", r.URL.Path,
				"status", wrapper.statusCode,
				"remote", r.RemoteAddr,
				"duration", time.Since(start).String(),
			)
		})
	}
}
