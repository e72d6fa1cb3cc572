package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/threadkart/threadkart-backend/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID honours an incoming X-Request-Id header or mints a fresh UUID,
// echoes it on the response, and seeds the request-scoped logger with it.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := r.Header.Get(requestIDHeader)
			if _, err := uuid.Parse(reqID); err != nil {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
