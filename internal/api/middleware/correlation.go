package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const correlationIDKey contextKey = "correlation_id"

const (
	CorrelationHeader = "X-Correlation-ID"
	requestIDHeader   = "X-Request-ID"

	maxCorrelationIDLength = 128
)

// CorrelationID reads X-Correlation-ID (or X-Request-ID) from the incoming
// request. If absent or oversized, a new UUID is generated. The value is
// stored on the request context and echoed back in the response header so
// callers can trace a dispatch through the logs.
func CorrelationID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(CorrelationHeader)
		if id == "" {
			id = r.Header.Get(requestIDHeader)
		}
		if id == "" || len(id) > maxCorrelationIDLength {
			id = uuid.NewString()
		}
		ctx := context.WithValue(r.Context(), correlationIDKey, id)
		w.Header().Set(CorrelationHeader, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCorrelationID retrieves the correlation ID stored by the middleware.
// Returns an empty string if the middleware was not applied.
func GetCorrelationID(ctx context.Context) string {
	v, _ := ctx.Value(correlationIDKey).(string)
	return v
}
