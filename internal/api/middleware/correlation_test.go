package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ricirt/sms-engine/internal/api/middleware"
)

func TestCorrelationID(t *testing.T) {
	var seen string
	h := middleware.CorrelationID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = middleware.GetCorrelationID(r.Context())
	}))

	tests := []struct {
		name     string
		header   string
		value    string
		expected string
	}{
		{"echoes correlation header", "X-Correlation-ID", "abc-123", "abc-123"},
		{"falls back to request id", "X-Request-ID", "req-9", "req-9"},
		{"generates when absent", "", "", ""},
		{"replaces oversized values", "X-Correlation-ID", strings.Repeat("x", 200), ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.header != "" {
				req.Header.Set(tc.header, tc.value)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			got := rec.Header().Get(middleware.CorrelationHeader)
			assert.Equal(t, seen, got)
			if tc.expected != "" {
				assert.Equal(t, tc.expected, got)
			} else {
				assert.Len(t, got, 36)
			}
		})
	}
}
