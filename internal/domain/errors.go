package domain

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function.
var (
	ErrValidation       = errors.New("validation failed")
	ErrGatewayTransport = errors.New("gateway transport failure")
	ErrGatewayRejected  = errors.New("gateway rejected the message")
	ErrInternal         = errors.New("internal error while dispatching messages")
)

// FieldError describes one invalid request field by its JSON path.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every field that failed validation.
// errors.Is(err, ErrValidation) holds for any *ValidationError.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = fmt.Sprintf("%s: %s", f.Field, f.Message)
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }
