package provider

import (
	"context"
	"fmt"
	"net"

	"github.com/pkg/errors"

	"github.com/ricirt/sms-engine/internal/domain"
)

// Gateway error reasons, used as metric label values.
const (
	ReasonHTTPStatus = "http_status"
	ReasonTimeout    = "timeout"
	ReasonCancelled  = "cancelled"
	ReasonConnection = "connection"
)

// TransportError reports that no usable gateway answer was obtained:
// the request never completed or the gateway answered with a non-2xx status.
type TransportError struct {
	// StatusCode is 0 when no HTTP response was received.
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("gateway returned HTTP %d", e.StatusCode)
	}
	return "gateway request failed: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }

// Is makes every TransportError match domain.ErrGatewayTransport.
func (e *TransportError) Is(target error) bool {
	return target == domain.ErrGatewayTransport
}

// Reason classifies the failure for metrics.
func (e *TransportError) Reason() string {
	switch {
	case e.StatusCode != 0:
		return ReasonHTTPStatus
	case isTimeout(e.Err):
		return ReasonTimeout
	case errors.Is(e.Err, context.Canceled):
		return ReasonCancelled
	default:
		return ReasonConnection
	}
}

// Description is a stable, caller-safe summary. Raw error text stays in logs.
func (e *TransportError) Description() string {
	switch e.Reason() {
	case ReasonHTTPStatus:
		return fmt.Sprintf("gateway returned HTTP %d", e.StatusCode)
	case ReasonTimeout:
		return "gateway request timed out"
	case ReasonCancelled:
		return "gateway request was cancelled"
	default:
		return "gateway unreachable"
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
