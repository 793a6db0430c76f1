package gateway

import "fmt"

// ErrorKind classifies a failed backend request.
type ErrorKind int

const (
	// KindNetwork: the backend was unreachable or the transport failed.
	KindNetwork ErrorKind = iota
	// KindAuth: the credential was missing, invalid or expired.
	KindAuth
	// KindValidation: the backend rejected the request (4xx with message).
	KindValidation
	// KindServer: the backend faulted (5xx).
	KindServer
	// KindMalformed: the response body could not be decoded.
	KindMalformed
)

// String returns the label used in logs and metrics.
func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Fallback messages shown when the backend supplies none.
const (
	msgNetwork    = "Network error. Please check your connection."
	msgAuth       = "Your session has expired. Please login again."
	msgValidation = "Please check your input and try again."
	msgServer     = "Internal server error. Please try again later."
	msgMalformed  = "Received an unexpected response from the server."
)

// APIError is the uniform error shape returned by the gateway. Every
// failed request resolves to one; nothing else crosses the boundary.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Reason returns the human-readable message recorded in slice state.
func (e *APIError) Reason() string {
	return e.Message
}
