package attendance

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrMissingGateway is returned when an App is built without a gateway.
	ErrMissingGateway = errors.New("attendance: gateway is required")
	// ErrValidation marks requests rejected before any call is made.
	ErrValidation = errors.New("attendance: invalid request")
	// ErrUnknownChart is returned when switching to a chart kind the canvas does not hold.
	ErrUnknownChart = errors.New("attendance: unknown chart kind")
	// ErrNotAuthenticated is returned by actions that need an identity.
	ErrNotAuthenticated = errors.New("attendance: not authenticated")
)

// APIError is a non-2xx response. Message carries the server `error` field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("attendance: remote error %d", e.Status)
	}
	return fmt.Sprintf("attendance: remote error %d: %s", e.Status, e.Message)
}

// NetworkError wraps a request that threw before a usable response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	if e.Op == "" {
		return fmt.Sprintf("attendance: network failure: %v", e.Err)
	}
	return fmt.Sprintf("attendance: %s: network failure: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError lists the field problems found before sending a request.
type ValidationError struct {
	Fields map[string]string
	Order  []string
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Order))
	for _, field := range e.Order {
		parts = append(parts, e.Fields[field])
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// FailureMessage passes the server message through or falls back.
// Transport failures always use networkFallback; server errors without a
// message use fallback.
func FailureMessage(err error, fallback, networkFallback string) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		if msg := strings.TrimSpace(apiErr.Message); msg != "" {
			return msg
		}
		return fallback
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Error()
	}
	if IsNetwork(err) {
		return networkFallback
	}
	return fallback
}
