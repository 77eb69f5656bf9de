package vegapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the server no longer accepts the
	// session token. Callers degrade to guest mode instead of surfacing
	// this to the user.
	ErrUnauthorized = errors.New("unauthorized: session no longer valid")

	// ErrValidation is returned for business/validation rejections,
	// e.g. quantity out of range or item unavailable.
	ErrValidation = errors.New("validation rejected")

	// ErrNetwork is returned when the request never reached the server.
	ErrNetwork = errors.New("network error")

	// ErrServer is returned for 5xx responses.
	ErrServer = errors.New("server error")
)

// APIError carries the classified failure plus the human-readable
// message extracted from the response body.
type APIError struct {
	Kind       error // one of the sentinel errors above
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%v (status %d, code %s): %s", e.Kind, e.StatusCode, e.Code, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Kind
}
