package client

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrUnauthorized is returned when the server answered with a non-2xx status.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNetwork is returned when no usable answer was received: transport
	// failure, timeout or an unreadable body.
	ErrNetwork = errors.New("network error")

	// ErrRefreshFailed matches every *RefreshError.
	ErrRefreshFailed = errors.New("refresh failed")
)

// StatusError describes a non-2xx reply.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned HTTP %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned HTTP %d", e.StatusCode)
}

// RefreshError folds every refresh failure into one kind while keeping the
// underlying cause for logs.
type RefreshError struct {
	Cause error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("refresh failed: %v", e.Cause)
}

func (e *RefreshError) Unwrap() error { return e.Cause }

func (e *RefreshError) Is(target error) bool { return target == ErrRefreshFailed }
