package api

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrUnauthenticated is returned without a network call when a request
	// needs a token and none is held.
	ErrUnauthenticated = errors.New("not logged in")

	// ErrUnauthorized matches responses with status 401.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound matches responses with status 404.
	ErrNotFound = errors.New("not found")

	// ErrRequestFailed matches every other failed response.
	ErrRequestFailed = errors.New("request failed")

	// ErrTransport matches network failures where no response was received.
	ErrTransport = errors.New("network error")
)

const (
	msgRequestFailed      = "request failed"
	msgServiceUnavailable = "service unavailable: check that the hosted backend is running"
	msgEndpointNotFound   = "endpoint not found: check the API URL"
)

// Error is a failed request. Status is 0 when no response was received.
type Error struct {
	Method  string
	URL     string
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match an *Error against the package sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case ErrNotFound:
		return e.Status == http.StatusNotFound
	case ErrTransport:
		return e.Status == 0
	case ErrRequestFailed:
		return e.Status != 0
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

// IsAuthError reports whether err means the session is missing or was rejected.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrUnauthorized)
}
