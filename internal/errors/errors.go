// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrRateLimited indicates the user exceeded the per-window request limit.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrCooldownActive indicates the action-specific cooldown has not elapsed.
	ErrCooldownActive = errors.New("cooldown active")

	// ErrLocked indicates the same command is already in flight for the user.
	ErrLocked = errors.New("command already in flight")

	// ErrUnknownCommand indicates the command name has no registered handler.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrNoData indicates an upstream API returned an empty result set.
	ErrNoData = errors.New("no data returned")
)

// FetchError represents an external API fetch failure with context.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error (url=%s, status=%d): %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error (url=%s): %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new fetch error.
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}
