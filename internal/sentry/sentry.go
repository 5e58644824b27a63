// Package sentry wires the Sentry SDK to Better Stack's error collection
// backend. All capture helpers are no-ops until Initialize succeeds, so the
// bot runs fine without an error-tracking account.
package sentry

import (
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
)

// Config holds the Better Stack error tracking settings.
type Config struct {
	// Token is the Better Stack Errors application token. Empty disables
	// error tracking.
	Token string

	// Host is the ingesting host, e.g. "errors.betterstack.com".
	Host string

	// Environment tags captured events ("production", "staging").
	Environment string

	// Release tags captured events with the running version.
	Release string
}

// Initialize sets up the SDK. With an empty token it does nothing and
// returns nil. The DSN is https://$TOKEN@$HOST/1; the project id segment is
// required by the SDK and ignored by Better Stack.
func Initialize(cfg Config) error {
	if cfg.Token == "" {
		return nil
	}
	if cfg.Host == "" {
		return fmt.Errorf("sentry host is required when token is provided")
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              fmt.Sprintf("https://%s@%s/1", cfg.Token, cfg.Host),
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
	})
}

// CaptureException reports an error. No-op when tracking is disabled.
func CaptureException(err error) {
	sentry.CaptureException(err)
}

// Flush waits for buffered events to reach the server, returning false on
// timeout. Call during shutdown.
func Flush(timeout time.Duration) bool {
	return sentry.Flush(timeout)
}
