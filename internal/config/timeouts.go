// Package config provides centralized timeout constants for the application.
//
// Every external call carries a bounded timeout so a hung upstream degrades
// into a best-effort omission instead of wedging a command handler. The chat
// platform has no delivery deadline, so the per-command budget is generous
// enough to cover the worst case of the sports pipeline: news + scoreboard +
// the odds lookup, each with retries.
package config

import "time"

// External API timeouts
const (
	// FetchRequest is the timeout for a single HTTP request to a scoreboard,
	// news, odds, or video search endpoint.
	FetchRequest = 10 * time.Second

	// AIGenerate is the timeout for a single AI generation call. Generation
	// latency dominates every other upstream, so it gets its own budget.
	AIGenerate = 30 * time.Second
)

// Command processing
const (
	// CommandProcessing bounds a whole command invocation, covering the worst
	// case of the sports pipeline with retries.
	CommandProcessing = 60 * time.Second
)

// Admin HTTP server
const (
	AdminHTTPRead  = 10 * time.Second
	AdminHTTPWrite = 15 * time.Second
	AdminHTTPIdle  = 120 * time.Second
)

// Chat transport
const (
	// ConvoDialTimeout is the websocket handshake timeout.
	ConvoDialTimeout = 15 * time.Second

	// ConvoWriteTimeout bounds a single outbound message write.
	ConvoWriteTimeout = 10 * time.Second

	// ConvoReconnectInitial is the first reconnect delay; doubles per attempt
	// up to ConvoReconnectMax.
	ConvoReconnectInitial = 2 * time.Second
	ConvoReconnectMax     = time.Minute
)

// Graceful shutdown
const (
	// GracefulShutdown is the timeout for graceful server shutdown.
	// Allows in-flight command invocations to complete before termination.
	GracefulShutdown = 30 * time.Second

	// SentryFlush is how long shutdown waits for buffered error events.
	SentryFlush = 2 * time.Second
)
