package genai

import (
	"context"

	"github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/logger"
)

// fallbackResponder tries providers in order until one returns a reply.
// A provider that errors or returns an empty reply hands off to the next.
type fallbackResponder struct {
	providers []Responder
	log       *logger.Logger
}

// NewFallback chains responders in priority order. Nil entries are skipped,
// so constructors that disable themselves on a missing API key can be passed
// directly. Returns an error when no provider is configured.
func NewFallback(log *logger.Logger, providers ...Responder) (Responder, error) {
	active := make([]Responder, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			active = append(active, p)
		}
	}
	if len(active) == 0 {
		return nil, errors.ErrNoData
	}
	if len(active) == 1 {
		return active[0], nil
	}
	return &fallbackResponder{providers: active, log: log}, nil
}

func (r *fallbackResponder) Name() string { return "fallback" }

// Respond tries each provider in order and returns the first non-empty reply.
// The last provider's outcome is returned as-is when all of them fail.
func (r *fallbackResponder) Respond(ctx context.Context, input string) (string, error) {
	var lastReply string
	var lastErr error

	for i, p := range r.providers {
		reply, err := p.Respond(ctx, input)
		if err == nil && reply != "" {
			return reply, nil
		}
		lastReply, lastErr = reply, err

		if i < len(r.providers)-1 && r.log != nil {
			l := r.log.WithModule("genai").WithField("provider", p.Name())
			if err != nil {
				l.WithError(err).Warn("provider failed, trying fallback")
			} else {
				l.Warn("provider returned empty reply, trying fallback")
			}
		}
	}

	return lastReply, lastErr
}
