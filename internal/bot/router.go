package bot

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sourcehf/convo/internal/config"
	"github.com/sourcehf/convo/internal/ctxutil"
	domerrors "github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/logger"
	"github.com/sourcehf/convo/internal/metrics"
	"github.com/sourcehf/convo/internal/sentry"
	"github.com/sourcehf/convo/internal/userstate"
)

// genericErrorMessage is the single reply for any handler failure or panic.
const genericErrorMessage = "An error occurred while processing your command. Please try again."

// Router dispatches inbound messages to registered command handlers.
//
// Rejections are silent: a rate-limited, locked, or unknown command produces
// no reply at all, so the bot cannot be made to spam the channel.
type Router struct {
	state    *userstate.Manager
	sender   Sender
	log      *logger.Logger
	metrics  *metrics.Metrics
	handlers map[string]Handler

	prefix  string
	timeout time.Duration
}

// NewRouter creates a router. Handlers are registered separately.
func NewRouter(state *userstate.Manager, sender Sender, log *logger.Logger, m *metrics.Metrics, prefix string) *Router {
	return &Router{
		state:    state,
		sender:   sender,
		log:      log.WithModule("router"),
		metrics:  m,
		handlers: make(map[string]Handler),
		prefix:   prefix,
		timeout:  config.CommandProcessing,
	}
}

// Register adds a handler under its command name.
func (r *Router) Register(h Handler) {
	r.handlers[h.Name()] = h
}

// Dispatch processes one inbound message end to end. It never panics and
// never blocks on another invocation; call it from one goroutine per message.
func (r *Router) Dispatch(msg Message) {
	if !strings.HasPrefix(msg.Text, r.prefix) {
		return
	}

	// Every command attempt counts against the window, including the ones
	// rejected below. Hammering the bot extends the lockout.
	if r.state.IsRateLimited(msg.UserID) {
		r.drop(msg.UserID, "rate_limited", domerrors.ErrRateLimited)
		return
	}

	name, args := splitCommand(strings.TrimPrefix(msg.Text, r.prefix))
	handler, ok := r.handlers[name]
	if !ok {
		r.drop(msg.UserID, "unknown_command", domerrors.ErrUnknownCommand)
		return
	}

	// Drop, never queue: a second invocation of the same command while one
	// is in flight disappears without a trace.
	if !r.state.TryLock(msg.UserID, name) {
		r.drop(msg.UserID, "locked", domerrors.ErrLocked)
		return
	}
	defer r.state.Unlock(msg.UserID, name)

	requestID := uuid.NewString()
	log := r.log.WithRequestID(requestID).WithUser(msg.UserID).WithField("command", name)

	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	ctx = ctxutil.WithUserID(ctx, msg.UserID)
	ctx = ctxutil.WithRequestID(ctx, requestID)
	ctx = ctxutil.WithCommand(ctx, name)

	inv := &Invocation{
		UserID:      msg.UserID,
		DisplayName: msg.DisplayName(),
		Args:        args,
	}

	start := time.Now()
	err := r.invoke(ctx, handler, inv)
	duration := time.Since(start)

	status := "success"
	if err != nil {
		status = "error"
		log.WithError(err).Error("command failed")
		sentry.CaptureException(err)
		if sendErr := r.sender.Send(genericErrorMessage); sendErr != nil {
			log.WithError(sendErr).Error("error reply failed")
		}
	} else {
		log.WithField("duration_ms", duration.Milliseconds()).Debug("command completed")
	}
	r.metrics.RecordCommand(name, status, duration.Seconds())
}

// drop records a silent rejection. The user gets nothing; the metrics and
// the debug log carry the reason.
func (r *Router) drop(userID, reason string, err error) {
	r.metrics.RecordDrop(reason)
	r.log.WithUser(userID).WithError(err).Debug("message dropped")
}

// invoke runs the handler, converting a panic into an error so one bad
// invocation cannot take the process down or leak the lock.
func (r *Router) invoke(ctx context.Context, h Handler, inv *Invocation) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("handler panic: %v", rec)
		}
	}()
	return h.Handle(ctx, inv)
}

// splitCommand separates the command name from its argument remainder.
func splitCommand(text string) (name, args string) {
	name, args, _ = strings.Cut(text, " ")
	return name, args
}
