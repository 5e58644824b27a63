// Package ai implements the /ai command: prompt the AI provider and post the
// sanitized reply addressed to the asking user.
package ai

import (
	"context"
	"fmt"

	"github.com/sourcehf/convo/internal/bot"
	"github.com/sourcehf/convo/internal/config"
	"github.com/sourcehf/convo/internal/ctxutil"
	domerrors "github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/genai"
	"github.com/sourcehf/convo/internal/logger"
	"github.com/sourcehf/convo/internal/metrics"
	"github.com/sourcehf/convo/internal/sanitize"
	"github.com/sourcehf/convo/internal/userstate"
)

// ModuleName is the command name.
const ModuleName = "ai"

// Reply fragments. The prefix always carries the asking user's profile link
// so a busy channel can tell whose question was answered.
const (
	replyFormat     = "AI Response for %s: %s"
	emptyReplyText  = "No response generated."
	failedReplyText = "Error generating response."
)

// Handler handles /ai invocations.
type Handler struct {
	state     *userstate.Manager
	responder genai.Responder
	sender    bot.Sender
	log       *logger.Logger
	metrics   *metrics.Metrics

	// MaxPromptLength silently rejects longer prompts before any API call.
	MaxPromptLength int
}

// NewHandler creates the /ai handler.
func NewHandler(state *userstate.Manager, responder genai.Responder, sender bot.Sender, log *logger.Logger, m *metrics.Metrics, maxPromptLength int) *Handler {
	return &Handler{
		state:           state,
		responder:       responder,
		sender:          sender,
		log:             log.WithModule(ModuleName),
		metrics:         m,
		MaxPromptLength: maxPromptLength,
	}
}

// Name returns the command name.
func (h *Handler) Name() string { return ModuleName }

// Handle answers the prompt. Empty and oversized prompts are dropped without
// a reply, an API call, or a cooldown; a cooled-down user is dropped the same
// way. Provider failures still produce a reply, with the error folded into
// the addressed response text.
func (h *Handler) Handle(ctx context.Context, inv *bot.Invocation) error {
	if h.state.CheckCooldown(inv.UserID, userstate.ActionGeneral) {
		h.log.WithUser(inv.UserID).WithError(domerrors.ErrCooldownActive).Debug("prompt dropped")
		return nil
	}
	if inv.Args == "" || len(inv.Args) > h.MaxPromptLength {
		return nil
	}

	body := h.generate(ctx, inv)
	reply := fmt.Sprintf(replyFormat, bot.ProfileLink(inv.UserID), body)

	if err := h.sender.Send(reply); err != nil {
		return fmt.Errorf("send ai reply: %w", err)
	}
	h.metrics.RecordMessageSent(ModuleName)
	h.state.SetCooldown(inv.UserID, userstate.ActionGeneral)
	return nil
}

// generate produces the reply body, never an error.
func (h *Handler) generate(ctx context.Context, inv *bot.Invocation) string {
	ctx, cancel := context.WithTimeout(ctx, config.AIGenerate)
	defer cancel()

	text, err := h.responder.Respond(ctx, inv.Args)
	if err != nil {
		h.log.WithError(err).WithUser(inv.UserID).
			WithRequestID(ctxutil.GetRequestID(ctx)).Error("generation failed")
		return failedReplyText
	}
	if text == "" {
		return emptyReplyText
	}

	clean, rule := sanitize.Apply(text)
	if rule != sanitize.RuleNone {
		h.log.WithUser(inv.UserID).WithField("rule", string(rule)).Warn("response blocked")
		h.metrics.RecordSanitizerBlock(string(rule))
	}
	return clean
}
