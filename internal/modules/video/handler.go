// Package video implements the /yt command: search YouTube and post the top
// result addressed to the asking user.
package video

import (
	"context"
	"errors"
	"fmt"

	"github.com/sourcehf/convo/internal/bot"
	domerrors "github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/logger"
	"github.com/sourcehf/convo/internal/metrics"
	"github.com/sourcehf/convo/internal/userstate"
)

// ModuleName is the command name.
const ModuleName = "yt"

const (
	missingTermText = "Please provide a valid search term for YouTube."
	replyFormat     = "YouTube video for %s: %s"
	noResultsText   = "No videos found. Try a different search term."
	failedText      = "Error searching YouTube."
)

// Searcher finds the top video link for a query. Satisfied by video.Searcher.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Handler handles /yt invocations.
type Handler struct {
	state    *userstate.Manager
	searcher Searcher
	sender   bot.Sender
	log      *logger.Logger
	metrics  *metrics.Metrics
}

// NewHandler creates the /yt handler.
func NewHandler(state *userstate.Manager, searcher Searcher, sender bot.Sender, log *logger.Logger, m *metrics.Metrics) *Handler {
	return &Handler{
		state:    state,
		searcher: searcher,
		sender:   sender,
		log:      log.WithModule(ModuleName),
		metrics:  m,
	}
}

// Name returns the command name.
func (h *Handler) Name() string { return ModuleName }

// Handle searches for the term and replies with the watch URL. A missing
// term gets a validation reply without starting the cooldown; search failures
// fold into the addressed reply and the cooldown still applies.
func (h *Handler) Handle(ctx context.Context, inv *bot.Invocation) error {
	if h.state.CheckCooldown(inv.UserID, userstate.ActionVideo) {
		h.log.WithUser(inv.UserID).WithError(domerrors.ErrCooldownActive).Debug("search dropped")
		return nil
	}
	if inv.Args == "" {
		if err := h.sender.Send(missingTermText); err != nil {
			return fmt.Errorf("send validation reply: %w", err)
		}
		return nil
	}

	result, err := h.searcher.Search(ctx, inv.Args)
	switch {
	case errors.Is(err, domerrors.ErrNoData):
		result = noResultsText
	case err != nil:
		h.log.WithError(err).WithUser(inv.UserID).Error("search failed")
		result = failedText
	}

	reply := fmt.Sprintf(replyFormat, bot.ProfileLink(inv.UserID), result)
	if err := h.sender.Send(reply); err != nil {
		return fmt.Errorf("send video reply: %w", err)
	}
	h.metrics.RecordMessageSent(ModuleName)
	h.state.SetCooldown(inv.UserID, userstate.ActionVideo)
	return nil
}
