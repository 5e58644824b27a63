// Package sports implements the /sports command: post the league report for
// the requested league.
package sports

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcehf/convo/internal/bot"
	"github.com/sourcehf/convo/internal/metrics"
	"github.com/sourcehf/convo/internal/sports"
	"github.com/sourcehf/convo/internal/userstate"
)

// ModuleName is the command name.
const ModuleName = "sports"

// missingLeagueFormat prompts for a league when the command is sent bare.
const missingLeagueFormat = "Please provide a sport (e.g., /sports nfl).\nValid sports: %s"

// Reporter builds the league report text. Satisfied by sports.Aggregator.
type Reporter interface {
	FetchLeagueData(ctx context.Context, key string) string
}

// Handler handles /sports invocations.
//
// A cooldown duration is configured for this action but no gate consults it;
// the in-flight lock is the only throttle, matching the bot's long-standing
// behaviour. Wiring the gate would be a one-line change in Handle.
type Handler struct {
	state      *userstate.Manager
	aggregator Reporter
	sender     bot.Sender
	metrics    *metrics.Metrics
}

// NewHandler creates the /sports handler.
func NewHandler(state *userstate.Manager, aggregator Reporter, sender bot.Sender, m *metrics.Metrics) *Handler {
	return &Handler{
		state:      state,
		aggregator: aggregator,
		sender:     sender,
		metrics:    m,
	}
}

// Name returns the command name.
func (h *Handler) Name() string { return ModuleName }

// Handle posts the league report. The league is validated here and again by
// the aggregator; every failure path past validation hands back user-facing
// text.
func (h *Handler) Handle(ctx context.Context, inv *bot.Invocation) error {
	if inv.Args == "" {
		reply := fmt.Sprintf(missingLeagueFormat, sports.ValidKeys())
		if err := h.sender.Send(reply); err != nil {
			return fmt.Errorf("send validation reply: %w", err)
		}
		return nil
	}

	key := strings.ToLower(inv.Args)
	if _, ok := sports.LookupLeague(key); !ok {
		reply := "Invalid sport. Valid sports are: " + sports.ValidKeys()
		if err := h.sender.Send(reply); err != nil {
			return fmt.Errorf("send validation reply: %w", err)
		}
		return nil
	}

	report := h.aggregator.FetchLeagueData(ctx, key)
	if err := h.sender.Send(report); err != nil {
		return fmt.Errorf("send sports reply: %w", err)
	}
	h.metrics.RecordMessageSent(ModuleName)
	return nil
}
