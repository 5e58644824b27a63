// Package help implements the /commands command: post the command list.
package help

import (
	"context"
	"fmt"

	"github.com/sourcehf/convo/internal/bot"
	"github.com/sourcehf/convo/internal/metrics"
	"github.com/sourcehf/convo/internal/sports"
	"github.com/sourcehf/convo/internal/userstate"
)

// ModuleName is the command name.
const ModuleName = "commands"

// listingFormat is the posted command list. The leading newline keeps the
// first line from running into the chat widget's sender label.
const listingFormat = `
Available Commands:
🤖 /ai [prompt] - Ask the AI for any information or assistance
🎥 /yt [search term] - Search YouTube for videos
🏀 /sports [league] - Get live scores, upcoming games, and odds (e.g., /sports nba)
ℹ️ /commands - List all available commands

Valid sports: %s

Examples:
/ai What's the capital of France?
/yt funny cat videos
/sports nfl`

// Handler handles /commands invocations.
type Handler struct {
	state   *userstate.Manager
	sender  bot.Sender
	metrics *metrics.Metrics
}

// NewHandler creates the /commands handler.
func NewHandler(state *userstate.Manager, sender bot.Sender, m *metrics.Metrics) *Handler {
	return &Handler{state: state, sender: sender, metrics: m}
}

// Name returns the command name.
func (h *Handler) Name() string { return ModuleName }

// Handle posts the listing unless the user is still cooling down.
func (h *Handler) Handle(_ context.Context, inv *bot.Invocation) error {
	if h.state.CheckCooldown(inv.UserID, userstate.ActionCommands) {
		return nil
	}

	if err := h.sender.Send(fmt.Sprintf(listingFormat, sports.ValidKeys())); err != nil {
		return fmt.Errorf("send command list: %w", err)
	}
	h.metrics.RecordMessageSent(ModuleName)
	h.state.SetCooldown(inv.UserID, userstate.ActionCommands)
	return nil
}
