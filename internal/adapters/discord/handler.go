package discord

import (
	"time"

	"rpbot/internal/ports/input"
	"rpbot/internal/ports/output"
)

// CommandMetrics counts handled slash commands by outcome.
type CommandMetrics interface {
	Command(command, status string)
}

// Handler handles Discord interactions using the ledger use case.
type Handler struct {
	ledger     input.LedgerUseCase
	translator output.T
	locale     string
	metrics    CommandMetrics
	nextReset  func(now time.Time) time.Time
	commands   map[string]commandFunc
}

// NewHandler creates a Handler. nextReset may be nil, in which case
// /historical-rp omits the reset time.
func NewHandler(
	ledger input.LedgerUseCase,
	translator output.T,
	defaultLocale string,
	metrics CommandMetrics,
	nextReset func(now time.Time) time.Time,
) *Handler {
	h := &Handler{
		ledger:     ledger,
		translator: translator,
		locale:     defaultLocale,
		metrics:    metrics,
		nextReset:  nextReset,
	}
	h.commands = map[string]commandFunc{
		cmdRP:                    h.addRP,
		cmdRevokeRP:              h.revokeRP,
		cmdLeaderboard:           h.leaderboard,
		cmdHistoricalLeaderboard: h.historicalLeaderboard,
		cmdHistoricalRP:          h.historicalRP,
		cmdSimulateWeeklyWipe:    h.simulateWeeklyWipe,
		cmdRevokeHistoricalRP:    h.revokeHistoricalRP,
		cmdGiveRP:                h.giveRP,
		cmdTakeRP:                h.takeRP,
	}
	return h
}
