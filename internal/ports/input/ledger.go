package input

import (
	"context"

	"rpbot/internal/domain/entities"
)

type LedgerUseCase interface {
	AddRP(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error)
	RevokeRP(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error)
	Totals(ctx context.Context, guildID, userID string) (entities.Balance, error)
	Leaderboard(ctx context.Context, guildID string) ([]entities.Balance, error)
	HistoricalLeaderboard(ctx context.Context, guildID string) ([]entities.Balance, error)

	GrantRP(ctx context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error)
	TakeRP(ctx context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error)
	RevokeHistoricalRP(ctx context.Context, guildID, actorID, targetID string, amount int64) (entities.Balance, error)
	SimulateWeeklyWipe(ctx context.Context, guildID, actorID string) (*entities.Rollover, error)
	WeeklyRollover(ctx context.Context) ([]entities.Rollover, error)
	IsWhitelisted(userID string) bool
}
