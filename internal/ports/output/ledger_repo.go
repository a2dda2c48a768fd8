package output

import (
	"context"
	"time"

	"rpbot/internal/domain/entities"
)

// LedgerRepository persists balances keyed by (guild, user). Every method is a
// single atomic statement except Rollover, which runs in one transaction.
type LedgerRepository interface {
	AddWeekly(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error)
	RevokeWeekly(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error)
	RevokeHistorical(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error)
	Find(ctx context.Context, guildID, userID string) (*entities.Balance, error)
	TopWeekly(ctx context.Context, guildID string, limit int) ([]entities.Balance, error)
	TopHistorical(ctx context.Context, guildID string, limit int) ([]entities.Balance, error)
	// Rollover archives weekly RP into historical RP. An empty guildID means
	// every guild.
	Rollover(ctx context.Context, guildID string, at time.Time) ([]entities.Rollover, error)
}
