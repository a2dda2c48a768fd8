package output

import (
	"context"

	"rpbot/internal/domain/entities"
)

// ActivityLog receives a copy of every ledger change for operators.
type ActivityLog interface {
	LogMutation(ctx context.Context, m entities.Mutation) error
	LogRollover(ctx context.Context, trigger string, rollovers []entities.Rollover) error
}
