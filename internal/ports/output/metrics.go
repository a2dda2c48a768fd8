package output

import "rpbot/internal/domain/entities"

type Metrics interface {
	LedgerMutation(kind string)
	RolloverCompleted(trigger string, rollovers []entities.Rollover)
}
