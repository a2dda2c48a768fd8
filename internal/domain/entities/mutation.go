package entities

import "time"

// Mutation records one change applied to the ledger.
type Mutation struct {
	Kind     string
	GuildID  string
	ActorID  string
	TargetID string
	Amount   int64
	Balance  Balance
	At       time.Time
}
