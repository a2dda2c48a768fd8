package domain

// Ledger mutation kinds.
const (
	MutationAdd              = "add"
	MutationRevoke           = "revoke"
	MutationGrant            = "grant"
	MutationTake             = "take"
	MutationRevokeHistorical = "revoke_historical"
)

// Rollover triggers.
const (
	TriggerSchedule = "schedule"
	TriggerManual   = "manual"
)
