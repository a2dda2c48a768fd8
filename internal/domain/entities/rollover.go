package entities

import (
	"time"

	"github.com/google/uuid"
)

// Rollover summarises one guild's weekly rollover. Top holds the weekly
// standings read just before the counters were reset.
type Rollover struct {
	ID            uuid.UUID
	GuildID       string
	ExecutedAt    time.Time
	UsersArchived int
	ArchivedRP    int64
	Top           []Balance
}
