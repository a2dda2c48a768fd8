package entities

import (
	"math"
	"time"
)

// Balance is the RP held by one user inside one guild.
type Balance struct {
	GuildID      string
	UserID       string
	WeeklyRP     int64
	HistoricalRP int64
	UpdatedAt    time.Time
}

// Total is weekly plus historical RP, capped at math.MaxInt64.
func (b Balance) Total() int64 {
	if b.HistoricalRP > math.MaxInt64-b.WeeklyRP {
		return math.MaxInt64
	}
	return b.WeeklyRP + b.HistoricalRP
}
