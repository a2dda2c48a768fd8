package database

import (
	"math"
	"time"

	"rpbot/internal/domain/entities"
)

// balanceColumns is the column list every balance query returns, in the order
// the scan helpers expect.
const balanceColumns = "guild_id, user_id, weekly_rp, historical_rp, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

// scanUnixBalance reads a balance row whose updated_at is stored as unix seconds.
func scanUnixBalance(row rowScanner) (entities.Balance, error) {
	var (
		b       entities.Balance
		updated int64
	)
	if err := row.Scan(&b.GuildID, &b.UserID, &b.WeeklyRP, &b.HistoricalRP, &updated); err != nil {
		return entities.Balance{}, err
	}
	b.UpdatedAt = unixToTime(updated)
	return b, nil
}

func scanTimestampBalance(row rowScanner) (entities.Balance, error) {
	var b entities.Balance
	if err := row.Scan(&b.GuildID, &b.UserID, &b.WeeklyRP, &b.HistoricalRP, &b.UpdatedAt); err != nil {
		return entities.Balance{}, err
	}
	b.UpdatedAt = b.UpdatedAt.UTC()
	return b, nil
}

// unixToTime returns the UTC time for sec, or zero time when sec is 0.
func unixToTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0).UTC()
}

type guildAggregate struct {
	guildID string
	users   int64
	total   int64
}

// rolloverTopSize is how many weekly standings a rollover report keeps.
const rolloverTopSize = 3

// addCapped adds two non-negative counters, saturating at math.MaxInt64.
func addCapped(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}
