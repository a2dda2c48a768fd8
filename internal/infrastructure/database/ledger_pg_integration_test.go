//go:build integration

package database

import (
	"context"
	"math"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rpbot/internal/domain"
)

// Run with: TEST_DATABASE_URL=postgres://... go test -tags integration ./internal/infrastructure/database/
func newPostgresRepo(t *testing.T) *PostgresLedgerRepository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, RunMigrations(url))

	ctx := context.Background()
	pool, err := NewPool(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE rp_balances, rp_rollovers`)
	require.NoError(t, err)
	return NewPostgresLedgerRepository(pool)
}

func TestPostgresBalances(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	_, err := repo.RevokeWeekly(ctx, guildA, alice, 1)
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)
	_, err = repo.RevokeHistorical(ctx, guildA, alice, 1)
	assert.ErrorIs(t, err, domain.ErrHistoricalNotFound)
	_, err = repo.Find(ctx, guildA, alice)
	assert.ErrorIs(t, err, domain.ErrBalanceNotFound)

	b, err := repo.AddWeekly(ctx, guildA, alice, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), b.WeeklyRP)
	b, err = repo.AddWeekly(ctx, guildA, alice, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(15), b.WeeklyRP)
	assert.Equal(t, time.UTC, b.UpdatedAt.Location())

	b, err = repo.RevokeWeekly(ctx, guildA, alice, 100)
	require.NoError(t, err)
	assert.Zero(t, b.WeeklyRP)

	found, err := repo.Find(ctx, guildA, alice)
	require.NoError(t, err)
	assert.Zero(t, found.WeeklyRP)
}

func TestPostgresTop(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	for _, row := range []struct {
		user   string
		amount int64
	}{{"user-0", 5}, {"user-2", 20}, {"user-1", 20}, {"user-3", 1}} {
		_, err := repo.AddWeekly(ctx, guildA, row.user, row.amount)
		require.NoError(t, err)
	}
	_, err := repo.AddWeekly(ctx, guildB, "elsewhere", 999)
	require.NoError(t, err)

	rows, err := repo.TopWeekly(ctx, guildA, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "user-1", rows[0].UserID, "ties by user id")
	assert.Equal(t, "user-2", rows[1].UserID)
	assert.Equal(t, "user-0", rows[2].UserID)

	rows, err = repo.TopHistorical(ctx, guildA, 10)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPostgresRollover(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)
	at := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	_, err := repo.AddWeekly(ctx, guildA, alice, 10)
	require.NoError(t, err)
	_, err = repo.AddWeekly(ctx, guildA, bob, 4)
	require.NoError(t, err)
	_, err = repo.AddWeekly(ctx, guildB, alice, 6)
	require.NoError(t, err)

	out, err := repo.Rollover(ctx, guildA, at)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 2, out[0].UsersArchived)
	assert.Equal(t, int64(14), out[0].ArchivedRP)
	require.Len(t, out[0].Top, 2)
	assert.Equal(t, alice, out[0].Top[0].UserID)

	untouched, err := repo.Find(ctx, guildB, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(6), untouched.WeeklyRP)

	out, err = repo.Rollover(ctx, "", at)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, guildB, out[0].GuildID)

	b, err := repo.Find(ctx, guildA, alice)
	require.NoError(t, err)
	assert.Zero(t, b.WeeklyRP)
	assert.Equal(t, int64(10), b.HistoricalRP)

	out, err = repo.Rollover(ctx, "", at)
	require.NoError(t, err)
	assert.Empty(t, out)

	var recorded int
	require.NoError(t, repo.pool.QueryRow(ctx, `SELECT COUNT(*) FROM rp_rollovers`).Scan(&recorded))
	assert.Equal(t, 2, recorded)
}

func TestPostgresNearLimit(t *testing.T) {
	ctx := context.Background()
	repo := newPostgresRepo(t)

	_, err := repo.AddWeekly(ctx, guildA, alice, math.MaxInt64-5)
	require.NoError(t, err)
	_, err = repo.AddWeekly(ctx, guildA, alice, 10)
	assert.ErrorIs(t, err, domain.ErrBalanceOverflow)
	_, err = repo.AddWeekly(ctx, guildA, bob, math.MaxInt64-5)
	require.NoError(t, err)
	_, err = repo.pool.Exec(ctx,
		`UPDATE rp_balances SET historical_rp = 100 WHERE guild_id = $1 AND user_id = $2`, guildA, alice)
	require.NoError(t, err)

	out, err := repo.Rollover(ctx, "", time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, int64(math.MaxInt64), out[0].ArchivedRP)

	b, err := repo.Find(ctx, guildA, alice)
	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), b.HistoricalRP)
}
