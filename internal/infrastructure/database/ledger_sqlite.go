package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"rpbot/internal/domain"
	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/output"
)

var _ output.LedgerRepository = (*SQLiteLedgerRepository)(nil)

// SQLiteLedgerRepository implements output.LedgerRepository on the embedded
// SQLite engine. Timestamps are stored as unix seconds.
type SQLiteLedgerRepository struct {
	db *sql.DB
}

func NewSQLiteLedgerRepository(db *sql.DB) *SQLiteLedgerRepository {
	return &SQLiteLedgerRepository{db: db}
}

func (r *SQLiteLedgerRepository) AddWeekly(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	query := `
		INSERT INTO rp_balances (guild_id, user_id, weekly_rp, historical_rp, updated_at)
		VALUES (?, ?, ?, 0, ?)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET
			weekly_rp = rp_balances.weekly_rp + excluded.weekly_rp,
			updated_at = excluded.updated_at
		WHERE rp_balances.weekly_rp <= 9223372036854775807 - excluded.weekly_rp
		RETURNING ` + balanceColumns

	b, err := scanUnixBalance(r.db.QueryRowContext(ctx, query, guildID, userID, amount, time.Now().Unix()))
	if err != nil {
		// The conflict guard skipped the update: the sum would not fit.
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Balance{}, domain.ErrBalanceOverflow
		}
		return entities.Balance{}, fmt.Errorf("add weekly rp: %w", err)
	}
	return b, nil
}

func (r *SQLiteLedgerRepository) RevokeWeekly(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	query := `
		UPDATE rp_balances
		SET weekly_rp = MAX(weekly_rp - ?, 0), updated_at = ?
		WHERE guild_id = ? AND user_id = ?
		RETURNING ` + balanceColumns

	b, err := scanUnixBalance(r.db.QueryRowContext(ctx, query, amount, time.Now().Unix(), guildID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Balance{}, domain.ErrBalanceNotFound
		}
		return entities.Balance{}, fmt.Errorf("revoke weekly rp: %w", err)
	}
	return b, nil
}

func (r *SQLiteLedgerRepository) RevokeHistorical(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	query := `
		UPDATE rp_balances
		SET historical_rp = MAX(historical_rp - ?, 0), updated_at = ?
		WHERE guild_id = ? AND user_id = ?
		RETURNING ` + balanceColumns

	b, err := scanUnixBalance(r.db.QueryRowContext(ctx, query, amount, time.Now().Unix(), guildID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entities.Balance{}, domain.ErrHistoricalNotFound
		}
		return entities.Balance{}, fmt.Errorf("revoke historical rp: %w", err)
	}
	return b, nil
}

func (r *SQLiteLedgerRepository) Find(ctx context.Context, guildID, userID string) (*entities.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM rp_balances WHERE guild_id = ? AND user_id = ?`

	b, err := scanUnixBalance(r.db.QueryRowContext(ctx, query, guildID, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

func (r *SQLiteLedgerRepository) TopWeekly(ctx context.Context, guildID string, limit int) ([]entities.Balance, error) {
	return sqliteTop(ctx, r.db, "weekly_rp", guildID, limit)
}

func (r *SQLiteLedgerRepository) TopHistorical(ctx context.Context, guildID string, limit int) ([]entities.Balance, error) {
	return sqliteTop(ctx, r.db, "historical_rp", guildID, limit)
}

type sqlQuerier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func sqliteTop(ctx context.Context, q sqlQuerier, counter, guildID string, limit int) ([]entities.Balance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rp_balances
		WHERE guild_id = ? AND %s > 0
		ORDER BY %s DESC, user_id ASC
		LIMIT ?`, balanceColumns, counter, counter)

	rows, err := q.QueryContext(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("get top %s: %w", counter, err)
	}
	defer rows.Close()

	var out []entities.Balance
	for rows.Next() {
		b, err := scanUnixBalance(rows)
		if err != nil {
			return nil, fmt.Errorf("scan top %s: %w", counter, err)
		}
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate top %s: %w", counter, err)
	}
	return out, nil
}

func (r *SQLiteLedgerRepository) Rollover(ctx context.Context, guildID string, at time.Time) ([]entities.Rollover, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("rollover: begin: %w", err)
	}
	defer tx.Rollback()

	aggregates, err := sqliteAggregates(ctx, tx, guildID)
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	out := make([]entities.Rollover, 0, len(aggregates))
	for _, a := range aggregates {
		standings, err := sqliteTop(ctx, tx, "weekly_rp", a.guildID, rolloverTopSize)
		if err != nil {
			return nil, fmt.Errorf("rollover: %w", err)
		}
		out = append(out, entities.Rollover{
			ID:            uuid.New(),
			GuildID:       a.guildID,
			ExecutedAt:    at,
			UsersArchived: int(a.users),
			ArchivedRP:    a.total,
			Top:           standings,
		})
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE rp_balances
		SET historical_rp = CASE
				WHEN historical_rp > 9223372036854775807 - weekly_rp THEN 9223372036854775807
				ELSE historical_rp + weekly_rp
			END,
			weekly_rp = 0,
			updated_at = ?
		WHERE weekly_rp > 0 AND (? = '' OR guild_id = ?)`, at.Unix(), guildID, guildID)
	if err != nil {
		return nil, fmt.Errorf("rollover: archive weekly rp: %w", err)
	}

	for _, ro := range out {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rp_rollovers (id, guild_id, executed_at, users_archived, archived_rp)
			VALUES (?, ?, ?, ?, ?)`,
			ro.ID.String(), ro.GuildID, ro.ExecutedAt.Unix(), ro.UsersArchived, ro.ArchivedRP)
		if err != nil {
			return nil, fmt.Errorf("rollover: record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("rollover: commit: %w", err)
	}
	return out, nil
}

// sqliteAggregates sums weekly RP per guild in Go, since SQLite's SUM
// raises an error on integer overflow.
func sqliteAggregates(ctx context.Context, tx *sql.Tx, guildID string) ([]guildAggregate, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT guild_id, weekly_rp
		FROM rp_balances
		WHERE weekly_rp > 0 AND (? = '' OR guild_id = ?)
		ORDER BY guild_id`, guildID, guildID)
	if err != nil {
		return nil, fmt.Errorf("aggregate weekly rp: %w", err)
	}
	defer rows.Close()

	var out []guildAggregate
	for rows.Next() {
		var (
			guild  string
			weekly int64
		)
		if err := rows.Scan(&guild, &weekly); err != nil {
			return nil, fmt.Errorf("scan weekly aggregate: %w", err)
		}
		if n := len(out); n == 0 || out[n-1].guildID != guild {
			out = append(out, guildAggregate{guildID: guild})
		}
		a := &out[len(out)-1]
		a.users++
		a.total = addCapped(a.total, weekly)
	}
	return out, rows.Err()
}
