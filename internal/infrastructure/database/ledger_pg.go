package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"rpbot/internal/domain"
	"rpbot/internal/domain/entities"
	"rpbot/internal/ports/output"
)

var _ output.LedgerRepository = (*PostgresLedgerRepository)(nil)

// PostgresLedgerRepository implements output.LedgerRepository on a pgx pool.
type PostgresLedgerRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresLedgerRepository(pool *pgxpool.Pool) *PostgresLedgerRepository {
	return &PostgresLedgerRepository{pool: pool}
}

func (r *PostgresLedgerRepository) AddWeekly(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	query := `
		INSERT INTO rp_balances (guild_id, user_id, weekly_rp, historical_rp, updated_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (guild_id, user_id)
		DO UPDATE SET
			weekly_rp = rp_balances.weekly_rp + EXCLUDED.weekly_rp,
			updated_at = EXCLUDED.updated_at
		WHERE rp_balances.weekly_rp <= 9223372036854775807 - EXCLUDED.weekly_rp
		RETURNING ` + balanceColumns

	b, err := scanTimestampBalance(r.pool.QueryRow(ctx, query, guildID, userID, amount, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.Balance{}, domain.ErrBalanceOverflow
		}
		return entities.Balance{}, fmt.Errorf("add weekly rp: %w", err)
	}
	return b, nil
}

func (r *PostgresLedgerRepository) RevokeWeekly(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	query := `
		UPDATE rp_balances
		SET weekly_rp = GREATEST(weekly_rp - $3, 0), updated_at = $4
		WHERE guild_id = $1 AND user_id = $2
		RETURNING ` + balanceColumns

	b, err := scanTimestampBalance(r.pool.QueryRow(ctx, query, guildID, userID, amount, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.Balance{}, domain.ErrBalanceNotFound
		}
		return entities.Balance{}, fmt.Errorf("revoke weekly rp: %w", err)
	}
	return b, nil
}

func (r *PostgresLedgerRepository) RevokeHistorical(ctx context.Context, guildID, userID string, amount int64) (entities.Balance, error) {
	query := `
		UPDATE rp_balances
		SET historical_rp = GREATEST(historical_rp - $3, 0), updated_at = $4
		WHERE guild_id = $1 AND user_id = $2
		RETURNING ` + balanceColumns

	b, err := scanTimestampBalance(r.pool.QueryRow(ctx, query, guildID, userID, amount, time.Now().UTC()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return entities.Balance{}, domain.ErrHistoricalNotFound
		}
		return entities.Balance{}, fmt.Errorf("revoke historical rp: %w", err)
	}
	return b, nil
}

func (r *PostgresLedgerRepository) Find(ctx context.Context, guildID, userID string) (*entities.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM rp_balances WHERE guild_id = $1 AND user_id = $2`

	b, err := scanTimestampBalance(r.pool.QueryRow(ctx, query, guildID, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBalanceNotFound
		}
		return nil, fmt.Errorf("get balance: %w", err)
	}
	return &b, nil
}

func (r *PostgresLedgerRepository) TopWeekly(ctx context.Context, guildID string, limit int) ([]entities.Balance, error) {
	return r.top(ctx, r.pool, "weekly_rp", guildID, limit)
}

func (r *PostgresLedgerRepository) TopHistorical(ctx context.Context, guildID string, limit int) ([]entities.Balance, error) {
	return r.top(ctx, r.pool, "historical_rp", guildID, limit)
}

type pgQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// top lists the rows of guildID with a positive counter, largest first.
// counter is one of the two column names, never user input.
func (r *PostgresLedgerRepository) top(ctx context.Context, q pgQuerier, counter, guildID string, limit int) ([]entities.Balance, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM rp_balances
		WHERE guild_id = $1 AND %s > 0
		ORDER BY %s DESC, user_id ASC
		LIMIT $2`, balanceColumns, counter, counter)

	rows, err := q.Query(ctx, query, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("get top %s: %w", counter, err)
	}
	defer rows.Close()

	var out []entities.Balance
	for rows.Next() {
		b, err := scanTimestampBalance(rows)
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

func (r *PostgresLedgerRepository) Rollover(ctx context.Context, guildID string, at time.Time) ([]entities.Rollover, error) {
	var out []entities.Rollover
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		aggregates, err := r.aggregates(ctx, tx, guildID)
		if err != nil {
			return err
		}
		out = make([]entities.Rollover, 0, len(aggregates))
		for _, a := range aggregates {
			top, err := r.top(ctx, tx, "weekly_rp", a.guildID, rolloverTopSize)
			if err != nil {
				return err
			}
			out = append(out, entities.Rollover{
				ID:            uuid.New(),
				GuildID:       a.guildID,
				ExecutedAt:    at,
				UsersArchived: int(a.users),
				ArchivedRP:    a.total,
				Top:           top,
			})
		}

		_, err = tx.Exec(ctx, `
			UPDATE rp_balances
			SET historical_rp = CASE
					WHEN historical_rp > 9223372036854775807 - weekly_rp THEN 9223372036854775807
					ELSE historical_rp + weekly_rp
				END,
				weekly_rp = 0,
				updated_at = $2
			WHERE weekly_rp > 0 AND ($1 = '' OR guild_id = $1)`, guildID, at)
		if err != nil {
			return fmt.Errorf("archive weekly rp: %w", err)
		}

		for _, ro := range out {
			_, err := tx.Exec(ctx, `
				INSERT INTO rp_rollovers (id, guild_id, executed_at, users_archived, archived_rp)
				VALUES ($1, $2, $3, $4, $5)`,
				ro.ID, ro.GuildID, ro.ExecutedAt, ro.UsersArchived, ro.ArchivedRP)
			if err != nil {
				return fmt.Errorf("record rollover: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("rollover: %w", err)
	}
	return out, nil
}

func (r *PostgresLedgerRepository) aggregates(ctx context.Context, tx pgx.Tx, guildID string) ([]guildAggregate, error) {
	rows, err := tx.Query(ctx, `
		SELECT guild_id, COUNT(*), LEAST(SUM(weekly_rp), 9223372036854775807)::BIGINT
		FROM rp_balances
		WHERE weekly_rp > 0 AND ($1 = '' OR guild_id = $1)
		GROUP BY guild_id
		ORDER BY guild_id`, guildID)
	if err != nil {
		return nil, fmt.Errorf("aggregate weekly rp: %w", err)
	}
	defer rows.Close()

	var out []guildAggregate
	for rows.Next() {
		var a guildAggregate
		if err := rows.Scan(&a.guildID, &a.users, &a.total); err != nil {
			return nil, fmt.Errorf("scan weekly aggregate: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
