package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"rpbot/internal/ports/output"
)

// Backend names double as the migrations sub-directory of each dialect.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
)

const sqliteScheme = "sqlite://"

// BackendOf picks the storage backend from the scheme of databaseURL.
func BackendOf(databaseURL string) (Backend, error) {
	switch {
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return BackendPostgres, nil
	case strings.HasPrefix(databaseURL, sqliteScheme):
		return BackendSQLite, nil
	default:
		return "", fmt.Errorf("database: unsupported DATABASE_URL scheme in %q", databaseURL)
	}
}

// NewPool creates a pgx connection pool for PostgreSQL.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	log.Info().Msg("✅ PostgreSQL database connected")
	return pool, nil
}

// OpenSQLite opens the embedded database file named by a sqlite:// URL.
// Writes are serialised on a single connection.
func OpenSQLite(ctx context.Context, databaseURL string) (*sql.DB, error) {
	path, err := SQLitePath(databaseURL)
	if err != nil {
		return nil, err
	}
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite %s: %w", path, err)
	}
	log.Info().Str("path", path).Msg("✅ SQLite database opened")
	return db, nil
}

// SQLitePath extracts the file path from a sqlite:// URL, dropping any
// query parameters meant for the migration driver.
func SQLitePath(databaseURL string) (string, error) {
	if !strings.HasPrefix(databaseURL, sqliteScheme) {
		return "", fmt.Errorf("database: %q is not a sqlite:// URL", databaseURL)
	}
	path, _, _ := strings.Cut(strings.TrimPrefix(databaseURL, sqliteScheme), "?")
	if path == "" {
		return "", fmt.Errorf("database: %q has no file path", databaseURL)
	}
	return path, nil
}

// Open migrates the database behind databaseURL and returns the matching
// ledger repository together with a function releasing its connections.
func Open(ctx context.Context, databaseURL string) (output.LedgerRepository, func(), error) {
	backend, err := BackendOf(databaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := RunMigrations(databaseURL); err != nil {
		return nil, nil, err
	}

	switch backend {
	case BackendPostgres:
		pool, err := NewPool(ctx, databaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		return NewPostgresLedgerRepository(pool), pool.Close, nil
	default:
		db, err := OpenSQLite(ctx, databaseURL)
		if err != nil {
			return nil, nil, err
		}
		return NewSQLiteLedgerRepository(db), func() { _ = db.Close() }, nil
	}
}
