package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// SQLiteDB implements the DB interface using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens a SQLite database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency between the serving handlers and the
	// expiry sweeper.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		return nil, fmt.Errorf("failed to set busy timeout: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate applies embedded goose migrations.
func (s *SQLiteDB) Migrate() error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting migration dialect: %w", err)
	}
	if err := goose.Up(s.db, "migrations"); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

// Ping checks database liveness.
func (s *SQLiteDB) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveChallenge stores a new challenge record, assigning an id when empty.
func (s *SQLiteDB) SaveChallenge(ctx context.Context, c *Challenge) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}

	query := `INSERT INTO challenges (
		id, mode, answer, hint, difficulty, attempts, max_attempts, created_at, expires_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, query,
			c.ID, c.Mode, c.Answer, c.Hint, c.Difficulty,
			c.Attempts, c.MaxAttempts, c.CreatedAt.UTC(), c.ExpiresAt.UTC(),
		)
		return err
	})
}

// GetChallenge loads a challenge by id.
func (s *SQLiteDB) GetChallenge(ctx context.Context, id string) (*Challenge, error) {
	query := `SELECT id, mode, answer, hint, difficulty, attempts, max_attempts, created_at, expires_at
		FROM challenges WHERE id = ?`

	var c Challenge
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&c.ID, &c.Mode, &c.Answer, &c.Hint, &c.Difficulty,
		&c.Attempts, &c.MaxAttempts, &c.CreatedAt, &c.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// RecordAttempt increments the attempt counter and returns the new count.
func (s *SQLiteDB) RecordAttempt(ctx context.Context, id string) (int, error) {
	var attempts int
	err := s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `UPDATE challenges SET attempts = attempts + 1 WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		return s.db.QueryRowContext(ctx, `SELECT attempts FROM challenges WHERE id = ?`, id).Scan(&attempts)
	})
	return attempts, err
}

// Delete removes a challenge.
func (s *SQLiteDB) Delete(ctx context.Context, id string) error {
	return s.withRetry(ctx, func() error {
		_, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = ?`, id)
		return err
	})
}

// DeleteExpired removes challenges past their TTL.
func (s *SQLiteDB) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	var removed int64
	err := s.withRetry(ctx, func() error {
		res, err := s.db.ExecContext(ctx, `DELETE FROM challenges WHERE expires_at < ?`, now.UTC())
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed, err
}

// withRetry runs a write with backoff on transient SQLITE_BUSY contention.
func (s *SQLiteDB) withRetry(ctx context.Context, fn func() error) error {
	backoff := retry.WithMaxRetries(5, retry.NewFibonacci(10*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn()
		if err != nil && isBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}
