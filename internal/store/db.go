package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound reports a missing or already-consumed challenge.
var ErrNotFound = errors.New("challenge not found")

// Challenge is the server-side record for an issued challenge. The video
// artifact itself is not persisted; only what verification needs.
type Challenge struct {
	ID          string    `json:"id" db:"id"`
	Mode        string    `json:"mode" db:"mode"`
	Answer      string    `json:"answer" db:"answer"`
	Hint        string    `json:"hint" db:"hint"`
	Difficulty  string    `json:"difficulty" db:"difficulty"`
	Attempts    int       `json:"attempts" db:"attempts"`
	MaxAttempts int       `json:"max_attempts" db:"max_attempts"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	ExpiresAt   time.Time `json:"expires_at" db:"expires_at"`
}

// Expired reports whether the challenge TTL has passed.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Exhausted reports whether the attempt budget is spent.
func (c *Challenge) Exhausted() bool {
	return c.Attempts >= c.MaxAttempts
}

// DB is the challenge store interface.
type DB interface {
	Close() error
	Migrate() error
	SaveChallenge(ctx context.Context, c *Challenge) error
	GetChallenge(ctx context.Context, id string) (*Challenge, error)
	// RecordAttempt bumps the attempt counter and returns the new count.
	RecordAttempt(ctx context.Context, id string) (int, error)
	Delete(ctx context.Context, id string) error
	// DeleteExpired removes challenges past their TTL and returns how many.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
