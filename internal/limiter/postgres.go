package limiter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	qAllow = `SELECT blocked_until FROM login_attempts WHERE email=$1 AND ip_hash=$2`

	qSuccess = `
INSERT INTO login_attempts (email, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 0, 'epoch', now())
ON CONFLICT (email, ip_hash)
DO UPDATE SET fail_count=0, blocked_until='epoch', updated_at=now()`

	// A failure outside the window restarts the count at 1.
	qFailure = `
INSERT INTO login_attempts (email, ip_hash, fail_count, blocked_until, updated_at)
VALUES ($1, $2, 1, 'epoch', now())
ON CONFLICT (email, ip_hash) DO UPDATE
SET
  fail_count = CASE WHEN now() - login_attempts.updated_at > $3::interval THEN 1 ELSE login_attempts.fail_count + 1 END,
  updated_at = now()
RETURNING fail_count`

	qBlock = `UPDATE login_attempts SET blocked_until=$3 WHERE email=$1 AND ip_hash=$2`
)

// Querier is the subset of a pgx pool used by PG. *pgxpool.Pool and pgxmock satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PG is a PostgreSQL-backed limiter with a sliding failure window and lockout.
type PG struct {
	db       Querier
	window   time.Duration
	maxFails int
	blockFor time.Duration
	now      func() time.Time
}

var _ Limiter = (*PG)(nil)

// NewPG constructs a PostgreSQL-backed limiter.
func NewPG(db Querier, window time.Duration, maxFails int, blockFor time.Duration) *PG {
	return &PG{db: db, window: window, maxFails: maxFails, blockFor: blockFor, now: time.Now}
}

// Allow reports whether login is currently allowed and a retry-after duration.
func (l *PG) Allow(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	var blockedUntil time.Time
	err := l.db.QueryRow(ctx, qAllow, email, ipHash).Scan(&blockedUntil)
	switch {
	case err == nil:
		if now := l.now(); blockedUntil.After(now) {
			return false, blockedUntil.Sub(now), nil
		}
		return true, 0, nil
	case errors.Is(err, pgx.ErrNoRows):
		return true, 0, nil
	default:
		return false, 0, err
	}
}

// Success resets counters for (email, ip).
func (l *PG) Success(ctx context.Context, email string, ipHash []byte) error {
	_, err := l.db.Exec(ctx, qSuccess, email, ipHash)
	return err
}

// Failure records a failed attempt; at maxFails it blocks the pair for blockFor.
func (l *PG) Failure(ctx context.Context, email string, ipHash []byte) (bool, time.Duration, error) {
	var fails int
	if err := l.db.QueryRow(ctx, qFailure, email, ipHash, l.window).Scan(&fails); err != nil {
		return false, 0, err
	}
	if fails < l.maxFails {
		return false, 0, nil
	}
	until := l.now().Add(l.blockFor)
	if _, err := l.db.Exec(ctx, qBlock, email, ipHash, until); err != nil {
		return false, 0, err
	}
	return true, l.blockFor, nil
}
