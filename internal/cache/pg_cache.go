package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrCacheMiss is returned for absent and expired keys alike
var ErrCacheMiss = errors.New("cache miss")

// DB is the subset of pgxpool.Pool the cache uses (pgxmock satisfies it too)
type DB interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	getEntrySQL = `
		SELECT value
		FROM cache_entries
		WHERE key = $1 AND expires_at > $2
	`

	putEntrySQL = `
		INSERT INTO cache_entries (key, value, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value,
		    expires_at = EXCLUDED.expires_at,
		    created_at = NOW()
	`

	deleteEntrySQL = `DELETE FROM cache_entries WHERE key = $1`

	sweepEntriesSQL = `DELETE FROM cache_entries WHERE expires_at <= $1`
)

// PGCache stores opaque values with a TTL in cache_entries.
// Expired rows stay invisible to Get until CleanupExpired removes them.
type PGCache struct {
	db  DB
	now func() time.Time
}

func NewPGCache(db DB) *PGCache {
	return &PGCache{db: db, now: time.Now}
}

// Get returns ErrCacheMiss when the key is absent or expired
func (c *PGCache) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := c.db.QueryRow(ctx, getEntrySQL, key, c.now()).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %s: %w", key, err)
	}
	return value, nil
}

// Set upserts key, replacing both value and expiry
func (c *PGCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("cache set %s: ttl must be positive, got %s", key, ttl)
	}
	if _, err := c.db.Exec(ctx, putEntrySQL, key, value, c.now().Add(ttl)); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

func (c *PGCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.Exec(ctx, deleteEntrySQL, key); err != nil {
		return fmt.Errorf("cache delete %s: %w", key, err)
	}
	return nil
}

// CleanupExpired removes expired rows and reports how many went away.
// The metrics aggregator calls it on every tick.
func (c *PGCache) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := c.db.Exec(ctx, sweepEntriesSQL, c.now())
	if err != nil {
		return 0, fmt.Errorf("cache cleanup: %w", err)
	}
	return tag.RowsAffected(), nil
}
