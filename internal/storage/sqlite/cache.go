package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sandevgo/kagglebot/internal/core"
)

var _ core.CacheRepository = (*CacheRepo)(nil)

// CacheRepo is a key/value store with per-entry expiry.
type CacheRepo struct {
	db  *sql.DB
	now func() time.Time
}

func NewCacheRepo(db *sql.DB) *CacheRepo {
	return &CacheRepo{db: db, now: time.Now}
}

func (c *CacheRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := c.db.QueryRowContext(ctx,
		`SELECT value FROM cache WHERE key = ? AND expires_at > ?`,
		key, c.now().UnixMilli(),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read cache: %w", err)
	}
	return value, true, nil
}

func (c *CacheRepo) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	query := `INSERT INTO cache (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at`
	if _, err := c.db.ExecContext(ctx, query, key, value, c.now().Add(ttl).UnixMilli()); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	return nil
}

// Prune removes expired entries and returns how many were dropped.
func (c *CacheRepo) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM cache WHERE expires_at <= ?`, c.now().UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune cache: %w", err)
	}
	return res.RowsAffected()
}
