package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/maheshrc27/postpilot/pkg/retry"
)

// writePolicy retries transient persistence failures before surfacing
// them. This is the only layer that absorbs retries locally.
var writePolicy = retry.DefaultPolicy()

// withRetry runs one persistence operation under the write policy. The
// connection is pinged before every attempt so a dropped connection is
// re-established by the pool instead of burning an attempt on a dead
// socket. The ping is an idempotent read, safe to repeat.
func withRetry(ctx context.Context, db *sql.DB, fn func(ctx context.Context) error) error {
	return writePolicy.Do(ctx, func(ctx context.Context) error {
		if err := db.PingContext(ctx); err != nil {
			return fmt.Errorf("database not ready: %w", err)
		}
		return fn(ctx)
	})
}
