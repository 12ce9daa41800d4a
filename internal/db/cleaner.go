package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// PurgeClearedSections hard-deletes profile sections soft-deleted before cutoff
// and returns how many rows were removed.
func PurgeClearedSections(ctx context.Context, db *sql.DB, cutoff time.Time) (int64, error) {
	res, err := db.ExecContext(ctx, `
		DELETE FROM profile_sections
		 WHERE deleted = true
		   AND updated_at < $1
	`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("purge cleared sections: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cleared sections: %w", err)
	}
	return n, nil
}

// StartSoftDeleteCleaner purges profile sections that were cleared more than
// retention ago. It runs every interval until ctx is done.
func StartSoftDeleteCleaner(
	ctx context.Context,
	db *sql.DB,
	interval time.Duration,
	retention time.Duration,
	log *zap.Logger,
) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				removed, err := PurgeClearedSections(ctx, db, now.Add(-retention))
				if err != nil {
					log.Error("failed to clean soft-deleted profile sections", zap.Error(err))
					continue
				}
				if removed > 0 {
					log.Info("cleaned soft-deleted profile sections", zap.Int64("removed", removed))
				}
			}
		}
	}()
}
