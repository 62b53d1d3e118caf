package db

import (
	"context"
	"database/sql"
	"os"
	"time"

	"go.uber.org/zap"
)

// StartTempFileCleaner removes stale temp-category uploads with interval.
// Files land in the temp category when their mime type fits no other
// bucket; anything still there after the retention window is an orphan
// no registration will ever reference. Blob removal is best-effort.
func StartTempFileCleaner(
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
			case <-ticker.C:
				cutoff := time.Now().Add(-retention)
				rows, err := db.QueryContext(ctx, `
                    DELETE FROM files
                     WHERE category = 'temp'
                       AND uploaded_at < $1
                 RETURNING file_path
                `, cutoff)
				if err != nil {
					log.Error("failed to clean stale temp files", zap.Error(err))
					continue
				}
				var removed int
				for rows.Next() {
					var path string
					if err := rows.Scan(&path); err != nil {
						log.Error("scan temp file path", zap.Error(err))
						break
					}
					if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
						log.Warn("failed to remove temp blob", zap.String("path", path), zap.Error(err))
					}
					removed++
				}
				rows.Close()
				if removed > 0 {
					log.Info("cleaned stale temp files", zap.Int("removed", removed))
				}
			}
		}
	}()
}
