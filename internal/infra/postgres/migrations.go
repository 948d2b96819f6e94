package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

var migrationStatements = []string{
	`CREATE TABLE IF NOT EXISTS analysis_jobs (
		id              UUID PRIMARY KEY,
		user_id         TEXT NOT NULL,
		video_key       TEXT NOT NULL,
		result_key      TEXT NOT NULL DEFAULT '',
		status          TEXT NOT NULL,
		frame_count     INT NOT NULL DEFAULT 0,
		event_count     INT NOT NULL DEFAULT 0,
		file_size       BIGINT NOT NULL DEFAULT 0,
		video_duration  DOUBLE PRECISION NOT NULL DEFAULT 0,
		attempt         INT NOT NULL DEFAULT 0,
		max_attempts    INT NOT NULL DEFAULT 0,
		error_message   TEXT NOT NULL DEFAULT '',
		summary         JSONB,
		stats           JSONB,
		created_at      TIMESTAMPTZ NOT NULL,
		updated_at      TIMESTAMPTZ NOT NULL,
		completed_at    TIMESTAMPTZ
	);`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_jobs_user_id ON analysis_jobs(user_id);`,
	`CREATE INDEX IF NOT EXISTS idx_analysis_jobs_status ON analysis_jobs(status);`,
}

// RunMigrations applies the schema statements in order. Statements are
// idempotent, so re-running at every startup is safe.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for i, stmt := range migrationStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
