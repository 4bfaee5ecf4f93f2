// Package history records one audit row per migration run in Postgres.
// Writes are best-effort: the orchestrator logs and continues on failure.
package history

import (
	"context"
	"fmt"
	"time"

	"template-migrator/internal/common/database"
	"template-migrator/internal/common/logger"
)

type RunRecord struct {
	RunID          string
	UserID         string
	Mode           string
	TemplatesCount int
	TotalAttempted int
	ErrorCount     int
	Message        string
	CreatedAt      time.Time
}

type Store struct {
	db     *database.PostgresClient
	logger logger.Logger
}

func NewStore(db *database.PostgresClient, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log,
	}
}

const insertRunQuery = `INSERT INTO migration_runs
	(run_id, user_id, mode, templates_count, total_attempted, error_count, message, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

// RecordRun inserts the audit row for a completed run.
func (s *Store) RecordRun(ctx context.Context, record RunRecord) error {
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(ctx, insertRunQuery,
		record.RunID,
		record.UserID,
		record.Mode,
		record.TemplatesCount,
		record.TotalAttempted,
		record.ErrorCount,
		record.Message,
		record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	s.logger.Debug("Recorded migration run", map[string]interface{}{
		"runId":  record.RunID,
		"userId": record.UserID,
	})

	return nil
}
