package history

import (
	"context"
	"fmt"
	"testing"
	"time"

	"template-migrator/internal/common/database"
	"template-migrator/internal/common/logger"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewStore(&database.PostgresClient{DB: db}, logger.NewNoOpLogger()), mock
}

func TestRecordRun_InsertsRow(t *testing.T) {
	store, mock := newTestStore(t)

	createdAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectExec("INSERT INTO migration_runs").
		WithArgs("run-1", "user-1", "fetch", 3, 4, 1, "Migrated 3 of 4 templates", createdAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RecordRun(context.Background(), RunRecord{
		RunID:          "run-1",
		UserID:         "user-1",
		Mode:           "fetch",
		TemplatesCount: 3,
		TotalAttempted: 4,
		ErrorCount:     1,
		Message:        "Migrated 3 of 4 templates",
		CreatedAt:      createdAt,
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_DefaultsCreatedAt(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO migration_runs").
		WithArgs("run-2", "user-1", "custom", 1, 1, 0, "Migrated 1 of 1 templates", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.RecordRun(context.Background(), RunRecord{
		RunID:          "run-2",
		UserID:         "user-1",
		Mode:           "custom",
		TemplatesCount: 1,
		TotalAttempted: 1,
		Message:        "Migrated 1 of 1 templates",
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecordRun_InsertFailureIsWrapped(t *testing.T) {
	store, mock := newTestStore(t)

	mock.ExpectExec("INSERT INTO migration_runs").
		WillReturnError(fmt.Errorf("connection reset"))

	err := store.RecordRun(context.Background(), RunRecord{RunID: "run-3", UserID: "user-1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert run record")
}
