package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"shareit/internal/models"
)

const syncTaskColumns = `id, task_type, booking_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	if task.Status == "" {
		task.Status = models.SyncStatusPending
	}
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO sync_queue (task_type, booking_id, payload, status, retry_count, last_error, created_at, next_retry_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.TaskType, task.BookingID, task.Payload, task.Status, task.RetryCount, task.LastError, now, task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync task: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	task.ID = id
	task.CreatedAt = now
	return nil
}

func (db *DB) GetSyncTask(ctx context.Context, id int64) (*models.SyncTask, error) {
	t, err := scanSyncTask(db.QueryRowContext(ctx, `SELECT `+syncTaskColumns+` FROM sync_queue WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get sync task")
	}
	return t, nil
}

// GetPendingSyncTasks returns due pending and retry tasks, oldest first.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	return db.querySyncTasks(ctx,
		`SELECT `+syncTaskColumns+` FROM sync_queue
          WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
          ORDER BY created_at ASC, id ASC LIMIT ?`,
		models.SyncStatusPending, models.SyncStatusRetry, time.Now().UTC(), limit)
}

func (db *DB) GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error) {
	return db.querySyncTasks(ctx,
		`SELECT `+syncTaskColumns+` FROM sync_queue WHERE status = ? ORDER BY created_at DESC, id DESC`,
		models.SyncStatusFailed)
}

// UpdateSyncTaskStatus records the outcome of a delivery attempt. A retry bumps
// the retry counter; completed and failed stamp processed_at.
func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var lastError interface{}
	if errMsg != "" {
		lastError = errMsg
	}
	var retryAt interface{}
	if nextRetryAt != nil {
		retryAt = nextRetryAt.UTC()
	}

	var (
		query string
		args  []interface{}
	)
	switch status {
	case models.SyncStatusRetry:
		query = `UPDATE sync_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []interface{}{status, lastError, retryAt, id}
	case models.SyncStatusCompleted, models.SyncStatusFailed:
		query = `UPDATE sync_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, retryAt, time.Now().UTC(), id}
	default:
		query = `UPDATE sync_queue SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, retryAt, id}
	}

	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update sync task status: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSyncTask(row rowScanner) (*models.SyncTask, error) {
	var (
		t           models.SyncTask
		lastError   sql.NullString
		processedAt sql.NullTime
		nextRetryAt sql.NullTime
	)
	err := row.Scan(&t.ID, &t.TaskType, &t.BookingID, &t.Payload, &t.Status, &t.RetryCount,
		&lastError, &t.CreatedAt, &processedAt, &nextRetryAt)
	if err != nil {
		return nil, err
	}
	if lastError.Valid {
		t.LastError = &lastError.String
	}
	if processedAt.Valid {
		t.ProcessedAt = &processedAt.Time
	}
	if nextRetryAt.Valid {
		t.NextRetryAt = &nextRetryAt.Time
	}
	return &t, nil
}

func (db *DB) querySyncTasks(ctx context.Context, query string, args ...interface{}) ([]models.SyncTask, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.SyncTask, 0)
	for rows.Next() {
		t, err := scanSyncTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}
