package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const requestColumns = `id, description, requester_id, created`

func (db *DB) CreateRequest(ctx context.Context, request *models.Request) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO requests (description, requester_id, created) VALUES (?, ?, ?)`,
		request.Description, request.RequesterID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	request.ID = id
	request.Created = now
	return nil
}

func (db *DB) GetRequest(ctx context.Context, id int64) (*models.Request, error) {
	var r models.Request
	err := db.QueryRowContext(ctx, `SELECT `+requestColumns+` FROM requests WHERE id = ?`, id).
		Scan(&r.ID, &r.Description, &r.RequesterID, &r.Created)
	if err != nil {
		return nil, notFound(err, "get request")
	}
	return &r, nil
}

func (db *DB) ListRequestsByRequester(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error) {
	query, args := withPage(
		`SELECT `+requestColumns+` FROM requests WHERE requester_id = ? ORDER BY created DESC, id DESC`,
		[]interface{}{userID}, page)
	return db.queryRequests(ctx, query, args...)
}

// ListRequestsExcludingRequester lists what everyone else is asking for.
func (db *DB) ListRequestsExcludingRequester(ctx context.Context, userID int64, page *models.Page) ([]*models.Request, error) {
	query, args := withPage(
		`SELECT `+requestColumns+` FROM requests WHERE requester_id <> ? ORDER BY created DESC, id DESC`,
		[]interface{}{userID}, page)
	return db.queryRequests(ctx, query, args...)
}

func (db *DB) queryRequests(ctx context.Context, query string, args ...interface{}) ([]*models.Request, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	requests := make([]*models.Request, 0)
	for rows.Next() {
		var r models.Request
		if err := rows.Scan(&r.ID, &r.Description, &r.RequesterID, &r.Created); err != nil {
			return nil, fmt.Errorf("failed to scan request: %w", err)
		}
		requests = append(requests, &r)
	}
	return requests, rows.Err()
}
