package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"shareit/internal/models"
)

const itemColumns = `id, name, description, available, owner_id, request_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		it        models.Item
		requestID sql.NullInt64
	)
	if err := row.Scan(&it.ID, &it.Name, &it.Description, &it.Available, &it.OwnerID, &requestID, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return nil, err
	}
	if requestID.Valid {
		id := requestID.Int64
		it.RequestID = &id
	}
	return &it, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func (db *DB) CreateItem(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO items (name, description, available, owner_id, request_id, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		item.Name, item.Description, item.Available, item.OwnerID, nullableID(item.RequestID), now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	item.ID = id
	item.CreatedAt = now
	item.UpdatedAt = now
	return nil
}

func (db *DB) GetItemByID(ctx context.Context, id int64) (*models.Item, error) {
	it, err := scanItem(db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get item")
	}
	return it, nil
}

// UpdateItem writes the mutable fields of item. Ownership never changes.
func (db *DB) UpdateItem(ctx context.Context, item *models.Item) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, description = ?, available = ?, updated_at = ? WHERE id = ?`,
		item.Name, item.Description, item.Available, now, item.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	item.UpdatedAt = now
	return nil
}

// DeleteItem removes the item and, by cascade, its bookings and comments.
// It returns the ids of the bookings that went with it.
func (db *DB) DeleteItem(ctx context.Context, ownerID, id int64) ([]int64, error) {
	return db.deleteCascading(ctx, "item",
		`SELECT id FROM bookings WHERE item_id = ? ORDER BY id`, []interface{}{id},
		`DELETE FROM items WHERE owner_id = ? AND id = ?`, []interface{}{ownerID, id})
}

func (db *DB) ListItemsByOwner(ctx context.Context, ownerID int64, page *models.Page) ([]*models.Item, error) {
	query, args := withPage(`SELECT `+itemColumns+` FROM items WHERE owner_id = ? ORDER BY id`, []interface{}{ownerID}, page)
	return db.queryItems(ctx, query, args...)
}

// SearchItems matches text case-insensitively against name or description of
// available items. LIKE wildcards in text are matched literally.
func (db *DB) SearchItems(ctx context.Context, text string, page *models.Page) ([]*models.Item, error) {
	pattern := "%" + escapeLike(strings.ToLower(text)) + "%"
	query, args := withPage(
		`SELECT `+itemColumns+` FROM items
         WHERE available = 1 AND (fold(name) LIKE ? ESCAPE '\' OR fold(description) LIKE ? ESCAPE '\')
         ORDER BY id`,
		[]interface{}{pattern, pattern}, page)
	return db.queryItems(ctx, query, args...)
}

// ListItemsByRequests groups the items answering each of the given requests.
func (db *DB) ListItemsByRequests(ctx context.Context, requestIDs []int64) (map[int64][]models.Item, error) {
	out := make(map[int64][]models.Item, len(requestIDs))
	if len(requestIDs) == 0 {
		return out, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(requestIDs)), ",")
	args := make([]interface{}, len(requestIDs))
	for i, id := range requestIDs {
		args[i] = id
	}

	items, err := db.queryItems(ctx,
		`SELECT `+itemColumns+` FROM items WHERE request_id IN (`+placeholders+`) ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[*it.RequestID] = append(out[*it.RequestID], *it)
	}
	return out, nil
}

func (db *DB) queryItems(ctx context.Context, query string, args ...interface{}) ([]*models.Item, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	items := make([]*models.Item, 0)
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
