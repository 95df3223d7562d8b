package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

const userColumns = `id, name, email, created_at, updated_at`

func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO users (name, email, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.Name, user.Email, now, now,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u models.User
	err := db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, notFound(err, "get user")
	}
	return &u, nil
}

func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`UPDATE users SET name = ?, email = ?, updated_at = ? WHERE id = ?`,
		user.Name, user.Email, now, user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

// DeleteUser removes the user together with their items. The returned ids
// cover bookings made by the user and bookings of the user's items.
func (db *DB) DeleteUser(ctx context.Context, id int64) ([]int64, error) {
	return db.deleteCascading(ctx, "user",
		`SELECT id FROM bookings
          WHERE booker_id = ? OR item_id IN (SELECT id FROM items WHERE owner_id = ?)
          ORDER BY id`, []interface{}{id, id},
		`DELETE FROM users WHERE id = ?`, []interface{}{id})
}

func (db *DB) ListUsers(ctx context.Context, page *models.Page) ([]*models.User, error) {
	query, args := withPage(`SELECT `+userColumns+` FROM users ORDER BY id`, nil, page)
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
