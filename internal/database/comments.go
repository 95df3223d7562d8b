package database

import (
	"context"
	"fmt"
	"time"

	"shareit/internal/models"
)

func (db *DB) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now().UTC()
	result, err := db.ExecContext(ctx,
		`INSERT INTO comments (text, item_id, author_id, created) VALUES (?, ?, ?, ?)`,
		comment.Text, comment.ItemID, comment.AuthorID, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	comment.ID = id
	comment.Created = now

	if comment.AuthorName == "" {
		if err := db.QueryRowContext(ctx, `SELECT name FROM users WHERE id = ?`, comment.AuthorID).
			Scan(&comment.AuthorName); err != nil {
			return notFound(err, "get comment author")
		}
	}
	return nil
}

func (db *DB) ListCommentsByItem(ctx context.Context, itemID int64) ([]models.Comment, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT c.id, c.text, c.item_id, c.author_id, u.name, c.created
           FROM comments c JOIN users u ON u.id = c.author_id
          WHERE c.item_id = ?
          ORDER BY c.created ASC, c.id ASC`, itemID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	comments := make([]models.Comment, 0)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Text, &c.ItemID, &c.AuthorID, &c.AuthorName, &c.Created); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
