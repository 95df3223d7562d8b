package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shareit/internal/models"
)

const bookingSelect = `SELECT b.id, b.start_date, b.end_date, b.item_id, i.name, i.owner_id,
       b.booker_id, u.name, b.status, b.version, b.created_at, b.updated_at
  FROM bookings b
  JOIN items i ON i.id = b.item_id
  JOIN users u ON u.id = b.booker_id`

func scanBooking(row rowScanner) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Start, &b.End, &b.ItemID, &b.ItemName, &b.OwnerID,
		&b.BookerID, &b.BookerName, &b.Status, &b.Version, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// CreateBooking inserts a WAITING booking at version 1 and fills the joined
// item and booker fields from the stored row.
func (db *DB) CreateBooking(ctx context.Context, booking *models.Booking) error {
	now := time.Now().UTC()
	if booking.Status == "" {
		booking.Status = models.StatusWaiting
	}

	result, err := db.ExecContext(ctx,
		`INSERT INTO bookings (start_date, end_date, item_id, booker_id, status, version, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, 1, ?, ?)`,
		booking.Start.UTC(), booking.End.UTC(), booking.ItemID, booking.BookerID, booking.Status, now, now,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	stored, err := db.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	*booking = *stored
	return nil
}

func (db *DB) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(db.QueryRowContext(ctx, bookingSelect+` WHERE b.id = ?`, id))
	if err != nil {
		return nil, notFound(err, "get booking")
	}
	return b, nil
}

// UpdateBookingStatusWithVersion changes the status only if the row is still
// at version. A stale version yields ErrConcurrentModification.
func (db *DB) UpdateBookingStatusWithVersion(ctx context.Context, id, version int64, status models.BookingStatus) error {
	result, err := db.ExecContext(ctx,
		`UPDATE bookings SET status = ?, version = version + 1, updated_at = ? WHERE id = ? AND version = ?`,
		status, time.Now().UTC(), id, version,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows > 0 {
		return nil
	}

	var exists bool
	if err := db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM bookings WHERE id = ?)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check booking: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return ErrConcurrentModification
}

// ListBookings returns the bookings made by (RoleBooker) or made on items
// owned by (RoleOwner) q.UserID, filtered by q.State and newest start first.
func (db *DB) ListBookings(ctx context.Context, q models.BookingQuery) ([]*models.Booking, error) {
	query := bookingSelect
	args := []interface{}{q.UserID}
	if q.Role == models.RoleOwner {
		query += ` WHERE i.owner_id = ?`
	} else {
		query += ` WHERE b.booker_id = ?`
	}

	now := q.Now.UTC()
	switch q.State {
	case models.StateAll, "":
	case models.StateWaiting, models.StateApproved, models.StateRejected:
		query += ` AND b.status = ?`
		args = append(args, string(q.State))
	case models.StatePast:
		query += ` AND b.start_date < ? AND b.end_date < ?`
		args = append(args, now, now)
	case models.StateFuture:
		query += ` AND b.start_date > ? AND b.end_date > ?`
		args = append(args, now, now)
	case models.StateCurrent:
		query += ` AND b.start_date < ? AND b.end_date > ?`
		args = append(args, now, now)
	default:
		return nil, &models.UnknownStateError{Value: string(q.State)}
	}

	query, args = withPage(query+` ORDER BY b.start_date DESC`, args, q.Page)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s bookings: %w", q.Role, err)
	}
	defer rows.Close()

	bookings := make([]*models.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

// GetLastBooking returns the latest finished booking of the item, ignoring
// bookings by excludeBookerID and rejected or canceled ones. Nil means none.
func (db *DB) GetLastBooking(ctx context.Context, itemID, excludeBookerID int64, now time.Time) (*models.BookingRef, error) {
	return db.bookingRef(ctx,
		`SELECT id, booker_id FROM bookings
         WHERE item_id = ? AND booker_id <> ? AND status NOT IN (?, ?) AND end_date < ?
         ORDER BY end_date DESC LIMIT 1`,
		itemID, excludeBookerID, models.StatusRejected, models.StatusCanceled, now.UTC())
}

// GetNextBooking returns the nearest booking of the item that has not started.
func (db *DB) GetNextBooking(ctx context.Context, itemID, excludeBookerID int64, now time.Time) (*models.BookingRef, error) {
	return db.bookingRef(ctx,
		`SELECT id, booker_id FROM bookings
         WHERE item_id = ? AND booker_id <> ? AND status NOT IN (?, ?) AND start_date > ?
         ORDER BY start_date ASC LIMIT 1`,
		itemID, excludeBookerID, models.StatusRejected, models.StatusCanceled, now.UTC())
}

func (db *DB) bookingRef(ctx context.Context, query string, args ...interface{}) (*models.BookingRef, error) {
	var ref models.BookingRef
	err := db.QueryRowContext(ctx, query, args...).Scan(&ref.ID, &ref.BookerID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking ref: %w", err)
	}
	return &ref, nil
}

// HasFinishedApprovedBooking reports whether bookerID has an approved booking
// of itemID that ended before now.
func (db *DB) HasFinishedApprovedBooking(ctx context.Context, bookerID, itemID int64, now time.Time) (bool, error) {
	var exists bool
	err := db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM bookings
                        WHERE booker_id = ? AND item_id = ? AND status = ? AND end_date < ?)`,
		bookerID, itemID, models.StatusApproved, now.UTC(),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check finished booking: %w", err)
	}
	return exists, nil
}

// deleteCascading collects the booking ids matched by selectIDs and runs del
// in the same transaction, so the ids are exactly the bookings the cascade
// removed. ErrNotFound is returned when del matches no row.
func (db *DB) deleteCascading(ctx context.Context, entity, selectIDs string, selectArgs []interface{}, del string, delArgs []interface{}) ([]int64, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	rows, err := tx.QueryContext(ctx, selectIDs, selectArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s bookings: %w", entity, err)
	}
	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan booking id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	result, err := tx.ExecContext(ctx, del, delArgs...)
	if err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", entity, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit %s delete: %w", entity, err)
	}
	return ids, nil
}
