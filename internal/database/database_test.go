package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.Nop()
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestUser(t *testing.T, db *DB, name string) *models.User {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	return u
}

func createTestItem(t *testing.T, db *DB, ownerID int64, name string) *models.Item {
	t.Helper()
	it := &models.Item{Name: name, Description: name + " description", Available: true, OwnerID: ownerID}
	require.NoError(t, db.CreateItem(context.Background(), it))
	return it
}

func createTestBooking(t *testing.T, db *DB, itemID, bookerID int64, start, end time.Time, status models.BookingStatus) *models.Booking {
	t.Helper()
	b := &models.Booking{ItemID: itemID, BookerID: bookerID, Start: start, End: end, Status: status}
	require.NoError(t, db.CreateBooking(context.Background(), b))
	return b
}

func TestNewDB_DirectoryCreation(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "shareit.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	assert.FileExists(t, dbPath)
	assert.Equal(t, dbPath, db.Path())
}

func TestNewDB_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "shareit.db")
	logger := zerolog.Nop()

	db, err := NewDB(dbPath, &logger)
	require.NoError(t, err)
	u := &models.User{Name: "ann", Email: "ann@example.com"}
	require.NoError(t, db.CreateUser(context.Background(), u))
	require.NoError(t, db.Close())

	db, err = NewDB(dbPath, &logger)
	require.NoError(t, err)
	defer db.Close()

	got, err := db.GetUserByID(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ann", got.Name)
}

func TestDB_Ping(t *testing.T) {
	db := setupTestDB(t)
	assert.NoError(t, db.PingContext(context.Background()))
}

func TestWithPage(t *testing.T) {
	q, args := withPage("SELECT 1", []interface{}{7}, nil)
	assert.Equal(t, "SELECT 1", q)
	assert.Equal(t, []interface{}{7}, args)

	q, args = withPage("SELECT 1", []interface{}{7}, &models.Page{From: 5, Size: 2})
	assert.Equal(t, "SELECT 1 LIMIT ? OFFSET ?", q)
	assert.Equal(t, []interface{}{7, 2, 4}, args)
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\%`, escapeLike("50%"))
	assert.Equal(t, `a\_b`, escapeLike("a_b"))
	assert.Equal(t, `c:\\x`, escapeLike(`c:\x`))
}
