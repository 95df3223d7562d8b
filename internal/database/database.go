package database

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"shareit/internal/models"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

var (
	ErrNotFound               = errors.New("record not found")
	ErrDuplicateEmail         = errors.New("email already registered")
	ErrConcurrentModification = errors.New("concurrent modification")
)

const (
	memoryPath = ":memory:"
	driverName = "sqlite3_shareit"
)

func init() {
	// fold gives SQL a Unicode-aware lower(); the built-in one only folds ASCII.
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("fold", strings.ToLower, true)
		},
	})
}

// DB is the SQLite entity store.
type DB struct {
	*sql.DB
	path   string
	logger *zerolog.Logger
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	if path != memoryPath {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open(driverName, path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// SQLite has a single writer; one connection also keeps :memory: databases
	// from splitting into one database per pooled connection.
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db := &DB{DB: sqlDB, path: path, logger: logger}
	if err := db.createTables(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return db, nil
}

// Path returns the file the database was opened from.
func (db *DB) Path() string {
	return db.path
}

func (db *DB) createTables() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            email TEXT NOT NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS requests (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            description TEXT NOT NULL,
            requester_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS items (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            name TEXT NOT NULL,
            description TEXT NOT NULL,
            available BOOLEAN NOT NULL,
            owner_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            request_id INTEGER REFERENCES requests(id) ON DELETE SET NULL,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS bookings (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            start_date DATETIME NOT NULL,
            end_date DATETIME NOT NULL,
            item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            booker_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            status TEXT NOT NULL DEFAULT 'WAITING',
            version INTEGER NOT NULL DEFAULT 1,
            created_at DATETIME NOT NULL,
            updated_at DATETIME NOT NULL,
            CHECK (start_date < end_date)
        )`,
		`CREATE TABLE IF NOT EXISTS comments (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            text TEXT NOT NULL,
            item_id INTEGER NOT NULL REFERENCES items(id) ON DELETE CASCADE,
            author_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            created DATETIME NOT NULL
        )`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id INTEGER NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,

		`CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users(email)`,
		`CREATE INDEX IF NOT EXISTS idx_items_owner_id ON items(owner_id)`,
		`CREATE INDEX IF NOT EXISTS idx_items_request_id ON items(request_id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_requester_id ON requests(requester_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_booker_start ON bookings(booker_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_item_start ON bookings(item_id, start_date)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_item_id ON comments(item_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sync_queue_status ON sync_queue(status, next_retry_at)`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("error executing query %s: %w", firstLine(query), err)
		}
	}
	return nil
}

func firstLine(query string) string {
	if i := strings.IndexByte(query, '\n'); i >= 0 {
		return query[:i]
	}
	return query
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// notFound converts sql.ErrNoRows into ErrNotFound and wraps anything else.
func notFound(err error, action string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// withPage appends LIMIT/OFFSET for a page; a nil page leaves the query unpaged.
func withPage(query string, args []interface{}, page *models.Page) (string, []interface{}) {
	if page == nil || page.Limit() <= 0 {
		return query, args
	}
	return query + " LIMIT ? OFFSET ?", append(args, page.Limit(), page.Offset())
}
