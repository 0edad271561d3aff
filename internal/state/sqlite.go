package state

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	_ "modernc.org/sqlite" // sqlite driver
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	path   string
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite state store instance.
// If logger is nil, a discard logger is used.
func NewSQLiteStore(logger *slog.Logger) *SQLiteStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteStore{logger: logger}
}

// Open opens a connection to the SQLite database and brings its schema up
// to date. Use ":memory:" for an in-memory database.
func (s *SQLiteStore) Open(path string) error {
	dsn := ":memory:?_pragma=foreign_keys(1)"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("failed to create state directory: %w", err)
		}
		dsn = fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// one connection keeps :memory: databases alive across calls
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite database: %w", err)
	}

	s.db = db
	s.path = path

	if err := s.Migrate(); err != nil {
		_ = db.Close()
		s.db = nil
		return err
	}

	s.logger.Debug("opened state store", slog.String("path", path))
	return nil
}

// Close closes the SQLite database connection.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// generateID creates a new UUID.
func generateID() string {
	return uuid.New().String()
}
