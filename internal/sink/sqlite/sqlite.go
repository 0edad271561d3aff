// Package sqlite loads the document into a SQLite database file.
//
// This file registers the sqlite sink with the sink registry.
// Import this package with a blank identifier to register the sink:
//
//	import _ "github.com/purin2/sql-practice-tutor/internal/sink/sqlite"
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/pkg/core"

	_ "modernc.org/sqlite" // sqlite driver
)

// Name is the registered sink type.
const Name = "sqlite"

// Dialect is the SQLite flavour of the shared loader.
var Dialect = sink.Dialect{
	Name:        Name,
	Placeholder: sink.PlaceholderQuestion,
	IntegerType: "INTEGER",
}

func init() {
	sink.Register(Name, func(location string, logger *slog.Logger) sink.Sink {
		return New(location, logger)
	})
}

// Sink writes to one database file. Existing tables of the same name are
// replaced.
type Sink struct {
	path   string
	logger *slog.Logger
}

// New creates a sqlite sink for path. Use ":memory:" for a throwaway
// database.
func New(path string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{path: path, logger: logger}
}

// Name returns the sink type.
func (s *Sink) Name() string {
	return Name
}

// Write loads every table of doc.
func (s *Sink) Write(ctx context.Context, doc *core.Document) error {
	if s.path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
			return fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite database: %w", err)
	}
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	s.logger.Debug("loading sqlite database", slog.String("path", s.path))
	return sink.Load(ctx, db, Dialect, doc, s.logger)
}
