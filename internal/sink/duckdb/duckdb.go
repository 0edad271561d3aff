// Package duckdb loads the document into a DuckDB database file.
//
// This file registers the duckdb sink with the sink registry.
// Import this package with a blank identifier to register the sink:
//
//	import _ "github.com/purin2/sql-practice-tutor/internal/sink/duckdb"
package duckdb

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/pkg/core"

	_ "github.com/marcboeker/go-duckdb" // duckdb driver
)

// Name is the registered sink type.
const Name = "duckdb"

// Dialect is the DuckDB flavour of the shared loader.
var Dialect = sink.Dialect{
	Name:        Name,
	Placeholder: sink.PlaceholderQuestion,
	IntegerType: "BIGINT",
}

func init() {
	sink.Register(Name, func(location string, logger *slog.Logger) sink.Sink {
		return New(location, logger)
	})
}

// Sink writes to one DuckDB file.
type Sink struct {
	path   string
	logger *slog.Logger
}

// New creates a duckdb sink.
// Use ":memory:" as the path for an in-memory database.
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
	path := s.path
	if path == ":memory:" {
		path = ""
	} else if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return fmt.Errorf("failed to open duckdb connection: %w", err)
	}
	defer func() { _ = db.Close() }()

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping duckdb: %w", err)
	}

	s.logger.Debug("loading duckdb database", slog.String("path", s.path))
	return sink.Load(ctx, db, Dialect, doc, s.logger)
}
