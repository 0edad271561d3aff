// Package postgres loads the document into a PostgreSQL database.
//
// This file registers the postgres sink with the sink registry.
// Import this package with a blank identifier to register the sink:
//
//	import _ "github.com/purin2/sql-practice-tutor/internal/sink/postgres"
package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// Name is the registered sink type.
const Name = "postgres"

// Dialect is the PostgreSQL flavour of the shared loader.
var Dialect = sink.Dialect{
	Name:        Name,
	Placeholder: sink.PlaceholderDollar,
	IntegerType: "BIGINT",
}

func init() {
	sink.Register(Name, func(location string, logger *slog.Logger) sink.Sink {
		return New(location, logger)
	})
}

// Sink writes to the database a connection string names. Both URL
// (postgres://...) and key=value connection strings are accepted.
type Sink struct {
	dsn    string
	logger *slog.Logger
}

// New creates a postgres sink.
// If logger is nil, a discard logger is used.
func New(dsn string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{dsn: dsn, logger: logger}
}

// Name returns the sink type.
func (s *Sink) Name() string {
	return Name
}

// Write loads every table of doc.
func (s *Sink) Write(ctx context.Context, doc *core.Document) error {
	cfg, err := pgx.ParseConfig(s.dsn)
	if err != nil {
		return fmt.Errorf("invalid postgres connection string: %w", err)
	}

	s.logger.Debug("connecting to postgres", slog.String("host", cfg.Host), slog.String("database", cfg.Database))

	db := stdlib.OpenDB(*cfg)
	defer func() { _ = db.Close() }()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping postgres: %w", err)
	}
	return sink.Load(ctx, db, Dialect, doc, s.logger)
}
