// Package parquet writes every table of the document to its own Parquet
// file.
//
// This file registers the parquet sink with the sink registry.
// Import this package with a blank identifier to register the sink:
//
//	import _ "github.com/purin2/sql-practice-tutor/internal/sink/parquet"
package parquet

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/apache/arrow-go/v18/parquet/pqarrow"

	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// Name is the registered sink type.
const Name = "parquet"

func init() {
	sink.Register(Name, func(location string, logger *slog.Logger) sink.Sink {
		return New(location, logger)
	})
}

// Sink writes <dir>/<table>.parquet for every table.
type Sink struct {
	dir    string
	logger *slog.Logger
	mem    memory.Allocator
}

// New creates a parquet sink writing into dir.
func New(dir string, logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Sink{dir: dir, logger: logger, mem: memory.NewGoAllocator()}
}

// Name returns the sink type.
func (s *Sink) Name() string {
	return Name
}

// Write writes one file per table.
func (s *Sink) Write(ctx context.Context, doc *core.Document) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create parquet directory: %w", err)
	}

	for i := range doc.Tables {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := &doc.Tables[i]
		path := filepath.Join(s.dir, t.Name+".parquet")
		if err := s.writeTable(path, t); err != nil {
			return fmt.Errorf("table %s: %w", t.Name, err)
		}
		s.logger.Debug("wrote parquet file",
			slog.String("path", path),
			slog.Int("rows", len(t.SampleData)))
	}
	return nil
}

// Schema maps a table to an Arrow schema. INTEGER columns become int64,
// everything else utf8. Descriptions travel as field metadata.
func Schema(t *core.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		var typ arrow.DataType = arrow.BinaryTypes.String
		if c.Type == core.TypeInteger {
			typ = arrow.PrimitiveTypes.Int64
		}
		fields[i] = arrow.Field{
			Name:     c.Name,
			Type:     typ,
			Nullable: !c.IsPrimaryKey,
			Metadata: arrow.NewMetadata([]string{"description"}, []string{c.Description}),
		}
	}
	metadata := arrow.NewMetadata(
		[]string{"table", "description"},
		[]string{t.Name, t.Description},
	)
	return arrow.NewSchema(fields, &metadata)
}

// Record converts the table's rows into one Arrow record.
// The caller releases it.
func Record(mem memory.Allocator, schema *arrow.Schema, t *core.Table) arrow.Record {
	b := array.NewRecordBuilder(mem, schema)
	defer b.Release()

	for _, row := range t.SampleData {
		for i, c := range t.Columns {
			v, ok := row.Get(c.Name)
			if !ok || v == nil {
				b.Field(i).AppendNull()
				continue
			}
			switch fb := b.Field(i).(type) {
			case *array.Int64Builder:
				n, _ := row.Int(c.Name)
				fb.Append(n)
			case *array.StringBuilder:
				fb.Append(fmt.Sprint(v))
			}
		}
	}
	return b.NewRecord()
}

func (s *Sink) writeTable(path string, t *core.Table) error {
	file, err := os.Create(path) //nolint:gosec // path is built from the target directory
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() { _ = file.Close() }()

	schema := Schema(t)
	writer, err := pqarrow.NewFileWriter(schema, file, nil, pqarrow.NewArrowWriterProperties(pqarrow.WithAllocator(s.mem)))
	if err != nil {
		return fmt.Errorf("failed to create parquet writer: %w", err)
	}

	rec := Record(s.mem, schema, t)
	defer rec.Release()

	if err := writer.Write(rec); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return nil
}
