// Package jsonfile writes the document as the indented JSON file the
// practice frontend bundles.
//
// This file registers the json sink with the sink registry.
// Import this package with a blank identifier to register the sink:
//
//	import _ "github.com/purin2/sql-practice-tutor/internal/sink/jsonfile"
package jsonfile

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// Name is the registered sink type.
const Name = "json"

func init() {
	sink.Register(Name, func(location string, logger *slog.Logger) sink.Sink {
		return New(location, logger)
	})
}

// Sink writes the document to a single file.
type Sink struct {
	path   string
	logger *slog.Logger
}

// New creates a json sink writing to path.
// If logger is nil, a discard logger is used.
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

// Write encodes doc to the sink's path.
func (s *Sink) Write(ctx context.Context, doc *core.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := WriteFile(s.path, doc); err != nil {
		return err
	}
	s.logger.Debug("wrote document", slog.String("path", s.path))
	return nil
}

// WriteFile encodes doc to path, creating parent directories as needed.
// The document is written to a temporary file next to path and renamed
// into place, so readers never observe a half-written file.
func WriteFile(path string, doc *core.Document) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if err = core.Encode(tmp, doc); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadFile decodes a document written by WriteFile.
func ReadFile(path string) (*core.Document, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	doc, err := core.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
