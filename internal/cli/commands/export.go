package commands

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// ExportOptions holds options for the export command.
type ExportOptions struct {
	Targets []string
	From    string
}

// ExportResult is the outcome of one sink.
type ExportResult struct {
	Target   string `json:"target"`
	Status   string `json:"status"`
	Duration string `json:"duration"`
	Error    string `json:"error,omitempty"`
}

// NewExportCommand creates the export command.
func NewExportCommand() *cobra.Command {
	opts := &ExportOptions{}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Load a dataset into databases or Parquet files",
		Long: `Materialize a dataset into one or more sinks. Sinks run concurrently and
each one replaces the tables it wrote before.

Targets are written as type=location:
  sqlite=<file>        SQLite database file
  duckdb=<file>        DuckDB database file
  postgres=<dsn>       PostgreSQL connection string
  parquet=<dir>        one <table>.parquet file per table
  json=<file>          schema document

Without --from a fresh dataset is generated from the configuration.`,
		Example: `  # Load the generated document into SQLite and DuckDB
  gendata export --from src/data/schema.json --to sqlite=practice.db --to duckdb=practice.duckdb

  # Generate with a fixed seed straight into Postgres
  gendata export --seed 7 --to postgres=postgres://localhost:5432/practice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runExport(cmd, opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.Targets, "to", nil, "Sink target as type=location (repeatable)")
	cmd.Flags().StringVar(&opts.From, "from", "", "Schema document to export (default: generate a fresh dataset)")
	_ = cmd.MarkFlagRequired("to")

	_ = cmd.RegisterFlagCompletionFunc("to", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		names := sink.List()
		for i, name := range names {
			names[i] = name + "="
		}
		return names, cobra.ShellCompDirectiveNoSpace
	})

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions) error {
	cc := NewCommandContext(cmd)

	// Resolve every target before doing any work.
	sinks := make([]sink.Sink, len(opts.Targets))
	targets := make([]sink.Target, len(opts.Targets))
	for i, raw := range opts.Targets {
		target, err := sink.ParseTarget(raw)
		if err != nil {
			return err
		}
		s, err := sink.New(target, cc.Logger)
		if err != nil {
			return err
		}
		targets[i] = target
		sinks[i] = s
	}

	doc, err := exportDocument(cc, opts.From)
	if err != nil {
		return err
	}

	results := exportAll(cmd, cc.Logger, doc, targets, sinks)
	if err := renderExportResults(cc.Renderer, results); err != nil {
		return err
	}

	failed := 0
	for _, res := range results {
		if res.Status == output.StatusFailed {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("export failed for %d of %d targets", failed, len(results))
	}
	return nil
}

func exportDocument(cc *CommandContext, from string) (*core.Document, error) {
	if from != "" {
		return cc.Document(from)
	}
	seed, err := cc.Seed()
	if err != nil {
		return nil, err
	}
	res, err := cc.Generate(seed)
	if err != nil {
		return nil, err
	}
	cc.Logger.Info("generated dataset for export", slog.Int64("seed", seed))
	return res.Document, nil
}

// exportAll writes doc to every sink concurrently. Sinks only read the
// document, so it is shared.
func exportAll(cmd *cobra.Command, logger *slog.Logger, doc *core.Document, targets []sink.Target, sinks []sink.Sink) []ExportResult {
	results := make([]ExportResult, len(sinks))

	var g errgroup.Group
	for i := range sinks {
		g.Go(func() error {
			start := time.Now()
			err := sinks[i].Write(cmd.Context(), doc)
			results[i] = ExportResult{
				Target:   targets[i].String(),
				Status:   output.StatusOK,
				Duration: time.Since(start).Round(time.Millisecond).String(),
			}
			if err != nil {
				results[i].Status = output.StatusFailed
				results[i].Error = err.Error()
				logger.Error("export failed", slog.String("target", targets[i].String()), slog.String("error", err.Error()))
				return err
			}
			logger.Debug("exported", slog.String("target", targets[i].String()))
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func renderExportResults(r *output.Renderer, results []ExportResult) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(results)
	}

	r.Header(1, "export")
	for _, res := range results {
		detail := res.Duration
		if res.Error != "" {
			detail = res.Error
		}
		r.StatusLine(res.Target, res.Status, detail)
	}
	return nil
}
