package commands

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/config"
	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/generator"
	"github.com/purin2/sql-practice-tutor/internal/sink/jsonfile"
	"github.com/purin2/sql-practice-tutor/internal/state"
	"github.com/purin2/sql-practice-tutor/internal/vocab"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *output.Renderer
}

// NewCommandContext collects config, logger and renderer for cmd.
func NewCommandContext(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}

// Vocabulary loads the configured override file, or the built-in
// vocabulary when none is set.
func (cc *CommandContext) Vocabulary() (*vocab.Vocabulary, error) {
	if cc.Cfg.Vocabulary == "" {
		return vocab.Default(), nil
	}
	v, err := vocab.Load(cc.Cfg.Vocabulary)
	if err != nil {
		return nil, err
	}
	cc.Logger.Debug("loaded vocabulary", slog.String("path", cc.Cfg.Vocabulary))
	return v, nil
}

// Seed returns the configured seed, or draws a fresh one.
func (cc *CommandContext) Seed() (int64, error) {
	if cc.Cfg.HasSeed() {
		return *cc.Cfg.Seed, nil
	}
	return randomSeed()
}

func randomSeed() (int64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to draw a seed: %w", err)
	}
	return int64(binary.BigEndian.Uint64(b[:]) >> 1), nil
}

// Generate builds a dataset from the configuration with the given seed.
func (cc *CommandContext) Generate(seed int64) (*generator.Result, error) {
	v, err := cc.Vocabulary()
	if err != nil {
		return nil, err
	}
	g, err := generator.New(cc.Cfg.Generator, v, cc.Logger)
	if err != nil {
		return nil, err
	}
	return g.Generate(generator.NewRand(seed))
}

// Document reads the document at from. An empty from reads the configured
// output file.
func (cc *CommandContext) Document(from string) (*core.Document, error) {
	if from == "" {
		from = cc.Cfg.Output
	}
	doc, err := jsonfile.ReadFile(from)
	if err != nil {
		return nil, fmt.Errorf("%w\nHint: run gendata first or pass --from", err)
	}
	return doc, nil
}

// OpenStore opens the run history database.
func (cc *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	store := state.NewSQLiteStore(cc.Logger)
	if err := store.Open(cc.Cfg.StatePath); err != nil {
		return nil, err
	}
	return store, nil
}
