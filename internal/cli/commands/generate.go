package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/config"
	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/generator"
	"github.com/purin2/sql-practice-tutor/internal/sink/jsonfile"
	"github.com/purin2/sql-practice-tutor/internal/state"
)

// watchDebounce collapses the burst of events editors emit on save.
const watchDebounce = 150 * time.Millisecond

// GenerateSummary is the outcome of one generate run.
type GenerateSummary struct {
	Seed     int64                  `json:"seed"`
	Output   string                 `json:"output"`
	RunID    string                 `json:"runId,omitempty"`
	Duration string                 `json:"duration"`
	Tables   []generator.TableStats `json:"tables"`
}

// NewGenerateCommand creates the generate command. The root command runs
// the same thing when called without a subcommand.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate the practice dataset",
		Long: `Generate the four-table practice dataset (users, payments, events and
ad_costs) and write it as a schema document.

The run is recorded in the history database with its seed, so any dataset
can be reproduced with --seed.`,
		Example: `  # Generate with a random seed into src/data/schema.json
  gendata

  # Reproduce a dataset
  gendata generate --seed 42 -o /tmp/schema.json

  # Regenerate whenever gendata.yaml or the vocabulary file changes
  gendata --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return RunGenerate(cmd)
		},
	}
	AddWatchFlag(cmd)
	return cmd
}

// AddWatchFlag registers --watch on cmd.
func AddWatchFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("watch", false, "Regenerate when the config or vocabulary file changes")
}

// RunGenerate generates once, or keeps regenerating with --watch.
func RunGenerate(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	if !cc.Cfg.Watch {
		_, err := generateOnce(cc)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return watchAndGenerate(ctx, cmd, cc)
}

func generateOnce(cc *CommandContext) (*GenerateSummary, error) {
	seed, err := cc.Seed()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := cc.Generate(seed)
	if err != nil {
		return nil, err
	}
	if err := jsonfile.WriteFile(cc.Cfg.Output, res.Document); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	cc.Logger.Info("wrote dataset",
		slog.String("path", cc.Cfg.Output),
		slog.Int64("seed", seed),
		slog.Duration("duration", elapsed))

	summary := &GenerateSummary{
		Seed:     seed,
		Output:   cc.Cfg.Output,
		Duration: elapsed.Round(time.Millisecond).String(),
		Tables:   res.Stats,
	}
	if cc.Cfg.History {
		summary.RunID = recordRun(cc, summary, start, elapsed)
	}

	return summary, renderGenerateSummary(cc.Renderer, summary)
}

// recordRun stores the run in history. Failures are only logged.
func recordRun(cc *CommandContext, s *GenerateSummary, start time.Time, elapsed time.Duration) string {
	store, err := cc.OpenStore()
	if err != nil {
		cc.Logger.Warn("run history unavailable", slog.String("error", err.Error()))
		return ""
	}
	defer func() { _ = store.Close() }()

	run := &state.Run{
		Seed:       s.Seed,
		Output:     s.Output,
		Vocabulary: cc.Cfg.Vocabulary,
		StartedAt:  start.UTC(),
		Duration:   elapsed,
	}
	for _, t := range s.Tables {
		run.Tables = append(run.Tables, state.TableRun{
			Name:      t.Table,
			Target:    t.Target,
			Rows:      t.Rows,
			Attempts:  t.Attempts,
			Exhausted: t.Exhausted,
			Reason:    t.Reason,
		})
	}
	if err := store.RecordRun(run); err != nil {
		cc.Logger.Warn("failed to record run", slog.String("error", err.Error()))
		return ""
	}
	return run.ID
}

func renderGenerateSummary(r *output.Renderer, s *GenerateSummary) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(s)
	}

	r.Header(1, "dataset generated")
	r.Println(r.FormatKeyValue("output", s.Output))
	r.Println(r.FormatKeyValue("seed", s.Seed))
	if s.RunID != "" {
		r.Println(r.FormatKeyValue("run", s.RunID))
	}
	r.Println(r.FormatKeyValue("duration", s.Duration))
	r.Println("")

	rows := make([][]any, len(s.Tables))
	for i, t := range s.Tables {
		rows[i] = []any{t.Table, t.Rows, t.Target, t.Attempts}
	}
	r.Table([]string{"table", "rows", "target", "attempts"}, rows)

	for _, t := range s.Tables {
		if t.Exhausted {
			r.Warning(fmt.Sprintf("%s: %d of %d rows (%s)", t.Table, t.Rows, t.Target, t.Reason))
		}
	}
	return nil
}

// watchAndGenerate regenerates whenever the config file or the vocabulary
// file changes, until ctx is done.
func watchAndGenerate(ctx context.Context, cmd *cobra.Command, cc *CommandContext) error {
	cfgFile := config.GetConfigFileUsed()
	files := watchedFiles(cfgFile, cc.Cfg.Vocabulary)
	if len(files) == 0 {
		return fmt.Errorf("nothing to watch: no config or vocabulary file in use")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files on save, so watch the directories.
	dirs := make(map[string]bool)
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}

	if _, err := generateOnce(cc); err != nil {
		cc.Logger.Error("generation failed", slog.String("error", err.Error()))
	}
	cc.Renderer.Println(cc.Renderer.Muted("Watching for changes. Press Ctrl+C to stop."))

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !files[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			pending = time.After(watchDebounce)

		case <-pending:
			pending = nil
			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err == nil {
				err = cfg.Validate()
			}
			if err != nil {
				cc.Logger.Error("config reload failed", slog.String("error", err.Error()))
				continue
			}
			cc.Cfg = cfg
			cc.Logger.Debug("inputs changed, regenerating")
			if _, err := generateOnce(cc); err != nil {
				cc.Logger.Error("generation failed", slog.String("error", err.Error()))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cc.Logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}

func watchedFiles(paths ...string) map[string]bool {
	files := make(map[string]bool)
	for _, p := range paths {
		if p == "" {
			continue
		}
		if abs, err := filepath.Abs(p); err == nil {
			files[filepath.Clean(abs)] = true
		}
	}
	return files
}
