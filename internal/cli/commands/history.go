package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/state"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit int
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded generation runs",
		Long: `List the runs recorded in the history database, newest first. Each run
keeps its seed, so "gendata --seed <seed>" reproduces the dataset.`,
		Example: `  # Last 10 runs
  gendata history

  # Every run as JSON
  gendata history --limit 0 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "Runs to list (0 for all)")

	return cmd
}

func runHistory(cmd *cobra.Command, opts *HistoryOptions) error {
	cc := NewCommandContext(cmd)

	store, err := cc.OpenStore()
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(opts.Limit)
	if err != nil {
		return err
	}
	if runs == nil {
		runs = []*state.Run{}
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runs)
	}

	r.Header(1, "run history")
	if len(runs) == 0 {
		r.Println(r.Muted("No runs recorded yet."))
		return nil
	}

	rows := make([][]any, len(runs))
	for i, run := range runs {
		rows[i] = []any{
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			run.Seed,
			tableCounts(run.Tables),
			run.Duration.String(),
			run.Output,
		}
	}
	r.Table([]string{"started", "seed", "rows", "duration", "output"}, rows)
	return nil
}

// tableCounts renders "users=500 payments=480*"; a star marks a table that
// stopped short of its target.
func tableCounts(tables []state.TableRun) string {
	parts := make([]string, len(tables))
	for i, t := range tables {
		parts[i] = fmt.Sprintf("%s=%d", t.Name, t.Rows)
		if t.Rows < t.Target {
			parts[i] += "*"
		}
	}
	return strings.Join(parts, " ")
}
