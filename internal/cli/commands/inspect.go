package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// InspectOptions holds options for the inspect command.
type InspectOptions struct {
	From  string
	Table string
	Limit int
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Preview tables, columns and sample rows",
		Long: `Show the tables of a schema document: their columns, relations and the
first rows of sample data.`,
		Example: `  # Preview every table
  gendata inspect

  # First 20 payments as JSON
  gendata inspect --table payments --limit 20 --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInspect(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Schema document to read (default: the configured output)")
	cmd.Flags().StringVar(&opts.Table, "table", "", "Only show this table")
	cmd.Flags().IntVar(&opts.Limit, "limit", 5, "Sample rows to show per table (0 for none)")

	return cmd
}

func runInspect(cmd *cobra.Command, opts *InspectOptions) error {
	cc := NewCommandContext(cmd)

	if opts.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}

	doc, err := cc.Document(opts.From)
	if err != nil {
		return err
	}

	tables := doc.Tables
	if opts.Table != "" {
		t, ok := doc.Table(opts.Table)
		if !ok {
			names := make([]string, len(doc.Tables))
			for i, t := range doc.Tables {
				names[i] = t.Name
			}
			return fmt.Errorf("table %q not found\nAvailable tables: %s", opts.Table, strings.Join(names, ", "))
		}
		tables = []core.Table{*t}
	}

	previews := make([]core.Table, len(tables))
	for i, t := range tables {
		previews[i] = truncate(t, opts.Limit)
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(core.Document{Tables: previews})
	}

	for i := range previews {
		renderTable(r, &previews[i], len(tables[i].SampleData))
	}
	return nil
}

// truncate returns t with at most limit sample rows.
func truncate(t core.Table, limit int) core.Table {
	if len(t.SampleData) > limit {
		t.SampleData = t.SampleData[:limit]
	}
	return t
}

func renderTable(r *output.Renderer, t *core.Table, total int) {
	r.Header(2, t.Name)
	if t.Description != "" {
		r.Println(r.Muted(t.Description))
	}
	r.Println(r.FormatKeyValue("rows", total))
	r.Println("")

	cols := make([][]any, len(t.Columns))
	for i, c := range t.Columns {
		key := ""
		switch {
		case c.IsPrimaryKey:
			key = "PK"
		case c.IsForeignKey:
			key = "FK"
		}
		cols[i] = []any{c.Name, string(c.Type), key, c.Description}
	}
	r.Table([]string{"column", "type", "key", "description"}, cols)

	if len(t.Relations) > 0 {
		rels := make([][]any, len(t.Relations))
		for i, rel := range t.Relations {
			rels[i] = []any{rel.FromColumn, rel.ToTable + "." + rel.ToColumn, string(rel.Type)}
		}
		r.Table([]string{"column", "references", "type"}, rels)
	}

	if len(t.SampleData) == 0 {
		return
	}
	rows := make([][]any, len(t.SampleData))
	for i, row := range t.SampleData {
		rows[i] = t.Values(row)
	}
	r.Table(t.ColumnNames(), rows)
}
