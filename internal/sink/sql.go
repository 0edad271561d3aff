package sink

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// PlaceholderStyle is how a driver numbers query parameters.
type PlaceholderStyle int

// Placeholder styles.
const (
	PlaceholderQuestion PlaceholderStyle = iota // ?
	PlaceholderDollar                           // $1, $2
)

// Dialect captures the differences between SQL sinks that matter for DDL
// and inserts.
type Dialect struct {
	Name        string
	Placeholder PlaceholderStyle
	// IntegerType is the column type INTEGER columns map to.
	IntegerType string
}

// FormatPlaceholder returns a placeholder for the given parameter index (1-based).
func (d Dialect) FormatPlaceholder(index int) string {
	if d.Placeholder == PlaceholderDollar {
		return fmt.Sprintf("$%d", index)
	}
	return "?"
}

// ColumnType maps a document column type to a SQL type. DATETIME values
// stay text so that every engine sees the same literal timestamps.
func (d Dialect) ColumnType(t core.ColumnType) string {
	if t == core.TypeInteger {
		return d.IntegerType
	}
	return "TEXT"
}

// QuoteIdent quotes a table or column name.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

// DropTable returns the statement removing a previous copy of table.
func (d Dialect) DropTable(table string) string {
	return "DROP TABLE IF EXISTS " + QuoteIdent(table)
}

// CreateTable returns the DDL for t. Declared relations become column
// level REFERENCES clauses.
func (d Dialect) CreateTable(t *core.Table) string {
	refs := make(map[string]core.Relation, len(t.Relations))
	for _, rel := range t.Relations {
		refs[rel.FromColumn] = rel
	}

	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		def := QuoteIdent(c.Name) + " " + d.ColumnType(c.Type)
		if c.IsPrimaryKey {
			def += " PRIMARY KEY"
		}
		if rel, ok := refs[c.Name]; ok {
			def += fmt.Sprintf(" REFERENCES %s (%s)", QuoteIdent(rel.ToTable), QuoteIdent(rel.ToColumn))
		}
		defs[i] = def
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(t.Name), strings.Join(defs, ", "))
}

// InsertRow returns the parameterized insert statement for one row of t.
func (d Dialect) InsertRow(t *core.Table) string {
	cols := make([]string, len(t.Columns))
	params := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = QuoteIdent(c.Name)
		params[i] = d.FormatPlaceholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		QuoteIdent(t.Name), strings.Join(cols, ", "), strings.Join(params, ", "))
}

// Load replaces the document's tables in db inside one transaction.
// Tables are dropped in reverse order and recreated in document order so
// referenced tables always exist first.
func Load(ctx context.Context, db *sql.DB, d Dialect, doc *core.Document, logger *slog.Logger) (err error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i := len(doc.Tables) - 1; i >= 0; i-- {
		if _, err = tx.ExecContext(ctx, d.DropTable(doc.Tables[i].Name)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", doc.Tables[i].Name, err)
		}
	}

	for i := range doc.Tables {
		t := &doc.Tables[i]
		if err = loadTable(ctx, tx, d, t); err != nil {
			return err
		}
		logger.Debug("loaded table",
			slog.String("sink", d.Name),
			slog.String("table", t.Name),
			slog.Int("rows", len(t.SampleData)))
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

func loadTable(ctx context.Context, tx *sql.Tx, d Dialect, t *core.Table) error {
	if _, err := tx.ExecContext(ctx, d.CreateTable(t)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.Name, err)
	}
	if len(t.SampleData) == 0 {
		return nil
	}

	stmt, err := tx.PrepareContext(ctx, d.InsertRow(t))
	if err != nil {
		return fmt.Errorf("failed to prepare insert into %s: %w", t.Name, err)
	}
	defer func() { _ = stmt.Close() }()

	for i, row := range t.SampleData {
		if _, err := stmt.ExecContext(ctx, t.Values(row)...); err != nil {
			return fmt.Errorf("failed to insert row %d into %s: %w", i, t.Name, err)
		}
	}
	return nil
}
