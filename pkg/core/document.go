package core

import (
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// TimestampLayout is the layout of every DATETIME value in the document.
// Values carry no zone marker and are always UTC.
const TimestampLayout = "2006-01-02 15:04:05"

// ColumnType is the declared semantic type of a column.
type ColumnType string

// Column types understood by downstream consumers.
const (
	TypeString   ColumnType = "STRING"
	TypeInteger  ColumnType = "INTEGER"
	TypeDateTime ColumnType = "DATETIME"
)

// Valid reports whether t is one of the declared column types.
func (t ColumnType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeDateTime:
		return true
	}
	return false
}

// Cardinality tags a declared relation.
type Cardinality string

// Relation cardinalities.
const (
	ManyToOne Cardinality = "many-to-one"
	OneToMany Cardinality = "one-to-many"
)

// Column describes one column of a table.
type Column struct {
	Name         string     `json:"name"`
	Type         ColumnType `json:"type"`
	Description  string     `json:"description"`
	IsPrimaryKey bool       `json:"isPrimaryKey,omitempty"`
	IsForeignKey bool       `json:"isForeignKey,omitempty"`
}

// Relation declares a reference from a column of the owning table to a
// column of another table.
type Relation struct {
	FromColumn string      `json:"fromColumn"`
	ToTable    string      `json:"toTable"`
	ToColumn   string      `json:"toColumn"`
	Type       Cardinality `json:"type"`
}

// Table is one table descriptor of the exported document.
type Table struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Columns     []Column   `json:"columns"`
	Relations   []Relation `json:"relations"`
	SampleData  []Row      `json:"sampleData"`
}

// ColumnNames returns the column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// PrimaryKey returns the name of the primary key column, or "" if the
// table declares none.
func (t *Table) PrimaryKey() string {
	for _, c := range t.Columns {
		if c.IsPrimaryKey {
			return c.Name
		}
	}
	return ""
}

// Column looks up a column descriptor by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Values returns the values of row in column declaration order.
// Missing columns yield nil.
func (t *Table) Values(row Row) []any {
	values := make([]any, len(t.Columns))
	for i, c := range t.Columns {
		values[i], _ = row.Get(c.Name)
	}
	return values
}

// Document is the single artifact the generator emits.
type Document struct {
	Tables []Table `json:"tables"`
}

// Table looks up a table by name.
func (d *Document) Table(name string) (*Table, bool) {
	for i := range d.Tables {
		if d.Tables[i].Name == name {
			return &d.Tables[i], true
		}
	}
	return nil, false
}

// RowCounts returns the number of sample rows per table, in table order.
func (d *Document) RowCounts() []TableCount {
	counts := make([]TableCount, len(d.Tables))
	for i, t := range d.Tables {
		counts[i] = TableCount{Name: t.Name, Rows: len(t.SampleData)}
	}
	return counts
}

// TableCount pairs a table name with its row count.
type TableCount struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// Encode writes doc as indented JSON. HTML characters and non-ASCII text
// are written literally.
func Encode(w io.Writer, doc *Document) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode document: %w", err)
	}
	return nil
}

// Decode reads a document previously written by Encode.
func Decode(r io.Reader) (*Document, error) {
	var doc Document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}
	return &doc, nil
}

// FormatTimestamp renders t in TimestampLayout after converting to UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// ParseTimestamp parses a DATETIME value as UTC.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.UTC)
}
