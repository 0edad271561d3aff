// Package verify checks a generated document against the dataset's
// integrity invariants: dense chronological identifiers, referential
// integrity, temporal causality and the ad cost cross product.
package verify

import (
	"fmt"
	"time"

	"github.com/purin2/sql-practice-tutor/internal/generator"
	"github.com/purin2/sql-practice-tutor/internal/vocab"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// Check names.
const (
	CheckStructure    = "structure"
	CheckDenseIDs     = "dense-ids"
	CheckChronology   = "chronological-order"
	CheckForeignKey   = "foreign-key"
	CheckCausality    = "causality"
	CheckCrossProduct = "ad-cost-cross-product"
	CheckCampaign     = "campaign-membership"
)

// Violation is one broken invariant.
type Violation struct {
	Check   string `json:"check"`
	Table   string `json:"table"`
	Row     int    `json:"row"` // 0-based index into sampleData, -1 for table-level
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.Row < 0 {
		return fmt.Sprintf("[%s] %s: %s", v.Check, v.Table, v.Message)
	}
	return fmt.Sprintf("[%s] %s row %d: %s", v.Check, v.Table, v.Row, v.Message)
}

// Report collects the outcome of a verification pass.
type Report struct {
	Checks     []string    `json:"checks"`
	Violations []Violation `json:"violations"`
}

// OK reports whether no invariant is violated.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Count returns the number of violations for check.
func (r *Report) Count(check string) int {
	n := 0
	for _, v := range r.Violations {
		if v.Check == check {
			n++
		}
	}
	return n
}

func (r *Report) add(check, table string, row int, format string, args ...any) {
	r.Violations = append(r.Violations, Violation{
		Check:   check,
		Table:   table,
		Row:     row,
		Message: fmt.Sprintf(format, args...),
	})
}

// timedTable describes a renumbered table.
type timedTable struct {
	name    string
	idCol   string
	timeCol string
	prefix  string
	digits  int
}

var timedTables = []timedTable{
	{generator.TableUsers, "user_id", "registered_at", generator.UserIDPrefix, generator.UserIDDigits},
	{generator.TablePayments, "payment_id", "payment_date", generator.PaymentIDPrefix, generator.PaymentIDDigits},
	{generator.TableEvents, "event_id", "event_date", generator.EventIDPrefix, generator.EventIDDigits},
}

// Document verifies doc. months is the number of ad cost periods, and v
// supplies the campaign vocabulary (nil selects the default).
func Document(doc *core.Document, v *vocab.Vocabulary, months int) *Report {
	if v == nil {
		v = vocab.Default()
	}
	r := &Report{Checks: []string{
		CheckStructure, CheckDenseIDs, CheckChronology, CheckForeignKey,
		CheckCausality, CheckCrossProduct, CheckCampaign,
	}}

	if !checkStructure(r, doc) {
		return r
	}

	for _, tt := range timedTables {
		t, _ := doc.Table(tt.name)
		checkIdentifiers(r, t, tt)
	}
	checkForeignKeys(r, doc)
	checkCausality(r, doc)
	checkAdCosts(r, doc, v, months)
	return r
}

func checkStructure(r *Report, doc *core.Document) bool {
	ok := true
	for _, name := range []string{generator.TableUsers, generator.TablePayments, generator.TableEvents, generator.TableAdCosts} {
		t, found := doc.Table(name)
		if !found {
			r.add(CheckStructure, name, -1, "table is missing")
			ok = false
			continue
		}
		if t.PrimaryKey() == "" {
			r.add(CheckStructure, name, -1, "no primary key column declared")
		}
		for _, c := range t.Columns {
			if !c.Type.Valid() {
				r.add(CheckStructure, name, -1, "column %s has unknown type %q", c.Name, c.Type)
			}
		}
	}
	return ok
}

func checkIdentifiers(r *Report, t *core.Table, tt timedTable) {
	var prev time.Time
	for i, row := range t.SampleData {
		want := generator.FormatID(tt.prefix, tt.digits, i+1)
		if got := row.String(tt.idCol); got != want {
			r.add(CheckDenseIDs, t.Name, i, "%s is %q, want %q", tt.idCol, got, want)
		}

		at, err := core.ParseTimestamp(row.String(tt.timeCol))
		if err != nil {
			r.add(CheckChronology, t.Name, i, "%s: %v", tt.timeCol, err)
			continue
		}
		if i > 0 && at.Before(prev) {
			r.add(CheckChronology, t.Name, i, "%s %s precedes the previous row", tt.timeCol, row.String(tt.timeCol))
		}
		prev = at
	}
}

// checkForeignKeys follows every declared relation.
func checkForeignKeys(r *Report, doc *core.Document) {
	for _, t := range doc.Tables {
		for _, rel := range t.Relations {
			target, ok := doc.Table(rel.ToTable)
			if !ok {
				r.add(CheckForeignKey, t.Name, -1, "relation targets missing table %s", rel.ToTable)
				continue
			}
			keys := make(map[any]bool, len(target.SampleData))
			for _, row := range target.SampleData {
				v, _ := row.Get(rel.ToColumn)
				keys[v] = true
			}
			for i, row := range t.SampleData {
				v, _ := row.Get(rel.FromColumn)
				if !keys[v] {
					r.add(CheckForeignKey, t.Name, i, "%s %v not found in %s.%s", rel.FromColumn, v, rel.ToTable, rel.ToColumn)
				}
			}
		}
	}
}

func checkCausality(r *Report, doc *core.Document) {
	users, _ := doc.Table(generator.TableUsers)
	registered := make(map[string]time.Time, len(users.SampleData))
	for _, row := range users.SampleData {
		at, err := core.ParseTimestamp(row.String("registered_at"))
		if err == nil {
			registered[row.String("user_id")] = at
		}
	}

	dependents := []struct{ table, timeCol string }{
		{generator.TablePayments, "payment_date"},
		{generator.TableEvents, "event_date"},
	}
	for _, dep := range dependents {
		t, _ := doc.Table(dep.table)
		for i, row := range t.SampleData {
			reg, ok := registered[row.String("user_id")]
			if !ok {
				// reported by the foreign key check
				continue
			}
			at, err := core.ParseTimestamp(row.String(dep.timeCol))
			if err != nil {
				continue
			}
			if at.Before(reg) {
				r.add(CheckCausality, dep.table, i, "%s %s precedes registration of %s at %s",
					dep.timeCol, row.String(dep.timeCol), row.String("user_id"), core.FormatTimestamp(reg))
			}
		}
	}
}

func checkAdCosts(r *Report, doc *core.Document, v *vocab.Vocabulary, months int) {
	t, _ := doc.Table(generator.TableAdCosts)

	campaigns := 0
	for _, s := range v.PaidSources() {
		campaigns += len(s.Campaigns)
	}
	if want := months * campaigns; len(t.SampleData) != want {
		r.add(CheckCrossProduct, t.Name, -1, "has %d rows, want %d months x %d campaigns = %d",
			len(t.SampleData), months, campaigns, want)
	}

	seen := make(map[[3]string]bool, len(t.SampleData))
	for i, row := range t.SampleData {
		if id, _ := row.Int("id"); id != int64(i+1) {
			r.add(CheckDenseIDs, t.Name, i, "id is %d, want %d", id, i+1)
		}

		source, campaign := row.String("ad_source"), row.String("campaign")
		if s, ok := v.Source(source); ok && !s.IsPaid() {
			r.add(CheckCrossProduct, t.Name, i, "unpaid source %s has a cost row", source)
		}
		if !v.HasCampaign(source, campaign) {
			r.add(CheckCampaign, t.Name, i, "campaign %s does not belong to %s", campaign, source)
		}

		key := [3]string{row.String("month"), source, campaign}
		if seen[key] {
			r.add(CheckCrossProduct, t.Name, i, "duplicate row for %s/%s/%s", key[0], key[1], key[2])
		}
		seen[key] = true
	}
}
