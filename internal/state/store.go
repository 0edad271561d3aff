// Package state keeps the history of generation runs in a SQLite file so
// that any dataset can be reproduced from its recorded seed.
package state

import "time"

// Run is one recorded generation.
type Run struct {
	ID     string `json:"id"`
	Seed   int64  `json:"seed"`
	Output string `json:"output"`

	// Vocabulary is the override file used, empty for the built-in one.
	Vocabulary string        `json:"vocabulary,omitempty"`
	StartedAt  time.Time     `json:"startedAt"`
	Duration   time.Duration `json:"duration"`
	Tables     []TableRun    `json:"tables"`
}

// Short reports whether any table came out below its target.
func (r *Run) Short() bool {
	for _, t := range r.Tables {
		if t.Rows < t.Target {
			return true
		}
	}
	return false
}

// TableRun is the per-table outcome of a run.
type TableRun struct {
	Name      string `json:"name"`
	Target    int    `json:"target"`
	Rows      int    `json:"rows"`
	Attempts  int    `json:"attempts"`
	Exhausted bool   `json:"exhausted"`
	Reason    string `json:"reason,omitempty"`
}

// Store records and lists runs.
type Store interface {
	RecordRun(run *Run) error
	GetRun(id string) (*Run, error)
	ListRuns(limit int) ([]*Run, error)
	Close() error
}
