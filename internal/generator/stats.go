package generator

// TableStats reports how one factory run went.
type TableStats struct {
	Table    string `json:"table"`
	Target   int    `json:"target"`
	Rows     int    `json:"rows"`
	Attempts int    `json:"attempts"`
	Rejected int    `json:"rejected"`

	// Exhausted is set when the factory gave up before reaching Target.
	Exhausted bool   `json:"exhausted"`
	Reason    string `json:"reason,omitempty"`
}

// Short reports whether fewer rows than targeted were produced.
func (s TableStats) Short() bool {
	return s.Rows < s.Target
}
