package generator

import "errors"

var (
	// ErrInvalidConfig is wrapped by every Config validation failure.
	ErrInvalidConfig = errors.New("invalid generator config")

	// ErrNoRandom is returned when Generate is called without a random stream.
	ErrNoRandom = errors.New("generator needs a random stream")
)

// Reasons a factory stopped before reaching its target.
const (
	ReasonNoPayers       = "no eligible payers"
	ReasonAttemptCeiling = "attempt ceiling reached"
	ReasonRowCap         = "row cap reached"
)
