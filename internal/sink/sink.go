// Package sink materializes a generated document into external stores.
//
// Concrete sinks live in subpackages and register themselves in init().
// Import them with a blank identifier to make them available:
//
//	import _ "github.com/purin2/sql-practice-tutor/internal/sink/sqlite"
package sink

import (
	"context"
	"fmt"
	"strings"

	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// Sink writes a finished document somewhere. Sinks only read the document,
// so several may run concurrently on the same one.
type Sink interface {
	// Name returns the registered sink type.
	Name() string
	// Write materializes every table of doc.
	Write(ctx context.Context, doc *core.Document) error
}

// Target names a sink type and where it writes.
type Target struct {
	Type     string
	Location string
}

func (t Target) String() string {
	return t.Type + "=" + t.Location
}

// ParseTarget parses a "type=location" pair.
func ParseTarget(s string) (Target, error) {
	typ, location, ok := strings.Cut(s, "=")
	typ = strings.TrimSpace(typ)
	location = strings.TrimSpace(location)
	if !ok || typ == "" || location == "" {
		return Target{}, fmt.Errorf("invalid sink target %q: want type=location", s)
	}
	return Target{Type: strings.ToLower(typ), Location: location}, nil
}
