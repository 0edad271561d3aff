// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/purin2/sql-practice-tutor/internal/cli/output"
)

// SetupTestProject creates a temporary project holding a gendata.yaml for a
// small dataset and returns its directory.
func SetupTestProject(t *testing.T) string {
	t.Helper()

	tmpDir := t.TempDir()

	cfg := `output: data/schema.json
state_path: .gendata/state.db
generator:
  users: 20
  payments: 10
  events: 100
  events_per_user_min: 1
  events_per_user_max: 10
`
	if err := os.WriteFile(filepath.Join(tmpDir, "gendata.yaml"), []byte(cfg), 0o644); err != nil {
		t.Fatalf("failed to create gendata.yaml: %v", err)
	}

	return tmpDir
}

// Chdir switches into dir until the test ends.
func Chdir(t *testing.T, dir string) {
	t.Helper()

	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to change directory: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(old) })
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*output.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode output.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: output.NewRendererWithTTY(out, errOut, isTTY, mode),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a test renderer in markdown mode, as
// used when output is piped.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(output.ModeMarkdown, false)
}

// NewTestRendererTTY creates a test renderer in text mode on a simulated
// terminal.
func NewTestRendererTTY() *TestRenderer {
	return NewTestRenderer(output.ModeText, true)
}

// NewTestRendererJSON creates a new test renderer in JSON mode.
func NewTestRendererJSON() *TestRenderer {
	return NewTestRenderer(output.ModeJSON, false)
}

// Output returns the combined stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}

// AssertValidMarkdown checks that headers are non-empty and that every
// table row has as many cells as the header row above it.
func AssertValidMarkdown(t *testing.T, md string) {
	t.Helper()

	cells := 0
	for i, line := range strings.Split(md, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") && strings.TrimLeft(trimmed, "# ") == "" {
			t.Errorf("empty header at line %d: %q", i+1, line)
		}
		if !strings.HasPrefix(trimmed, "|") {
			cells = 0
			continue
		}
		n := strings.Count(trimmed, "|") - 1
		if cells == 0 {
			cells = n
		} else if n != cells {
			t.Errorf("table row at line %d has %d cells, want %d", i+1, n, cells)
		}
	}
}
