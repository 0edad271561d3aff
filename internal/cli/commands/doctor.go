package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/config"
	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/internal/verify"
)

// HealthCheck represents a single health check result.
type HealthCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok, warn, failed
	Detail string `json:"detail,omitempty"`
}

// NewDoctorCommand creates the doctor command.
func NewDoctorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check the project setup",
		Long: `Check that gendata can run in this project:

  - the configuration loads and is valid
  - the vocabulary parses
  - the output directory is writable
  - the run history database opens
  - the last generated document passes verification

Exits non-zero when a check fails; warnings do not fail.`,
		Example: `  gendata doctor
  gendata doctor --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDoctor(cmd)
		},
	}
}

func runDoctor(cmd *cobra.Command) error {
	cc := NewCommandContext(cmd)
	checks := []HealthCheck{
		checkConfig(cc),
		checkVocabulary(cc),
		checkOutputDir(cc),
		checkHistory(cc),
		checkDocument(cc),
		{Name: "sinks", Status: output.StatusOK, Detail: strings.Join(sink.List(), ", ")},
	}

	r := cc.Renderer
	if r.EffectiveMode() == output.ModeJSON {
		if err := r.JSON(checks); err != nil {
			return err
		}
	} else {
		r.Header(1, "gendata doctor")
		for _, c := range checks {
			r.StatusLine(c.Name, c.Status, c.Detail)
		}
	}

	for _, c := range checks {
		if c.Status == output.StatusFailed {
			return fmt.Errorf("doctor found problems")
		}
	}
	return nil
}

func checkConfig(cc *CommandContext) HealthCheck {
	c := HealthCheck{Name: "config", Status: output.StatusOK, Detail: config.GetConfigFileUsed()}
	if c.Detail == "" {
		c.Status = output.StatusWarning
		c.Detail = "no gendata.yaml found, using defaults (run gendata init)"
	}
	if err := cc.Cfg.Validate(); err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: err.Error()}
	}
	return c
}

func checkVocabulary(cc *CommandContext) HealthCheck {
	c := HealthCheck{Name: "vocabulary", Status: output.StatusOK, Detail: "built-in"}
	if _, err := cc.Vocabulary(); err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: err.Error()}
	}
	if cc.Cfg.Vocabulary != "" {
		c.Detail = cc.Cfg.Vocabulary
	}
	return c
}

func checkOutputDir(cc *CommandContext) HealthCheck {
	dir := filepath.Dir(cc.Cfg.Output)
	c := HealthCheck{Name: "output", Status: output.StatusOK, Detail: cc.Cfg.Output}

	// Walk up to the first existing directory; generate creates the rest.
	for {
		info, err := os.Stat(dir)
		if err == nil {
			if !info.IsDir() {
				return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: dir + " is not a directory"}
			}
			break
		}
		if !errors.Is(err, os.ErrNotExist) || filepath.Dir(dir) == dir {
			return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: err.Error()}
		}
		dir = filepath.Dir(dir)
	}

	f, err := os.CreateTemp(dir, ".gendata-doctor-*")
	if err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: "not writable: " + err.Error()}
	}
	_ = f.Close()
	_ = os.Remove(f.Name())
	return c
}

func checkHistory(cc *CommandContext) HealthCheck {
	c := HealthCheck{Name: "history", Status: output.StatusOK, Detail: cc.Cfg.StatePath}
	if !cc.Cfg.History {
		c.Status = output.StatusWarning
		c.Detail = "disabled"
		return c
	}
	store, err := cc.OpenStore()
	if err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusWarning, Detail: err.Error()}
	}
	defer func() { _ = store.Close() }()

	runs, err := store.ListRuns(0)
	if err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusWarning, Detail: err.Error()}
	}
	c.Detail = fmt.Sprintf("%s (%d runs)", cc.Cfg.StatePath, len(runs))
	return c
}

func checkDocument(cc *CommandContext) HealthCheck {
	c := HealthCheck{Name: "document", Status: output.StatusOK}
	if _, err := os.Stat(cc.Cfg.Output); errors.Is(err, os.ErrNotExist) {
		c.Status = output.StatusWarning
		c.Detail = "not generated yet"
		return c
	}

	doc, err := cc.Document("")
	if err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: err.Error()}
	}
	v, err := cc.Vocabulary()
	if err != nil {
		return HealthCheck{Name: c.Name, Status: output.StatusWarning, Detail: "not verified: " + err.Error()}
	}
	report := verify.Document(doc, v, len(cc.Cfg.Generator.Months()))
	if !report.OK() {
		return HealthCheck{Name: c.Name, Status: output.StatusFailed, Detail: fmt.Sprintf("%d violations (run gendata verify)", len(report.Violations))}
	}

	parts := make([]string, 0, len(doc.Tables))
	for _, tc := range doc.RowCounts() {
		parts = append(parts, fmt.Sprintf("%s=%d", tc.Name, tc.Rows))
	}
	c.Detail = strings.Join(parts, " ")
	return c
}
