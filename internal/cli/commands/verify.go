package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/verify"
)

// VerifyOptions holds options for the verify command.
type VerifyOptions struct {
	From string
	Max  int
}

// ErrVerificationFailed is returned when a document breaks an invariant.
var ErrVerificationFailed = errors.New("verification failed")

// NewVerifyCommand creates the verify command.
func NewVerifyCommand() *cobra.Command {
	opts := &VerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check a dataset's integrity invariants",
		Long: `Check a schema document against the dataset invariants:

  - identifiers are dense, 1-based and follow the time order
  - every user_id reference exists
  - no payment or event precedes its user's registration
  - ad_costs holds one row per month and paid campaign

Exits non-zero when any invariant is violated.`,
		Example: `  # Verify the configured output
  gendata verify

  # Verify another document, reporting every violation
  gendata verify --from /tmp/schema.json --max 0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.From, "from", "", "Schema document to verify (default: the configured output)")
	cmd.Flags().IntVar(&opts.Max, "max", 20, "Violations to list (0 for all)")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *VerifyOptions) error {
	cc := NewCommandContext(cmd)

	doc, err := cc.Document(opts.From)
	if err != nil {
		return err
	}
	v, err := cc.Vocabulary()
	if err != nil {
		return err
	}

	report := verify.Document(doc, v, len(cc.Cfg.Generator.Months()))
	if err := renderVerifyReport(cc.Renderer, report, opts.Max); err != nil {
		return err
	}

	if !report.OK() {
		return fmt.Errorf("%w: %d violations", ErrVerificationFailed, len(report.Violations))
	}
	return nil
}

func renderVerifyReport(r *output.Renderer, report *verify.Report, maxListed int) error {
	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(report)
	}

	r.Header(1, "verification")
	for _, check := range report.Checks {
		n := report.Count(check)
		switch {
		case n > 0:
			r.StatusLine(check, output.StatusFailed, fmt.Sprintf("%d violations", n))
		case report.Count(verify.CheckStructure) > 0 && check != verify.CheckStructure:
			r.StatusLine(check, output.StatusWarning, "skipped")
		default:
			r.StatusLine(check, output.StatusOK, "")
		}
	}

	if report.OK() {
		return nil
	}

	r.Println("")
	r.Header(2, "violations")
	for i, v := range report.Violations {
		if maxListed > 0 && i == maxListed {
			r.Println(r.Muted(fmt.Sprintf("... and %d more", len(report.Violations)-maxListed)))
			break
		}
		r.Println(v.String())
	}
	return nil
}
