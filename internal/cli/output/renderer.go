// Package output renders command results for terminals, markdown consumers
// and machines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"golang.org/x/term"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Mode selects how results are rendered.
type Mode string

// Output modes.
const (
	ModeAuto     Mode = "auto" // TTY=text, non-TTY=markdown
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
)

// Status values for StatusLine.
const (
	StatusOK      = "ok"
	StatusWarning = "warn"
	StatusFailed  = "failed"
)

// Renderer writes command output in the selected mode.
type Renderer struct {
	out    io.Writer
	errOut io.Writer
	mode   Mode
	isTTY  bool
	styles *Styles
	title  cases.Caser
}

// NewRenderer creates a renderer. TTY detection looks at out.
func NewRenderer(out, errOut io.Writer, mode Mode) *Renderer {
	return NewRendererWithTTY(out, errOut, isTerminal(out), mode)
}

// NewRendererWithTTY creates a renderer with an explicit TTY state.
func NewRendererWithTTY(out, errOut io.Writer, isTTY bool, mode Mode) *Renderer {
	if mode == "" {
		mode = ModeAuto
	}
	return &Renderer{
		out:    out,
		errOut: errOut,
		mode:   mode,
		isTTY:  isTTY,
		styles: NewStyles(out, isTTY),
		title:  cases.Title(language.English),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// Mode returns the configured mode.
func (r *Renderer) Mode() Mode {
	return r.mode
}

// EffectiveMode resolves ModeAuto against the TTY state.
func (r *Renderer) EffectiveMode() Mode {
	if r.mode != ModeAuto {
		return r.mode
	}
	if r.isTTY {
		return ModeText
	}
	return ModeMarkdown
}

// IsTTY reports whether output goes to a terminal.
func (r *Renderer) IsTTY() bool {
	return r.isTTY
}

// Styles returns the text mode styles.
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Writer returns the standard output writer.
func (r *Renderer) Writer() io.Writer {
	return r.out
}

// ErrWriter returns the diagnostic writer.
func (r *Renderer) ErrWriter() io.Writer {
	return r.errOut
}

// Println writes a line to standard output.
func (r *Renderer) Println(a ...any) {
	_, _ = fmt.Fprintln(r.out, a...)
}

// Printf writes formatted output to standard output.
func (r *Renderer) Printf(format string, a ...any) {
	_, _ = fmt.Fprintf(r.out, format, a...)
}

// JSON writes v as indented JSON.
func (r *Renderer) JSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}

// Header writes a section heading. Level 1 is the page title.
func (r *Renderer) Header(level int, text string) {
	if r.EffectiveMode() == ModeMarkdown {
		r.Println(strings.Repeat("#", max(level, 1)) + " " + text)
		r.Println("")
		return
	}
	style := r.styles.Header2
	if level <= 1 {
		style = r.styles.Header1
	}
	r.Println(style.Render(r.title.String(text)))
}

// Muted renders secondary text.
func (r *Renderer) Muted(text string) string {
	if r.EffectiveMode() != ModeText {
		return text
	}
	return r.styles.Muted.Render(text)
}

// StatusLine writes one line with a status icon.
func (r *Renderer) StatusLine(name, status, detail string) {
	if r.EffectiveMode() == ModeMarkdown {
		icon := map[string]string{StatusOK: "✓", StatusWarning: "!", StatusFailed: "✗"}[status]
		line := fmt.Sprintf("- %s **%s**", icon, name)
		if detail != "" {
			line += ": " + detail
		}
		r.Println(line)
		return
	}

	icon := r.styles.StatusSuccess.String()
	switch status {
	case StatusWarning:
		icon = r.styles.StatusWarning.String()
	case StatusFailed:
		icon = r.styles.StatusFailed.String()
	}
	line := fmt.Sprintf("  %s %s", icon, name)
	if detail != "" {
		line += "  " + r.styles.Muted.Render(detail)
	}
	r.Println(line)
}

// Warning writes a warning to the diagnostic writer.
func (r *Renderer) Warning(msg string) {
	if r.EffectiveMode() == ModeText {
		msg = r.styles.Warning.Render("Warning: " + msg)
	} else {
		msg = "Warning: " + msg
	}
	_, _ = fmt.Fprintln(r.errOut, msg)
}

// FormatKeyValue renders "key: value" for text mode.
func (r *Renderer) FormatKeyValue(key string, value any) string {
	return fmt.Sprintf("%s %v", r.styles.Key.Render(key+":"), value)
}

// Table writes rows under header, as a box table in text mode and a pipe
// table in markdown mode.
func (r *Renderer) Table(header []string, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(r.out)

	h := make(table.Row, len(header))
	for i, name := range header {
		h[i] = name
	}
	t.AppendHeader(h)
	for _, row := range rows {
		t.AppendRow(row)
	}

	style := table.StyleRounded
	if !r.isTTY {
		style = table.StyleLight
	}
	style.Format.Header = text.FormatDefault
	t.SetStyle(style)

	if r.EffectiveMode() == ModeMarkdown {
		t.RenderMarkdown()
		r.Println("")
		return
	}
	t.Render()
}
