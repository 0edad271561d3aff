package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTest(mode Mode, isTTY bool) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	return NewRendererWithTTY(out, errOut, isTTY, mode), out, errOut
}

func TestEffectiveMode(t *testing.T) {
	tests := []struct {
		mode  Mode
		isTTY bool
		want  Mode
	}{
		{ModeAuto, true, ModeText},
		{ModeAuto, false, ModeMarkdown},
		{"", false, ModeMarkdown},
		{ModeJSON, true, ModeJSON},
		{ModeText, false, ModeText},
		{ModeMarkdown, true, ModeMarkdown},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			r, _, _ := newTest(tt.mode, tt.isTTY)
			assert.Equal(t, tt.want, r.EffectiveMode())
		})
	}
}

func TestHeader(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Header(2, "row counts")
	assert.Equal(t, "## row counts\n\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.Header(1, "row counts")
	assert.Equal(t, "Row Counts\n", out.String())
}

func TestTable(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.Table([]string{"table", "rows"}, [][]any{{"users", 500}, {"ad_costs", 120}})

	md := out.String()
	assert.Regexp(t, `\|\s*table\s*\|\s*rows\s*\|`, md)
	assert.Regexp(t, `\|\s*users\s*\|\s*500\s*\|`, md)

	r, out, _ = newTest(ModeText, false)
	r.Table([]string{"table", "rows"}, [][]any{{"users", 500}})
	assert.Contains(t, out.String(), "users")
	assert.Contains(t, out.String(), "table")
	assert.NotContains(t, out.String(), "\x1b[")
}

func TestStatusLine(t *testing.T) {
	r, out, _ := newTest(ModeMarkdown, false)
	r.StatusLine("payments", StatusWarning, "no eligible payers")
	assert.Equal(t, "- ! **payments**: no eligible payers\n", out.String())

	r, out, _ = newTest(ModeText, false)
	r.StatusLine("users", StatusOK, "")
	assert.Equal(t, "  ✓ users\n", out.String())
}

func TestWarning(t *testing.T) {
	r, out, errOut := newTest(ModeMarkdown, false)
	r.Warning("history disabled")

	assert.Empty(t, out.String())
	assert.Equal(t, "Warning: history disabled\n", errOut.String())
}

func TestJSON(t *testing.T) {
	r, out, _ := newTest(ModeJSON, false)
	require.NoError(t, r.JSON(map[string]any{"region": "関東", "q": "a&b"}))

	assert.Equal(t, "{\n  \"q\": \"a&b\",\n  \"region\": \"関東\"\n}\n", out.String())
}

func TestNoANSIWithoutTTY(t *testing.T) {
	r, out, _ := newTest(ModeText, false)
	r.Println(r.Styles().Error.Render("failed"))
	r.Println(r.FormatKeyValue("seed", 42))

	assert.False(t, strings.Contains(out.String(), "\x1b["), "unexpected escape codes: %q", out.String())
	assert.Contains(t, out.String(), "seed: 42")
}
