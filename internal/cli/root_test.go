package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/purin2/sql-practice-tutor/internal/cli/commands"
	"github.com/purin2/sql-practice-tutor/internal/cli/testutil"
	"github.com/purin2/sql-practice-tutor/internal/generator"
	"github.com/purin2/sql-practice-tutor/internal/sink"
	"github.com/purin2/sql-practice-tutor/internal/state"
	"github.com/purin2/sql-practice-tutor/internal/verify"
	"github.com/purin2/sql-practice-tutor/pkg/core"
)

// run executes the root command with args inside dir.
func run(t *testing.T, dir string, args ...string) (string, string, error) {
	t.Helper()
	testutil.Chdir(t, dir)

	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerate_WritesDocumentAndHistory(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	stdout, _, err := run(t, dir, "--seed", "42", "--format", "json")
	require.NoError(t, err)

	var summary commands.GenerateSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, int64(42), summary.Seed)
	assert.NotEmpty(t, summary.RunID)
	require.Len(t, summary.Tables, 4)

	f, err := os.Open(filepath.Join(dir, "data", "schema.json"))
	require.NoError(t, err)
	defer func() { _ = f.Close() }()
	doc, err := core.Decode(f)
	require.NoError(t, err)

	users, ok := doc.Table("users")
	require.True(t, ok)
	assert.Len(t, users.SampleData, 20)

	stdout, _, err = run(t, dir, "history", "--format", "json")
	require.NoError(t, err)

	var runs []state.Run
	require.NoError(t, json.Unmarshal([]byte(stdout), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, int64(42), runs[0].Seed)
	assert.Equal(t, summary.RunID, runs[0].ID)
}

func TestGenerate_SameSeedSameDocument(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "generate", "--seed", "7", "-o", "a.json", "--no-history")
	require.NoError(t, err)
	_, _, err = run(t, dir, "generate", "--seed", "7", "-o", "b.json", "--no-history")
	require.NoError(t, err)

	a, err := os.ReadFile(filepath.Join(dir, "a.json"))
	require.NoError(t, err)
	b, err := os.ReadFile(filepath.Join(dir, "b.json"))
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))

	_, err = os.Stat(filepath.Join(dir, ".gendata", "state.db"))
	assert.True(t, os.IsNotExist(err), "--no-history leaves no history database")
}

func TestGenerate_FlagsOverrideConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	stdout, _, err := run(t, dir, "--seed", "1", "--users", "5", "--no-history", "--format", "json")
	require.NoError(t, err)

	var summary commands.GenerateSummary
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.NotEmpty(t, summary.Tables)
	assert.Equal(t, "users", summary.Tables[0].Table)
	assert.Equal(t, 5, summary.Tables[0].Rows)
}

func TestGenerate_InvalidConfig(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "--payer-rate=1.5")
	require.Error(t, err)
	assert.ErrorIs(t, err, generator.ErrInvalidConfig)
}

func TestVerify_GeneratedDocument(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "--seed", "3", "--no-history")
	require.NoError(t, err)

	stdout, _, err := run(t, dir, "verify", "--format", "json")
	require.NoError(t, err)

	var report verify.Report
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Empty(t, report.Violations)
	assert.Contains(t, report.Checks, verify.CheckForeignKey)
}

func TestVerify_MissingDocument(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "verify")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run gendata first")
}

func TestInspect(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "--seed", "5", "--no-history")
	require.NoError(t, err)

	t.Run("single table as json", func(t *testing.T) {
		stdout, _, err := run(t, dir, "inspect", "--table", "payments", "--limit", "2", "--format", "json")
		require.NoError(t, err)

		doc, err := core.Decode(strings.NewReader(stdout))
		require.NoError(t, err)
		require.Len(t, doc.Tables, 1)
		assert.Equal(t, "payments", doc.Tables[0].Name)
		assert.LessOrEqual(t, len(doc.Tables[0].SampleData), 2)
	})

	t.Run("markdown", func(t *testing.T) {
		stdout, _, err := run(t, dir, "inspect", "--limit", "1", "--format", "markdown")
		require.NoError(t, err)

		testutil.AssertNoANSI(t, stdout)
		for _, name := range []string{"users", "payments", "events", "ad_costs"} {
			assert.Contains(t, stdout, "## "+name)
		}
	})

	t.Run("unknown table", func(t *testing.T) {
		_, _, err := run(t, dir, "inspect", "--table", "orders")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Available tables")
	})
}

func TestExport(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "--seed", "11", "--no-history")
	require.NoError(t, err)

	dbPath := filepath.Join(dir, "practice.db")
	parquetDir := filepath.Join(dir, "parquet")
	jsonPath := filepath.Join(dir, "copy.json")

	stdout, _, err := run(t, dir, "export",
		"--from", filepath.Join(dir, "data", "schema.json"),
		"--to", "sqlite="+dbPath,
		"--to", "parquet="+parquetDir,
		"--to", "json="+jsonPath,
		"--format", "json")
	require.NoError(t, err)

	var results []commands.ExportResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &results))
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, "ok", res.Status, res.Target)
	}

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	var users int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "users"`).Scan(&users))
	assert.Equal(t, 20, users)

	for _, name := range []string{"users", "payments", "events", "ad_costs"} {
		assert.FileExists(t, filepath.Join(parquetDir, name+".parquet"))
	}
	assert.FileExists(t, jsonPath)
}

func TestExport_UnknownSink(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "export", "--to", "mysql=localhost")
	require.Error(t, err)
	assert.ErrorIs(t, err, sink.ErrUnknownSink)
	assert.Contains(t, err.Error(), "Available sinks")
}

func TestExport_RequiresTarget(t *testing.T) {
	dir := testutil.SetupTestProject(t)

	_, _, err := run(t, dir, "export")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "to")
}

func TestCompletion(t *testing.T) {
	dir := t.TempDir()

	stdout, _, err := run(t, dir, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gendata")

	_, _, err = run(t, dir, "completion", "tcsh")
	require.Error(t, err)
}

func TestVersionFlag(t *testing.T) {
	stdout, _, err := run(t, t.TempDir(), "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "gendata "+Version)
}
