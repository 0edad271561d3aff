package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/purin2/sql-practice-tutor/internal/cli/config"
	"github.com/purin2/sql-practice-tutor/internal/cli/testutil"
	"github.com/purin2/sql-practice-tutor/internal/vocab"
)

func TestNewInitCommand(t *testing.T) {
	tests := []struct {
		name      string
		setupDir  func(t *testing.T, dir string)
		args      []string
		wantErr   bool
		wantFiles []string
	}{
		{
			name:      "init empty directory",
			args:      []string{},
			wantFiles: []string{"gendata.yaml", ".gitignore"},
		},
		{
			name:      "init with vocabulary",
			args:      []string{"--vocabulary"},
			wantFiles: []string{"gendata.yaml", ".gitignore", "vocabulary.yaml"},
		},
		{
			name:      "init subdirectory",
			args:      []string{"practice"},
			wantFiles: []string{"practice/gendata.yaml", "practice/.gitignore"},
		},
		{
			name: "init existing config without force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "gendata.yaml"), []byte("existing"), 0o600)
			},
			args:    []string{},
			wantErr: true,
		},
		{
			name: "init existing config with force",
			setupDir: func(_ *testing.T, dir string) {
				_ = os.WriteFile(filepath.Join(dir, "gendata.yaml"), []byte("existing"), 0o600)
			},
			args:      []string{"--force"},
			wantFiles: []string{"gendata.yaml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			testutil.Chdir(t, tmpDir)

			if tt.setupDir != nil {
				tt.setupDir(t, tmpDir)
			}

			cmd := NewInitCommand()
			buf := new(bytes.Buffer)
			cmd.SetOut(buf)
			cmd.SetErr(buf)
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)

			for _, f := range tt.wantFiles {
				_, err := os.Stat(filepath.Join(tmpDir, f))
				assert.NoError(t, err, "expected %q to exist", f)
			}
		})
	}
}

func TestInitCommandMetadata(t *testing.T) {
	cmd := NewInitCommand()

	assert.Equal(t, "init [directory]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("force"), "--force flag should exist")
	assert.NotNil(t, cmd.Flags().Lookup("vocabulary"), "--vocabulary flag should exist")
}

func TestInitCreatesLoadableConfig(t *testing.T) {
	testutil.Chdir(t, t.TempDir())

	cmd := NewInitCommand()
	cmd.SetOut(new(bytes.Buffer))
	cmd.SetErr(new(bytes.Buffer))
	cmd.SetArgs([]string{"--vocabulary"})
	require.NoError(t, cmd.Execute())

	cfg, err := config.LoadConfig("", nil)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 500, cfg.Generator.Users)
	assert.Equal(t, filepath.Join(cfg.ProjectRoot, "vocabulary.yaml"), cfg.Vocabulary)

	v, err := vocab.Load(cfg.Vocabulary)
	require.NoError(t, err)
	assert.Equal(t, vocab.Default(), v)

	ignore, err := os.ReadFile(filepath.Join(cfg.ProjectRoot, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(ignore), ".gendata/")
}
