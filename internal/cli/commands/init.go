package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/config"
	"github.com/purin2/sql-practice-tutor/internal/cli/output"
	"github.com/purin2/sql-practice-tutor/internal/vocab"
)

// vocabularyFile is the override file written by init --vocabulary.
const vocabularyFile = "vocabulary.yaml"

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var withVocab bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a gendata.yaml configuration",
		Long: `Create a gendata.yaml with the default dataset shape and a .gitignore for
the run history.

Use --vocabulary to also write the built-in vocabulary to vocabulary.yaml
and point the configuration at it, ready to be edited.`,
		Example: `  # Initialize in current directory
  gendata init

  # Initialize a new directory with an editable vocabulary
  gendata init practice --vocabulary

  # Force overwrite existing config
  gendata init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := config.GetConfig(cmd.Context())
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.Format))

			return runInit(r, dir, force, withVocab)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&withVocab, "vocabulary", false, "Also write an editable copy of the built-in vocabulary")

	return cmd
}

func runInit(r *output.Renderer, dir string, force, withVocab bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, config.ConfigFileNames[0])
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
	}

	files, err := copyTemplate("project", dir, force)
	if err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	if withVocab {
		if err := writeVocabulary(dir, configPath, force); err != nil {
			return err
		}
		files = append(files, vocabularyFile)
	}

	for _, f := range files {
		r.StatusLine(f, output.StatusOK, "")
	}

	r.Println("")
	r.Println("Next steps:")
	r.Println("  gendata           Generate the dataset")
	r.Println("  gendata inspect   Preview the tables")
	r.Println("  gendata export    Load it into SQLite, DuckDB, Postgres or Parquet")

	return nil
}

// writeVocabulary writes the built-in vocabulary next to the config and
// enables it there.
func writeVocabulary(dir, configPath string, force bool) error {
	path := filepath.Join(dir, vocabularyFile)
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", path)
	}
	if err := os.WriteFile(path, vocab.DefaultYAML(), 0o600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	content, err := os.ReadFile(configPath) //nolint:gosec // path built from the target directory
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", configPath, err)
	}
	content = bytes.Replace(content,
		[]byte("# vocabulary: "+vocabularyFile),
		[]byte("vocabulary: "+vocabularyFile), 1)
	if err := os.WriteFile(configPath, content, 0o600); err != nil {
		return fmt.Errorf("failed to update %s: %w", configPath, err)
	}
	return nil
}
