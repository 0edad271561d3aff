// Package cli provides the command-line interface for gendata.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/purin2/sql-practice-tutor/internal/cli/commands"
	"github.com/purin2/sql-practice-tutor/internal/cli/config"
	"github.com/purin2/sql-practice-tutor/internal/generator"

	// Register the export sinks.
	_ "github.com/purin2/sql-practice-tutor/internal/sink/duckdb"
	_ "github.com/purin2/sql-practice-tutor/internal/sink/jsonfile"
	_ "github.com/purin2/sql-practice-tutor/internal/sink/parquet"
	_ "github.com/purin2/sql-practice-tutor/internal/sink/postgres"
	_ "github.com/purin2/sql-practice-tutor/internal/sink/sqlite"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "gendata",
		Short: "gendata - SQL practice dataset generator",
		Long: `gendata generates a reproducible practice dataset for learning SQL: users,
their payments and in-app events, and the monthly ad spend per campaign.

Run without a subcommand to generate the dataset into src/data/schema.json.
Identifiers follow the time order of each table, every reference resolves
and nothing happens before its user registered.`,
		Version: Version,
		Args:    cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.LoadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cmd, cfg.Verbose)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = context.WithValue(ctx, config.ConfigKey(), cfg)
			ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", slog.String("path", configFile))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return commands.RunGenerate(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
` + fmt.Sprintf("commit %s, built %s\n", GitCommit, BuildDate))

	// Global persistent flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: ./gendata.yaml, searched upward)")
	flags.Int64("seed", 0, "Random seed (default: drawn at random and reported)")
	flags.StringP("output", "o", config.DefaultOutput, "Path of the generated schema document")
	flags.String("format", config.DefaultFormat, "Output format (auto|text|markdown|json)")
	flags.BoolP("verbose", "v", false, "Verbose output")
	flags.Bool("no-history", false, "Don't record the run in the history database")
	flags.String("state", config.DefaultStateFile, "Path to the history database")
	flags.String("vocabulary", "", "Vocabulary file replacing the built-in one")
	flags.Int("users", generator.DefaultUsers, "Number of users")
	flags.Int("payments", generator.DefaultPayments, "Target number of payments")
	flags.Int("events", generator.DefaultEvents, "Maximum number of events")
	flags.Float64("payer-rate", generator.DefaultPayerRate, "Share of users who may pay")

	commands.AddWatchFlag(rootCmd)

	_ = rootCmd.RegisterFlagCompletionFunc("format", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.Formats, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewExportCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewVerifyCommand())
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewDoctorCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// newLogger builds the CLI logger on the command's stderr.
func newLogger(cmd *cobra.Command, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for gendata.

To load completions:

Bash:
  $ source <(gendata completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ gendata completion bash > /etc/bash_completion.d/gendata
  # macOS:
  $ gendata completion bash > $(brew --prefix)/etc/bash_completion.d/gendata

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. Execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ gendata completion zsh > "${fpath[1]}/_gendata"

Fish:
  $ gendata completion fish | source

  # To load completions for each session, execute once:
  $ gendata completion fish > ~/.config/fish/completions/gendata.fish

PowerShell:
  PS> gendata completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}
	return cmd
}
