// Package cli provides the command-line interface for modeldoctor.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"github.com/leapstack-labs/modeldoctor/internal/cli/commands"
	"github.com/leapstack-labs/modeldoctor/internal/cli/config"
	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	intconfig "github.com/leapstack-labs/modeldoctor/internal/config"
	"github.com/leapstack-labs/modeldoctor/pkg/lint"
	"github.com/spf13/cobra"

	// Register the schema adapters selectable as target types.
	_ "github.com/leapstack-labs/modeldoctor/pkg/adapters/duckdb"
	_ "github.com/leapstack-labs/modeldoctor/pkg/adapters/postgres"
	_ "github.com/leapstack-labs/modeldoctor/pkg/adapters/sqlite"
)

var (
	cfgFile    string
	targetFlag string
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// rendererKey is used to store renderer in context.
type rendererKey struct{}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "modeldoctor",
		Short: "modeldoctor - model validation auditor",
		Long: `modeldoctor audits the models of a relational application for string
columns that have no length limit in the database and no length or
inclusion validator in the model.

Models are declared in YAML manifests or as Go structs with gorm and
validate tags. Columns come from a live database schema when a target is
configured, or from the manifests otherwise.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			// cmd.Flags() carries the persistent flags plus the command's own
			cfg, err := config.LoadConfigWithTarget(cfgFile, targetFlag, cmd.Flags())
			if err != nil {
				return err
			}

			if cfg.DocsURL != "" {
				lint.SetDocsBaseURL(cfg.DocsURL)
			} else {
				lint.ResetDocsBaseURL()
			}

			logger := newLogger(cmd.ErrOrStderr(), cfg.Verbose)
			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)

			renderer := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			ctx = context.WithValue(ctx, rendererKey{}, renderer)
			cmd.SetContext(ctx)

			if configFile := config.GetConfigFileUsed(); configFile != "" {
				logger.Debug("using config file", slog.String("path", configFile))
			}
			if envFile := config.GetEnvFileUsed(); envFile != "" {
				logger.Debug("loaded env file", slog.String("path", envFile))
			}
			if targetFlag != "" {
				logger.Debug("using target", slog.String("environment", targetFlag))
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./modeldoctor.yaml)")
	rootCmd.PersistentFlags().StringVarP(&targetFlag, "target", "t", "", "Environment whose target database is introspected (e.g., dev, prod)")
	rootCmd.PersistentFlags().StringSlice("manifest", nil, "Model manifest files")
	rootCmd.PersistentFlags().String("models-dir", "", "Directory of Go model structs")
	rootCmd.PersistentFlags().String("state", "", "Path to state database")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().StringP("output", "o", "", "Output format (auto|text|markdown|json|table)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return output.Modes, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("target", completeTargets)

	rootCmd.AddCommand(commands.NewAuditCommand())
	rootCmd.AddCommand(commands.NewRulesCommand())
	rootCmd.AddCommand(commands.NewHistoryCommand())
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewVersionCommand(Version, GitCommit, BuildDate))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
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

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	if !verbose {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// completeTargets offers the environments of the config file in the
// working directory, falling back to common names.
func completeTargets(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	cfg, err := config.LoadConfig(cfgFile, nil)
	if err != nil || len(cfg.Environments) == 0 {
		return []string{"dev", "staging", "prod"}, cobra.ShellCompDirectiveNoFileComp
	}
	names := make([]string, 0, len(cfg.Environments))
	for name := range cfg.Environments {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, cobra.ShellCompDirectiveNoFileComp
}

// GetConfig retrieves the config from the command context.
func GetConfig(ctx context.Context) *config.Config {
	if c := config.FromContext(ctx); c != nil {
		return c
	}
	return &config.Config{
		Manifest:     []string{intconfig.DefaultManifest},
		StatePath:    config.DefaultStateFile,
		Environment:  config.DefaultEnv,
		OutputFormat: config.DefaultOutput,
		Concurrency:  config.DefaultConcurrency,
	}
}

// GetRenderer retrieves the renderer from the command context.
func GetRenderer(ctx context.Context) *output.Renderer {
	if r, ok := ctx.Value(rendererKey{}).(*output.Renderer); ok {
		return r
	}
	return output.NewRenderer(os.Stdout, os.Stderr, output.ModeAuto)
}

// NewCompletionCommand creates the completion command.
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for modeldoctor.

To load completions:

Bash:
  $ source <(modeldoctor completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ modeldoctor completion bash > /etc/bash_completion.d/modeldoctor
  # macOS:
  $ modeldoctor completion bash > $(brew --prefix)/etc/bash_completion.d/modeldoctor

Zsh:
  $ modeldoctor completion zsh > "${fpath[1]}/_modeldoctor"

Fish:
  $ modeldoctor completion fish | source

PowerShell:
  PS> modeldoctor completion powershell | Out-String | Invoke-Expression
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
