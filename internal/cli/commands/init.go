package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/modeldoctor/internal/cli/output"
	intconfig "github.com/leapstack-labs/modeldoctor/internal/config"
	"github.com/spf13/cobra"
)

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new modeldoctor project",
		Long: `Initialize a modeldoctor project with a configuration file and a model manifest.

This creates:
  - modeldoctor.yaml configuration file
  - models.yaml manifest declaring your models
  - .gitignore entries for the state database

Use --example to create a demo project with findings to explore, including
Go model structs under app/models.`,
		Example: `  # Initialize in current directory
  modeldoctor init

  # Initialize with a full example
  modeldoctor init --example

  # Initialize in a new directory
  modeldoctor init my-app --example`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.ModeAuto)

			template := "minimal"
			if example {
				template = "example"
			}
			return runInit(r, dir, template, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Create an example project with Go model structs")

	return cmd
}

func runInit(r *output.Renderer, dir, template string, force bool) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, intconfig.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", intconfig.ConfigFileName)
	}

	if err := copyTemplate(template, dir, force); err != nil {
		return fmt.Errorf("failed to initialize project: %w", err)
	}

	files, _ := listTemplateFiles(template)
	styles := r.Styles()
	for _, f := range files {
		r.Printf("  %s %s\n", styles.StatusSuccess.String(), f)
	}

	r.Println("")
	r.Success("modeldoctor project initialized!")
	r.Println("")
	r.Println("Next steps:")
	r.Println("  1. Declare your models in models.yaml")
	r.Println("  2. Point target in modeldoctor.yaml at your database")
	r.Println("  3. Run 'modeldoctor audit'")

	return nil
}
