package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/fmigen/fmigen/internal/build"
	"github.com/fmigen/fmigen/internal/config"
)

func init() {
	buildCmd.Flags().String("model", "", "Model name (default: name of the project directory)")
	buildCmd.Flags().String("shell", "", "Shell interpreter (default: bash)")
	rootCmd.AddCommand(buildCmd)
}

var buildCmd = &cobra.Command{
	Use:   "build <project-dir>",
	Short: "Test-build a generated FMU project",
	Long: `Run build/build.sh in a generated project, rename the produced shared
library for this platform and run build/deploy.sh.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.BindFlag(config.KeyShell, cmd.Flags().Lookup("shell")); err != nil {
			return err
		}

		dir, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolving project directory: %w", err)
		}
		model, _ := cmd.Flags().GetString("model")
		if model == "" {
			model = filepath.Base(dir)
		}

		report := build.TestBuild(cmd.Context(), dir, model, build.Options{
			Shell:  config.Get(config.KeyShell),
			Stdout: debugWriter(cmd),
			Stderr: debugWriter(cmd),
		})
		printReport(cmd.OutOrStdout(), report)
		if !report.Success() {
			return fmt.Errorf("test build of %s failed at stage %q", model, report.Stage)
		}
		return nil
	},
}
