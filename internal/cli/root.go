package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmigen/fmigen/internal/branding"
	"github.com/fmigen/fmigen/internal/config"
	"github.com/fmigen/fmigen/internal/logging"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` creates FMU C++ projects from the FMI template: it copies the template
tree, renames files and directories after the model, fills in the model
description (name, description, GUID, generation time) and can test-build
the result.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		config.Load(configPath)

		for key, name := range map[string]string{
			config.KeyLogLevel:  "log-level",
			config.KeyLogFormat: "log-format",
		} {
			if err := config.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return err
			}
		}

		logger := logging.New(config.Get(config.KeyLogLevel), config.Get(config.KeyLogFormat), cmd.ErrOrStderr())
		cmd.SetContext(logging.WithLogger(cmd.Context(), logger))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", fmt.Sprintf("Config file (default: ~/%s/config.yaml)", branding.HomeDir()))
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format: text or json")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	return rootCmd.Execute()
}
