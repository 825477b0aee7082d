package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fmigen/fmigen/internal/generator"
	"github.com/fmigen/fmigen/internal/request"
)

func init() {
	rootCmd.AddCommand(validateCmd)
}

var validateCmd = &cobra.Command{
	Use:   "validate <request-file>",
	Short: "Check a generation request file",
	Long:  `Validate a YAML request file against the request schema and report every issue.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Request validation: %s\n", path)

		req, result, err := request.LoadFile(path)
		if err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			return fmt.Errorf("%w: %w", generator.ErrConfig, err)
		}

		if result.Valid {
			if req.ModelName == "" {
				fmt.Fprintf(out, "  [ OK ] Valid request (%d variables); give the model name on the command line\n", req.VariableCount())
				return nil
			}
			fmt.Fprintf(out, "  [ OK ] Valid request for model %s (%d variables)\n", req.ModelName, req.VariableCount())
			return nil
		}

		fmt.Fprintf(out, "  [FAIL] %d validation issue(s):\n", len(result.Issues))
		for _, issue := range result.Issues {
			fmt.Fprintf(out, "    - %s\n", issue)
		}
		return fmt.Errorf("%w: request %s has %d validation issue(s)", generator.ErrConfig, path, len(result.Issues))
	},
}
