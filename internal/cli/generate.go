package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/fmigen/fmigen/internal/branding"
	"github.com/fmigen/fmigen/internal/build"
	"github.com/fmigen/fmigen/internal/config"
	"github.com/fmigen/fmigen/internal/generator"
	"github.com/fmigen/fmigen/internal/logging"
	"github.com/fmigen/fmigen/internal/request"
	"github.com/fmigen/fmigen/internal/templates"
	"github.com/fmigen/fmigen/internal/trash"
)

func init() {
	f := generateCmd.Flags()
	f.String("target-dir", "", "Directory the project folder is created in (default: current directory)")
	f.String("description", "", "Model description written to modelDescription.xml")
	f.String("request", "", "YAML request file with model name, description and variables")
	f.String("template-dir", "", "Template directory to copy instead of the built-in FMI_template")
	f.String("trash-dir", "", "Where an existing project folder is moved before it is replaced")
	f.String("shell", "", "Shell interpreter used for the test build (default: bash)")
	f.Bool("build", false, "Test-build the generated project (needs a template with the FMI support sources, see --template-dir)")
	rootCmd.AddCommand(generateCmd)
}

var generateCmd = &cobra.Command{
	Use:   "generate [model-name]",
	Short: "Create an FMU project from the FMI template",
	Long: `Copy the FMI template into <target-dir>/<model-name>, rename every file and
directory named after the template, and fill in the model description.

An existing project folder at the same location is moved to the trash,
never deleted.

The built-in template ships without the FMI support sources under src/fmi,
so --build only compiles projects made from a full template passed with
--template-dir. A failing test build is reported but never fails the command.

Examples:
  ` + branding.CLIName() + ` generate MyFMU --description "A simple FMU"
  ` + branding.CLIName() + ` generate MyFMU --target-dir ~/fmus --build
  ` + branding.CLIName() + ` generate --request heater.yaml`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := logging.FromContext(ctx)
		flags := cmd.Flags()

		for key, name := range map[string]string{
			config.KeyTemplateDir: "template-dir",
			config.KeyTrashDir:    "trash-dir",
			config.KeyShell:       "shell",
		} {
			if err := config.BindFlag(key, flags.Lookup(name)); err != nil {
				return err
			}
		}

		req, err := buildRequest(cmd, args)
		if err != nil {
			return err
		}

		src, err := templates.Resolve(config.Get(config.KeyTemplateDir))
		if err != nil {
			return fmt.Errorf("%w: %w", generator.ErrConfig, err)
		}

		opts := generator.Options{Template: &src}
		if dir := config.Get(config.KeyTrashDir); dir != "" {
			opts.Trash = trash.New(dir)
		}

		result, err := generator.Generate(ctx, req, opts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printResult(out, result)

		if doBuild, _ := flags.GetBool("build"); doBuild {
			report := build.TestBuild(ctx, result.OutputDir, req.ModelName, build.Options{
				Shell:  config.Get(config.KeyShell),
				Stdout: debugWriter(cmd),
				Stderr: debugWriter(cmd),
			})
			printReport(out, report)
			if !report.Success() {
				log.Warn("test build did not complete; the project was generated", "stage", report.Stage)
			}
		}
		return nil
	},
}

// buildRequest assembles the generation request from an optional request
// file, the positional model name and flags. Flags override file values.
func buildRequest(cmd *cobra.Command, args []string) (*request.Request, error) {
	flags := cmd.Flags()
	req := &request.Request{}

	if path, _ := flags.GetString("request"); path != "" {
		loaded, result, err := request.LoadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", generator.ErrConfig, err)
		}
		if !result.Valid {
			return nil, fmt.Errorf("%w: request file %s: %s", generator.ErrConfig, path, result.Summary())
		}
		req = loaded
	}

	if len(args) == 1 {
		req.ModelName = args[0]
	}
	if flags.Changed("description") {
		req.Description, _ = flags.GetString("description")
	}
	if flags.Changed("target-dir") {
		req.TargetDir, _ = flags.GetString("target-dir")
	}
	return req, nil
}

// debugWriter returns where script output is streamed: the command's error
// stream when debug logging is on, nowhere otherwise.
func debugWriter(cmd *cobra.Command) io.Writer {
	if logging.ParseLevel(config.Get(config.KeyLogLevel)) <= slog.LevelDebug {
		return cmd.ErrOrStderr()
	}
	return nil
}

func printResult(w io.Writer, result *generator.Result) {
	fmt.Fprintf(w, "Created FMU project at %s/\n", result.OutputDir)
	fmt.Fprintf(w, "  GUID: {%s}\n", result.GUID)
	fmt.Fprintf(w, "  Generated: %s\n", result.Timestamp)
	for _, f := range result.Files {
		fmt.Fprintf(w, "  %s\n", f)
	}
	if result.Trashed != nil {
		fmt.Fprintf(w, "\nPrevious project moved to %s\n", result.Trashed.Path)
	}
	if len(result.Warnings) > 0 {
		fmt.Fprintln(w, "\nWarnings:")
		for _, warning := range result.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

func printReport(w io.Writer, report *build.Report) {
	if report.Success() {
		fmt.Fprintln(w, "\nTest build succeeded.")
		if report.Artifact != "" {
			fmt.Fprintf(w, "  Library: %s\n", report.Artifact)
		}
		return
	}
	fmt.Fprintf(w, "\nTest build failed at stage %q", report.Stage)
	if report.ExitCode != 0 {
		fmt.Fprintf(w, " (exit code %d)", report.ExitCode)
	}
	fmt.Fprintln(w)
	if report.Err != nil {
		fmt.Fprintf(w, "  %v\n", report.Err)
	}
	if report.Stderr != "" {
		fmt.Fprintf(w, "%s", report.Stderr)
	}
}
