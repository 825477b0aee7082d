package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fmigen/fmigen/internal/config"
	"github.com/fmigen/fmigen/internal/platform"
	"github.com/fmigen/fmigen/internal/templates"
	"github.com/fmigen/fmigen/internal/toolcheck"
	"github.com/fmigen/fmigen/internal/trash"
)

// checker is swapped in tests.
var checker = &toolcheck.Checker{}

func init() {
	doctorCmd.Flags().String("template-dir", "", "Template directory to check instead of the built-in FMI_template")
	doctorCmd.Flags().String("trash-dir", "", "Trash directory to check")
	doctorCmd.Flags().String("shell", "", "Shell interpreter to check (default: bash)")
	rootCmd.AddCommand(doctorCmd)
}

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the environment for generating and building FMU projects",
	Long: `Verify the shell interpreter and cmake are available in supported versions,
the template contains the files every project needs, and the trash directory
is writable.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		for key, name := range map[string]string{
			config.KeyTemplateDir: "template-dir",
			config.KeyTrashDir:    "trash-dir",
			config.KeyShell:       "shell",
		} {
			if err := config.BindFlag(key, cmd.Flags().Lookup(name)); err != nil {
				return err
			}
		}

		out := cmd.OutOrStdout()
		failed := 0

		fmt.Fprintln(out, "Tools check:")
		for _, res := range checker.CheckAll(cmd.Context(), toolcheck.Shell(config.Get(config.KeyShell)), toolcheck.CMake()) {
			if !printToolResult(out, res) && res.Tool.Required {
				failed++
			}
		}

		fmt.Fprintln(out, "Template check:")
		if !checkTemplate(out, config.Get(config.KeyTemplateDir)) {
			failed++
		}

		fmt.Fprintln(out, "Trash check:")
		if !checkTrash(out, config.Get(config.KeyTrashDir)) {
			failed++
		}

		if failed > 0 {
			return fmt.Errorf("%d doctor check(s) failed", failed)
		}
		return nil
	},
}

func printToolResult(w io.Writer, res toolcheck.Result) bool {
	switch {
	case res.OK:
		fmt.Fprintf(w, "  [ OK ] %s %s at %s (%s)\n", res.Tool.Command, res.Version, res.Path, res.Tool.Constraint)
		return true
	case res.Tool.Required:
		fmt.Fprintf(w, "  [FAIL] %v\n", res.Err)
	default:
		fmt.Fprintf(w, "  [WARN] %v (needed for test builds)\n", res.Err)
	}
	return false
}

func checkTemplate(w io.Writer, dir string) bool {
	src, err := templates.Resolve(dir)
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return false
	}
	if missing := templates.Missing(src); len(missing) > 0 {
		for _, m := range missing {
			fmt.Fprintf(w, "  [FAIL] %s template lacks %s\n", src.Origin, m)
		}
		return false
	}
	fmt.Fprintf(w, "  [ OK ] %s template is complete\n", src.Origin)
	return true
}

func checkTrash(w io.Writer, dir string) bool {
	if dir == "" {
		var err error
		if dir, err = trash.DefaultDir(); err != nil {
			fmt.Fprintf(w, "  [FAIL] %v\n", err)
			return false
		}
	}
	if err := platform.SecureDir(dir); err != nil {
		fmt.Fprintf(w, "  [FAIL] %v\n", err)
		return false
	}
	f, err := os.CreateTemp(dir, ".fmigen-doctor-*")
	if err != nil {
		fmt.Fprintf(w, "  [FAIL] %s is not writable: %v\n", dir, err)
		return false
	}
	name := f.Name()
	f.Close()
	os.Remove(name)
	fmt.Fprintf(w, "  [ OK ] %s is writable\n", dir)
	return true
}
