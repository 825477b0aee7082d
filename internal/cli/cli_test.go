package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmigen/fmigen/internal/generator"
	"github.com/fmigen/fmigen/internal/toolcheck"
)

// isolate points HOME and the trash at temporary directories.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, "data"))
	viper.Reset()
	t.Cleanup(viper.Reset)
	return home
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs the root command with args and returns its stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommandsRegistered(t *testing.T) {
	for _, name := range []string{"generate", "build", "validate", "doctor", "config", "version"} {
		t.Run(name, func(t *testing.T) {
			found := false
			for _, c := range rootCmd.Commands() {
				if c.Name() == name {
					found = true
					break
				}
			}
			assert.True(t, found, "%s command not registered", name)
		})
	}
}

func TestGenerateCommand(t *testing.T) {
	isolate(t)
	target := t.TempDir()

	out, err := execute(t, "generate", "MyFMU", "--target-dir", target, "--description", "A simple FMU")
	require.NoError(t, err)

	project := filepath.Join(target, "MyFMU")
	assert.Contains(t, out, "Created FMU project at "+project)
	assert.Contains(t, out, "src/MyFMU.cpp")
	assert.FileExists(t, filepath.Join(project, "projects", "Qt", "MyFMU.pro"))

	md, err := os.ReadFile(filepath.Join(project, "data", "modelDescription.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(md), `description="A simple FMU"`)

	// A second run moves the first project to the default trash.
	out, err = execute(t, "generate", "MyFMU", "--target-dir", target)
	require.NoError(t, err)
	assert.Contains(t, out, "Previous project moved to ")
}

func TestGenerateCommandTrashDirFlag(t *testing.T) {
	isolate(t)
	target := t.TempDir()
	bin := filepath.Join(t.TempDir(), "bin")

	_, err := execute(t, "generate", "Pump", "--target-dir", target, "--trash-dir", bin)
	require.NoError(t, err)
	_, err = execute(t, "generate", "Pump", "--target-dir", target, "--trash-dir", bin)
	require.NoError(t, err)

	assert.DirExists(t, filepath.Join(bin, "files", "Pump"))
	assert.FileExists(t, filepath.Join(bin, "info", "Pump.trashinfo"))
}

func TestGenerateCommandMissingModelName(t *testing.T) {
	isolate(t)
	target := t.TempDir()

	_, err := execute(t, "generate", "--target-dir", target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrConfig))

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateCommandRequestFile(t *testing.T) {
	isolate(t)
	target := t.TempDir()
	reqFile := filepath.Join(t.TempDir(), "heater.yaml")
	require.NoError(t, os.WriteFile(reqFile, []byte(`modelName: Heater
description: From file
inputs:
  - name: power
    type: Real
    start: 0.5
`), 0644))

	out, err := execute(t, "generate", "--request", reqFile, "--target-dir", target)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(target, "Heater"))

	md, err := os.ReadFile(filepath.Join(target, "Heater", "data", "modelDescription.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(md), `description="From file"`)
}

func TestGenerateCommandRequestFileWithoutModelName(t *testing.T) {
	isolate(t)
	target := t.TempDir()
	reqFile := filepath.Join("..", "request", "testdata", "valid-no-model.yaml")

	_, err := execute(t, "generate", "--request", reqFile, "--target-dir", target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrConfig))

	_, err = execute(t, "generate", "Boiler", "--request", reqFile, "--target-dir", target)
	require.NoError(t, err)
	md, err := os.ReadFile(filepath.Join(target, "Boiler", "data", "modelDescription.xml"))
	require.NoError(t, err)
	assert.Contains(t, string(md), `description="No model name here"`)
}

func TestGenerateCommandBuildFailureKeepsProject(t *testing.T) {
	isolate(t)
	target := t.TempDir()

	out, err := execute(t, "generate", "Valve", "--target-dir", target, "--build", "--shell", "fmigen-no-such-shell")
	require.NoError(t, err)
	assert.Contains(t, out, "Created FMU project at ")
	assert.Contains(t, out, `Test build failed at stage "build"`)
	assert.Contains(t, out, "fmigen-no-such-shell")
	assert.FileExists(t, filepath.Join(target, "Valve", "src", "Valve.cpp"))
	assert.FileExists(t, filepath.Join(target, "Valve", "data", "modelDescription.xml"))
}

func TestGenerateCommandBuildScriptFails(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available, skipping")
	}
	isolate(t)
	target := t.TempDir()

	// "false ./build.sh" exits 1 like a failing build script.
	out, err := execute(t, "generate", "Valve", "--target-dir", target, "--build", "--shell", "false")
	require.NoError(t, err)
	assert.Contains(t, out, `Test build failed at stage "build" (exit code 1)`)
	assert.NotContains(t, out, "Test build succeeded.")
	assert.FileExists(t, filepath.Join(target, "Valve", "src", "Valve.cpp"))
	assert.NoFileExists(t, filepath.Join(target, "Valve", "bin", "release", "Valve.so"))
}

func TestGenerateBuildHelpNamesTemplateDir(t *testing.T) {
	assert.Contains(t, generateCmd.Flags().Lookup("build").Usage, "--template-dir")
	assert.Contains(t, generateCmd.Long, "src/fmi")
}

func TestGenerateCommandInvalidRequestFile(t *testing.T) {
	isolate(t)
	target := t.TempDir()

	_, err := execute(t, "generate", "--request", filepath.Join("..", "request", "testdata", "invalid-bad-type.yaml"), "--target-dir", target)
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrConfig))

	entries, err := os.ReadDir(target)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestGenerateCommandTemplateDirFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("FMIGEN_TEMPLATE_DIR", filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := execute(t, "generate", "X", "--target-dir", t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrConfig))
}

func TestValidateCommand(t *testing.T) {
	isolate(t)

	out, err := execute(t, "validate", filepath.Join("..", "request", "testdata", "valid-full.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "[ OK ]")

	out, err = execute(t, "validate", filepath.Join("..", "request", "testdata", "invalid-bad-type.yaml"))
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL]")
	assert.True(t, errors.Is(err, generator.ErrConfig))

	out, err = execute(t, "validate", filepath.Join("..", "request", "testdata", "valid-no-model.yaml"))
	require.NoError(t, err)
	assert.Contains(t, out, "give the model name on the command line")
}

func TestValidateCommandUnreadableFile(t *testing.T) {
	isolate(t)

	out, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, generator.ErrConfig))
	assert.Contains(t, out, "[FAIL] reading file")
	assert.NotContains(t, out, "[ OK ]")
}

func TestConfigSetGet(t *testing.T) {
	home := isolate(t)

	out, err := execute(t, "config", "set", "shell", "zsh")
	require.NoError(t, err)
	assert.Equal(t, "Set shell = zsh\n", out)
	assert.FileExists(t, filepath.Join(home, ".fmigen", "config.yaml"))

	viper.Reset()
	out, err = execute(t, "config", "get", "shell")
	require.NoError(t, err)
	assert.Equal(t, "zsh\n", out)

	out, err = execute(t, "config", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "shell = zsh\n")
	assert.Contains(t, out, "log_level = info\n")
}

func TestConfigUnknownKey(t *testing.T) {
	isolate(t)

	_, err := execute(t, "config", "get", "nope")
	assert.Error(t, err)
	_, err = execute(t, "config", "set", "nope", "1")
	assert.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	isolate(t)
	buildVersion, buildCommit, buildDate = "1.2.3", "abc123", "2026-10-18"

	out, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "1.2.3\n", out)

	out, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var info map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.Equal(t, "abc123", info["commit"])

	out, err = execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "fmigen version 1.2.3 (commit: abc123, built: 2026-10-18)\n", out)
}

func stubChecker(t *testing.T, found bool) {
	t.Helper()
	prev := checker
	t.Cleanup(func() { checker = prev })
	checker = &toolcheck.Checker{
		LookPath: func(name string) (string, error) {
			if !found {
				return "", exec.ErrNotFound
			}
			return "/usr/bin/" + name, nil
		},
		Output: func(context.Context, string, ...string) ([]byte, error) {
			return []byte("version 5.2.15"), nil
		},
	}
}

func TestDoctorCommand(t *testing.T) {
	isolate(t)
	stubChecker(t, true)

	out, err := execute(t, "doctor", "--trash-dir", filepath.Join(t.TempDir(), "Trash"))
	require.NoError(t, err)
	assert.Contains(t, out, "[ OK ] bash 5.2.15")
	assert.Contains(t, out, "[ OK ] cmake 5.2.15")
	assert.Contains(t, out, "embedded template is complete")
	assert.Contains(t, out, "is writable")
}

func TestDoctorCommandMissingShell(t *testing.T) {
	isolate(t)
	stubChecker(t, false)

	out, err := execute(t, "doctor", "--trash-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "[FAIL] bash")
	assert.Contains(t, out, "[WARN] cmake")
	assert.Contains(t, err.Error(), "1 doctor check(s) failed")
}

func TestDoctorCommandIncompleteTemplate(t *testing.T) {
	isolate(t)
	stubChecker(t, true)
	tpl := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(tpl, "src"), 0755))

	out, err := execute(t, "doctor", "--template-dir", tpl, "--trash-dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, out, "lacks src/FMI_template.h")
}

func TestBuildCommand(t *testing.T) {
	if _, err := exec.LookPath("bash"); err != nil {
		t.Skip("bash not available, skipping")
	}
	isolate(t)

	project := filepath.Join(t.TempDir(), "Heater")
	require.NoError(t, os.MkdirAll(filepath.Join(project, "build"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(project, "bin", "release"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "build", "build.sh"), []byte("touch ../bin/release/libHeater.so.1.0.0\n"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(project, "build", "deploy.sh"), []byte("true\n"), 0755))

	out, err := execute(t, "build", project)
	require.NoError(t, err)
	assert.Contains(t, out, "Test build succeeded.")

	require.NoError(t, os.WriteFile(filepath.Join(project, "build", "build.sh"), []byte("exit 4\n"), 0755))
	out, err = execute(t, "build", project)
	require.Error(t, err)
	assert.Contains(t, out, `failed at stage "build" (exit code 4)`)
}
