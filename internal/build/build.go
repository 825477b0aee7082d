// Package build test-builds a generated FMU project: it runs the project's
// build script, renames the produced shared library for the host platform
// and runs the deploy script.
//
// A failing build never fails generation. Every outcome, including a missing
// shell interpreter, is recorded in a Report and logged.
package build

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fmigen/fmigen/internal/logging"
	"github.com/fmigen/fmigen/internal/platform"
	"github.com/fmigen/fmigen/internal/shell"
	"github.com/fmigen/fmigen/internal/templates"
)

// Stage names a step of the test build.
type Stage string

const (
	StageBuild  Stage = "build"
	StageRename Stage = "rename"
	StageDeploy Stage = "deploy"
)

// Options configures TestBuild.
type Options struct {
	Shell    string                       // interpreter, default shell.DefaultShell
	GOOS     string                       // artifact naming, default the host
	Stdout   io.Writer                    // live script output, nil discards
	Stderr   io.Writer                    // live script errors, nil discards
	LookPath func(string) (string, error) // interpreter lookup, default exec.LookPath
}

// Report describes how far a test build got.
type Report struct {
	// Stage is the last stage attempted.
	Stage Stage
	// ExitCode is the exit status of the last script run.
	ExitCode int
	// Stderr holds the captured error stream of a failing script.
	Stderr string
	// Artifact is the renamed shared library, empty if none was produced.
	Artifact string
	// Err is set when a stage could not run or failed.
	Err error
}

// Success reports whether every stage completed.
func (r *Report) Success() bool {
	return r != nil && r.Err == nil && r.Stage == StageDeploy
}

// ErrScriptFailed marks a script that exited with a non-zero status.
var ErrScriptFailed = errors.New("script failed")

// TestBuild runs build.sh, renames bin/release/lib<model>.so.1.0.0 to the
// platform artifact name, then runs deploy.sh. A failing stage stops the
// sequence. TestBuild never returns an error; inspect the Report.
func TestBuild(ctx context.Context, dir, model string, opts Options) *Report {
	log := logging.FromContext(ctx).With("project", dir)
	report := &Report{}

	runner := &shell.Runner{
		Shell:    opts.Shell,
		Stdout:   opts.Stdout,
		Stderr:   opts.Stderr,
		LookPath: opts.LookPath,
	}
	buildDir := filepath.Join(dir, templates.BuildDir)

	log.Info("test-building the FMU; implement the FMU functionality before using it")

	if !runScript(ctx, runner, buildDir, templates.BuildScript, StageBuild, report) {
		log.Warn("error during compilation of FMU",
			"stage", report.Stage, "exit_code", report.ExitCode, "stderr", report.Stderr, "error", report.Err)
		return report
	}
	log.Info("compiled FMU successfully")

	report.Stage = StageRename
	artifact, err := renameArtifact(dir, model, opts.GOOS)
	if err != nil {
		report.Err = err
		log.Warn("could not rename built library", "error", err)
		return report
	}
	if artifact == "" {
		log.Warn("built library not found", "want", platform.BuiltLibName(model))
	} else {
		report.Artifact = artifact
		log.Info("renamed built library", "artifact", artifact)
	}

	if !runScript(ctx, runner, buildDir, templates.DeployScript, StageDeploy, report) {
		log.Warn("error during deployment of FMU",
			"stage", report.Stage, "exit_code", report.ExitCode, "stderr", report.Stderr, "error", report.Err)
		return report
	}
	log.Info("deployed FMU successfully")
	return report
}

func runScript(ctx context.Context, runner *shell.Runner, dir, script string, stage Stage, report *Report) bool {
	report.Stage = stage
	out, err := runner.Run(ctx, dir, script)
	if err != nil {
		report.Err = err
		if out != nil {
			report.Stderr = out.Stderr
		}
		return false
	}
	report.ExitCode = out.ExitCode
	if !out.Success() {
		report.Stderr = out.Stderr
		report.Err = fmt.Errorf("%w: %s exited with status %d", ErrScriptFailed, script, out.ExitCode)
		return false
	}
	return true
}

// renameArtifact moves the versioned library the build produced to its
// platform name. It returns "" when the build produced no library.
func renameArtifact(dir, model, goos string) (string, error) {
	binDir := filepath.Join(dir, filepath.FromSlash(templates.ReleaseBinDir))
	from := filepath.Join(binDir, platform.BuiltLibName(model))
	if _, err := os.Stat(from); err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", fmt.Errorf("checking built library: %w", err)
	}
	name := platform.HostArtifactName(model)
	if goos != "" {
		name = platform.ArtifactName(model, goos)
	}
	to := filepath.Join(binDir, name)
	if err := os.Rename(from, to); err != nil {
		return "", fmt.Errorf("renaming built library: %w", err)
	}
	return to, nil
}
