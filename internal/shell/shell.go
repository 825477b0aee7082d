// Package shell runs project scripts through the host shell interpreter and
// captures their exit code and output streams.
package shell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
)

// DefaultShell is the interpreter used when none is configured.
const DefaultShell = "bash"

// ErrShellNotFound is returned when the interpreter is not on PATH.
var ErrShellNotFound = errors.New("shell interpreter not found")

// Output captures the result of a script run.
type Output struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

// Success reports whether the script exited with status 0.
func (o *Output) Success() bool { return o != nil && o.ExitCode == 0 }

// Runner executes scripts with a shell interpreter.
type Runner struct {
	// Shell is the interpreter name or path; defaults to DefaultShell.
	Shell string

	// Stdout and Stderr receive a live copy of the streams; nil discards.
	Stdout io.Writer
	Stderr io.Writer

	// LookPath resolves the interpreter; defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Interpreter resolves the configured shell to an executable path.
func (r *Runner) Interpreter() (string, error) {
	name := r.Shell
	if name == "" {
		name = DefaultShell
	}
	look := r.LookPath
	if look == nil {
		look = exec.LookPath
	}
	bin, err := look(name)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrShellNotFound, name, err)
	}
	return bin, nil
}

// Run executes `<shell> ./<script> args...` with dir as the working
// directory. A non-zero exit is reported through Output.ExitCode, not as an
// error; errors mean the script could not be started at all.
func (r *Runner) Run(ctx context.Context, dir, script string, args ...string) (*Output, error) {
	bin, err := r.Interpreter()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(filepath.Join(dir, script)); err != nil {
		return nil, fmt.Errorf("script %s not found in %s: %w", script, dir, err)
	}

	cmd := exec.CommandContext(ctx, bin, append([]string{"./" + script}, args...)...)
	cmd.Dir = dir
	cmd.Env = os.Environ()

	stdout := r.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	stderr := r.Stderr
	if stderr == nil {
		stderr = io.Discard
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = io.MultiWriter(stdout, &stdoutBuf)
	cmd.Stderr = io.MultiWriter(stderr, &stderrBuf)

	err = cmd.Run()

	output := &Output{
		Stdout: stdoutBuf.String(),
		Stderr: stderrBuf.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && ctx.Err() == nil {
			output.ExitCode = exitErr.ExitCode()
			return output, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return output, fmt.Errorf("running %s: %w", script, ctxErr)
		}
		return output, fmt.Errorf("running %s: %w", script, err)
	}

	return output, nil
}
