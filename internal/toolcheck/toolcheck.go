// Package toolcheck locates the external tools a generated project needs and
// checks their versions against minimum requirements.
package toolcheck

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Tool describes an external program and the version it must satisfy.
type Tool struct {
	Name       string   // display name
	Command    string   // executable looked up on PATH
	Args       []string // arguments that print the version
	Constraint string   // semver constraint, e.g. ">= 3.2"
	Required   bool     // a failing optional tool only warns
}

// Result is the outcome of checking one tool.
type Result struct {
	Tool    Tool
	Path    string
	Version string
	OK      bool
	Err     error
}

// Errors reported in Result.Err.
var (
	ErrNotFound    = errors.New("not found on PATH")
	ErrNoVersion   = errors.New("could not determine version")
	ErrUnsatisfied = errors.New("version requirement not met")
)

// Checker runs version checks. The zero value uses exec.LookPath and
// exec.CommandContext.
type Checker struct {
	LookPath func(string) (string, error)
	Output   func(ctx context.Context, path string, args ...string) ([]byte, error)
}

// Shell returns the tool entry for the build interpreter.
func Shell(name string) Tool {
	if name == "" {
		name = "bash"
	}
	return Tool{Name: "shell", Command: name, Args: []string{"--version"}, Constraint: ">= 3.2", Required: true}
}

// CMake returns the tool entry for cmake, which the template's build script
// invokes.
func CMake() Tool {
	return Tool{Name: "cmake", Command: "cmake", Args: []string{"--version"}, Constraint: ">= 3.5"}
}

var versionPattern = regexp.MustCompile(`\d+\.\d+(?:\.\d+)?`)

// Check locates t and verifies its version.
func (c *Checker) Check(ctx context.Context, t Tool) Result {
	res := Result{Tool: t}

	look := c.LookPath
	if look == nil {
		look = exec.LookPath
	}
	path, err := look(t.Command)
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", t.Command, ErrNotFound)
		return res
	}
	res.Path = path

	run := c.Output
	if run == nil {
		run = func(ctx context.Context, path string, args ...string) ([]byte, error) {
			return exec.CommandContext(ctx, path, args...).Output()
		}
	}
	out, err := run(ctx, path, t.Args...)
	if err != nil {
		res.Err = fmt.Errorf("running %s: %w", t.Command, err)
		return res
	}

	version, err := ParseVersion(string(out))
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", t.Command, err)
		return res
	}
	res.Version = version.String()

	if t.Constraint == "" {
		res.OK = true
		return res
	}
	ok, err := Satisfies(res.Version, t.Constraint)
	if err != nil {
		res.Err = err
		return res
	}
	if !ok {
		res.Err = fmt.Errorf("%s %s: %w (%s)", t.Command, res.Version, ErrUnsatisfied, t.Constraint)
		return res
	}
	res.OK = true
	return res
}

// CheckAll checks each tool in order.
func (c *Checker) CheckAll(ctx context.Context, tools ...Tool) []Result {
	results := make([]Result, 0, len(tools))
	for _, t := range tools {
		results = append(results, c.Check(ctx, t))
	}
	return results
}

// ParseVersion extracts the first dotted version number from tool output,
// e.g. "GNU bash, version 5.2.15(1)-release" yields 5.2.15.
func ParseVersion(output string) (*semver.Version, error) {
	m := versionPattern.FindString(output)
	if m == "" {
		return nil, ErrNoVersion
	}
	return parseSemver(m)
}

// Satisfies reports whether version meets constraint.
func Satisfies(version, constraint string) (bool, error) {
	v, err := parseSemver(version)
	if err != nil {
		return false, fmt.Errorf("parsing version %q: %w", version, err)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return false, fmt.Errorf("parsing constraint %q: %w", constraint, err)
	}
	return c.Check(v), nil
}

// parseSemver strips a leading "v" and parses the version string.
func parseSemver(version string) (*semver.Version, error) {
	version = strings.TrimPrefix(strings.TrimSpace(version), "v")
	return semver.NewVersion(version)
}
