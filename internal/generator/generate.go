package generator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/fmigen/fmigen/internal/logging"
	"github.com/fmigen/fmigen/internal/request"
	"github.com/fmigen/fmigen/internal/templates"
	"github.com/fmigen/fmigen/internal/trash"
)

// Trash receives a pre-existing target directory and can hand it back if
// the final swap fails.
type Trash interface {
	Discard(path string) (*trash.Entry, error)
	Restore(e *trash.Entry) error
}

// Options configures Generate. Zero values select the embedded template,
// the user's default trash, the wall clock, version 1 UUIDs and os.Getwd.
type Options struct {
	Template *templates.Source
	Trash    Trash
	Now      func() time.Time
	NewGUID  func() (string, error)
	Getwd    func() (string, error)
}

// Result holds the outcome of a generation run.
type Result struct {
	OutputDir string       // absolute project directory
	GUID      string       // value written for $$GUID$$
	Timestamp string       // value written for $$dateandtime$$
	Files     []string     // files of the generated tree, relative to OutputDir
	Renamed   []string     // paths renamed from the token to the model name
	Warnings  []string     // non-fatal issues
	Trashed   *trash.Entry // previous tree at OutputDir, if any
}

// ValidateModelName checks that name can be used as a single path element.
func ValidateModelName(name string) error {
	switch {
	case name == "":
		return fmt.Errorf("%w: missing model name", ErrConfig)
	case name == "." || name == "..":
		return fmt.Errorf("%w: invalid model name %q", ErrConfig, name)
	case strings.ContainsAny(name, `/\`):
		return fmt.Errorf("%w: model name %q must not contain path separators", ErrConfig, name)
	}
	return nil
}

// ResolveTarget returns the absolute project path <targetDir>/<model>.
// A relative targetDir is resolved against the working directory returned
// by getwd.
func ResolveTarget(targetDir, model string, getwd func() (string, error)) (string, error) {
	if filepath.IsAbs(targetDir) {
		return filepath.Join(targetDir, model), nil
	}
	if getwd == nil {
		getwd = os.Getwd
	}
	wd, err := getwd()
	if err != nil {
		return "", fmt.Errorf("%w: resolving working directory: %w", ErrConfig, err)
	}
	return filepath.Join(wd, targetDir, model), nil
}

// Generate instantiates the template for req.
//
// The tree is assembled in a hidden staging directory beside the target.
// Only after copy and substitution both succeed is an existing target moved
// to the trash and the staging directory renamed into place. On failure the
// staging directory is removed and any existing target is left as it was.
func Generate(ctx context.Context, req *request.Request, opts Options) (*Result, error) {
	log := logging.FromContext(ctx)

	if req == nil {
		return nil, fmt.Errorf("%w: missing request", ErrConfig)
	}
	model := req.ModelName
	if err := ValidateModelName(model); err != nil {
		return nil, err
	}

	target, err := ResolveTarget(req.TargetDir, model, opts.Getwd)
	if err != nil {
		return nil, err
	}

	src := templates.Embedded()
	if opts.Template != nil {
		src = *opts.Template
	}

	result := &Result{OutputDir: target}
	log.Info("generating FMU project",
		"model", model, "target", target, "template", src.Origin, "variables", req.VariableCount())

	if strings.Contains(model, templates.Token) {
		msg := fmt.Sprintf("model name %q contains the template token %q; the generated project may be broken", model, templates.Token)
		if model == templates.Token {
			msg = fmt.Sprintf("model name is the same as the template token %q; this may not work", templates.Token)
		}
		log.Warn(msg)
		result.Warnings = append(result.Warnings, msg)
	}

	if missing := templates.Missing(src); len(missing) > 0 {
		return nil, fmt.Errorf("%w: template %s lacks %s", ErrConfig, src.Origin, strings.Join(missing, ", "))
	}

	guidFn := opts.NewGUID
	if guidFn == nil {
		guidFn = NewGUID
	}
	guid, err := guidFn()
	if err != nil {
		return nil, err
	}
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	result.GUID = guid
	result.Timestamp = FormatTimestamp(now())

	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %w", ErrFilesystem, parent, err)
	}
	fsys := osfs.New(parent)

	stage, err := makeStage(fsys, model)
	if err != nil {
		return nil, err
	}
	swapped := false
	defer func() {
		if !swapped {
			if rmErr := util.RemoveAll(fsys, stage); rmErr != nil {
				log.Warn("could not remove staging directory", "path", filepath.Join(parent, stage), "error", rmErr)
			}
		}
	}()

	log.Debug("copying template", "staging", filepath.Join(parent, stage))
	copied, err := CopyTemplate(fsys, src.FS, stage, model)
	if err != nil {
		return nil, err
	}
	log.Debug("template copied", "files", len(copied))

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sub := Substitution{
		Token:       templates.Token,
		ModelName:   model,
		Description: req.Description,
		GUID:        guid,
		Timestamp:   result.Timestamp,
	}
	report, err := SubstitutePlaceholders(fsys, stage, sub)
	if err != nil {
		return nil, err
	}
	for _, r := range templates.FixedRenames(model) {
		result.Renamed = append(result.Renamed, r.To)
	}
	result.Renamed = append(result.Renamed, report.Renamed...)
	result.Files = report.Files
	for _, f := range report.Rewritten {
		log.Debug("placeholders replaced", "file", f)
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := fsys.Lstat(model); err == nil {
		bin := opts.Trash
		if bin == nil {
			dir, err := trash.DefaultDir()
			if err != nil {
				return nil, fmt.Errorf("%w: %w", ErrFilesystem, err)
			}
			bin = trash.New(dir)
		}
		entry, err := bin.Discard(target)
		if err != nil {
			return nil, fmt.Errorf("%w: moving existing %s to trash: %w", ErrFilesystem, target, err)
		}
		result.Trashed = entry
		log.Info("moved existing project to trash", "from", target, "to", entry.Path)
	}

	if err := fsys.Rename(stage, model); err != nil {
		if result.Trashed != nil {
			if restoreErr := opts.restore(result.Trashed); restoreErr != nil {
				log.Error("could not restore previous project", "path", target, "error", restoreErr)
			}
		}
		return nil, fmt.Errorf("%w: moving staged project to %s: %w", ErrFilesystem, target, err)
	}
	swapped = true

	log.Info("FMU project generated", "target", target, "guid", guid, "files", len(result.Files))
	return result, nil
}

func (o Options) restore(e *trash.Entry) error {
	if o.Trash != nil {
		return o.Trash.Restore(e)
	}
	dir, err := trash.DefaultDir()
	if err != nil {
		return err
	}
	return trash.New(dir).Restore(e)
}

// makeStage creates a unique hidden staging directory in the root of fsys.
func makeStage(fsys billy.Filesystem, model string) (string, error) {
	base := "." + model + ".fmigen-staging-" + strconv.FormatInt(time.Now().UnixNano(), 36)
	for i := 0; ; i++ {
		name := base
		if i > 0 {
			name = base + "-" + strconv.Itoa(i)
		}
		if _, err := fsys.Lstat(name); err == nil {
			continue
		}
		if err := fsys.MkdirAll(name, 0755); err != nil {
			return "", fmt.Errorf("%w: creating staging directory: %w", ErrFilesystem, err)
		}
		return name, nil
	}
}
