package generator

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/fmigen/fmigen/internal/templates"
)

// In-file markers.
const (
	MarkerDateTime    = "$$dateandtime$$"
	MarkerGUID        = "$$GUID$$"
	MarkerDescription = "$$description$$"
	MarkerModelName   = "$$modelName$$"
)

// binarySniffLen is how much of a file is inspected for NUL bytes.
const binarySniffLen = 8000

// Substitution carries everything one generation run replaces. GUID and
// Timestamp are generated once per run and shared by every file.
type Substitution struct {
	Token       string
	ModelName   string
	Description string
	GUID        string
	Timestamp   string
}

// WalkReport lists what SubstitutePlaceholders touched, as slash-separated
// paths relative to the walked root.
type WalkReport struct {
	Files     []string // every file, under its final name
	Rewritten []string // files whose content changed
	Renamed   []string // files and directories renamed, under their new name
}

// Apply returns data with the token replaced everywhere and, for the model
// description and the model's main source file, the markers replaced.
// fileName is matched after token replacement, so the template-side name
// and the renamed name select the same rules.
func (s Substitution) Apply(fileName string, data []byte) []byte {
	out := bytes.ReplaceAll(data, []byte(s.Token), []byte(s.ModelName))

	switch strings.ReplaceAll(fileName, s.Token, s.ModelName) {
	case templates.ModelDescriptionFile:
		out = replaceAll(out,
			MarkerDateTime, s.Timestamp,
			MarkerGUID, s.GUID,
			MarkerDescription, s.Description,
			MarkerModelName, s.ModelName,
		)
	case templates.SourceFileName(s.ModelName):
		out = replaceAll(out, MarkerGUID, s.GUID)
	}
	return out
}

// RenameTarget returns the name a path element takes, and whether it changes.
func (s Substitution) RenameTarget(name string) (string, bool) {
	if !strings.Contains(name, s.Token) {
		return name, false
	}
	return strings.ReplaceAll(name, s.Token, s.ModelName), true
}

func replaceAll(data []byte, pairs ...string) []byte {
	for i := 0; i+1 < len(pairs); i += 2 {
		data = bytes.ReplaceAll(data, []byte(pairs[i]), []byte(pairs[i+1]))
	}
	return data
}

// SubstitutePlaceholders walks root top-down. Directories whose name holds
// the token are renamed before their children are visited, so descent
// follows the new path. Each file is rewritten through Apply and then
// renamed if its own name holds the token. Files that look binary are
// renamed but never rewritten.
func SubstitutePlaceholders(fsys billy.Filesystem, root string, s Substitution) (*WalkReport, error) {
	if s.Token == "" {
		return nil, fmt.Errorf("%w: empty placeholder token", ErrConfig)
	}
	if s.ModelName == "" {
		return nil, fmt.Errorf("%w: missing model name", ErrConfig)
	}

	report := &WalkReport{}
	if err := s.walk(fsys, root, "", report); err != nil {
		return nil, err
	}
	sort.Strings(report.Files)
	return report, nil
}

func (s Substitution) walk(fsys billy.Filesystem, dir, rel string, report *WalkReport) error {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("%w: reading directory %s: %w", ErrFilesystem, dir, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	type subdir struct{ full, rel string }
	var subdirs []subdir

	for _, entry := range entries {
		name := entry.Name()
		full := fsys.Join(dir, name)

		if entry.IsDir() {
			if newName, ok := s.RenameTarget(name); ok {
				newFull := fsys.Join(dir, newName)
				if err := fsys.Rename(full, newFull); err != nil {
					return fmt.Errorf("%w: renaming directory %s: %w", ErrFilesystem, full, err)
				}
				name, full = newName, newFull
				report.Renamed = append(report.Renamed, path.Join(rel, name))
			}
			subdirs = append(subdirs, subdir{full: full, rel: path.Join(rel, name)})
			continue
		}

		if !entry.Mode().IsRegular() {
			continue
		}

		finalName, err := s.processFile(fsys, dir, name, entry.Mode().Perm(), rel, report)
		if err != nil {
			return err
		}
		report.Files = append(report.Files, path.Join(rel, finalName))
	}

	for _, sub := range subdirs {
		if err := s.walk(fsys, sub.full, sub.rel, report); err != nil {
			return err
		}
	}
	return nil
}

func (s Substitution) processFile(fsys billy.Filesystem, dir, name string, perm os.FileMode, rel string, report *WalkReport) (string, error) {
	full := fsys.Join(dir, name)

	data, err := util.ReadFile(fsys, full)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %w", ErrFilesystem, full, err)
	}

	if !isBinary(data) {
		out := s.Apply(name, data)
		if !bytes.Equal(out, data) {
			if err := util.WriteFile(fsys, full, out, perm); err != nil {
				return "", fmt.Errorf("%w: writing %s: %w", ErrFilesystem, full, err)
			}
			newName, _ := s.RenameTarget(name)
			report.Rewritten = append(report.Rewritten, path.Join(rel, newName))
		}
	}

	newName, ok := s.RenameTarget(name)
	if !ok {
		return name, nil
	}
	if err := fsys.Rename(full, fsys.Join(dir, newName)); err != nil {
		return "", fmt.Errorf("%w: renaming %s: %w", ErrFilesystem, full, err)
	}
	report.Renamed = append(report.Renamed, path.Join(rel, newName))
	return newName, nil
}

func isBinary(data []byte) bool {
	if len(data) > binarySniffLen {
		data = data[:binarySniffLen]
	}
	return bytes.IndexByte(data, 0) >= 0
}
