package generator

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/util"

	"github.com/fmigen/fmigen/internal/templates"
)

// excludedNames are template entries never copied into a project.
var excludedNames = map[string]bool{
	".git":      true,
	".DS_Store": true,
}

// shouldExclude returns true if the name should be excluded during copy.
func shouldExclude(name string) bool {
	return excludedNames[name]
}

// CopyTemplate deep-copies the template tree src into dst on fsys, then
// renames the fixed project, source and header files to the model name.
// It returns the copied files as slash-separated paths relative to dst,
// under their template-side names.
func CopyTemplate(fsys billy.Filesystem, src fs.FS, dst, model string) ([]string, error) {
	if err := fsys.MkdirAll(dst, 0755); err != nil {
		return nil, fmt.Errorf("%w: cannot copy template directory to %s: %w", ErrFilesystem, dst, err)
	}

	var copied []string
	err := fs.WalkDir(src, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if p == "." {
			return nil
		}
		if shouldExclude(d.Name()) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		target := fsys.Join(dst, p)
		info, err := d.Info()
		if err != nil {
			return err
		}

		switch {
		case d.IsDir():
			return fsys.MkdirAll(target, info.Mode().Perm()|0700)
		case d.Type().IsRegular():
			data, err := fs.ReadFile(src, p)
			if err != nil {
				return err
			}
			if err := util.WriteFile(fsys, target, data, copyPerm(p, info.Mode())); err != nil {
				return err
			}
			copied = append(copied, p)
		}
		// Skip symlinks and other special files during copy.
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: cannot copy template directory to %s: %w", ErrFilesystem, dst, err)
	}

	for _, r := range templates.FixedRenames(model) {
		from := fsys.Join(dst, r.From)
		to := fsys.Join(dst, r.To)
		if err := fsys.Rename(from, to); err != nil {
			return nil, fmt.Errorf("%w: cannot rename template file %s: %w", ErrFilesystem, r.From, err)
		}
	}

	return copied, nil
}

// copyPerm derives the permission bits of a copied file. Embedded sources
// report read-only modes without exec bits; copies must stay writable for
// substitution, and shell scripts must stay runnable for the test build.
func copyPerm(name string, mode os.FileMode) os.FileMode {
	perm := mode.Perm() | 0600
	if strings.HasSuffix(path.Base(name), ".sh") {
		perm |= 0111
	}
	return perm
}
