package templates

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// Token is the placeholder token: the template folder name.
const Token = "FMI_template"

// Names of files that receive marker substitution beyond the token.
const (
	ModelDescriptionFile = "modelDescription.xml"
	SourceExt            = ".cpp"
)

// Build layout of a generated project.
const (
	BuildDir      = "build"
	BuildScript   = "build.sh"
	DeployScript  = "deploy.sh"
	ReleaseBinDir = "bin/release"
)

//go:embed FMI_template
var embedded embed.FS

// Source is a read-only template tree.
type Source struct {
	FS     fs.FS
	Origin string // "embedded" or the absolute directory path
}

// Rename is a slash-separated path pair relative to the project root.
type Rename struct {
	From string
	To   string
}

// Embedded returns the template tree compiled into the binary.
func Embedded() Source {
	sub, err := fs.Sub(embedded, Token)
	if err != nil {
		// fs.Sub only fails on an invalid path; Token is a constant.
		panic(err)
	}
	return Source{FS: sub, Origin: "embedded"}
}

// FromDir returns the template tree rooted at dir on disk.
func FromDir(dir string) (Source, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return Source{}, fmt.Errorf("resolving template directory %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Source{}, fmt.Errorf("template directory %s: %w", abs, err)
	}
	if !info.IsDir() {
		return Source{}, fmt.Errorf("template directory %s is not a directory", abs)
	}
	return Source{FS: os.DirFS(abs), Origin: abs}, nil
}

// Resolve returns FromDir(dir), or the embedded tree when dir is empty.
func Resolve(dir string) (Source, error) {
	if dir == "" {
		return Embedded(), nil
	}
	return FromDir(dir)
}

// FixedRenames lists the files that are always renamed right after copying:
// the Qt project file, the main source file and its header.
func FixedRenames(model string) []Rename {
	return []Rename{
		{From: path.Join("projects", "Qt", Token+".pro"), To: path.Join("projects", "Qt", model+".pro")},
		{From: path.Join("src", Token+SourceExt), To: path.Join("src", model+SourceExt)},
		{From: path.Join("src", Token+".h"), To: path.Join("src", model+".h")},
	}
}

// SourceFileName is the name of the model's main source file after renaming.
// It carries the GUID marker.
func SourceFileName(model string) string {
	return model + SourceExt
}

// Missing reports which fixed-rename files are absent from src.
func Missing(src Source) []string {
	var missing []string
	for _, r := range FixedRenames(Token) {
		if _, err := fs.Stat(src.FS, r.From); err != nil {
			missing = append(missing, r.From)
		}
	}
	return missing
}
