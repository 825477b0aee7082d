package templates

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedTree(t *testing.T) {
	src := Embedded()
	assert.Equal(t, "embedded", src.Origin)
	assert.Empty(t, Missing(src))

	data, err := fs.ReadFile(src.FS, "data/"+ModelDescriptionFile)
	require.NoError(t, err)
	for _, marker := range []string{"$$dateandtime$$", "$$GUID$$", "$$description$$", "$$modelName$$"} {
		assert.Contains(t, string(data), marker)
	}

	cpp, err := fs.ReadFile(src.FS, "src/"+Token+SourceExt)
	require.NoError(t, err)
	assert.Contains(t, string(cpp), "$$GUID$$")

	for _, script := range []string{BuildScript, DeployScript} {
		_, err := fs.Stat(src.FS, BuildDir+"/"+script)
		assert.NoError(t, err, script)
	}
}

func TestFixedRenames(t *testing.T) {
	got := FixedRenames("MyFMU")
	want := []Rename{
		{From: "projects/Qt/FMI_template.pro", To: "projects/Qt/MyFMU.pro"},
		{From: "src/FMI_template.cpp", To: "src/MyFMU.cpp"},
		{From: "src/FMI_template.h", To: "src/MyFMU.h"},
	}
	assert.Equal(t, want, got)
	for _, r := range got {
		assert.False(t, strings.Contains(r.To, Token))
	}
}

func TestSourceFileName(t *testing.T) {
	assert.Equal(t, "MyFMU.cpp", SourceFileName("MyFMU"))
}

func TestResolve(t *testing.T) {
	src, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "embedded", src.Origin)

	dir := t.TempDir()
	src, err = Resolve(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, src.Origin)
	assert.Len(t, Missing(src), 3)
}

func TestFromDirErrors(t *testing.T) {
	_, err := FromDir(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))
	_, err = FromDir(file)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}
