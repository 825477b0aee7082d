package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedLibExt(t *testing.T) {
	tests := []struct {
		goos string
		want string
	}{
		{"windows", ".dll"},
		{"darwin", ".dylib"},
		{"linux", ".so"},
		{"freebsd", ".so"},
		{"", ".so"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SharedLibExt(tt.goos), "SharedLibExt(%q)", tt.goos)
	}
}

func TestArtifactName(t *testing.T) {
	assert.Equal(t, "MyFMU.dll", ArtifactName("MyFMU", "windows"))
	assert.Equal(t, "MyFMU.dylib", ArtifactName("MyFMU", "darwin"))
	assert.Equal(t, "MyFMU.so", ArtifactName("MyFMU", "linux"))
	assert.Equal(t, ArtifactName("MyFMU", runtime.GOOS), HostArtifactName("MyFMU"))
}

func TestBuiltLibName(t *testing.T) {
	assert.Equal(t, "libMyFMU.so.1.0.0", BuiltLibName("MyFMU"))
}
