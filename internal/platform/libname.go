package platform

import (
	"fmt"
	"runtime"
)

// Shared-library extensions per target operating system.
const (
	ExtWindows = ".dll"
	ExtDarwin  = ".dylib"
	ExtUnix    = ".so"
)

// SharedLibExt maps a GOOS value to the extension a dynamically loaded
// library carries on that system.
func SharedLibExt(goos string) string {
	switch goos {
	case "windows":
		return ExtWindows
	case "darwin":
		return ExtDarwin
	default:
		return ExtUnix
	}
}

// BuiltLibName returns the versioned file name the template's build scripts
// produce for a model, e.g. "libMyFMU.so.1.0.0".
func BuiltLibName(model string) string {
	return fmt.Sprintf("lib%s.so.1.0.0", model)
}

// ArtifactName returns the platform-appropriate name of a model's shared
// library, e.g. "MyFMU.dylib" on darwin.
func ArtifactName(model, goos string) string {
	return model + SharedLibExt(goos)
}

// HostArtifactName is ArtifactName for the running operating system.
func HostArtifactName(model string) string {
	return ArtifactName(model, runtime.GOOS)
}
