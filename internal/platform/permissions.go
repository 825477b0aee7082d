package platform

import (
	"fmt"
	"os"
	"runtime"
)

// PrivateDirMode is the mode of directories only the owner may read, such as
// the trash.
const PrivateDirMode os.FileMode = 0700

// SecureDir creates dir if needed and restricts it to the owner. Windows has
// no Unix permission bits, so there the directory is only created.
func SecureDir(dir string) error {
	if err := os.MkdirAll(dir, PrivateDirMode); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	if runtime.GOOS == "windows" {
		return nil
	}
	// MkdirAll leaves an existing directory's mode alone.
	if err := os.Chmod(dir, PrivateDirMode); err != nil {
		return fmt.Errorf("restricting %s: %w", dir, err)
	}
	return nil
}
