//go:build !windows

package trash

import (
	"errors"
	"syscall"
)

func crossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}
