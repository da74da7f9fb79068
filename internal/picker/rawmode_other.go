//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !dragonfly

package picker

import "errors"

// ErrRawModeUnsupported is returned on platforms without termios.
var ErrRawModeUnsupported = errors.New("raw terminal input is not supported on this platform")

// RawMode is a placeholder on platforms without termios.
type RawMode struct{}

// EnterRawMode always fails here, which makes the picker cancel.
func EnterRawMode(fd int) (*RawMode, error) {
	return nil, ErrRawModeUnsupported
}

// Restore is a no-op.
func (r *RawMode) Restore() error {
	return nil
}
