//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package picker

import (
	"fmt"
	"sync"

	"golang.org/x/sys/unix"
)

// RawMode holds the line discipline a terminal had before it was switched to raw
// input. Restore puts it back; it is safe to call more than once.
type RawMode struct {
	fd   int
	orig unix.Termios

	once sync.Once
	err  error
}

// EnterRawMode disables canonical mode and echo on fd so that each keystroke is
// delivered as soon as it is typed.
func EnterRawMode(fd int) (*RawMode, error) {
	orig, err := unix.IoctlGetTermios(fd, ioctlReadTermios)
	if err != nil {
		return nil, fmt.Errorf("cannot read terminal settings: %w", err)
	}

	raw := *orig
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, ioctlWriteTermios, &raw); err != nil {
		return nil, fmt.Errorf("cannot enter raw mode: %w", err)
	}

	return &RawMode{fd: fd, orig: *orig}, nil
}

// Restore reinstates the settings captured by EnterRawMode.
func (r *RawMode) Restore() error {
	r.once.Do(func() {
		if err := unix.IoctlSetTermios(r.fd, ioctlWriteTermios, &r.orig); err != nil {
			r.err = fmt.Errorf("cannot restore terminal settings: %w", err)
		}
	})
	return r.err
}
