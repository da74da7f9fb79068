package picker

import (
	"fmt"
	"io"
	"os"
)

// DefaultTTY is the interactive device used when stdin and stdout may be redirected.
const DefaultTTY = "/dev/tty"

// Terminal is the interactive input channel of a picker.
type Terminal interface {
	io.Reader
	io.Closer

	// MakeRaw switches the terminal to unbuffered, unechoed input and returns a
	// function that restores the previous settings.
	MakeRaw() (restore func() error, err error)
}

// fileTerminal is a Terminal backed by a terminal device file.
type fileTerminal struct {
	f *os.File
}

// OpenTTY opens the terminal device at path for reading keystrokes.
func OpenTTY(path string) (Terminal, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	return NewTerminal(f), nil
}

// NewTerminal wraps an already open terminal device. Closing the Terminal closes f.
func NewTerminal(f *os.File) Terminal {
	return &fileTerminal{f: f}
}

func (t *fileTerminal) Read(p []byte) (int, error) {
	return t.f.Read(p)
}

func (t *fileTerminal) Close() error {
	return t.f.Close()
}

func (t *fileTerminal) MakeRaw() (func() error, error) {
	rm, err := EnterRawMode(int(t.f.Fd()))
	if err != nil {
		return nil, err
	}
	return rm.Restore, nil
}
