// Package picker presents a numbered list of directories and reads a choice from
// the terminal one keystroke at a time.
//
// The listing, prompt and echoed digits are written to a diagnostic stream (stderr by
// default) and keystrokes are read from the controlling terminal, so the caller's
// stdout stays clean for the selected path even when it is captured by a shell.
package picker

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/muesli/termenv"
)

// DefaultPrompt is shown below the list.
const DefaultPrompt = " go to (q to cancel): "

var (
	// ErrNoCandidates is returned when there is nothing to pick from. No terminal
	// interaction takes place.
	ErrNoCandidates = errors.New("no candidates")

	// ErrCancelled is returned when no item was selected: the user cancelled, entered
	// an index that does not exist, or the terminal could not be used.
	ErrCancelled = errors.New("selection cancelled")
)

// Item is one selectable entry. Its number is its 1-based position in the list.
type Item struct {
	Display string
	Path    string
}

// Config controls how the list is presented.
type Config struct {
	Title  string
	Prompt string
}

// Picker runs selections against a terminal.
type Picker struct {
	// Open returns the terminal keystrokes are read from.
	Open func() (Terminal, error)
	// Out receives the listing and the interactive transcript.
	Out io.Writer
	// Logger receives debug information about terminal failures.
	Logger *slog.Logger
}

// New returns a picker reading from the terminal device at ttyPath and writing its
// transcript to stderr.
func New(ttyPath string, logger *slog.Logger) *Picker {
	if ttyPath == "" {
		ttyPath = DefaultTTY
	}
	return &Picker{
		Open:   func() (Terminal, error) { return OpenTTY(ttyPath) },
		Out:    os.Stderr,
		Logger: logger,
	}
}

// Run lists items and blocks until the user commits a choice or cancels.
// It returns the Path of the chosen item, ErrNoCandidates, or an error wrapping
// ErrCancelled. The terminal is always returned to its previous mode.
func (p *Picker) Run(items []Item, cfg Config) (string, error) {
	if len(items) == 0 {
		return "", ErrNoCandidates
	}
	log := p.logger()

	p.render(items, cfg)

	term, err := p.Open()
	if err != nil {
		fmt.Fprintln(p.out())
		log.Debug("terminal unavailable", "error", err)
		return "", fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	defer term.Close()

	restore, err := term.MakeRaw()
	if err != nil {
		fmt.Fprintln(p.out())
		log.Debug("raw mode unavailable", "error", err)
		return "", fmt.Errorf("%w: %v", ErrCancelled, err)
	}
	defer func() {
		if err := restore(); err != nil {
			log.Warn("failed to restore terminal", "error", err)
		}
	}()

	index, err := p.read(term, len(items))
	if err != nil {
		log.Debug("selection ended without a choice", "error", err)
		return "", err
	}
	return items[index-1].Path, nil
}

// read feeds keystrokes to a Session until it reaches a final state.
func (p *Picker) read(r io.Reader, count int) (int, error) {
	out := p.out()
	session := NewSession(count)
	var b [1]byte

	for {
		n, err := r.Read(b[:])
		if n == 0 {
			fmt.Fprintln(out)
			if err == nil {
				err = io.EOF
			}
			return 0, fmt.Errorf("%w: %v", ErrCancelled, err)
		}

		step := session.Feed(b[0])
		if step.Echo != 0 {
			fmt.Fprintf(out, "%c", step.Echo)
		}
		if step.Erase {
			fmt.Fprint(out, "\b \b")
		}

		switch step.Outcome {
		case Committed:
			fmt.Fprintln(out)
			return step.Index, nil
		case Cancelled:
			fmt.Fprintln(out)
			return 0, ErrCancelled
		}
	}
}

// render writes the title, the numbered items and the prompt.
func (p *Picker) render(items []Item, cfg Config) {
	out := p.out()

	if cfg.Title != "" {
		styled := termenv.NewOutput(out).String(" " + cfg.Title).Bold()
		fmt.Fprintln(out, styled.String())
	}

	width := numberWidth(len(items))
	for i, item := range items {
		fmt.Fprintf(out, " %*d) %s\n", width, i+1, item.Display)
	}

	prompt := cfg.Prompt
	if prompt == "" {
		prompt = DefaultPrompt
	}
	fmt.Fprintln(out)
	fmt.Fprint(out, prompt)
}

// numberWidth is the column width of the largest item number.
func numberWidth(count int) int {
	switch {
	case count >= 100:
		return 3
	case count >= 10:
		return 2
	default:
		return 1
	}
}

func (p *Picker) out() io.Writer {
	if p.Out != nil {
		return p.Out
	}
	return os.Stderr
}

func (p *Picker) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return slog.New(slog.DiscardHandler)
}
