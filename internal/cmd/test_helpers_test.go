package cmd

import (
	"bytes"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runger/cdm/internal/picker"
)

type navGlobals struct {
	regex        string
	number       int
	prefix       bool
	historyDepth int
	depth        int
}

func withNavGlobals(t *testing.T, g navGlobals) {
	t.Helper()
	old := navGlobals{
		regex:        navRegex,
		number:       navNumber,
		prefix:       navPrefix,
		historyDepth: navHistoryDepth,
		depth:        navDepth,
	}
	navRegex = g.regex
	navNumber = g.number
	navPrefix = g.prefix
	navHistoryDepth = g.historyDepth
	navDepth = g.depth

	t.Cleanup(func() {
		navRegex = old.regex
		navNumber = old.number
		navPrefix = old.prefix
		navHistoryDepth = old.historyDepth
		navDepth = old.depth
	})
}

// fakeSelector records what it was shown and picks the item at choose. A choose
// outside the list cancels.
type fakeSelector struct {
	items  []picker.Item
	cfg    picker.Config
	choose int
	calls  int
}

func (f *fakeSelector) Run(items []picker.Item, cfg picker.Config) (string, error) {
	f.calls++
	f.items = items
	f.cfg = cfg
	if len(items) == 0 {
		return "", picker.ErrNoCandidates
	}
	if f.choose < 0 || f.choose >= len(items) {
		return "", picker.ErrCancelled
	}
	return items[f.choose].Path, nil
}

func (f *fakeSelector) paths() []string {
	out := make([]string, len(f.items))
	for i, it := range f.items {
		out[i] = it.Path
	}
	return out
}

func withSelector(t *testing.T, f *fakeSelector) {
	t.Helper()
	old := newSelector
	newSelector = func(string, *slog.Logger) selector { return f }
	t.Cleanup(func() { newSelector = old })
}

// setupEnv points every cdm location into a temp dir and returns the history file.
func setupEnv(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("HOME", filepath.Join(root, "home"))
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	t.Setenv("CDM_WINDOW", "")
	t.Setenv("CDM_DEBUG", "")
	t.Setenv("CDM_LOG_LEVEL", "")
	t.Setenv("COLUMNS", "200")

	hist := filepath.Join(root, "cd_history")
	t.Setenv("CDM_HISTORY", hist)
	return hist
}

func writeHistory(t *testing.T, path string, entries ...string) {
	t.Helper()
	data := strings.Join(entries, "\n") + "\n"
	if err := os.WriteFile(path, []byte(data), 0600); err != nil {
		t.Fatalf("write history: %v", err)
	}
}

func readHistory(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read history: %v", err)
	}
	return strings.Fields(string(data))
}

// canonicalTempDir returns a temp dir with symlinks resolved, matching canonicalCwd.
func canonicalTempDir(t *testing.T) string {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	return dir
}

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stdout, fn)
}

func captureStderr(t *testing.T, fn func()) string {
	t.Helper()
	return captureFile(t, &os.Stderr, fn)
}

// captureFile swaps *target for a pipe while fn runs and returns what was written.
func captureFile(t *testing.T, target **os.File, fn func()) string {
	t.Helper()
	old := *target
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("os.Pipe() failed: %v", err)
	}
	*target = w

	outC := make(chan string)
	go func() {
		var buf bytes.Buffer
		_, _ = io.Copy(&buf, r)
		outC <- buf.String()
	}()

	fn()
	_ = w.Close()
	*target = old
	out := <-outC
	_ = r.Close()
	return out
}

func withoutColors(t *testing.T) {
	t.Helper()
	old := []string{colorRed, colorGreen, colorYellow, colorCyan, colorDim, colorBold, colorReset}
	disableColors()
	t.Cleanup(func() {
		colorRed, colorGreen, colorYellow, colorCyan = old[0], old[1], old[2], old[3]
		colorDim, colorBold, colorReset = old[4], old[5], old[6]
	})
}
