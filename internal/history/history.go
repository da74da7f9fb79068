// Package history stores the chronological list of visited directories and derives
// candidate lists from it.
package history

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/runger/cdm/internal/storage"
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Store is a chronological, append-only visit history.
type Store interface {
	// Load returns every entry, oldest first.
	Load(ctx context.Context) ([]string, error)
	// Append records a visit.
	Append(ctx context.Context, path string) error
	Close() error
}

// Open returns the store for backend at path. logger may be nil.
func Open(backend, path string, logger *slog.Logger) (Store, error) {
	switch backend {
	case BackendFile, "":
		s := NewFileStore(path)
		s.Logger = logger
		return s, nil
	case BackendSQLite:
		s, err := storage.NewSQLiteStore(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown history backend %q", backend)
	}
}

// maxLineBytes bounds one history line. Longer lines are skipped on Load.
const maxLineBytes = 1024 * 1024

// FileStore keeps history as a text file with one path per line.
type FileStore struct {
	path string

	// Logger receives warnings about skipped lines.
	Logger *slog.Logger
}

// NewFileStore returns a store backed by the file at path. The file is created on
// the first Append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the history file. Lines are trimmed and blank lines skipped, as are
// lines longer than 1 MiB. A missing file is an empty history.
func (s *FileStore) Load(ctx context.Context) ([]string, error) {
	file, err := os.Open(s.path) //nolint:gosec // G304: path comes from user configuration
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	var entries []string
	for lineNo := 1; ; lineNo++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		line, tooLong, err := readLine(reader, maxLineBytes)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		if tooLong {
			s.logger().Warn("skipping oversized history line", "path", s.path, "line", lineNo)
			continue
		}
		if line = strings.TrimSpace(line); line != "" {
			entries = append(entries, line)
		}
	}
	return entries, nil
}

// readLine returns the next line without its terminator. A line longer than limit
// is consumed and reported as tooLong with no content.
func readLine(r *bufio.Reader, limit int) (line string, tooLong bool, err error) {
	var buf []byte
	for {
		chunk, isPrefix, err := r.ReadLine()
		if err != nil {
			if err == io.EOF && (len(buf) > 0 || tooLong) {
				return string(buf), tooLong, nil
			}
			return "", false, err
		}
		if !tooLong {
			if len(buf)+len(chunk) > limit {
				tooLong = true
				buf = nil
			} else {
				buf = append(buf, chunk...)
			}
		}
		if !isPrefix {
			return string(buf), tooLong, nil
		}
	}
}

func (s *FileStore) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// Append adds path as a new line, creating the file and its directory if needed.
func (s *FileStore) Append(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is empty")
	}
	if strings.ContainsAny(path, "\n\r") {
		return fmt.Errorf("path contains a newline: %q", path)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("failed to create history directory: %w", err)
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	if _, err := f.WriteString(path + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("failed to append history: %w", err)
	}
	return f.Close()
}

// Close is a no-op; the file is only open during Load and Append.
func (s *FileStore) Close() error {
	return nil
}

// Import appends every entry of src to dst in order and returns how many were copied.
func Import(ctx context.Context, dst, src Store) (int, error) {
	entries, err := src.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load source history: %w", err)
	}
	return AppendAll(ctx, dst, entries)
}

// AppendAll appends paths to dst in order and returns how many were written.
func AppendAll(ctx context.Context, dst Store, paths []string) (int, error) {
	for i, p := range paths {
		if err := dst.Append(ctx, p); err != nil {
			return i, err
		}
	}
	return len(paths), nil
}
