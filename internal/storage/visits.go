package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Visit is one recorded directory change.
type Visit struct {
	ID   int64
	Path string
	Time time.Time
}

// Load returns every visited path, oldest first.
func (s *SQLiteStore) Load(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT path FROM visits ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}

// Append records a visit to path.
func (s *SQLiteStore) Append(ctx context.Context, path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is empty")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visits (path, ts_unix_ms) VALUES (?, ?)`,
		path, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert visit: %w", err)
	}
	return nil
}

// Recent returns up to limit visits, newest first.
func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]Visit, error) {
	if limit <= 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, path, ts_unix_ms FROM visits ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query visits: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var ts int64
		if err := rows.Scan(&v.ID, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan visit: %w", err)
		}
		v.Time = time.UnixMilli(ts)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}
