package history

import (
	"fmt"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Tail returns the last depth entries of history. A non-positive depth returns nil.
func Tail(history []string, depth int) []string {
	if depth <= 0 {
		return nil
	}
	if depth >= len(history) {
		return history
	}
	return history[len(history)-depth:]
}

// Recent returns distinct paths, most recently visited first.
func Recent(history []string) []string {
	seen := make(map[string]struct{}, len(history))
	var out []string
	for i := len(history) - 1; i >= 0; i-- {
		p := history[i]
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Frequent returns distinct paths ordered by visit count, highest first. Paths
// with equal counts are ordered by their latest visit, newest first.
func Frequent(history []string) []string {
	type stat struct {
		path  string
		count int
		last  int
	}
	index := make(map[string]int)
	var stats []stat
	for i, p := range history {
		if j, ok := index[p]; ok {
			stats[j].count++
			stats[j].last = i
			continue
		}
		index[p] = len(stats)
		stats = append(stats, stat{path: p, count: 1, last: i})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].last > stats[j].last
	})

	out := make([]string, len(stats))
	for i, s := range stats {
		out[i] = s.path
	}
	return out
}

// FilterOptions restricts a candidate list.
type FilterOptions struct {
	// Regex keeps only paths matching this expression.
	Regex string
	// Under keeps only paths inside this directory.
	Under string
}

// Filter applies opts to paths, preserving order. An invalid regex is an error.
func Filter(paths []string, opts FilterOptions) ([]string, error) {
	var re *regexp.Regexp
	if opts.Regex != "" {
		var err error
		re, err = regexp.Compile(opts.Regex)
		if err != nil {
			return nil, fmt.Errorf("invalid regex %q: %w", opts.Regex, err)
		}
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if re != nil && !re.MatchString(p) {
			continue
		}
		if opts.Under != "" && !IsUnder(p, opts.Under) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// IsUnder reports whether path is dir or lies inside it, comparing whole components.
func IsUnder(path, dir string) bool {
	dir = filepath.Clean(dir)
	path = filepath.Clean(path)
	if path == dir {
		return true
	}
	if dir == string(filepath.Separator) {
		return strings.HasPrefix(path, dir)
	}
	return strings.HasPrefix(path, dir+string(filepath.Separator))
}

// Limit returns at most n paths. A non-positive n returns nil.
func Limit(paths []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(paths) > n {
		return paths[:n]
	}
	return paths
}
