// Package dirs enumerates the directories below a starting point for goahead.
package dirs

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"

	gitignore "github.com/sabhiram/go-gitignore"
)

// Options controls List.
type Options struct {
	// MaxDepth is how many levels below root are listed. Zero lists nothing.
	MaxDepth int
	// Limit stops the walk after this many directories. Zero means no limit.
	Limit int
	// RespectGitignore skips directories matched by root/.gitignore.
	RespectGitignore bool
	// ShowHidden includes directories whose names start with a dot.
	ShowHidden bool
}

type queued struct {
	path  string
	depth int
}

// List walks root breadth-first and returns the directories it finds. Children of a
// directory are visited in case-insensitive name order, so nearer directories always
// come before deeper ones. Unreadable directories are skipped and symlinks are not
// followed. .git is never listed.
func List(ctx context.Context, root string, opts Options) ([]string, error) {
	var matcher *gitignore.GitIgnore
	if opts.RespectGitignore {
		if m, err := gitignore.CompileIgnoreFile(filepath.Join(root, ".gitignore")); err == nil {
			matcher = m
		}
	}

	var result []string
	queue := []queued{{path: root}}
	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dir := queue[0]
		queue = queue[1:]
		if dir.depth >= opts.MaxDepth {
			continue
		}

		entries, err := os.ReadDir(dir.path)
		if err != nil {
			continue
		}

		var children []string
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			name := e.Name()
			if name == ".git" || (!opts.ShowHidden && strings.HasPrefix(name, ".")) {
				continue
			}
			child := filepath.Join(dir.path, name)
			if matcher != nil && ignored(matcher, root, child) {
				continue
			}
			children = append(children, child)
		}
		sort.SliceStable(children, func(i, j int) bool {
			return strings.ToLower(filepath.Base(children[i])) < strings.ToLower(filepath.Base(children[j]))
		})

		for _, child := range children {
			result = append(result, child)
			if opts.Limit > 0 && len(result) >= opts.Limit {
				return result, nil
			}
			queue = append(queue, queued{path: child, depth: dir.depth + 1})
		}
	}
	return result, nil
}

func ignored(m *gitignore.GitIgnore, root, dir string) bool {
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	// Directory-only patterns ("build/") match the slash-terminated form.
	return m.MatchesPath(rel) || m.MatchesPath(rel+"/")
}
