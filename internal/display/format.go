// Package display turns directory paths into short strings for the picker.
package display

import (
	"path/filepath"
	"regexp"
	"strings"
	"unicode"

	"github.com/mattn/go-runewidth"
)

// ellipsis marks elided text.
const ellipsis = "…"

// Alias replaces a directory prefix with a short name, shown as "[name]/rest".
type Alias struct {
	Prefix string
	Name   string
}

// ansiRE matches CSI, OSC and two-byte escape sequences.
var ansiRE = regexp.MustCompile(`\x1b(?:` +
	`\[[0-9;?]*[ -/]*[@-~]` +
	`|` +
	`\].*?(?:\x1b\\|\x07)` +
	`|` +
	`[()#*+\-./][A-Za-z0-9]` +
	`)`)

// Sanitize removes escape sequences and control characters so a directory name
// cannot drive the terminal it is printed on.
func Sanitize(s string) string {
	s = ansiRE.ReplaceAllString(s, "")
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// FormatPath renders path for display.
//
// The first alias whose prefix contains path is applied; otherwise the home
// directory is shown as "~". When the result is wider than maxWidth columns, the
// middle components are collapsed to "first/…/parent/name", and if that is still
// too wide only the tail is kept behind a leading "…". A maxWidth of zero or less
// disables truncation.
func FormatPath(path, home string, aliases []Alias, maxWidth int) string {
	out := abbreviate(path, home, aliases)
	out = Sanitize(out)

	if maxWidth <= 0 || runewidth.StringWidth(out) <= maxWidth {
		return out
	}

	components := strings.Split(out, "/")
	if len(components) > 3 {
		n := len(components)
		collapsed := components[0] + "/" + ellipsis + "/" + components[n-2] + "/" + components[n-1]
		if runewidth.StringWidth(collapsed) < runewidth.StringWidth(out) {
			out = collapsed
		}
	}

	if runewidth.StringWidth(out) > maxWidth {
		out = ellipsis + truncateLeft(out, maxWidth-1)
	}
	return out
}

// abbreviate applies the first matching alias, or the home directory.
func abbreviate(path, home string, aliases []Alias) string {
	for _, a := range aliases {
		if a.Prefix == "" {
			continue
		}
		if rest, ok := cutPrefix(path, a.Prefix); ok {
			if rest == "" {
				return "[" + a.Name + "]"
			}
			return "[" + a.Name + "]/" + rest
		}
	}

	if home != "" {
		if rest, ok := cutPrefix(path, home); ok {
			if rest == "" {
				return "~"
			}
			return "~/" + rest
		}
	}
	return path
}

// cutPrefix strips dir from path when dir is path itself or one of its ancestors.
// Matching is on whole components: "/home/al" is not a prefix of "/home/alice".
func cutPrefix(path, dir string) (string, bool) {
	dir = filepath.Clean(dir)
	if path == dir {
		return "", true
	}
	if dir == string(filepath.Separator) {
		return strings.TrimPrefix(path, dir), strings.HasPrefix(path, dir)
	}
	if strings.HasPrefix(path, dir+string(filepath.Separator)) {
		return path[len(dir)+1:], true
	}
	return "", false
}

// truncateLeft returns the longest suffix of s whose display width does not
// exceed maxWidth.
func truncateLeft(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}
	runes := []rune(s)
	w := 0
	start := len(runes)
	for i := len(runes) - 1; i >= 0; i-- {
		rw := runewidth.RuneWidth(runes[i])
		if w+rw > maxWidth {
			break
		}
		w += rw
		start = i
	}
	return string(runes[start:])
}
