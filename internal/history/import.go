package history

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/shlex"
)

// MaxImportCommands bounds how many shell history commands are scanned.
const MaxImportCommands = 25000

// Shell names accepted by ImportShell.
const (
	ShellBash = "bash"
	ShellZsh  = "zsh"
	ShellFish = "fish"
)

// ImportShell reads a shell history file and returns the absolute directories
// the user changed into with cd or pushd, oldest first. Relative targets cannot be
// resolved without the working directory of the time and are skipped.
//
// An empty shell is detected from $SHELL; an empty path uses the shell's default
// history location. A missing history file yields no entries.
func ImportShell(shell, path, home string) ([]string, error) {
	if shell == "" {
		shell = DetectShell()
	}
	if path == "" {
		path = shellHistoryPath(shell, home)
	}
	if path == "" {
		return nil, fmt.Errorf("unsupported shell %q", shell)
	}

	file, err := os.Open(path) //nolint:gosec // G304: path is from user's HISTFILE or well-known default
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	var commands []string
	switch shell {
	case ShellBash:
		commands, err = parseBash(file)
	case ShellZsh:
		commands, err = parseZsh(file)
	case ShellFish:
		commands, err = parseFish(file)
	default:
		return nil, fmt.Errorf("unsupported shell %q", shell)
	}
	if err != nil {
		return nil, err
	}

	if len(commands) > MaxImportCommands {
		commands = commands[len(commands)-MaxImportCommands:]
	}

	var dirs []string
	for _, c := range commands {
		if dir, ok := CDTarget(c, home); ok {
			dirs = append(dirs, dir)
		}
	}
	return dirs, nil
}

// CDTarget extracts the absolute directory of a cd or pushd command.
func CDTarget(command, home string) (string, bool) {
	tokens, err := shlex.Split(command)
	if err != nil || len(tokens) < 2 {
		return "", false
	}
	if tokens[0] == "builtin" {
		tokens = tokens[1:]
	}
	if len(tokens) < 2 || (tokens[0] != "cd" && tokens[0] != "pushd") {
		return "", false
	}

	for _, arg := range tokens[1:] {
		if strings.HasPrefix(arg, "-") {
			// Options such as -P, or "-" for the previous directory.
			if arg == "-" {
				return "", false
			}
			continue
		}
		arg = strings.TrimRight(arg, ";")
		switch {
		case arg == "~" && home != "":
			return filepath.Clean(home), true
		case strings.HasPrefix(arg, "~/") && home != "":
			return filepath.Join(home, arg[2:]), true
		case filepath.IsAbs(arg):
			return filepath.Clean(arg), true
		default:
			return "", false
		}
	}
	return "", false
}

// DetectShell returns the shell named by $SHELL, or "" when unsupported.
func DetectShell() string {
	switch filepath.Base(os.Getenv("SHELL")) {
	case ShellBash:
		return ShellBash
	case ShellZsh:
		return ShellZsh
	case ShellFish:
		return ShellFish
	default:
		return ""
	}
}

func shellHistoryPath(shell, home string) string {
	switch shell {
	case ShellBash, ShellZsh:
		if histFile := os.Getenv("HISTFILE"); histFile != "" {
			return histFile
		}
		if home == "" {
			return ""
		}
		if shell == ShellBash {
			return filepath.Join(home, ".bash_history")
		}
		return filepath.Join(home, ".zsh_history")
	case ShellFish:
		if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
			return filepath.Join(dataHome, "fish", "fish_history")
		}
		if home == "" {
			return ""
		}
		return filepath.Join(home, ".local", "share", "fish", "fish_history")
	default:
		return ""
	}
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	return scanner
}

// parseBash reads one command per line. HISTTIMEFORMAT marker lines (#<unix_ts>)
// are skipped.
func parseBash(r io.Reader) ([]string, error) {
	var commands []string
	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") && len(line) > 1 {
			if _, err := strconv.ParseInt(line[1:], 10, 64); err == nil {
				continue
			}
		}
		commands = append(commands, line)
	}
	return commands, scanner.Err()
}

// parseZsh reads plain or extended (": <ts>:<dur>;<cmd>") zsh history, joining
// backslash-continued lines.
func parseZsh(r io.Reader) ([]string, error) {
	var (
		commands  []string
		multiline strings.Builder
	)

	add := func(cmd string) {
		if strings.HasSuffix(cmd, "\\") && !strings.HasSuffix(cmd, "\\\\") {
			multiline.WriteString(cmd[:len(cmd)-1])
			multiline.WriteString("\n")
			return
		}
		if multiline.Len() > 0 {
			multiline.WriteString(cmd)
			cmd = multiline.String()
			multiline.Reset()
		}
		if cmd != "" {
			commands = append(commands, cmd)
		}
	}

	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if multiline.Len() == 0 && strings.HasPrefix(line, ": ") {
			if idx := strings.Index(line, ";"); idx != -1 {
				line = line[idx+1:]
			}
		}
		add(line)
	}
	if multiline.Len() > 0 {
		commands = append(commands, strings.TrimSuffix(multiline.String(), "\n"))
	}
	return commands, scanner.Err()
}

// parseFish reads fish's pseudo-YAML history ("- cmd: <command>" entries).
func parseFish(r io.Reader) ([]string, error) {
	var commands []string
	scanner := newScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if cmd, ok := strings.CutPrefix(line, "- cmd: "); ok {
			commands = append(commands, decodeFishEscapes(cmd))
		}
	}
	return commands, scanner.Err()
}

// decodeFishEscapes decodes fish's \\ and \n escapes.
func decodeFishEscapes(s string) string {
	var result strings.Builder
	result.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case '\\':
				result.WriteByte('\\')
				i++
				continue
			case 'n':
				result.WriteByte('\n')
				i++
				continue
			}
		}
		result.WriteByte(s[i])
	}
	return result.String()
}
