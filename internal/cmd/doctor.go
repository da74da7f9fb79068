package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/runger/cdm/internal/config"
	"github.com/runger/cdm/internal/history"
)

var doctorCmd = &cobra.Command{
	Use:     "doctor",
	Short:   "Check the cdm installation",
	GroupID: groupSetup,
	Long: `Run diagnostic checks on your cdm installation.

This command checks:
- Binary installation
- Configuration validity
- History readability
- Terminal access for the picker
- Shell integration

Examples:
  cdm doctor`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

var lookPath = exec.LookPath

type checkResult struct {
	name    string
	status  string // "ok", "warn", "error"
	message string
}

func runDoctor(cmd *cobra.Command, args []string) error {
	fmt.Printf("%scdm Doctor%s\n", colorBold, colorReset)
	fmt.Println(strings.Repeat("-", 40))
	fmt.Println()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	paths := config.DefaultPaths()
	results := make([]checkResult, 0, 8)
	results = append(results, checkBinary())

	cfg, cfgResult := checkConfiguration(paths)
	results = append(results, cfgResult)
	if cfg != nil {
		results = append(results, checkHistory(ctx, cfg, paths))
		results = append(results, checkTerminal(cfg.Picker.TTY))
	}
	results = append(results, checkShellIntegration(config.HomeDir()))

	hasErrors := false
	hasWarnings := false
	for _, r := range results {
		var statusIcon string
		switch r.status {
		case "ok":
			statusIcon = colorGreen + "[OK]" + colorReset
		case "warn":
			statusIcon = colorYellow + "[WARN]" + colorReset
			hasWarnings = true
		case "error":
			statusIcon = colorRed + "[ERROR]" + colorReset
			hasErrors = true
		}

		fmt.Printf("  %s %s\n", statusIcon, r.name)
		if r.message != "" {
			fmt.Printf("       %s%s%s\n", colorDim, r.message, colorReset)
		}
	}

	fmt.Println()

	if hasErrors {
		fmt.Printf("%sSome checks failed. Please fix the errors above.%s\n", colorRed, colorReset)
		return errors.New("doctor found errors")
	}
	if hasWarnings {
		fmt.Printf("%sAll critical checks passed, but there are warnings.%s\n", colorYellow, colorReset)
	} else {
		fmt.Printf("%sAll checks passed!%s\n", colorGreen, colorReset)
	}
	return nil
}

func checkBinary() checkResult {
	path, err := lookPath("cdm")
	if err != nil {
		return checkResult{
			name:    "cdm binary",
			status:  "error",
			message: "cdm not found in PATH",
		}
	}
	return checkResult{name: "cdm binary", status: "ok", message: path}
}

func checkConfiguration(paths *config.Paths) (*config.Config, checkResult) {
	cfg, err := config.LoadFromPaths(paths)
	if err != nil {
		return nil, checkResult{
			name:    "Configuration",
			status:  "error",
			message: err.Error(),
		}
	}

	for _, file := range []string{paths.ConfigFile(), paths.LegacyConfigFile()} {
		if _, err := os.Stat(file); err == nil {
			return cfg, checkResult{name: "Configuration", status: "ok", message: file}
		}
	}
	return cfg, checkResult{
		name:    "Configuration",
		status:  "ok",
		message: "Using defaults (no config file)",
	}
}

func checkHistory(ctx context.Context, cfg *config.Config, paths *config.Paths) checkResult {
	const name = "History"
	historyPath := cfg.HistoryPath(paths)

	store, err := history.Open(cfg.History.Backend, historyPath, nil)
	if err != nil {
		return checkResult{name: name, status: "error", message: err.Error()}
	}
	defer store.Close()

	entries, err := store.Load(ctx)
	if err != nil {
		return checkResult{name: name, status: "error", message: err.Error()}
	}
	if len(entries) == 0 {
		return checkResult{
			name:    name,
			status:  "warn",
			message: fmt.Sprintf("No visits recorded yet (%s)", historyPath),
		}
	}
	return checkResult{
		name:    name,
		status:  "ok",
		message: fmt.Sprintf("%d visits in %s (%s)", len(entries), historyPath, cfg.History.Backend),
	}
}

func checkTerminal(tty string) checkResult {
	f, err := os.OpenFile(tty, os.O_RDWR, 0) //nolint:gosec // G304: terminal path comes from user configuration
	if err != nil {
		return checkResult{
			name:    "Terminal",
			status:  "warn",
			message: fmt.Sprintf("Cannot open %s; the picker needs a controlling terminal", tty),
		}
	}
	_ = f.Close()
	return checkResult{name: "Terminal", status: "ok", message: tty}
}

// shellRCFiles lists where each shell's init line is expected, relative to home.
var shellRCFiles = []struct {
	shell string
	file  string
}{
	{"zsh", ".zshrc"},
	{"bash", ".bashrc"},
	{"fish", filepath.Join(".config", "fish", "config.fish")},
}

func checkShellIntegration(home string) checkResult {
	var installed []string
	if home != "" {
		for _, rc := range shellRCFiles {
			if ok, _ := hasInitLine(filepath.Join(home, rc.file), rc.shell); ok {
				installed = append(installed, fmt.Sprintf("%s (%s)", rc.shell, rc.file))
			}
		}
	}

	if len(installed) == 0 {
		return checkResult{
			name:    "Shell integration",
			status:  "warn",
			message: `Not installed. Add 'eval "$(cdm init zsh)"' (or bash/fish) to your shell rc file.`,
		}
	}
	return checkResult{
		name:    "Shell integration",
		status:  "ok",
		message: strings.Join(installed, ", "),
	}
}

// hasInitLine reports whether rcFile loads the cdm wrapper for shell.
func hasInitLine(rcFile, shell string) (bool, error) {
	f, err := os.Open(rcFile) //nolint:gosec // G304: rc file path is built from the home directory
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	pattern := "cdm init " + shell
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, pattern) {
			return true, nil
		}
	}
	return false, scanner.Err()
}
