package cmd

import (
	"embed"
	"fmt"

	"github.com/spf13/cobra"
)

//go:embed shell/zsh/cdm.zsh
//go:embed shell/bash/cdm.bash
//go:embed shell/fish/cdm.fish
var shellScripts embed.FS

var initCmd = &cobra.Command{
	Use:     "init <shell>",
	Short:   "Output shell integration script",
	GroupID: groupSetup,
	Long: `Output the shell integration script for your shell.

The script defines cdr, cdf, cdp and goahead as shell functions that change
into the selected directory, and records every directory change in the
cdm history.

Add this to your shell configuration file:

  # For Zsh (~/.zshrc):
  eval "$(cdm init zsh)"

  # For Bash (~/.bashrc or ~/.bash_profile on macOS):
  eval "$(cdm init bash)"

  # For Fish (~/.config/fish/config.fish):
  cdm init fish | source`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"zsh", "bash", "fish"},
	RunE:      runInit,
}

func shellScriptFile(shell string) (string, error) {
	switch shell {
	case "zsh":
		return "shell/zsh/cdm.zsh", nil
	case "bash":
		return "shell/bash/cdm.bash", nil
	case "fish":
		return "shell/fish/cdm.fish", nil
	default:
		return "", fmt.Errorf("unsupported shell: %s (supported: zsh, bash, fish)", shell)
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	filename, err := shellScriptFile(args[0])
	if err != nil {
		return err
	}

	content, err := shellScripts.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read shell script: %w", err)
	}

	fmt.Print(string(content))
	return nil
}
