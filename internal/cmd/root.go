package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/runger/cdm/internal/picker"
)

// Command groups shown in help output.
const (
	groupCore  = "core"
	groupSetup = "setup"
)

var rootCmd = &cobra.Command{
	Use:   "cdm",
	Short: "cd with memory: fast filesystem navigation",
	Long: `cdm - cd with memory
  - cdr / cdf  pick a recent or frequent directory
  - cdp        pick a directory you usually visit alongside this one
  - goahead    pick a directory below this one

Use it through the shell wrapper (eval "$(cdm init zsh)") so that a
selection actually changes the directory.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. A cancelled selection or an empty candidate list
// returns an error without printing it.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil && !isQuietError(err) {
		fmt.Fprintf(os.Stderr, "cdm: %v\n", err)
	}
	return err
}

func isQuietError(err error) bool {
	return errors.Is(err, picker.ErrCancelled) || errors.Is(err, picker.ErrNoCandidates)
}

func init() {
	rootCmd.AddGroup(
		&cobra.Group{ID: groupCore, Title: "Navigation:"},
		&cobra.Group{ID: groupSetup, Title: "Setup:"},
	)
	rootCmd.PersistentFlags().StringVar(&colorMode, "color", "auto", "color output: auto, always, or never")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		applyColorMode()
	}

	rootCmd.AddCommand(cdrCmd)
	rootCmd.AddCommand(cdfCmd)
	rootCmd.AddCommand(cdpCmd)
	rootCmd.AddCommand(goaheadCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
	rootCmd.AddCommand(versionCmd)
}
