package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/runger/cdm/internal/coaccess"
	"github.com/runger/cdm/internal/config"
	"github.com/runger/cdm/internal/history"
	"github.com/runger/cdm/internal/storage"
)

var (
	historyLimit        int
	historyFrom         string
	historyFromBackend  string
	historyShell        string
	historyShellFile    string
	historyNeighborsAll bool
)

var historyCmd = &cobra.Command{
	Use:     "history",
	Short:   "Inspect and maintain the visit history",
	GroupID: groupSetup,
	Long: `Inspect and maintain the directory visit history.

The history is a chronological list of visited directories, stored either as a
plain text file (history.backend=file, one path per line) or in SQLite
(history.backend=sqlite). The shell wrapper records a visit on every
directory change with 'cdm history add'.

Examples:
  cdm history show -n 50                 # Last 50 visits, newest first
  cdm history add                        # Record the current directory
  cdm history import --from ~/.cd_history
  cdm history import --shell zsh         # Seed from cd commands in ~/.zsh_history
  cdm history neighbors ~/src/cdm        # Co-access scores for a directory`,
}

var historyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show recent visits, newest first",
	Args:  cobra.NoArgs,
	RunE:  runHistoryShow,
}

var historyAddCmd = &cobra.Command{
	Use:   "add [dir]",
	Short: "Record a visit (defaults to the current directory)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryAdd,
}

var historyImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Append visits from another history or from shell history",
	Args:  cobra.NoArgs,
	RunE:  runHistoryImport,
}

var historyNeighborsCmd = &cobra.Command{
	Use:   "neighbors [dir]",
	Short: "Show co-access scores for a directory (defaults to the current one)",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runHistoryNeighbors,
}

func init() {
	historyShowCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of visits to show")

	historyImportCmd.Flags().StringVar(&historyFrom, "from", "", "History to import from")
	historyImportCmd.Flags().StringVar(&historyFromBackend, "from-backend", config.BackendFile, "Backend of --from: file or sqlite")
	historyImportCmd.Flags().StringVar(&historyShell, "shell", "", "Import cd targets from shell history: bash, zsh, fish, or auto")
	historyImportCmd.Flags().StringVar(&historyShellFile, "shell-history", "", "Shell history file (default: the shell's usual location)")
	historyImportCmd.MarkFlagsMutuallyExclusive("from", "shell")
	historyImportCmd.MarkFlagsOneRequired("from", "shell")

	historyNeighborsCmd.Flags().BoolVarP(&historyNeighborsAll, "all", "a", false, "Show every neighbor instead of picker.number")

	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyAddCmd)
	historyCmd.AddCommand(historyImportCmd)
	historyCmd.AddCommand(historyNeighborsCmd)
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		if sq, ok := env.store.(*storage.SQLiteStore); ok {
			visits, err := sq.Recent(ctx, historyLimit)
			if err != nil {
				return err
			}
			if len(visits) == 0 {
				fmt.Println("No visits recorded yet.")
				return nil
			}
			for _, v := range visits {
				fmt.Printf("%s%s%s  %s\n", colorDim, v.Time.Format(time.DateTime), colorReset, v.Path)
			}
			return nil
		}

		entries, err := env.loadHistory(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No visits recorded yet.")
			return nil
		}
		recent := history.Tail(entries, historyLimit)
		for i := len(recent) - 1; i >= 0; i-- {
			fmt.Println(recent[i])
		}
		return nil
	})
}

func runHistoryAdd(cmd *cobra.Command, args []string) error {
	var dir string
	var err error
	if len(args) == 1 {
		dir, err = canonicalDir(args[0])
	} else {
		dir, err = canonicalCwd()
	}
	if err != nil {
		return err
	}

	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		return env.store.Append(ctx, dir)
	})
}

func runHistoryImport(cmd *cobra.Command, args []string) error {
	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		var (
			n   int
			err error
		)
		if historyShell != "" {
			n, err = importShellHistory(ctx, env)
		} else {
			n, err = importStore(ctx, env)
		}
		if err != nil {
			return err
		}
		fmt.Printf("%sImported %d visit(s)%s into %s\n", colorGreen, n, colorReset, env.historyPath)
		return nil
	})
}

func importStore(ctx context.Context, env *navEnv) (int, error) {
	from := config.ExpandHome(historyFrom, config.HomeDir())
	if sameFile(from, env.historyPath) {
		return 0, errors.New("cannot import a history into itself")
	}
	src, err := history.Open(historyFromBackend, from, env.logger)
	if err != nil {
		return 0, err
	}
	defer src.Close()
	return history.Import(ctx, env.store, src)
}

func importShellHistory(ctx context.Context, env *navEnv) (int, error) {
	shell := historyShell
	if shell == "auto" {
		shell = history.DetectShell()
		if shell == "" {
			return 0, errors.New("could not detect shell from $SHELL; pass --shell bash, zsh, or fish")
		}
	}
	dirs, err := history.ImportShell(shell, historyShellFile, config.HomeDir())
	if err != nil {
		return 0, err
	}
	env.logger.Debug("shell history parsed", "shell", shell, "directories", len(dirs))
	return history.AppendAll(ctx, env.store, dirs)
}

func runHistoryNeighbors(cmd *cobra.Command, args []string) error {
	var dir string
	var err error
	if len(args) == 1 {
		dir, err = canonicalDir(args[0])
	} else {
		dir, err = canonicalCwd()
	}
	if err != nil {
		return err
	}

	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		entries, err := env.loadHistory(ctx)
		if err != nil {
			return err
		}
		graph := coaccess.Build(entries, env.cfg.CoAccess.Window)
		edges := graph.NeighborsOf(dir)
		if !historyNeighborsAll && len(edges) > env.number() {
			edges = edges[:env.number()]
		}
		printNeighbors(graph, dir, edges)
		return nil
	})
}

func printNeighbors(graph *coaccess.Graph, dir string, edges []coaccess.Edge) {
	fmt.Printf("%s%s%s\n", colorBold, dir, colorReset)
	if len(edges) == 0 {
		fmt.Printf("  %sno co-accessed directories%s\n", colorDim, colorReset)
	}
	for _, e := range edges {
		fmt.Printf("  %s%.4f%s  %s\n", colorCyan, e.Score, colorReset, e.Neighbor)
	}
	fmt.Printf("%swindow %d, %d directories with neighbors%s\n", colorDim, graph.WindowSize(), graph.Len(), colorReset)
}

// canonicalDir makes dir absolute with symlinks resolved.
func canonicalDir(dir string) (string, error) {
	abs, err := filepath.Abs(config.ExpandHome(dir, config.HomeDir()))
	if err != nil {
		return "", err
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", dir, err)
	}
	return resolved, nil
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}
