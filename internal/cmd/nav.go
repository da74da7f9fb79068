package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/runger/cdm/internal/coaccess"
	"github.com/runger/cdm/internal/config"
	"github.com/runger/cdm/internal/dirs"
	"github.com/runger/cdm/internal/display"
	"github.com/runger/cdm/internal/history"
	cdmlog "github.com/runger/cdm/internal/log"
	"github.com/runger/cdm/internal/picker"
)

// Titles shown above each candidate list.
const (
	titleRecent   = "recent"
	titleFrequent = "frequent"
	titleCoAccess = "co-accessed (npmi)"
	titleGoahead  = "goahead"
)

var (
	navRegex        string
	navNumber       int
	navPrefix       bool
	navHistoryDepth int
	navDepth        int
)

// selector picks one item; *picker.Picker in production.
type selector interface {
	Run(items []picker.Item, cfg picker.Config) (string, error)
}

// newSelector is replaced in tests.
var newSelector = func(ttyPath string, logger *slog.Logger) selector {
	return picker.New(ttyPath, logger)
}

var cdrCmd = &cobra.Command{
	Use:     "cdr",
	Short:   "Pick from most recently visited directories",
	GroupID: groupCore,
	Args:    cobra.NoArgs,
	RunE:    runCdr,
}

var cdfCmd = &cobra.Command{
	Use:     "cdf",
	Short:   "Pick from most frequently visited directories",
	GroupID: groupCore,
	Args:    cobra.NoArgs,
	RunE:    runCdf,
}

var cdpCmd = &cobra.Command{
	Use:     "cdp",
	Short:   "Pick from directories statistically co-accessed with this one (NPMI)",
	GroupID: groupCore,
	Long: `Pick from directories you tend to visit close in time to the current one.

Every run of coaccess.window consecutive history entries is a window. Two
directories score by normalized pointwise mutual information (NPMI): how much
more often they share a window than chance would predict, scaled to (0, 1].`,
	Args: cobra.NoArgs,
	RunE: runCdp,
}

var goaheadCmd = &cobra.Command{
	Use:     "goahead",
	Short:   "Pick from directories below the current one",
	GroupID: groupCore,
	Args:    cobra.NoArgs,
	RunE:    runGoahead,
}

func init() {
	for _, c := range []*cobra.Command{cdrCmd, cdfCmd} {
		c.Flags().StringVarP(&navRegex, "regex", "r", "", "Only show directories matching this regular expression")
		c.Flags().IntVarP(&navHistoryDepth, "history-depth", "H", 0, "Only consider the N most recent history entries (default history.depth)")
	}
	for _, c := range []*cobra.Command{cdrCmd, cdfCmd, cdpCmd, goaheadCmd} {
		c.Flags().IntVarP(&navNumber, "number", "n", 0, "Maximum results to show (default picker.number)")
	}
	cdrCmd.Flags().BoolVarP(&navPrefix, "prefix", "p", false, "Only show directories under the current directory")
	goaheadCmd.Flags().IntVarP(&navDepth, "depth", "d", 0, "How many levels deep to search (default goahead.depth)")
}

// navEnv is the state shared by the navigation commands.
type navEnv struct {
	cfg         *config.Config
	paths       *config.Paths
	logger      *slog.Logger
	store       history.Store
	historyPath string
}

func openNavEnv() (*navEnv, error) {
	paths := config.DefaultPaths()
	cfg, err := config.LoadFromPaths(paths)
	if err != nil {
		// No config means no log level yet; CDM_DEBUG still applies.
		cdmlog.NewFromEnv().Debug("config load failed", "dir", paths.ConfigDir, "error", err)
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := cdmlog.New(&cdmlog.Config{
		Output: os.Stderr,
		Level:  cdmlog.ParseLevel(cfg.Log.Level),
	})

	historyPath := cfg.HistoryPath(paths)
	store, err := history.Open(cfg.History.Backend, historyPath, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open history: %w", err)
	}

	return &navEnv{
		cfg:         cfg,
		paths:       paths,
		logger:      logger,
		store:       store,
		historyPath: historyPath,
	}, nil
}

func (e *navEnv) Close() error {
	return e.store.Close()
}

func (e *navEnv) loadHistory(ctx context.Context) ([]string, error) {
	entries, err := e.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	cdmlog.LogHistoryLoaded(e.logger, e.cfg.History.Backend, e.historyPath, len(entries))
	return entries, nil
}

// number returns the --number flag, or the configured default.
func (e *navEnv) number() int {
	if navNumber > 0 {
		return navNumber
	}
	return e.cfg.Picker.Number
}

func (e *navEnv) historyDepth() int {
	if navHistoryDepth > 0 {
		return navHistoryDepth
	}
	return e.cfg.History.Depth
}

// pick shows paths in the picker. A committed choice is printed on stdout and
// recorded as a visit; failing to record it does not fail the command.
func (e *navEnv) pick(ctx context.Context, paths []string, title string) error {
	cdmlog.LogCandidates(e.logger, title, len(paths))

	items := makeItems(paths, e.cfg.DisplayAliases(), terminalWidth()-8)
	selected, err := newSelector(e.cfg.Picker.TTY, e.logger).Run(items, picker.Config{Title: title})
	if err != nil {
		if errors.Is(err, picker.ErrNoCandidates) {
			fmt.Fprintln(os.Stderr, "no results")
		}
		e.logger.Debug("no selection", "mode", title, "error", err)
		return err
	}

	fmt.Println(selected)
	if err := e.store.Append(ctx, selected); err != nil {
		cdmlog.LogAppendFailed(e.logger, selected, err)
	}
	return nil
}

func makeItems(paths []string, aliases []display.Alias, maxWidth int) []picker.Item {
	home := config.HomeDir()
	items := make([]picker.Item, len(paths))
	for i, p := range paths {
		items[i] = picker.Item{
			Display: display.FormatPath(p, home, aliases, maxWidth),
			Path:    p,
		}
	}
	return items
}

// canonicalCwd returns the working directory with symlinks resolved, the form
// visits are recorded in.
func canonicalCwd() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	resolved, err := filepath.EvalSymlinks(cwd)
	if err != nil {
		return "", fmt.Errorf("failed to resolve working directory: %w", err)
	}
	return resolved, nil
}

func runNav(cmd *cobra.Command, fn func(ctx context.Context, env *navEnv) error) error {
	env, err := openNavEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return fn(ctx, env)
}

func runCdr(cmd *cobra.Command, args []string) error {
	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		entries, err := env.loadHistory(ctx)
		if err != nil {
			return err
		}

		opts := history.FilterOptions{Regex: navRegex}
		if navPrefix {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
			opts.Under = cwd
		}

		candidates, err := history.Filter(history.Recent(history.Tail(entries, env.historyDepth())), opts)
		if err != nil {
			return err
		}
		return env.pick(ctx, history.Limit(candidates, env.number()), titleRecent)
	})
}

func runCdf(cmd *cobra.Command, args []string) error {
	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		entries, err := env.loadHistory(ctx)
		if err != nil {
			return err
		}

		candidates, err := history.Filter(history.Frequent(history.Tail(entries, env.historyDepth())),
			history.FilterOptions{Regex: navRegex})
		if err != nil {
			return err
		}
		return env.pick(ctx, history.Limit(candidates, env.number()), titleFrequent)
	})
}

func runCdp(cmd *cobra.Command, args []string) error {
	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		cwd, err := canonicalCwd()
		if err != nil {
			return err
		}
		entries, err := env.loadHistory(ctx)
		if err != nil {
			return err
		}

		graph := coaccess.Build(entries, env.cfg.CoAccess.Window)
		edges := graph.NeighborsOf(cwd)
		env.logger.Debug("co-access graph built", "paths", graph.Len(), "window", graph.WindowSize(), "neighbors", len(edges))

		paths := make([]string, 0, len(edges))
		for _, e := range edges {
			paths = append(paths, e.Neighbor)
		}
		return env.pick(ctx, history.Limit(paths, env.number()), titleCoAccess)
	})
}

func runGoahead(cmd *cobra.Command, args []string) error {
	return runNav(cmd, func(ctx context.Context, env *navEnv) error {
		cwd, err := canonicalCwd()
		if err != nil {
			return err
		}

		depth := env.cfg.Goahead.Depth
		if navDepth > 0 {
			depth = navDepth
		}
		found, err := dirs.List(ctx, cwd, dirs.Options{
			MaxDepth:         depth,
			Limit:            env.number(),
			RespectGitignore: env.cfg.Goahead.RespectGitignore,
			ShowHidden:       env.cfg.Goahead.ShowHidden,
		})
		if err != nil {
			return err
		}
		return env.pick(ctx, found, titleGoahead)
	})
}
