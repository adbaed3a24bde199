package cmd

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonardomso/gfmlink/internal/batch"
	"github.com/leonardomso/gfmlink/internal/fixer"
	"github.com/leonardomso/gfmlink/internal/logging"
	"github.com/leonardomso/gfmlink/internal/processor"
	"github.com/leonardomso/gfmlink/internal/watch"
)

// Flag variables for the watch command.
var (
	watchDryRun   bool
	watchDebounce time.Duration
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Normalize markdown files whenever they change",
	Long: `Watch a directory tree and normalize every markdown file that is
created or written. Rewrites are logged to stderr.

Normalizing is idempotent, so the watcher's own writes settle after one
round. Stop with Ctrl+C.

Examples:
  gfmlink watch                 # Watch current directory
  gfmlink watch ./docs          # Watch a specific directory
  gfmlink watch --dry-run       # Log the files that would be rewritten`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchDryRun, "dry-run", "n", false,
		"Log files that need rewriting without modifying them")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"Quiet period before a batch of changes is processed")
}

func runWatch(_ *cobra.Command, args []string) {
	path := getPathArg(args)

	lc, err := LoadConfig(path, noConfig)
	exitOnError(err, "Error loading config")

	logger := newLogger()
	proc := processor.New(append(lc.BuildProcessorOptions(), processor.WithLogger(logger))...)
	runner := batch.New(proc, lc.BuildBatchOptions(batch.DefaultConcurrency), logger)
	f := fixer.New()

	w, err := watch.New(path, watch.WithDebounce(watchDebounce), watch.WithLogger(logger))
	exitOnError(err, "Error starting watcher")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Watching for changes", logging.File(path))
	err = w.Run(ctx, func(paths []string) {
		handleWatchBatch(ctx, runner, f, logger, paths)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		exitOnError(err, "Error watching files")
	}
}

// handleWatchBatch normalizes one batch of changed files.
func handleWatchBatch(ctx context.Context, runner *batch.Runner, f *fixer.Fixer, logger *slog.Logger, paths []string) {
	if watchDryRun {
		for _, r := range runner.RunAll(ctx, paths) {
			if r.Changed() {
				logger.Info("Needs rewrite", logging.File(r.Path), logging.Count(len(r.Links)))
			}
		}
		return
	}

	for _, r := range normalizePaths(ctx, runner, f, paths) {
		switch {
		case r.Written:
			logger.Info("Rewrote file", logging.File(r.FilePath))
		case errors.Is(r.Error, fixer.ErrModified):
			logger.Debug("File changed during conversion, waiting for next event", logging.File(r.FilePath))
		case r.Error != nil:
			logger.Error("Rewrite failed", logging.File(r.FilePath), logging.Err(r.Error))
		}
	}
}
