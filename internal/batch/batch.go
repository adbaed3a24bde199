// Package batch normalizes many Markdown files concurrently.
// It uses a bounded worker pool and streams one Result per file.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"github.com/leonardomso/gfmlink/internal/logging"
	"github.com/leonardomso/gfmlink/internal/processor"
)

// Runner converts files with one Processor.
type Runner struct {
	opts   Options
	proc   *processor.Processor
	logger *slog.Logger
}

// New creates a Runner. A nil logger discards diagnostics.
func New(proc *processor.Processor, opts Options, logger *slog.Logger) *Runner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{opts: opts, proc: proc, logger: logger}
}

// RunAll converts all files and returns the results sorted by path.
// This is a blocking operation.
func (r *Runner) RunAll(ctx context.Context, paths []string) []Result {
	results := make([]Result, 0, len(paths))
	for result := range r.Run(ctx, paths) {
		results = append(results, result)
	}
	slices.SortFunc(results, func(a, b Result) int {
		return strings.Compare(a.Path, b.Path)
	})
	return results
}

// Run converts files concurrently and streams results in completion order.
// The returned channel is closed when every file has been handled. A
// canceled context stops queuing further files.
func (r *Runner) Run(ctx context.Context, paths []string) <-chan Result {
	results := make(chan Result, r.opts.Concurrency)

	go func() {
		defer close(results)

		jobs := make(chan string, len(paths))

		var wg sync.WaitGroup
		for range r.opts.Concurrency {
			wg.Add(1)
			go func() {
				defer wg.Done()
				r.worker(ctx, jobs, results)
			}()
		}

	sendLoop:
		for _, path := range paths {
			select {
			case jobs <- path:
			case <-ctx.Done():
				break sendLoop
			}
		}
		close(jobs)

		wg.Wait()
	}()

	return results
}

func (r *Runner) worker(ctx context.Context, jobs <-chan string, results chan<- Result) {
	for path := range jobs {
		select {
		case <-ctx.Done():
			results <- Result{Path: path, Status: StatusFailed, Error: "conversion canceled"}
		default:
			results <- r.File(path)
		}
	}
}

// File converts the file at path.
func (r *Runner) File(path string) Result {
	data, err := os.ReadFile(path)
	if err != nil {
		r.logger.Warn("Failed to read file", logging.File(path), logging.Err(err))
		return Result{Path: path, Status: StatusFailed, Error: fmt.Sprintf("reading file: %v", err)}
	}
	return r.Source(path, string(data))
}

// Source converts Markdown source that was read from path.
func (r *Runner) Source(path, source string) Result {
	a := r.proc.Analyze(source)

	normalized := a.Normalized
	if r.opts.FinalNewline && normalized != "" {
		normalized += "\n"
	}

	result := Result{
		Path:        path,
		Original:    source,
		Normalized:  normalized,
		Status:      StatusUnchanged,
		Links:       a.Links,
		Definitions: len(a.Definitions),
		Missing:     a.Missing,
	}
	if normalized != source {
		result.Status = StatusChanged
	}

	r.logger.Debug("Converted file",
		logging.File(path),
		slog.String("status", result.Status.String()),
		logging.Count(len(result.Links)))
	return result
}
