package patcher

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/epifield/regionpatch/internal/model"
)

// BatchProcessor patches multiple files concurrently.
// Resolution is read-only against the shared indices, so files are
// embarrassingly parallel once the indices are built.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Patcher because it keeps the Patcher focused on
// single-file patching and provides cleaner separation of concerns.
type BatchProcessor struct {
	// patcher does the per-file work. It is stateless across files.
	patcher *Patcher

	// concurrency is the maximum number of files patched at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent files.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a BatchProcessor over the given Patcher.
func NewBatchProcessor(p *Patcher, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		patcher:     p,
		concurrency: 4,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch patches all files, at most `concurrency` at a time, and
// returns one report per file in input order.
//
// A file that cannot be read or written is recorded as a failed report
// and does not abort the other files; only context cancellation stops
// the batch early.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, files []string) ([]*model.FileReport, error) {
	return bp.ProcessBatchWithCallback(ctx, files, nil)
}

// ProcessBatchWithCallback is ProcessBatch with a per-file completion
// callback, invoked serially as files finish (for streaming progress
// output). The callback receives the report and the file's input index.
func (bp *BatchProcessor) ProcessBatchWithCallback(ctx context.Context, files []string, callback func(report *model.FileReport, index int)) ([]*model.FileReport, error) {
	bp.logger.Info("starting batch patch",
		"files", len(files),
		"concurrency", bp.concurrency,
	)

	reports := make([]*model.FileReport, len(files))

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, file := range files {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			report, err := bp.patcher.PatchFile(ctx, file)
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return err
				}
				bp.logger.Error("failed to patch file", "file", file, "error", err)
				report = &model.FileReport{Path: file, Error: err.Error()}
			}

			reports[i] = report

			if callback != nil {
				mu.Lock()
				callback(report, i)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return reports, err
	}
	return reports, nil
}
