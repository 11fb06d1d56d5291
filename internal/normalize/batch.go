package normalize

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"loudlimit/internal/logging"
	"loudlimit/internal/loudness"
	"loudlimit/internal/services"
)

// ProcessDirectory runs ProcessFile on every matching file directly inside
// dirPath, in lexical order. It returns an error only when dirPath is unusable
// or ctx ends; in the latter case the partial summary is returned with
// ctx.Err() and no further assets are started.
func (r *Runner) ProcessDirectory(ctx context.Context, dirPath string, target float64, trace *Trace) (summary Summary, err error) {
	summary = NewSummary(dirPath, target)
	ctx = services.WithRunID(ctx, summary.RunID)
	logger := logging.WithContext(ctx, r.logger)
	defer func() { summary.FinishedAt = time.Now().UTC() }()

	abort := func(failure *Error) (Summary, error) {
		trace.Addf("failed: %s", failure.Error())
		logging.ErrorWithContext(logger, "batch aborted", "batch_failed",
			logging.String("error_kind", string(failure.Kind)),
			logging.String(logging.FieldErrorHint, errorHint(failure.Kind)),
			logging.Error(failure),
		)
		return summary, failure
	}

	info, err := os.Stat(dirPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return abort(&Error{Kind: KindNotFound, Path: dirPath, Detail: "directory does not exist"})
		}
		return abort(&Error{Kind: KindNotFound, Path: dirPath, Detail: "stat", Err: err})
	}
	if !info.IsDir() {
		return abort(&Error{Kind: KindNotADirectory, Path: dirPath, Detail: "not a directory"})
	}

	paths, skipped, err := r.discover(dirPath)
	if err != nil {
		return abort(&Error{Kind: KindNotADirectory, Path: dirPath, Detail: "list entries", Err: err})
	}

	for _, name := range skipped {
		trace.Addf("skipped %s: name is reserved for files loudlimit creates", name)
		logger.Debug("entry skipped",
			logging.Args(append(logging.DecisionAttrs("batch_selection", "skipped", "reserved name prefix"),
				logging.String("entry", name),
			)...)...,
		)
	}
	trace.Addf("batch %s: %d matching file(s) in %s (target %s LKFS, workers %d)",
		summary.RunID, len(paths), dirPath, loudness.FormatValue(target), r.workers)
	logger.Info("batch started",
		logging.String(logging.FieldEventType, "batch_start"),
		logging.String("root", dirPath),
		logging.Int("assets", len(paths)),
		logging.Int("workers", r.workers),
	)

	outcomes := make([]Outcome, len(paths))
	attempted := make([]bool, len(paths))
	traces := make([]*Trace, len(paths))
	run := func(i int) {
		traces[i] = &Trace{}
		outcomes[i], _ = r.ProcessFile(ctx, paths[i], target, traces[i])
		attempted[i] = true
	}

	if r.workers <= 1 || len(paths) <= 1 {
		for i := range paths {
			if ctx.Err() != nil {
				break
			}
			run(i)
			trace.appendTrace(traces[i])
		}
	} else {
		r.runPool(ctx, len(paths), run)
		for i := range paths {
			trace.appendTrace(traces[i])
		}
	}

	for i := range paths {
		if attempted[i] {
			summary.Add(outcomes[i])
		}
	}

	if err := ctx.Err(); err != nil {
		skipped := len(paths) - len(summary.Outcomes)
		trace.Addf("batch cancelled: %d asset(s) not started", skipped)
		logging.WarnWithContext(logger, "batch cancelled", "batch_cancelled",
			logging.Int("skipped", skipped),
			logging.String(logging.FieldErrorHint, "rerun the batch; finished assets are skipped or left unchanged"),
			logging.String(logging.FieldImpact, "remaining assets were not processed"),
			logging.Error(err),
		)
		return summary, err
	}

	trace.Addf("batch complete: %d processed, %d failed", summary.Processed, len(summary.Failures))
	logger.Info("batch completed",
		logging.String(logging.FieldEventType, "batch_complete"),
		logging.Int("processed", summary.Processed),
		logging.Int("normalized", summary.Count(StatusNormalized)),
		logging.Int("unchanged", summary.Count(StatusUnchanged)),
		logging.Int("failed", len(summary.Failures)),
		logging.Duration("elapsed", time.Since(summary.StartedAt)),
	)
	return summary, nil
}

// runPool feeds indices 0..n-1 to r.workers goroutines, stopping the feed
// once ctx ends.
func (r *Runner) runPool(ctx context.Context, n int, run func(int)) {
	jobs := make(chan int)
	var wg sync.WaitGroup
	for range min(r.workers, n) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if ctx.Err() != nil {
					continue
				}
				run(i)
			}
		}()
	}

feed:
	for i := range n {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
}

// discover lists the regular files directly inside dir whose extension is
// selected, in lexical order. Names carrying the staged or temporary prefix
// are returned separately as skipped.
func (r *Runner) discover(dir string) (paths, skipped []string, err error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}
	for _, entry := range entries {
		name := entry.Name()
		if !slices.Contains(r.extensions, strings.ToLower(filepath.Ext(name))) {
			continue
		}
		if strings.HasPrefix(name, StagedPrefix) || strings.HasPrefix(name, TempPrefix) {
			skipped = append(skipped, name)
			continue
		}
		full := filepath.Join(dir, name)
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		paths = append(paths, full)
	}
	slices.Sort(paths)
	slices.Sort(skipped)
	return paths, skipped, nil
}
