package normalize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"loudlimit/internal/ffmpeg"
	"loudlimit/internal/logging"
	"loudlimit/internal/loudness"
	"loudlimit/internal/services"
)

// ProcessFile runs the pipeline on a single asset. Every failure is returned
// both as the error and inside a Failed outcome.
func (r *Runner) ProcessFile(ctx context.Context, assetPath string, target float64, trace *Trace) (Outcome, error) {
	ctx = services.WithAsset(ctx, assetPath)
	logger := logging.WithContext(ctx, r.logger)
	outcome := Outcome{Path: assetPath}

	if wd, err := os.Getwd(); err == nil {
		trace.Addf("working directory: %s", wd)
	}
	trace.Addf("asset: %s (target %s LKFS)", assetPath, loudness.FormatValue(target))

	info, err := os.Stat(assetPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return r.fail(logger, trace, outcome, &Error{Kind: KindNotFound, Path: assetPath, Detail: "file does not exist"})
		}
		return r.fail(logger, trace, outcome, &Error{Kind: KindNotFound, Path: assetPath, Detail: "stat", Err: err})
	}
	if !info.Mode().IsRegular() {
		return r.fail(logger, trace, outcome, &Error{Kind: KindNotAFile, Path: assetPath, Detail: "not a regular file"})
	}

	report, failure := r.analyze(services.WithStage(ctx, "analyze"), assetPath, trace)
	if failure != nil {
		return r.fail(logger, trace, outcome, failure)
	}
	outcome.Report = &report
	trace.Addf("measured: %s", report.Summary())

	if report.InputIntegrated < target {
		reason := fmt.Sprintf("integrated %s LKFS is below target %s LKFS", loudness.FormatValue(report.InputIntegrated), loudness.FormatValue(target))
		trace.Addf("decision: leave unchanged, %s", reason)
		logger.Info("asset left unchanged",
			logging.Args(append(logging.DecisionAttrs("loudness_threshold", "unchanged", reason),
				logging.String(logging.FieldEventType, "asset_unchanged"),
				logging.Float64("input_i", report.InputIntegrated),
			)...)...,
		)
		outcome.Status = StatusUnchanged
		return outcome, nil
	}

	reason := fmt.Sprintf("integrated %s LKFS is at or above target %s LKFS", loudness.FormatValue(report.InputIntegrated), loudness.FormatValue(target))
	trace.Addf("decision: normalize, %s", reason)
	logger.Debug("asset needs normalization", logging.Args(logging.DecisionAttrs("loudness_threshold", "normalize", reason)...)...)

	release, err := r.locker.Acquire(ctx, assetPath)
	if err != nil {
		return r.fail(logger, trace, outcome, &Error{Kind: KindStageFailed, Path: assetPath, Detail: "acquire path lock", Err: err})
	}
	defer release()

	req := ffmpeg.NormalizeRequest{
		Output:     assetPath,
		TargetLKFS: target,
		Measured:   report.Measured(),
	}
	stageCtx := services.WithStage(ctx, "normalize")
	var staged string
	switch r.stageMode {
	case StageAtomic:
		staged, failure = r.correctAtomic(stageCtx, req, trace)
	default:
		staged, failure = r.correctInPlace(stageCtx, req, trace)
	}
	outcome.StagedPath = staged
	if failure != nil {
		return r.fail(logger, trace, outcome, failure)
	}

	trace.Addf("normalized: %s (original kept at %s)", assetPath, staged)
	logger.Info("asset normalized",
		logging.String(logging.FieldEventType, "asset_normalized"),
		logging.Float64("input_i", report.InputIntegrated),
		logging.Float64("target_lkfs", target),
		logging.String("staged_path", staged),
		logging.Bool("atomic", r.stageMode == StageAtomic),
	)
	outcome.Status = StatusNormalized
	return outcome, nil
}

func (r *Runner) analyze(ctx context.Context, assetPath string, trace *Trace) (loudness.Report, *Error) {
	result, err := r.tool.Analyze(ctx, assetPath)
	traceCommand(trace, "analysis", result)
	if err != nil {
		return loudness.Report{}, &Error{Kind: KindToolInvocationFailed, Path: assetPath, Detail: "analysis pass", Err: err}
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return loudness.Report{}, &Error{Kind: KindToolInvocationFailed, Path: assetPath, Detail: "analysis pass interrupted", Err: ctxErr}
	}
	trace.Addf("analysis output:\n%s", strings.TrimRight(result.Diagnostics, "\n"))

	report, err := loudness.Parse(result.Diagnostics)
	if err != nil {
		detail := ""
		if !result.Success() {
			detail = fmt.Sprintf("analysis exited with code %d", result.ExitCode)
		}
		return loudness.Report{}, &Error{Kind: KindAnalysisUnreadable, Path: assetPath, Detail: detail, Err: err}
	}
	return report, nil
}

// correctInPlace renames the original aside and encodes into the canonical
// path. The staged original is left in place whatever happens next.
func (r *Runner) correctInPlace(ctx context.Context, req ffmpeg.NormalizeRequest, trace *Trace) (string, *Error) {
	assetPath := req.Output
	staged := StagedPath(assetPath)
	if failure := checkFreeSlot(assetPath, staged, "staged original"); failure != nil {
		return "", failure
	}
	if err := os.Rename(assetPath, staged); err != nil {
		return "", &Error{Kind: KindStageFailed, Path: assetPath, Detail: "rename original", Err: err}
	}
	trace.Addf("staged original: %s -> %s", assetPath, staged)

	req.Input = staged
	if failure := r.encode(ctx, assetPath, req, trace); failure != nil {
		trace.Addf("staged original left at %s", staged)
		return staged, failure
	}
	return staged, nil
}

// correctAtomic encodes into a hidden sibling and only moves the original
// aside once the tool has succeeded.
func (r *Runner) correctAtomic(ctx context.Context, req ffmpeg.NormalizeRequest, trace *Trace) (string, *Error) {
	assetPath := req.Output
	staged := StagedPath(assetPath)
	if failure := checkFreeSlot(assetPath, staged, "staged original"); failure != nil {
		return "", failure
	}
	temp := TempPath(assetPath)
	if failure := checkFreeSlot(assetPath, temp, "temporary output"); failure != nil {
		return "", failure
	}

	req.Input = assetPath
	req.Output = temp
	if failure := r.encode(ctx, assetPath, req, trace); failure != nil {
		_ = os.Remove(temp)
		trace.Addf("removed partial output %s; original untouched", temp)
		return "", failure
	}

	if err := os.Rename(assetPath, staged); err != nil {
		_ = os.Remove(temp)
		return "", &Error{Kind: KindStageFailed, Path: assetPath, Detail: "rename original", Err: err}
	}
	trace.Addf("staged original: %s -> %s", assetPath, staged)
	if err := os.Rename(temp, assetPath); err != nil {
		if restoreErr := os.Rename(staged, assetPath); restoreErr == nil {
			_ = os.Remove(temp)
			return "", &Error{Kind: KindStageFailed, Path: assetPath, Detail: "swap corrected output", Err: err}
		}
		return staged, &Error{Kind: KindStageFailed, Path: assetPath, Detail: "swap corrected output; corrected file left at " + temp, Err: err}
	}
	trace.Addf("moved corrected output into place: %s", assetPath)
	return staged, nil
}

func (r *Runner) encode(ctx context.Context, assetPath string, req ffmpeg.NormalizeRequest, trace *Trace) *Error {
	result, err := r.tool.Normalize(ctx, req)
	traceCommand(trace, "normalization", result)
	if err != nil {
		return &Error{Kind: KindToolInvocationFailed, Path: assetPath, Detail: "normalization pass", Err: err}
	}
	if out := strings.TrimRight(result.Diagnostics, "\n"); out != "" {
		trace.Addf("normalization output:\n%s", out)
	}
	if !result.Success() {
		return &Error{
			Kind:   KindEncodeFailed,
			Path:   assetPath,
			Detail: encodeDetail(result),
			Err:    ctx.Err(),
		}
	}
	return nil
}

func (r *Runner) fail(logger *slog.Logger, trace *Trace, outcome Outcome, failure *Error) (Outcome, error) {
	outcome.Status = StatusFailed
	outcome.Err = failure
	trace.Addf("failed: %s", failure.Error())
	logging.WarnWithContext(logger, "asset failed", "asset_failed",
		logging.String("error_kind", string(failure.Kind)),
		logging.String(logging.FieldErrorHint, errorHint(failure.Kind)),
		logging.String(logging.FieldImpact, "asset was not normalized"),
		logging.Error(failure),
	)
	return outcome, failure
}

// checkFreeSlot fails when something already occupies slot, so the pipeline
// never overwrites or removes a file it did not create.
func checkFreeSlot(assetPath, slot, what string) *Error {
	_, err := os.Lstat(slot)
	switch {
	case err == nil:
		return &Error{Kind: KindStageFailed, Path: assetPath, Detail: what + " already exists at " + slot}
	case !errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: KindStageFailed, Path: assetPath, Detail: "inspect " + slot, Err: err}
	}
	return nil
}

func traceCommand(trace *Trace, pass string, result ffmpeg.Result) {
	if result.Command != "" {
		trace.Addf("running %s: %s", pass, result.Command)
	}
	if result.Command != "" && !result.Success() {
		trace.Addf("%s exited with code %d", pass, result.ExitCode)
	}
}

func encodeDetail(result ffmpeg.Result) string {
	detail := fmt.Sprintf("ffmpeg exited with code %d", result.ExitCode)
	if last := lastLine(result.Diagnostics); last != "" {
		detail += ": " + last
	}
	return detail
}

func lastLine(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

// StagedPath returns where the original of assetPath is kept after staging.
func StagedPath(assetPath string) string {
	return filepath.Join(filepath.Dir(assetPath), StagedPrefix+filepath.Base(assetPath))
}

// TempPath returns the hidden sibling used by atomic staging.
func TempPath(assetPath string) string {
	return filepath.Join(filepath.Dir(assetPath), TempPrefix+filepath.Base(assetPath))
}
