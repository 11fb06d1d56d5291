package normalize

import (
	"context"
	"log/slog"
	"strings"

	"loudlimit/internal/ffmpeg"
	"loudlimit/internal/logging"
	"loudlimit/internal/pathlock"
)

// Tool runs the two external passes. A returned error means the tool could
// not be launched; a non-zero exit is reported through the Result.
type Tool interface {
	Analyze(ctx context.Context, assetPath string) (ffmpeg.Result, error)
	Normalize(ctx context.Context, req ffmpeg.NormalizeRequest) (ffmpeg.Result, error)
}

// StageMode selects how the original is moved aside during correction.
type StageMode string

const (
	// StageRename moves the original to original-<name> before encoding into
	// the canonical path.
	StageRename StageMode = "rename"
	// StageAtomic encodes into a hidden sibling and swaps it in only after
	// the tool succeeds.
	StageAtomic StageMode = "atomic"
)

// Name prefixes of files the pipeline creates beside an asset.
const (
	StagedPrefix = "original-"
	TempPrefix   = ".loudlimit-"
)

var defaultExtensions = []string{".mp3"}

// Option configures a Runner.
type Option func(*Runner)

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithLocker sets the per-path locker used around staging and encoding.
func WithLocker(locker *pathlock.Locker) Option {
	return func(r *Runner) {
		if locker != nil {
			r.locker = locker
		}
	}
}

// WithWorkers sets the batch concurrency. Values below 1 mean sequential.
func WithWorkers(workers int) Option {
	return func(r *Runner) {
		if workers < 1 {
			workers = 1
		}
		r.workers = workers
	}
}

// WithExtensions sets the file extensions a batch selects.
func WithExtensions(exts ...string) Option {
	return func(r *Runner) {
		cleaned := make([]string, 0, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(strings.TrimSpace(ext))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			cleaned = append(cleaned, ext)
		}
		if len(cleaned) > 0 {
			r.extensions = cleaned
		}
	}
}

// WithStageMode selects the staging strategy. Unknown values keep StageRename.
func WithStageMode(mode StageMode) Option {
	return func(r *Runner) {
		switch StageMode(strings.ToLower(strings.TrimSpace(string(mode)))) {
		case StageAtomic:
			r.stageMode = StageAtomic
		default:
			r.stageMode = StageRename
		}
	}
}

// Runner executes the pipeline against a Tool.
type Runner struct {
	tool       Tool
	logger     *slog.Logger
	locker     *pathlock.Locker
	workers    int
	extensions []string
	stageMode  StageMode
}

// NewRunner constructs a Runner. Without WithLocker the runner still excludes
// concurrent work on one path inside this process.
func NewRunner(tool Tool, opts ...Option) *Runner {
	r := &Runner{
		tool:       tool,
		logger:     logging.NewNop(),
		locker:     pathlock.New(""),
		workers:    1,
		extensions: append([]string(nil), defaultExtensions...),
		stageMode:  StageRename,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.NewComponentLogger(r.logger, "normalize")
	return r
}

// StageMode returns the configured staging strategy.
func (r *Runner) StageMode() StageMode {
	return r.stageMode
}
