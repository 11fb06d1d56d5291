package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"loudlimit/internal/config"
	"loudlimit/internal/ffmpeg"
	"loudlimit/internal/history"
	"loudlimit/internal/logging"
	"loudlimit/internal/normalize"
	"loudlimit/internal/pathlock"
	"loudlimit/internal/preflight"
	"loudlimit/internal/services"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// ensureLogger builds the process logger once. Console output goes to the
// command's stderr so tables on stdout stay clean.
func (c *commandContext) ensureLogger(console io.Writer) (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger, c.loggerErr = logging.NewFromConfig(cfg, console)
	})
	return c.logger, c.loggerErr
}

// newRunner wires the ffmpeg client, per-path locks, and logger into a
// normalize.Runner after checking that ffmpeg resolves.
func (c *commandContext) newRunner(cmd *cobra.Command, workers int) (*normalize.Runner, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger(cmd.ErrOrStderr())
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	check := preflight.CheckFFmpeg(cfg.FFmpegBinary())
	if !check.Passed {
		return nil, nil, services.Wrap(services.ErrConfiguration, "preflight", "ffmpeg", check.Detail, nil)
	}

	if workers <= 0 {
		workers = cfg.Normalize.Workers
	}
	tool := ffmpeg.NewCLI(
		ffmpeg.WithBinary(check.Detail),
		ffmpeg.WithEncoder(cfg.Encoder.Codec, cfg.Encoder.SampleRate, cfg.Encoder.Channels),
	)
	runner := normalize.NewRunner(tool,
		normalize.WithLogger(logger),
		normalize.WithLocker(pathlock.New(cfg.LockDir())),
		normalize.WithWorkers(workers),
		normalize.WithExtensions(cfg.Normalize.Extensions...),
		normalize.WithStageMode(normalize.StageMode(cfg.Normalize.StageMode)),
	)
	return runner, logger, nil
}

// resolveTarget returns the flag value when it was set, otherwise the
// configured target.
func resolveTarget(cmd *cobra.Command, cfg *config.Config, flagValue float64) (float64, error) {
	if !cmd.Flags().Changed("target") {
		return cfg.Normalize.TargetLKFS, nil
	}
	if err := config.ValidateTarget(flagValue); err != nil {
		return 0, services.Wrap(services.ErrValidation, "cli", "target", err.Error(), nil)
	}
	return flagValue, nil
}

// recordHistory stores summary in the ledger. Failures are logged and never
// fail the command.
func recordHistory(ctx context.Context, cfg *config.Config, logger *slog.Logger, summary normalize.Summary) {
	if !cfg.History.Enabled {
		return
	}
	store, err := history.Open(cfg)
	if err != nil {
		logging.WarnWithContext(logger, "history unavailable", "history_open_failed",
			logging.String(logging.FieldErrorHint, "delete or fix "+cfg.HistoryPath()),
			logging.String(logging.FieldImpact, "run was not recorded"),
			logging.Error(err),
		)
		return
	}
	defer store.Close()
	if err := store.Record(context.WithoutCancel(ctx), summary); err != nil {
		logging.WarnWithContext(logger, "history write failed", "history_write_failed",
			logging.String(logging.FieldImpact, "run was not recorded"),
			logging.Error(err),
		)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

// errAssetsFailed marks a batch that completed with per-asset failures.
var errAssetsFailed = errors.New("assets failed")

// reportError prints err for the operator. Failures the operator can fix from
// the command line are printed alone; the rest point at further diagnostics.
func reportError(w io.Writer, err error) {
	if err == nil || errors.Is(err, context.Canceled) {
		return
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	if errors.Is(err, errAssetsFailed) || services.IsUserActionable(err) {
		return
	}
	fmt.Fprintln(w, "Run 'loudlimit check' to verify ffmpeg, or rerun with --trace for the tool output.")
}

func exitCode(err error) int {
	if errors.Is(err, errAssetsFailed) {
		return 2
	}
	return normalize.ExitCode(err)
}
