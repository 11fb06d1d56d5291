package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"loudlimit/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithTarget overrides the normalization target.
func WithTarget(target float64) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Normalize.TargetLKFS = target
	}
}

// WithWorkers overrides the batch worker count.
func WithWorkers(workers int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Normalize.Workers = workers
	}
}

// WithStubbedFFmpeg writes a shell script standing in for ffmpeg and points
// the config at it. Every invocation prints stderr and exits with exitCode.
func WithStubbedFFmpeg(stderr string, exitCode int) ConfigOption {
	return func(b *configBuilder) {
		binDir := filepath.Join(b.baseDir, "bin")
		if err := os.MkdirAll(binDir, 0o755); err != nil {
			b.t.Fatalf("mkdir bin dir: %v", err)
		}
		payload := filepath.Join(binDir, "ffmpeg.stderr")
		if err := os.WriteFile(payload, []byte(stderr), 0o644); err != nil {
			b.t.Fatalf("write stub payload: %v", err)
		}
		// The correction pass is "-hide_banner -nostdin -y -i <in> ... <out>";
		// copying the input stands in for the encoded output.
		script := "#!/bin/sh\n" +
			"cat '" + payload + "' >&2\n" +
			"if [ \"$3\" = \"-y\" ]; then\n" +
			"  for last; do :; done\n" +
			"  cp \"$5\" \"$last\"\n" +
			"fi\n" +
			"exit " + strconv.Itoa(exitCode) + "\n"
		target := filepath.Join(binDir, "ffmpeg")
		if err := os.WriteFile(target, []byte(script), 0o755); err != nil {
			b.t.Fatalf("write stub ffmpeg: %v", err)
		}
		b.cfg.FFmpeg.Binary = target
	}
}
