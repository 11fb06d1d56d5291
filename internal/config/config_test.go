package config_test

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"loudlimit/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv(config.EnvFFmpegBinary, "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved != filepath.Join(tempHome, ".config", "loudlimit", "config.toml") {
		t.Fatalf("unexpected resolved path %q", resolved)
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "loudlimit")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Normalize.TargetLKFS != -14 {
		t.Fatalf("unexpected default target %v", cfg.Normalize.TargetLKFS)
	}
	if len(cfg.Normalize.Extensions) != 1 || cfg.Normalize.Extensions[0] != ".mp3" {
		t.Fatalf("unexpected default extensions %v", cfg.Normalize.Extensions)
	}
	if cfg.Normalize.StageMode != config.StageModeRename {
		t.Fatalf("unexpected stage mode %q", cfg.Normalize.StageMode)
	}
	if cfg.FFmpegBinary() != "ffmpeg" {
		t.Fatalf("expected PATH lookup default, got %q", cfg.FFmpegBinary())
	}
	if cfg.HistoryPath() != filepath.Join(wantState, "history.db") {
		t.Fatalf("unexpected history path %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir, cfg.LockDir()} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "loudlimit.toml")

	type payload struct {
		FFmpeg struct {
			Binary string `toml:"binary"`
		} `toml:"ffmpeg"`
		Normalize struct {
			TargetLKFS float64  `toml:"target_lkfs"`
			Extensions []string `toml:"extensions"`
			Workers    int      `toml:"workers"`
			StageMode  string   `toml:"stage_mode"`
		} `toml:"normalize"`
	}
	custom := payload{}
	custom.FFmpeg.Binary = "/opt/ffmpeg/bin/ffmpeg"
	custom.Normalize.TargetLKFS = -16
	custom.Normalize.Extensions = []string{".MP3", " .mp3 ", ".flac"}
	custom.Normalize.Workers = 4
	custom.Normalize.StageMode = "Atomic"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("unexpected resolution: %q exists=%v", resolved, exists)
	}
	if cfg.FFmpegBinary() != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("unexpected ffmpeg binary %q", cfg.FFmpegBinary())
	}
	if cfg.Normalize.TargetLKFS != -16 || cfg.Normalize.Workers != 4 {
		t.Fatalf("unexpected normalize section %+v", cfg.Normalize)
	}
	if strings.Join(cfg.Normalize.Extensions, ",") != ".mp3,.flac" {
		t.Fatalf("expected extensions to be lowercased and deduplicated, got %v", cfg.Normalize.Extensions)
	}
	if cfg.Normalize.StageMode != config.StageModeAtomic {
		t.Fatalf("expected stage mode to be normalized, got %q", cfg.Normalize.StageMode)
	}
	if cfg.Encoder.Codec != "libmp3lame" || cfg.Encoder.SampleRate != 44100 || cfg.Encoder.Channels != 2 {
		t.Fatalf("expected encoder defaults to survive partial config, got %+v", cfg.Encoder)
	}
}

func TestLoadUsesEnvFFmpegFallback(t *testing.T) {
	t.Setenv(config.EnvFFmpegBinary, "ffmpeg7")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.FFmpegBinary() != "ffmpeg7" {
		t.Fatalf("expected env fallback, got %q", cfg.FFmpegBinary())
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "loudlimit.toml")
	if err := os.WriteFile(configPath, []byte("[normalize]\ntarget = -14\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"target too high", func(c *config.Config) { c.Normalize.TargetLKFS = 3 }, "target_lkfs"},
		{"target nan", func(c *config.Config) { c.Normalize.TargetLKFS = math.NaN() }, "finite"},
		{"workers", func(c *config.Config) { c.Normalize.Workers = -1 }, "workers"},
		{"stage mode", func(c *config.Config) { c.Normalize.StageMode = "copy" }, "stage_mode"},
		{"extension", func(c *config.Config) { c.Normalize.Extensions = []string{"mp3"} }, "extensions"},
		{"sample rate", func(c *config.Config) { c.Encoder.SampleRate = 0 }, "sample_rate"},
		{"channels", func(c *config.Config) { c.Encoder.Channels = 0 }, "channels"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected %q in %q", tc.want, err.Error())
			}
		})
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample returned error: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if cfg.Normalize.TargetLKFS != config.Default().Normalize.TargetLKFS {
		t.Fatalf("sample target differs from default: %v", cfg.Normalize.TargetLKFS)
	}
}
