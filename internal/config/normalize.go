package config

import (
	"fmt"
	"os"
	"strings"
)

// EnvFFmpegBinary names the environment variable consulted when ffmpeg.binary is empty.
const EnvFFmpegBinary = "LOUDLIMIT_FFMPEG"

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeFFmpeg(); err != nil {
		return err
	}
	c.normalizeSettings()
	c.normalizeEncoder()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeFFmpeg() error {
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	if c.FFmpeg.Binary == "" {
		if value, ok := os.LookupEnv(EnvFFmpegBinary); ok {
			c.FFmpeg.Binary = strings.TrimSpace(value)
		}
	}
	// Bare command names are resolved against PATH later; only expand paths.
	if strings.ContainsAny(c.FFmpeg.Binary, `/\`) || strings.HasPrefix(c.FFmpeg.Binary, "~") {
		expanded, err := expandPath(c.FFmpeg.Binary)
		if err != nil {
			return fmt.Errorf("ffmpeg.binary: %w", err)
		}
		c.FFmpeg.Binary = expanded
	}
	return nil
}

func (c *Config) normalizeSettings() {
	c.Normalize.StageMode = strings.ToLower(strings.TrimSpace(c.Normalize.StageMode))
	if c.Normalize.StageMode == "" {
		c.Normalize.StageMode = defaultStageMode
	}
	if c.Normalize.Workers == 0 {
		c.Normalize.Workers = defaultWorkers
	}

	seen := make(map[string]struct{}, len(c.Normalize.Extensions))
	exts := make([]string, 0, len(c.Normalize.Extensions))
	for _, ext := range c.Normalize.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if _, dup := seen[ext]; dup {
			continue
		}
		seen[ext] = struct{}{}
		exts = append(exts, ext)
	}
	if len(exts) == 0 {
		exts = append(exts, defaultExtensions...)
	}
	c.Normalize.Extensions = exts

	if c.History.Limit <= 0 {
		c.History.Limit = defaultHistoryLimit
	}
}

func (c *Config) normalizeEncoder() {
	c.Encoder.Codec = strings.TrimSpace(c.Encoder.Codec)
	if c.Encoder.Codec == "" {
		c.Encoder.Codec = defaultCodec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
