package config

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := ValidateTarget(c.Normalize.TargetLKFS); err != nil {
		return fmt.Errorf("normalize.target_lkfs: %w", err)
	}
	if err := c.validateNormalize(); err != nil {
		return err
	}
	if err := c.validateEncoder(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateTarget checks a loudness target supplied by config or a flag.
func ValidateTarget(target float64) error {
	if math.IsNaN(target) || math.IsInf(target, 0) {
		return errors.New("target must be a finite number")
	}
	if target < minTargetLKFS || target > maxTargetLKFS {
		return fmt.Errorf("target %.1f LKFS outside [%.0f, %.0f]", target, minTargetLKFS, maxTargetLKFS)
	}
	return nil
}

func (c *Config) validateNormalize() error {
	if c.Normalize.Workers < 1 {
		return errors.New("normalize.workers must be at least 1")
	}
	switch c.Normalize.StageMode {
	case StageModeRename, StageModeAtomic:
	default:
		return fmt.Errorf("normalize.stage_mode: unsupported value %q (use %q or %q)", c.Normalize.StageMode, StageModeRename, StageModeAtomic)
	}
	for _, ext := range c.Normalize.Extensions {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			return fmt.Errorf("normalize.extensions: %q must start with a dot", ext)
		}
	}
	return nil
}

func (c *Config) validateEncoder() error {
	if c.Encoder.SampleRate <= 0 {
		return errors.New("encoder.sample_rate must be positive")
	}
	if c.Encoder.Channels <= 0 {
		return errors.New("encoder.channels must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
