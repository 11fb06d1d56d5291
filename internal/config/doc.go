// Package config loads, normalizes, and validates loudlimit configuration data.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the LOUDLIMIT_FFMPEG environment fallback. The Config
// type centralizes every knob the CLI and pipeline need, so the ffmpeg binary,
// the default loudness target, and the state directories are resolved in one
// pass and then passed explicitly to the pipeline.
package config
