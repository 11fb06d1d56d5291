// Package preflight provides readiness checks for the ffmpeg binary and the
// filesystem paths loudlimit writes to.
//
// The CLI "loudlimit check" command prints these results; the file and dir
// commands run CheckFFmpeg before starting so a missing binary is reported
// once instead of as a tool_invocation_failed outcome for every asset.
package preflight
