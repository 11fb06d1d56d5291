// Package ffmpeg wraps the ffmpeg command line for the two loudnorm passes.
//
// Analyze runs the measurement pass with JSON reporting and returns the
// complete diagnostic stream. Normalize runs the linear correction pass with
// the measured input statistics. Both report a non-zero exit through Result
// and only return an error when the process could not be started.
package ffmpeg
