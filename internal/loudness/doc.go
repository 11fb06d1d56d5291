// Package loudness models the loudnorm measurement of a single audio asset and
// extracts it from the diagnostic text an analysis pass writes to stderr.
//
// Key types:
//   - Report: the ten loudnorm statistics, decoded from quoted decimal strings
//   - Measurement: the four input statistics fed back into a correction pass
//
// Primary entry points:
//   - ExtractBlock: locates the first balanced {...} block in free text
//   - Parse: ExtractBlock plus strict decoding into a Report
//
// This package has no loudlimit-specific dependencies and performs no I/O.
package loudness
