package preflight

import (
	"loudlimit/internal/config"
	"loudlimit/internal/deps"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll checks the ffmpeg binary, the state directory, and every extra
// directory the caller intends to normalize in place.
func RunAll(cfg *config.Config, targets ...string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckFFmpeg(cfg.FFmpegBinary()),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
	}
	for _, target := range targets {
		results = append(results, CheckDirectoryAccess("Target directory", target))
	}
	return results
}

// CheckFFmpeg verifies the configured ffmpeg command resolves to an executable.
func CheckFFmpeg(command string) Result {
	status := deps.CheckBinaries([]deps.Requirement{deps.FFmpegRequirement(command)})[0]
	if !status.Available {
		return Result{Name: status.Name, Detail: status.Detail}
	}
	return Result{Name: status.Name, Passed: true, Detail: status.Command}
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
