package deps

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Requirement defines an external dependency loudlimit relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements and reports availability.
// Resolved commands are reported with their absolute path.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := Status{
			Name:        req.Name,
			Command:     strings.TrimSpace(req.Command),
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if status.Command == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		resolved, err := ResolveBinary(status.Command)
		if err != nil {
			status.Detail = err.Error()
			results = append(results, status)
			continue
		}
		status.Command = resolved
		status.Available = true
		results = append(results, status)
	}
	return results
}

// ResolveBinary turns a configured command into an executable path. Values
// containing a path separator must name an executable file; bare names are
// searched in PATH.
func ResolveBinary(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", errors.New("command not configured")
	}
	if strings.ContainsRune(command, filepath.Separator) || strings.ContainsRune(command, '/') {
		info, err := os.Stat(command)
		if err != nil {
			return "", fmt.Errorf("binary %q not found", command)
		}
		if !isExecutable(info) {
			return "", fmt.Errorf("binary %q is not executable", command)
		}
		return command, nil
	}
	resolved, err := exec.LookPath(command)
	if err != nil {
		return "", fmt.Errorf("binary %q not found in PATH", command)
	}
	return resolved, nil
}

// FFmpegRequirement describes the audio tool used for both loudnorm passes.
func FFmpegRequirement(command string) Requirement {
	if strings.TrimSpace(command) == "" {
		command = "ffmpeg"
	}
	return Requirement{
		Name:        "FFmpeg",
		Command:     command,
		Description: "Required for loudness analysis and normalization",
	}
}

func isExecutable(info os.FileInfo) bool {
	if info == nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
