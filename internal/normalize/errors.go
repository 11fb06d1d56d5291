package normalize

import (
	"errors"

	"loudlimit/internal/services"
)

// Kind classifies a pipeline failure.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindNotAFile             Kind = "not_a_file"
	KindNotADirectory        Kind = "not_a_directory"
	KindAnalysisUnreadable   Kind = "analysis_unreadable"
	KindStageFailed          Kind = "stage_failed"
	KindEncodeFailed         Kind = "encode_failed"
	KindToolInvocationFailed Kind = "tool_invocation_failed"
)

// Error is the failure reported for an asset or a batch root.
type Error struct {
	Kind   Kind
	Path   string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := string(e.Kind)
	if e.Path != "" {
		msg += ": " + e.Path
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes both the services marker for the kind and the cause.
func (e *Error) Unwrap() []error {
	errs := []error{e.Kind.marker()}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// ErrorKind returns the kind as a string for classifiers.
func (e *Error) ErrorKind() string {
	return string(e.Kind)
}

func (k Kind) marker() error {
	switch k {
	case KindNotFound:
		return services.ErrNotFound
	case KindNotAFile, KindNotADirectory, KindAnalysisUnreadable:
		return services.ErrValidation
	case KindStageFailed:
		return services.ErrStaging
	default:
		return services.ErrExternalTool
	}
}

// KindOf extracts the pipeline kind from err, or "" when err is not a
// pipeline failure.
func KindOf(err error) Kind {
	var pipelineErr *Error
	if errors.As(err, &pipelineErr) {
		return pipelineErr.Kind
	}
	return ""
}

// Process exit codes for pipeline failures.
const (
	ExitNotFound      = 11
	ExitNotFileOrDir  = 12
	ExitAnalysis      = 13
	ExitNormalization = 14
)

// ExitCode maps err to a process exit status. Nil maps to 0 and errors that
// are not pipeline failures map to 1.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	switch KindOf(err) {
	case KindNotFound:
		return ExitNotFound
	case KindNotAFile, KindNotADirectory:
		return ExitNotFileOrDir
	case KindAnalysisUnreadable:
		return ExitAnalysis
	case KindStageFailed, KindEncodeFailed, KindToolInvocationFailed:
		return ExitNormalization
	default:
		return 1
	}
}

func errorHint(kind Kind) string {
	switch kind {
	case KindNotFound, KindNotAFile, KindNotADirectory:
		return "check the path passed to loudlimit"
	case KindAnalysisUnreadable:
		return "inspect the analysis output in the trace; the file may be silent or not audio"
	case KindStageFailed:
		return "check write permission on the asset directory and remove any leftover original-* file"
	case KindEncodeFailed:
		return "the untouched source is kept as original-*; inspect the ffmpeg output in the trace"
	case KindToolInvocationFailed:
		return "run loudlimit check to verify the ffmpeg binary"
	default:
		return "check logs for details"
	}
}
