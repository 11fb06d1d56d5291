package normalize

import (
	"time"

	"github.com/google/uuid"

	"loudlimit/internal/loudness"
)

// Status is the terminal state of one asset.
type Status string

const (
	StatusUnchanged  Status = "unchanged"
	StatusNormalized Status = "normalized"
	StatusFailed     Status = "failed"
)

// Outcome is the result of running the pipeline on one asset.
type Outcome struct {
	Path   string
	Status Status
	// Report is set whenever the analysis output parsed.
	Report *loudness.Report
	// StagedPath is set once the original has been moved aside.
	StagedPath string
	Err        error
}

// Failure pairs an asset path with the error that failed it.
type Failure struct {
	Path string
	Err  error
}

// Summary aggregates the outcomes of a run.
type Summary struct {
	RunID      string
	Root       string
	TargetLKFS float64
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Failures   []Failure
	Outcomes   []Outcome
}

// NewSummary starts an empty summary with a fresh run id.
func NewSummary(root string, target float64) Summary {
	return Summary{
		RunID:      uuid.NewString(),
		Root:       root,
		TargetLKFS: target,
		StartedAt:  time.Now().UTC(),
	}
}

// Add records an outcome.
func (s *Summary) Add(outcome Outcome) {
	s.Outcomes = append(s.Outcomes, outcome)
	if outcome.Status == StatusFailed {
		s.Failures = append(s.Failures, Failure{Path: outcome.Path, Err: outcome.Err})
		return
	}
	s.Processed++
}

// Count returns the number of outcomes with the given status.
func (s Summary) Count(status Status) int {
	n := 0
	for _, o := range s.Outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any asset failed.
func (s Summary) Failed() bool {
	return len(s.Failures) > 0
}
