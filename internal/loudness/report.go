package loudness

import (
	"fmt"
	"strconv"
)

// Fixed loudnorm parameters shared by the analysis and correction passes.
const (
	// AnalysisTargetLKFS is the integrated target the measurement pass runs
	// under. The input statistics it reports do not depend on it.
	AnalysisTargetLKFS = -18.0
	// TruePeakCeiling is the true-peak limit in dBTP for both passes.
	TruePeakCeiling = -1.5
	// LoudnessRangeTarget is the loudness range target in LU for both passes.
	LoudnessRangeTarget = 11.0
)

// Report is the structured result of one loudnorm analysis pass.
type Report struct {
	InputIntegrated   float64
	InputTruePeak     float64
	InputRange        float64
	InputThreshold    float64
	OutputIntegrated  float64
	OutputTruePeak    float64
	OutputRange       float64
	OutputThreshold   float64
	NormalizationType string
	TargetOffset      float64
}

// Measurement carries the measured input statistics a linear correction pass
// needs.
type Measurement struct {
	Integrated float64
	TruePeak   float64
	Range      float64
	Threshold  float64
}

// Measured returns the input statistics of the report.
func (r Report) Measured() Measurement {
	return Measurement{
		Integrated: r.InputIntegrated,
		TruePeak:   r.InputTruePeak,
		Range:      r.InputRange,
		Threshold:  r.InputThreshold,
	}
}

// Summary renders the input statistics on one line for traces and logs.
func (r Report) Summary() string {
	return fmt.Sprintf("I=%s LKFS TP=%s dBTP LRA=%s LU thresh=%s LKFS (%s)",
		FormatValue(r.InputIntegrated),
		FormatValue(r.InputTruePeak),
		FormatValue(r.InputRange),
		FormatValue(r.InputThreshold),
		r.NormalizationType,
	)
}

// FormatValue renders a loudness statistic the way loudnorm prints it.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
