package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"loudlimit/internal/loudness"
	"loudlimit/internal/normalize"
)

var titleCaser = cases.Title(language.Und)

func titleCase(value string) string {
	value = strings.TrimSpace(strings.ReplaceAll(value, "_", " "))
	if value == "" {
		return ""
	}
	return titleCaser.String(value)
}

func renderOutcome(outcome normalize.Outcome) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", outcome.Path, titleCase(string(outcome.Status)))
	if outcome.Report != nil {
		fmt.Fprintf(&b, " (I=%s LKFS, %s)", loudness.FormatValue(outcome.Report.InputIntegrated), titleCase(outcome.Report.NormalizationType))
	}
	if outcome.StagedPath != "" {
		fmt.Fprintf(&b, "\n  original kept at %s", outcome.StagedPath)
	}
	if outcome.Err != nil {
		fmt.Fprintf(&b, "\n  error: %v", outcome.Err)
	}
	return b.String()
}

func outcomeRows(outcomes []normalize.Outcome) [][]string {
	rows := make([][]string, 0, len(outcomes))
	for _, outcome := range outcomes {
		inputI, mode := "-", "-"
		if outcome.Report != nil {
			inputI = loudness.FormatValue(outcome.Report.InputIntegrated)
			mode = titleCase(outcome.Report.NormalizationType)
		}
		rows = append(rows, []string{
			filepath.Base(outcome.Path),
			titleCase(string(outcome.Status)),
			inputI,
			mode,
			outcomeDetail(outcome),
		})
	}
	return rows
}

func outcomeDetail(outcome normalize.Outcome) string {
	switch outcome.Status {
	case normalize.StatusNormalized:
		return "original kept as " + filepath.Base(outcome.StagedPath)
	case normalize.StatusUnchanged:
		return "below target"
	default:
		kind := string(normalize.KindOf(outcome.Err))
		if outcome.StagedPath != "" {
			return fmt.Sprintf("%s; original kept as %s", kind, filepath.Base(outcome.StagedPath))
		}
		return kind
	}
}

func renderSummaryTable(summary normalize.Summary) string {
	return renderTable(
		[]string{"File", "Status", "Input I", "Type", "Detail"},
		outcomeRows(summary.Outcomes),
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
	)
}

func renderSummaryFooter(summary normalize.Summary) string {
	return fmt.Sprintf("Run %s: %d processed (%d normalized, %d unchanged), %d failed, target %s LKFS",
		summary.RunID,
		summary.Processed,
		summary.Count(normalize.StatusNormalized),
		summary.Count(normalize.StatusUnchanged),
		len(summary.Failures),
		loudness.FormatValue(summary.TargetLKFS),
	)
}
