package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"loudlimit/internal/normalize"
	"loudlimit/internal/services"
)

func newFileCommand(ctx *commandContext) *cobra.Command {
	var target float64
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "file <path>",
		Short: "Normalize a single audio file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := resolveTarget(cmd, cfg, target)
			if err != nil {
				return err
			}
			runner, logger, err := ctx.newRunner(cmd, 1)
			if err != nil {
				return err
			}

			assetPath := args[0]
			summary := normalize.NewSummary(assetPath, target)
			runCtx := services.WithRunID(cmd.Context(), summary.RunID)
			trace := &normalize.Trace{}
			outcome, runErr := runner.ProcessFile(runCtx, assetPath, target, trace)
			summary.Add(outcome)
			summary.FinishedAt = time.Now().UTC()
			recordHistory(runCtx, cfg, logger, summary)

			out := cmd.OutOrStdout()
			if showTrace {
				fmt.Fprintln(out, trace.String())
				fmt.Fprintln(out)
			}
			fmt.Fprintln(out, renderOutcome(outcome))
			return runErr
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target integrated loudness in LKFS (defaults to normalize.target_lkfs)")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the full pipeline trace")
	return cmd
}

func newDirCommand(ctx *commandContext) *cobra.Command {
	var target float64
	var workers int
	var showTrace bool

	cmd := &cobra.Command{
		Use:   "dir <path>",
		Short: "Normalize every matching audio file in a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			target, err := resolveTarget(cmd, cfg, target)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") && workers < 1 {
				return services.Wrap(services.ErrValidation, "cli", "workers", "must be at least 1", nil)
			}
			runner, logger, err := ctx.newRunner(cmd, workers)
			if err != nil {
				return err
			}

			trace := &normalize.Trace{}
			summary, runErr := runner.ProcessDirectory(cmd.Context(), args[0], target, trace)
			var pipelineErr *normalize.Error
			if runErr != nil && errors.As(runErr, &pipelineErr) {
				// The directory itself was unusable; nothing ran.
				return runErr
			}
			recordHistory(cmd.Context(), cfg, logger, summary)

			out := cmd.OutOrStdout()
			if showTrace {
				fmt.Fprintln(out, trace.String())
				fmt.Fprintln(out)
			}
			if len(summary.Outcomes) > 0 {
				fmt.Fprintln(out, renderSummaryTable(summary))
			}
			fmt.Fprintln(out, renderSummaryFooter(summary))

			if runErr != nil {
				return runErr
			}
			if summary.Failed() {
				return fmt.Errorf("%w: %d of %d", errAssetsFailed, len(summary.Failures), len(summary.Outcomes))
			}
			return nil
		},
	}

	cmd.Flags().Float64VarP(&target, "target", "t", 0, "Target integrated loudness in LKFS (defaults to normalize.target_lkfs)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Files processed in parallel (defaults to normalize.workers)")
	cmd.Flags().BoolVar(&showTrace, "trace", false, "Print the full pipeline trace")
	return cmd
}
