package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"loudlimit/internal/preflight"
	"loudlimit/internal/services"
)

func newCheckCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "check [dir...]",
		Short: "Verify ffmpeg and directory access",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			results := preflight.RunAll(cfg, args...)
			for _, line := range renderSectionHeader("Dependencies", colorize) {
				fmt.Fprintln(out, line)
			}
			fmt.Fprintln(out, renderCheck(results[0], colorize))
			fmt.Fprintln(out)
			for _, line := range renderSectionHeader("Paths", colorize) {
				fmt.Fprintln(out, line)
			}
			for _, result := range results[1:] {
				fmt.Fprintln(out, renderCheck(result, colorize))
			}

			if failed := preflight.Failed(results); len(failed) > 0 {
				return services.Wrap(services.ErrConfiguration, "check", "", fmt.Sprintf("%d check(s) failed", len(failed)), nil)
			}
			return nil
		},
	}
}

func renderCheck(result preflight.Result, colorize bool) string {
	kind := statusOK
	if !result.Passed {
		kind = statusError
	}
	return renderStatusLine(result.Name, kind, result.Detail, colorize)
}
