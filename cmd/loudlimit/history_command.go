package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"loudlimit/internal/history"
	"loudlimit/internal/loudness"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var runID string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent normalization runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := history.Open(cfg)
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer store.Close()

			out := cmd.OutOrStdout()
			if id := strings.TrimSpace(runID); id != "" {
				entries, err := store.Entries(cmd.Context(), id)
				if err != nil {
					return err
				}
				if len(entries) == 0 {
					fmt.Fprintf(out, "No outcomes recorded for run %s\n", id)
					return nil
				}
				fmt.Fprintln(out, renderEntries(entries))
				return nil
			}

			if !cmd.Flags().Changed("limit") {
				limit = cfg.History.Limit
			}
			runs, err := store.Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(out, "No runs recorded")
				return nil
			}
			fmt.Fprintln(out, renderRuns(runs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum runs to list (defaults to history.limit)")
	cmd.Flags().StringVar(&runID, "run", "", "Show the per-file outcomes of one run")
	return cmd
}

func renderRuns(runs []history.Run) string {
	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, []string{
			run.ID,
			run.StartedAt.Local().Format(time.DateTime),
			run.Root,
			loudness.FormatValue(run.TargetLKFS),
			strconv.Itoa(run.Normalized),
			strconv.Itoa(run.Unchanged),
			strconv.Itoa(run.Failed),
		})
	}
	return renderTable(
		[]string{"Run", "Started", "Root", "Target", "Normalized", "Unchanged", "Failed"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
	)
}

func renderEntries(entries []history.Entry) string {
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		inputI := "-"
		if entry.InputI != nil {
			inputI = loudness.FormatValue(*entry.InputI)
		}
		detail := entry.ErrorKind
		if entry.StagedPath != "" {
			if detail != "" {
				detail += "; "
			}
			detail += "original at " + entry.StagedPath
		}
		rows = append(rows, []string{entry.Path, titleCase(string(entry.Status)), inputI, detail})
	}
	return renderTable(
		[]string{"File", "Status", "Input I", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
	)
}
