package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"mediaflow/internal/metastore"
)

func newJobsCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "jobs",
		Short: "List processed jobs from the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			store, err := metastore.Open(cfg)
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer store.Close()

			records, err := store.ListJobs(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No jobs recorded")
				return nil
			}

			rows := make([][]string, 0, len(records))
			for _, rec := range records {
				rows = append(rows, []string{
					rec.ID,
					rec.InputPath,
					rec.Profile,
					string(rec.State),
					fmt.Sprintf("%d/%d", rec.CompletedTasks, rec.TotalTasks),
					strconv.Itoa(rec.FailedTasks),
					formatJobDuration(rec),
				})
			}
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Input", "Profile", "State", "Done", "Failed", "Duration"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight},
			))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum jobs to list (0 for all)")
	return cmd
}

func formatJobDuration(rec *metastore.JobRecord) string {
	if rec.FinishedAt == nil {
		return "-"
	}
	return rec.FinishedAt.Sub(rec.StartedAt).Round(time.Second).String()
}
