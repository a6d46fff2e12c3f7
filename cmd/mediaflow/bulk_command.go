package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediaflow/internal/orchestrator"
)

func newBulkCommand(ctx *commandContext) *cobra.Command {
	var profile string
	var staged bool

	cmd := &cobra.Command{
		Use:   "bulk <file>...",
		Short: "Run the pipeline for several input files",
		Long: "Processes each input file as its own job. By default jobs run " +
			"sequentially, one fully drained before the next. --staged batches " +
			"same-type tasks across all jobs behind global stage barriers; it " +
			"maximizes shared accelerator utilization but one stalled task " +
			"blocks the entire batch.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			orch, store, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			jobs := make([]orchestrator.BulkJob, 0, len(args))
			for _, arg := range args {
				inputPath, err := resolveInput(arg)
				if err != nil {
					return err
				}
				graph, err := orchestrator.BuildGraph(profile, newJobID(), inputPath)
				if err != nil {
					return err
				}
				jobs = append(jobs, orchestrator.BulkJob{Graph: graph, Profile: profile})
			}

			run := orch.ExecuteBulk
			if staged {
				run = orch.ExecuteBulkStaged
			}
			results, err := run(cmd.Context(), jobs)
			if err != nil {
				return fmt.Errorf("bulk execution: %w", err)
			}

			rows := make([][]string, 0, len(results))
			degraded := 0
			for i, status := range results {
				outcome := "ok"
				if status.HasFailed {
					outcome = "degraded"
					degraded++
				}
				rows = append(rows, []string{
					status.JobID,
					jobs[i].Graph.InputPath(),
					strconv.Itoa(status.CompletedTasks),
					strconv.Itoa(status.FailedTasks),
					outcome,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"Job", "Input", "Completed", "Failed", "Outcome"},
				rows,
				[]columnAlignment{alignLeft, alignLeft, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "%d jobs processed, %d degraded\n", len(results), degraded)
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", orchestrator.ProfileRealtime, "Graph profile (realtime or full)")
	cmd.Flags().BoolVar(&staged, "staged", false, "Use the deprecated globally-staged strategy")
	return cmd
}
