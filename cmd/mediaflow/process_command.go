package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediaflow/internal/config"
	"mediaflow/internal/logging"
	"mediaflow/internal/metastore"
	"mediaflow/internal/orchestrator"
	"mediaflow/internal/stages"
	"mediaflow/internal/taskgraph"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "process <file>",
		Short: "Run the pipeline for one input file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			inputPath, err := resolveInput(args[0])
			if err != nil {
				return err
			}

			orch, store, err := buildOrchestrator(cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			jobID := newJobID()
			graph, err := orchestrator.BuildGraph(profile, jobID, inputPath)
			if err != nil {
				return err
			}

			status, err := orch.Execute(cmd.Context(), graph, profile)
			if err != nil {
				return fmt.Errorf("process %s: %w", inputPath, err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderJobSummary(graph, status))
			if status.HasFailed {
				fmt.Fprintf(out, "Job %s completed with %d failed tasks\n", jobID, status.FailedTasks)
			} else {
				fmt.Fprintf(out, "Job %s completed successfully\n", jobID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", orchestrator.ProfileRealtime, "Graph profile (realtime or full)")
	return cmd
}

func buildOrchestrator(cfg *config.Config) (*orchestrator.Orchestrator, *metastore.Store, error) {
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("init logging: %w", err)
	}
	store, err := metastore.Open(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("open state store: %w", err)
	}
	orch := orchestrator.New(cfg, logger, store)
	orch.RegisterAll(stages.DefaultExecutors(cfg, store)...)
	return orch, store, nil
}

func resolveInput(path string) (string, error) {
	expanded, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return "", fmt.Errorf("resolve input path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("input %s: %w", abs, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input %s is a directory", abs)
	}
	return abs, nil
}

func newJobID() string {
	return uuid.NewString()[:8]
}

func renderJobSummary(graph *taskgraph.Graph, status taskgraph.Status) string {
	ids := graph.TaskIDs()
	sort.Strings(ids)

	rows := make([][]string, 0, len(ids))
	for _, id := range ids {
		task, ok := graph.Task(id)
		if !ok {
			continue
		}
		detail := ""
		if task.State == taskgraph.StateFailed {
			detail = task.FailureReason
		}
		rows = append(rows, []string{id, task.Type.Display(), string(task.State), detail})
	}

	var builder strings.Builder
	builder.WriteString(renderTable(
		[]string{"Task", "Stage", "State", "Detail"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft},
	))
	builder.WriteString("\n")
	builder.WriteString(fmt.Sprintf("%d/%d tasks completed", status.CompletedTasks, status.TotalTasks))
	return builder.String()
}
