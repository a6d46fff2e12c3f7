package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"mediaflow/internal/logging"
	"mediaflow/internal/services"
	"mediaflow/internal/taskgraph"
)

// BulkJob pairs a graph with the profile label recorded in the ledger.
type BulkJob struct {
	Graph   *taskgraph.Graph
	Profile string
}

// ExecuteBulk drains each job sequentially, one job fully settled before the
// next starts. This is the supported bulk strategy: it bounds pressure on
// the shared external services to one job's worth of concurrency.
func (o *Orchestrator) ExecuteBulk(ctx context.Context, jobs []BulkJob) ([]taskgraph.Status, error) {
	start := time.Now()
	statuses := make([]taskgraph.Status, 0, len(jobs))
	degraded := 0

	for _, job := range jobs {
		status, err := o.Execute(ctx, job.Graph, job.Profile)
		if err != nil {
			return statuses, fmt.Errorf("bulk job %s: %w", job.Graph.JobID(), err)
		}
		if status.HasFailed {
			degraded++
		}
		statuses = append(statuses, status)
	}

	if err := o.notifier.NotifyBulkCompleted(ctx, len(statuses), degraded, time.Since(start)); err != nil {
		logging.WithContext(ctx, o.logger).Warn("bulk completion notification failed", logging.Error(err))
	}
	return statuses, nil
}

// ExecuteBulkStaged synchronizes jobs through global per-type stages: every
// job's tasks of one type run concurrently, then a barrier waits for all of
// them before the next type starts.
//
// Deprecated: the stage barrier has no timeout and no partial-advance path,
// so one hung collaborator call stalls every job in the batch indefinitely.
// Use ExecuteBulk instead; this strategy remains only for workloads that
// must batch same-type tasks onto a shared accelerator and accept the risk.
func (o *Orchestrator) ExecuteBulkStaged(ctx context.Context, jobs []BulkJob) ([]taskgraph.Status, error) {
	start := time.Now()
	log := logging.WithContext(ctx, o.logger)
	log.Warn("staged bulk execution selected; a single stalled task blocks the whole batch")

	workDirs := make(map[string]string, len(jobs))
	for _, job := range jobs {
		graph := job.Graph
		if err := graph.Validate(); err != nil {
			return nil, fmt.Errorf("validate graph %s: %w", graph.JobID(), err)
		}
		jobID := graph.JobID()

		o.mu.Lock()
		if _, exists := o.jobs[jobID]; exists {
			o.mu.Unlock()
			return nil, fmt.Errorf("%w: job %s already registered", services.ErrValidation, jobID)
		}
		o.jobs[jobID] = graph
		o.mu.Unlock()

		workDir := filepath.Join(o.cfg.Paths.StagingDir, jobID)
		if err := os.MkdirAll(workDir, 0o755); err != nil {
			return nil, fmt.Errorf("create job work dir: %w", err)
		}
		workDirs[jobID] = workDir

		if o.store != nil {
			if err := o.store.RecordJobStarted(ctx, jobID, graph.InputPath(), job.Profile, len(graph.TaskIDs())); err != nil {
				log.Warn("record job start failed", logging.Error(err))
			}
		}
	}

	jobStarts := time.Now()
	for _, taskType := range taskgraph.AllTypes {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("staged bulk interrupted: %w", err)
		}

		var wg sync.WaitGroup
		for _, job := range jobs {
			graph := job.Graph
			for _, id := range graph.TasksOfType(taskType) {
				task, ok := graph.Task(id)
				if !ok || task.State != taskgraph.StatePending {
					continue
				}
				if dep, blocked := blockedBy(graph, task); blocked {
					_ = graph.MarkFailed(id, fmt.Sprintf("dependency %s failed", dep))
					continue
				}
				if err := graph.MarkRunning(id); err != nil {
					continue
				}
				wg.Add(1)
				go func(graph *taskgraph.Graph, id string) {
					defer wg.Done()
					o.runTask(services.WithJobID(ctx, graph.JobID()), graph, workDirs[graph.JobID()], id)
				}(graph, id)
			}
		}
		// Global stage barrier. No timeout: this wait is the documented
		// deadlock risk of the staged strategy.
		wg.Wait()
	}

	statuses := make([]taskgraph.Status, 0, len(jobs))
	degraded := 0
	for _, job := range jobs {
		status := job.Graph.Snapshot()
		jobCtx := services.WithJobID(ctx, status.JobID)
		o.finishJob(jobCtx, logging.WithContext(jobCtx, o.logger), status, time.Since(jobStarts))
		if status.HasFailed {
			degraded++
		}
		statuses = append(statuses, status)
	}

	if err := o.notifier.NotifyBulkCompleted(ctx, len(statuses), degraded, time.Since(start)); err != nil {
		log.Warn("bulk completion notification failed", logging.Error(err))
	}
	return statuses, nil
}

// blockedBy reports the first failed dependency of the task, if any.
func blockedBy(graph *taskgraph.Graph, task taskgraph.Task) (string, bool) {
	for _, dep := range task.Dependencies {
		depTask, ok := graph.Task(dep)
		if ok && depTask.State == taskgraph.StateFailed {
			return dep, true
		}
	}
	return "", false
}
