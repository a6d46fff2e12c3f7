package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"mediaflow/internal/config"
	"mediaflow/internal/logging"
	"mediaflow/internal/metastore"
	"mediaflow/internal/notifications"
	"mediaflow/internal/services"
	"mediaflow/internal/stages"
	"mediaflow/internal/taskgraph"
)

// Orchestrator drives per-job task graphs: it polls each graph for ready
// tasks, launches one goroutine per ready task, and records outcomes back
// onto the graph until every task settled.
type Orchestrator struct {
	cfg          *config.Config
	logger       *slog.Logger
	notifier     notifications.Service
	store        *metastore.Store
	pollInterval time.Duration
	executors    map[taskgraph.TaskType]stages.Executor

	mu   sync.RWMutex
	jobs map[string]*taskgraph.Graph
}

// New constructs an orchestrator. The store may be nil when no job ledger is
// wanted (tests, dry runs).
func New(cfg *config.Config, logger *slog.Logger, store *metastore.Store) *Orchestrator {
	return NewWithNotifier(cfg, logger, store, notifications.NewService(cfg))
}

// NewWithNotifier constructs an orchestrator with a custom notifier (used in tests).
func NewWithNotifier(cfg *config.Config, logger *slog.Logger, store *metastore.Store, notifier notifications.Service) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	poll := time.Duration(cfg.Workflow.PollIntervalMS) * time.Millisecond
	if poll <= 0 {
		poll = 100 * time.Millisecond
	}
	return &Orchestrator{
		cfg:          cfg,
		logger:       logging.NewComponentLogger(logger, "orchestrator"),
		notifier:     notifier,
		store:        store,
		pollInterval: poll,
		executors:    make(map[taskgraph.TaskType]stages.Executor),
		jobs:         make(map[string]*taskgraph.Graph),
	}
}

// Register installs an executor for its task type, replacing any previous one.
func (o *Orchestrator) Register(executor stages.Executor) {
	o.executors[executor.Type()] = executor
}

// RegisterAll installs every provided executor.
func (o *Orchestrator) RegisterAll(executors ...stages.Executor) {
	for _, executor := range executors {
		o.Register(executor)
	}
}

// JobStatus returns a point-in-time snapshot for a registered job. It is
// safe to call while the job is executing.
func (o *Orchestrator) JobStatus(jobID string) (taskgraph.Status, error) {
	o.mu.RLock()
	graph, ok := o.jobs[jobID]
	o.mu.RUnlock()
	if !ok {
		return taskgraph.Status{}, fmt.Errorf("%w: job %s", services.ErrNotFound, jobID)
	}
	return graph.Snapshot(), nil
}

// JobIDs lists every registered job id in sorted order.
func (o *Orchestrator) JobIDs() []string {
	o.mu.RLock()
	defer o.mu.RUnlock()
	ids := make([]string, 0, len(o.jobs))
	for id := range o.jobs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Execute validates the graph and drains it to completion. The returned
// status reflects the settled graph; a degraded job (some tasks failed) is
// not an error. The profile labels the job in the ledger.
func (o *Orchestrator) Execute(ctx context.Context, graph *taskgraph.Graph, profile string) (taskgraph.Status, error) {
	if err := graph.Validate(); err != nil {
		return taskgraph.Status{}, fmt.Errorf("validate graph: %w", err)
	}

	jobID := graph.JobID()
	o.mu.Lock()
	if _, exists := o.jobs[jobID]; exists {
		o.mu.Unlock()
		return taskgraph.Status{}, fmt.Errorf("%w: job %s already registered", services.ErrValidation, jobID)
	}
	o.jobs[jobID] = graph
	o.mu.Unlock()

	workDir := filepath.Join(o.cfg.Paths.StagingDir, jobID)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return taskgraph.Status{}, fmt.Errorf("create job work dir: %w", err)
	}

	start := time.Now()
	total := len(graph.TaskIDs())
	ctx = services.WithJobID(ctx, jobID)
	log := logging.WithContext(ctx, o.logger)
	log.Info("job started",
		logging.String("input", graph.InputPath()),
		logging.String("profile", profile),
		logging.Int("tasks", total))

	if o.store != nil {
		if err := o.store.RecordJobStarted(ctx, jobID, graph.InputPath(), profile, total); err != nil {
			log.Warn("record job start failed", logging.Error(err))
		}
	}
	if err := o.notifier.NotifyJobStarted(ctx, jobID, graph.InputPath()); err != nil {
		log.Warn("job start notification failed", logging.Error(err))
	}

	if err := o.drain(ctx, graph, workDir); err != nil {
		return graph.Snapshot(), err
	}

	status := graph.Snapshot()
	o.finishJob(ctx, log, status, time.Since(start))
	return status, nil
}

// drain runs the scheduling loop: each pass marks every ready task Running,
// launches a goroutine per task, and waits on the pass barrier before
// polling again.
func (o *Orchestrator) drain(ctx context.Context, graph *taskgraph.Graph, workDir string) error {
	for !graph.IsComplete() {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("job %s interrupted: %w", graph.JobID(), err)
		}

		ready := graph.ReadyTasks()
		if len(ready) == 0 {
			if o.resolveBlocked(ctx, graph) {
				continue
			}
			sleepCtx(ctx, o.pollInterval)
			continue
		}

		var wg sync.WaitGroup
		for _, id := range ready {
			if err := graph.MarkRunning(id); err != nil {
				continue
			}
			wg.Add(1)
			go func(id string) {
				defer wg.Done()
				o.runTask(ctx, graph, workDir, id)
			}(id)
		}
		wg.Wait()
	}
	return nil
}

// resolveBlocked settles tasks whose dependencies can no longer complete.
// Without this the loop would poll forever on a graph that has failures but
// no runnable work left.
func (o *Orchestrator) resolveBlocked(ctx context.Context, graph *taskgraph.Graph) bool {
	blocked := graph.Unsatisfiable()
	if len(blocked) == 0 {
		return false
	}
	log := logging.WithContext(ctx, o.logger)
	for id, dep := range blocked {
		reason := fmt.Sprintf("dependency %s failed", dep)
		if err := graph.MarkFailed(id, reason); err != nil {
			continue
		}
		log.Warn("task blocked by failed dependency",
			logging.String(logging.FieldTaskID, id),
			logging.String("failed_dependency", dep))
	}
	return true
}

func (o *Orchestrator) runTask(ctx context.Context, graph *taskgraph.Graph, workDir, id string) {
	taskType, deps, err := graph.ExecutionInput(id)
	if err != nil {
		_ = graph.MarkFailed(id, err.Error())
		return
	}

	executor, ok := o.executors[taskType]
	if !ok {
		_ = graph.MarkFailed(id, fmt.Sprintf("no executor registered for %s", taskType))
		return
	}

	ctx = services.WithTaskID(ctx, id)
	ctx = services.WithStage(ctx, string(taskType))
	ctx = services.WithRequestID(ctx, uuid.NewString())
	log := logging.WithContext(ctx, o.logger)

	start := time.Now()
	log.Info("task started")
	result, err := executor.Execute(ctx, stages.Request{
		JobID:        graph.JobID(),
		TaskID:       id,
		InputPath:    graph.InputPath(),
		WorkDir:      workDir,
		Dependencies: deps,
	})
	if err != nil {
		if markErr := graph.MarkFailed(id, err.Error()); markErr != nil {
			log.Error("record task failure", logging.Error(markErr))
			return
		}
		log.Warn("task failed",
			logging.Duration("elapsed", time.Since(start)),
			logging.Error(err))
		return
	}

	if err := graph.MarkCompleted(id, result); err != nil {
		_ = graph.MarkFailed(id, err.Error())
		log.Error("record task result", logging.Error(err))
		return
	}
	log.Info("task completed", logging.Duration("elapsed", time.Since(start)))
}

func (o *Orchestrator) finishJob(ctx context.Context, log *slog.Logger, status taskgraph.Status, elapsed time.Duration) {
	state := metastore.JobStateCompleted
	detail := ""
	if status.HasFailed {
		state = metastore.JobStateDegraded
		if status.CompletedTasks == 0 {
			state = metastore.JobStateFailed
		}
		detail = formatFailures(o.failureReasons(status.JobID))
	}

	if o.store != nil {
		if err := o.store.RecordJobFinished(ctx, status.JobID, state, status.CompletedTasks, status.FailedTasks, detail); err != nil {
			log.Warn("record job finish failed", logging.Error(err))
		}
	}
	if err := o.notifier.NotifyJobCompleted(ctx, status.JobID, status.CompletedTasks, status.FailedTasks, elapsed); err != nil {
		log.Warn("job completion notification failed", logging.Error(err))
	}

	if status.HasFailed {
		log.Warn("job completed with failures",
			logging.Int("completed", status.CompletedTasks),
			logging.Int("failed", status.FailedTasks),
			logging.Duration("elapsed", elapsed))
		return
	}
	log.Info("job completed",
		logging.Int("completed", status.CompletedTasks),
		logging.Duration("elapsed", elapsed))
}

func (o *Orchestrator) failureReasons(jobID string) map[string]string {
	o.mu.RLock()
	graph, ok := o.jobs[jobID]
	o.mu.RUnlock()
	if !ok {
		return nil
	}
	return graph.FailureReasons()
}

func formatFailures(reasons map[string]string) string {
	if len(reasons) == 0 {
		return ""
	}
	ids := make([]string, 0, len(reasons))
	for id := range reasons {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprintf("%s: %s", id, reasons[id]))
	}
	return strings.Join(parts, "; ")
}

func sleepCtx(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
