package taskgraph

import (
	"fmt"
	"sync"
)

// Graph is the per-job dependency graph plus the derived completed and failed
// sets. All mutators and readers take the graph lock for the duration of the
// single operation only; long-running stage work must happen outside it.
type Graph struct {
	mu        sync.Mutex
	jobID     string
	inputPath string
	tasks     map[string]*Task
	order     []string
	completed map[string]struct{}
	failed    map[string]struct{}
}

// NewGraph creates an empty graph for one job.
func NewGraph(jobID, inputPath string) *Graph {
	return &Graph{
		jobID:     jobID,
		inputPath: inputPath,
		tasks:     make(map[string]*Task),
		completed: make(map[string]struct{}),
		failed:    make(map[string]struct{}),
	}
}

// JobID returns the job identifier the graph was built for.
func (g *Graph) JobID() string { return g.jobID }

// InputPath returns the input media file the job processes.
func (g *Graph) InputPath() string { return g.inputPath }

// AddTask registers a new pending task. Ids must be unique within the graph;
// dependency ids are checked later by Validate.
func (g *Graph) AddTask(id string, taskType TaskType, dependencies []string) error {
	return g.AddTaskWithSoft(id, taskType, dependencies, nil)
}

// AddTaskWithSoft registers a new pending task with both hard and soft
// dependencies. Hard dependencies must complete before the task becomes
// ready; soft dependencies only have to settle, so their failures surface as
// absent inputs rather than blocking the task.
func (g *Graph) AddTaskWithSoft(id string, taskType TaskType, dependencies, softDependencies []string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrUnknownTask)
	}
	if !taskType.Valid() {
		return fmt.Errorf("unknown task type %q", taskType)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.tasks[id]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateTask, id)
	}
	g.tasks[id] = &Task{
		ID:               id,
		Type:             taskType,
		Dependencies:     append([]string(nil), dependencies...),
		SoftDependencies: append([]string(nil), softDependencies...),
		State:            StatePending,
	}
	g.order = append(g.order, id)
	return nil
}

// ReadyTasks returns every pending task whose hard dependencies are all
// completed and whose soft dependencies are all settled. The slice follows
// task insertion order; callers dispatch entries concurrently so the order
// carries no scheduling meaning.
func (g *Graph) ReadyTasks() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ready := make([]string, 0)
	for _, id := range g.order {
		task := g.tasks[id]
		if task.State != StatePending {
			continue
		}
		satisfied := true
		for _, dep := range task.Dependencies {
			if _, ok := g.completed[dep]; !ok {
				satisfied = false
				break
			}
		}
		for _, dep := range task.SoftDependencies {
			if !satisfied {
				break
			}
			if _, ok := g.completed[dep]; ok {
				continue
			}
			if _, ok := g.failed[dep]; !ok {
				satisfied = false
			}
		}
		if satisfied {
			ready = append(ready, id)
		}
	}
	return ready
}

// MarkRunning transitions a pending task to running.
func (g *Graph) MarkRunning(id string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return unknownTask(id)
	}
	if task.State != StatePending {
		return fmt.Errorf("%w: %q is %s, want pending", ErrInvalidTransition, id, task.State)
	}
	task.State = StateRunning
	return nil
}

// MarkCompleted records a task's result and adds it to the completed set. The
// result variant must match the task's type.
func (g *Graph) MarkCompleted(id string, result Result) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return unknownTask(id)
	}
	if task.State != StatePending && task.State != StateRunning {
		return fmt.Errorf("%w: %q is %s, cannot complete", ErrInvalidTransition, id, task.State)
	}
	if result != nil && result.Type() != task.Type {
		return fmt.Errorf("%w: task %q has type %s, result is %s", ErrResultMismatch, id, task.Type, result.Type())
	}
	task.State = StateCompleted
	task.Result = result
	g.completed[id] = struct{}{}
	return nil
}

// MarkFailed records a task failure with its reason.
func (g *Graph) MarkFailed(id, reason string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return unknownTask(id)
	}
	if task.State != StatePending && task.State != StateRunning {
		return fmt.Errorf("%w: %q is %s, cannot fail", ErrInvalidTransition, id, task.State)
	}
	task.State = StateFailed
	task.FailureReason = reason
	g.failed[id] = struct{}{}
	return nil
}

// IsComplete reports whether every task has settled (completed or failed).
func (g *Graph) IsComplete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.completed)+len(g.failed) == len(g.tasks)
}

// HasFailed reports whether any task failed.
func (g *Graph) HasFailed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.failed) > 0
}

// Task returns a snapshot of the named task.
func (g *Graph) Task(id string) (Task, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return Task{}, false
	}
	return task.Clone(), true
}

// Result returns the result of a completed task, if any.
func (g *Graph) Result(id string) (Result, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok || task.State != StateCompleted || task.Result == nil {
		return nil, false
	}
	return task.Result, true
}

// TaskIDs returns every task id in insertion order.
func (g *Graph) TaskIDs() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.order...)
}

// TasksOfType returns the ids of tasks with the given type, in insertion order.
func (g *Graph) TasksOfType(taskType TaskType) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids := make([]string, 0, 1)
	for _, id := range g.order {
		if g.tasks[id].Type == taskType {
			ids = append(ids, id)
		}
	}
	return ids
}

// ExecutionInput reads, under one lock hold, everything a stage executor
// needs before running: the task's type and its dependencies' results.
func (g *Graph) ExecutionInput(id string) (TaskType, map[string]Result, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	task, ok := g.tasks[id]
	if !ok {
		return "", nil, unknownTask(id)
	}
	results := make(map[string]Result, len(task.Dependencies)+len(task.SoftDependencies))
	for _, deps := range [][]string{task.Dependencies, task.SoftDependencies} {
		for _, dep := range deps {
			depTask, ok := g.tasks[dep]
			if !ok {
				return "", nil, unknownTask(dep)
			}
			if depTask.State == StateCompleted && depTask.Result != nil {
				results[dep] = depTask.Result
			}
		}
	}
	return task.Type, results, nil
}

// Unsatisfiable returns every pending task that can never become ready
// because a transitive hard dependency already failed, mapped to the id of
// the failed dependency that blocks it. Failure propagates along hard edges
// only; a task whose failed inputs are all soft stays satisfiable and runs
// once those inputs settle.
func (g *Graph) Unsatisfiable() map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	blocked := make(map[string]string)
	for {
		changed := false
		for _, id := range g.order {
			task := g.tasks[id]
			if task.State != StatePending {
				continue
			}
			if _, done := blocked[id]; done {
				continue
			}
			for _, dep := range task.Dependencies {
				if _, failed := g.failed[dep]; failed {
					blocked[id] = dep
					changed = true
					break
				}
				if via, ok := blocked[dep]; ok {
					blocked[id] = via
					changed = true
					break
				}
			}
		}
		if !changed {
			return blocked
		}
	}
}

// FailureReasons returns the recorded reason for every failed task.
func (g *Graph) FailureReasons() map[string]string {
	g.mu.Lock()
	defer g.mu.Unlock()

	reasons := make(map[string]string, len(g.failed))
	for id := range g.failed {
		reasons[id] = g.tasks[id].FailureReason
	}
	return reasons
}

// Status is a point-in-time snapshot of job progress. Counters are
// monotonically non-decreasing across successive snapshots.
type Status struct {
	JobID          string
	TotalTasks     int
	CompletedTasks int
	FailedTasks    int
	IsComplete     bool
	HasFailed      bool
}

// Snapshot returns the current progress counters for the job.
func (g *Graph) Snapshot() Status {
	g.mu.Lock()
	defer g.mu.Unlock()

	return Status{
		JobID:          g.jobID,
		TotalTasks:     len(g.tasks),
		CompletedTasks: len(g.completed),
		FailedTasks:    len(g.failed),
		IsComplete:     len(g.completed)+len(g.failed) == len(g.tasks),
		HasFailed:      len(g.failed) > 0,
	}
}
