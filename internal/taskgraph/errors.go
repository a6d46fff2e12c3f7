package taskgraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownTask marks a state transition or lookup naming a task id the
	// graph does not contain.
	ErrUnknownTask = errors.New("unknown task")
	// ErrDuplicateTask marks an AddTask call reusing an existing id.
	ErrDuplicateTask = errors.New("duplicate task id")
	// ErrInvalidTransition marks a state change that would revert or repeat a
	// one-way transition.
	ErrInvalidTransition = errors.New("invalid state transition")
	// ErrResultMismatch marks a completion result whose variant does not match
	// the task's type.
	ErrResultMismatch = errors.New("result type mismatch")
)

// MissingDependencyError reports a task depending on an id that no task in the
// graph carries.
type MissingDependencyError struct {
	TaskID       string
	DependencyID string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("task %q depends on missing task %q", e.TaskID, e.DependencyID)
}

// CycleError reports a dependency cycle. Path holds the ids along the cycle,
// ending where it began.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle: %s", strings.Join(e.Path, " -> "))
}

func unknownTask(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownTask, id)
}
