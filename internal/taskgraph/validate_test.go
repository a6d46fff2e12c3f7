package taskgraph_test

import (
	"errors"
	"testing"

	"mediaflow/internal/taskgraph"
)

func TestValidateAcceptsDAG(t *testing.T) {
	g := taskgraph.NewGraph("job-v1", "/media/input.mp4")
	mustAdd(t, g, "ingestion", taskgraph.TypeIngestion)
	mustAdd(t, g, "audio", taskgraph.TypeAudioExtraction, "ingestion")
	mustAdd(t, g, "keyframes", taskgraph.TypeKeyframeExtraction, "ingestion")
	mustAdd(t, g, "storage", taskgraph.TypeStorage, "ingestion", "audio", "keyframes")

	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateReportsMissingDependency(t *testing.T) {
	g := taskgraph.NewGraph("job-v2", "/media/input.mp4")
	mustAdd(t, g, "audio", taskgraph.TypeAudioExtraction, "ingestion")

	err := g.Validate()
	var missing *taskgraph.MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError, got %v", err)
	}
	if missing.TaskID != "audio" || missing.DependencyID != "ingestion" {
		t.Fatalf("unexpected error detail: %+v", missing)
	}
}

func TestValidateReportsTwoNodeCycle(t *testing.T) {
	g := taskgraph.NewGraph("job-v3", "/media/input.mp4")
	mustAdd(t, g, "task1", taskgraph.TypeIngestion, "task2")
	mustAdd(t, g, "task2", taskgraph.TypeAudioExtraction, "task1")

	err := g.Validate()
	var cycle *taskgraph.CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
	if len(cycle.Path) < 3 || cycle.Path[0] != cycle.Path[len(cycle.Path)-1] {
		t.Fatalf("expected closed cycle path, got %v", cycle.Path)
	}
}

func TestValidateReportsSelfLoop(t *testing.T) {
	g := taskgraph.NewGraph("job-v4", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion, "a")

	var cycle *taskgraph.CycleError
	if err := g.Validate(); !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestValidateReportsIndirectCycle(t *testing.T) {
	g := taskgraph.NewGraph("job-v5", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion, "c")
	mustAdd(t, g, "b", taskgraph.TypeAudioExtraction, "a")
	mustAdd(t, g, "c", taskgraph.TypeTranscription, "b")

	var cycle *taskgraph.CycleError
	if err := g.Validate(); !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %v", err)
	}
}

func TestValidateChecksSoftEdges(t *testing.T) {
	g := taskgraph.NewGraph("job-v6", "/media/input.mp4")
	mustAdd(t, g, "root", taskgraph.TypeIngestion)
	if err := g.AddTaskWithSoft("fusion", taskgraph.TypeFusion, []string{"root"}, []string{"ghost"}); err != nil {
		t.Fatalf("AddTaskWithSoft: %v", err)
	}

	err := g.Validate()
	var missing *taskgraph.MissingDependencyError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingDependencyError for dangling soft edge, got %v", err)
	}
	if missing.TaskID != "fusion" || missing.DependencyID != "ghost" {
		t.Fatalf("unexpected error detail: %+v", missing)
	}

	g = taskgraph.NewGraph("job-v7", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion, "b")
	if err := g.AddTaskWithSoft("b", taskgraph.TypeFusion, nil, []string{"a"}); err != nil {
		t.Fatalf("AddTaskWithSoft: %v", err)
	}
	var cycle *taskgraph.CycleError
	if err := g.Validate(); !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError through soft edge, got %v", err)
	}
}
