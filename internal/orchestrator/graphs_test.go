package orchestrator_test

import (
	"sort"
	"testing"

	"mediaflow/internal/orchestrator"
	"mediaflow/internal/taskgraph"
)

func TestBuildGraphProfiles(t *testing.T) {
	realtime, err := orchestrator.BuildGraph(orchestrator.ProfileRealtime, "j1", "/media/clip.mp4")
	if err != nil {
		t.Fatalf("BuildGraph realtime: %v", err)
	}
	if len(realtime.TaskIDs()) != 8 {
		t.Fatalf("expected 8 realtime tasks, got %d", len(realtime.TaskIDs()))
	}

	full, err := orchestrator.BuildGraph(orchestrator.ProfileFull, "j2", "/media/clip.mp4")
	if err != nil {
		t.Fatalf("BuildGraph full: %v", err)
	}
	if len(full.TaskIDs()) != 14 {
		t.Fatalf("expected 14 full tasks, got %d", len(full.TaskIDs()))
	}

	if _, err := orchestrator.BuildGraph("batch", "j3", "/media/clip.mp4"); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestBuildersProduceValidGraphs(t *testing.T) {
	for _, graph := range []*taskgraph.Graph{
		orchestrator.BuildRealtimeGraph("j1", "/media/clip.mp4"),
		orchestrator.BuildFullGraph("j2", "/media/clip.mp4"),
	} {
		if err := graph.Validate(); err != nil {
			t.Fatalf("graph %s failed validation: %v", graph.JobID(), err)
		}
	}
}

func TestRealtimeGraphReadyProgression(t *testing.T) {
	graph := orchestrator.BuildRealtimeGraph("j1", "/media/clip.mp4")

	ready := graph.ReadyTasks()
	if len(ready) != 1 || ready[0] != orchestrator.TaskIngestion {
		t.Fatalf("expected only ingestion ready, got %v", ready)
	}

	completeTask(t, graph, orchestrator.TaskIngestion, taskgraph.IngestionResult{})

	ready = graph.ReadyTasks()
	sort.Strings(ready)
	want := []string{orchestrator.TaskAudioExtract, orchestrator.TaskKeyframes, orchestrator.TaskSceneDetection}
	if len(ready) != len(want) {
		t.Fatalf("expected %v ready, got %v", want, ready)
	}
	for i, id := range want {
		if ready[i] != id {
			t.Fatalf("expected %v ready, got %v", want, ready)
		}
	}
}

func TestRealtimeStorageIgnoresOptionalStages(t *testing.T) {
	graph := orchestrator.BuildRealtimeGraph("j1", "/media/clip.mp4")

	completeTask(t, graph, orchestrator.TaskIngestion, taskgraph.IngestionResult{})
	completeTask(t, graph, orchestrator.TaskAudioExtract, taskgraph.AudioResult{})

	if containsID(graph.ReadyTasks(), orchestrator.TaskStorage) {
		t.Fatal("storage must not be ready before keyframes complete")
	}

	// Optional analyses fail; storage must still become ready once its own
	// dependencies complete.
	failTask(t, graph, orchestrator.TaskFaceDetection)
	failTask(t, graph, orchestrator.TaskOCR)
	failTask(t, graph, orchestrator.TaskDiarization)
	failTask(t, graph, orchestrator.TaskSceneDetection)

	completeTask(t, graph, orchestrator.TaskKeyframes, taskgraph.KeyframesResult{})

	if !containsID(graph.ReadyTasks(), orchestrator.TaskStorage) {
		t.Fatal("storage should be ready with core dependencies completed")
	}
}

func completeTask(t *testing.T, graph *taskgraph.Graph, id string, result taskgraph.Result) {
	t.Helper()
	if err := graph.MarkRunning(id); err != nil {
		t.Fatalf("MarkRunning %s: %v", id, err)
	}
	if err := graph.MarkCompleted(id, result); err != nil {
		t.Fatalf("MarkCompleted %s: %v", id, err)
	}
}

func failTask(t *testing.T, graph *taskgraph.Graph, id string) {
	t.Helper()
	if err := graph.MarkRunning(id); err != nil {
		t.Fatalf("MarkRunning %s: %v", id, err)
	}
	if err := graph.MarkFailed(id, "induced failure"); err != nil {
		t.Fatalf("MarkFailed %s: %v", id, err)
	}
}

func containsID(ids []string, want string) bool {
	for _, id := range ids {
		if id == want {
			return true
		}
	}
	return false
}
