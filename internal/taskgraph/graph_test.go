package taskgraph_test

import (
	"errors"
	"testing"

	"mediaflow/internal/taskgraph"
)

func mustAdd(t *testing.T, g *taskgraph.Graph, id string, taskType taskgraph.TaskType, deps ...string) {
	t.Helper()
	if err := g.AddTask(id, taskType, deps); err != nil {
		t.Fatalf("AddTask(%s): %v", id, err)
	}
}

func TestSingleTaskLifecycle(t *testing.T) {
	g := taskgraph.NewGraph("job-1", "/media/input.mp4")
	mustAdd(t, g, "ingestion", taskgraph.TypeIngestion)

	ready := g.ReadyTasks()
	if len(ready) != 1 || ready[0] != "ingestion" {
		t.Fatalf("unexpected ready set: %v", ready)
	}

	if err := g.MarkRunning("ingestion"); err != nil {
		t.Fatalf("MarkRunning: %v", err)
	}
	if got := g.ReadyTasks(); len(got) != 0 {
		t.Fatalf("running task must not be ready, got %v", got)
	}

	if err := g.MarkCompleted("ingestion", taskgraph.IngestionResult{Container: "mov"}); err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if !g.IsComplete() {
		t.Fatal("expected graph complete")
	}
	if g.HasFailed() {
		t.Fatal("expected no failures")
	}
	if got := g.ReadyTasks(); len(got) != 0 {
		t.Fatalf("completed task must not reappear as ready, got %v", got)
	}
}

func TestFanOutWithPartialFailure(t *testing.T) {
	g := taskgraph.NewGraph("job-2", "/media/input.mp4")
	mustAdd(t, g, "root", taskgraph.TypeIngestion)
	mustAdd(t, g, "a", taskgraph.TypeAudioExtraction, "root")
	mustAdd(t, g, "b", taskgraph.TypeKeyframeExtraction, "root")

	if got := g.ReadyTasks(); len(got) != 1 || got[0] != "root" {
		t.Fatalf("unexpected initial ready set: %v", got)
	}

	if err := g.MarkCompleted("root", taskgraph.IngestionResult{}); err != nil {
		t.Fatalf("complete root: %v", err)
	}
	ready := g.ReadyTasks()
	if len(ready) != 2 {
		t.Fatalf("expected both children ready, got %v", ready)
	}

	if err := g.MarkFailed("a", "ffmpeg exited 1"); err != nil {
		t.Fatalf("fail a: %v", err)
	}
	if err := g.MarkCompleted("b", taskgraph.KeyframesResult{Paths: []string{"f0.jpg"}}); err != nil {
		t.Fatalf("complete b: %v", err)
	}

	if !g.IsComplete() {
		t.Fatal("expected graph complete")
	}
	if !g.HasFailed() {
		t.Fatal("expected failure recorded")
	}
	if _, ok := g.Result("a"); ok {
		t.Fatal("failed task must not expose a result")
	}
	if _, ok := g.Result("b"); !ok {
		t.Fatal("completed task must expose its result")
	}
	reasons := g.FailureReasons()
	if reasons["a"] != "ffmpeg exited 1" {
		t.Fatalf("unexpected failure reasons: %v", reasons)
	}
}

func TestFailedDependencyBlocksOnlyDependents(t *testing.T) {
	g := taskgraph.NewGraph("job-3", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion)
	mustAdd(t, g, "b", taskgraph.TypeSceneDetection, "a")
	mustAdd(t, g, "c", taskgraph.TypeAudioExtraction)

	if err := g.MarkFailed("a", "unreadable container"); err != nil {
		t.Fatalf("fail a: %v", err)
	}

	ready := g.ReadyTasks()
	if len(ready) != 1 || ready[0] != "c" {
		t.Fatalf("independent task must stay ready, got %v", ready)
	}

	blocked := g.Unsatisfiable()
	if blocked["b"] != "a" {
		t.Fatalf("expected b blocked via a, got %v", blocked)
	}
	if _, ok := blocked["c"]; ok {
		t.Fatalf("independent task must not be blocked: %v", blocked)
	}
}

func TestUnsatisfiableFollowsTransitiveChains(t *testing.T) {
	g := taskgraph.NewGraph("job-4", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion)
	mustAdd(t, g, "b", taskgraph.TypeAudioExtraction, "a")
	mustAdd(t, g, "c", taskgraph.TypeTranscription, "b")
	mustAdd(t, g, "d", taskgraph.TypeTextEmbeddings, "c")

	if err := g.MarkFailed("a", "boom"); err != nil {
		t.Fatalf("fail a: %v", err)
	}

	blocked := g.Unsatisfiable()
	for _, id := range []string{"b", "c", "d"} {
		if blocked[id] != "a" {
			t.Fatalf("expected %s blocked via a, got %v", id, blocked)
		}
	}
}

func TestSoftDependenciesWaitForSettlement(t *testing.T) {
	g := taskgraph.NewGraph("job-6", "/media/input.mp4")
	mustAdd(t, g, "root", taskgraph.TypeIngestion)
	mustAdd(t, g, "speech", taskgraph.TypeTranscription, "root")
	mustAdd(t, g, "speakers", taskgraph.TypeDiarization, "root")
	if err := g.AddTaskWithSoft("fusion", taskgraph.TypeFusion,
		[]string{"root"}, []string{"speech", "speakers"}); err != nil {
		t.Fatalf("AddTaskWithSoft: %v", err)
	}

	if err := g.MarkCompleted("root", taskgraph.IngestionResult{}); err != nil {
		t.Fatalf("complete root: %v", err)
	}
	if ready := g.ReadyTasks(); containsID(ready, "fusion") {
		t.Fatalf("fusion must wait for soft inputs to settle, got %v", ready)
	}

	if err := g.MarkCompleted("speech", taskgraph.TranscriptionResult{Language: "en"}); err != nil {
		t.Fatalf("complete speech: %v", err)
	}
	if err := g.MarkFailed("speakers", "backend unavailable"); err != nil {
		t.Fatalf("fail speakers: %v", err)
	}

	ready := g.ReadyTasks()
	if len(ready) != 1 || ready[0] != "fusion" {
		t.Fatalf("fusion must run once soft inputs settled, got %v", ready)
	}
	if blocked := g.Unsatisfiable(); len(blocked) != 0 {
		t.Fatalf("failed soft input must not make fusion unsatisfiable: %v", blocked)
	}

	_, results, err := g.ExecutionInput("fusion")
	if err != nil {
		t.Fatalf("ExecutionInput: %v", err)
	}
	if _, ok := results["speech"]; !ok {
		t.Fatal("expected completed soft input result")
	}
	if _, ok := results["speakers"]; ok {
		t.Fatal("failed soft input must be absent from the results")
	}
	if _, ok := results["root"]; !ok {
		t.Fatal("expected hard dependency result")
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

func TestTransitionsAreOneWay(t *testing.T) {
	g := taskgraph.NewGraph("job-5", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion)

	if err := g.MarkCompleted("a", taskgraph.IngestionResult{}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if err := g.MarkFailed("a", "late failure"); !errors.Is(err, taskgraph.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if err := g.MarkRunning("a"); !errors.Is(err, taskgraph.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUnknownTaskReturnsTypedError(t *testing.T) {
	g := taskgraph.NewGraph("job-6", "/media/input.mp4")

	if err := g.MarkRunning("ghost"); !errors.Is(err, taskgraph.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if err := g.MarkCompleted("ghost", nil); !errors.Is(err, taskgraph.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
	if err := g.MarkFailed("ghost", "x"); !errors.Is(err, taskgraph.ErrUnknownTask) {
		t.Fatalf("expected ErrUnknownTask, got %v", err)
	}
}

func TestDuplicateTaskRejected(t *testing.T) {
	g := taskgraph.NewGraph("job-7", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion)
	if err := g.AddTask("a", taskgraph.TypeStorage, nil); !errors.Is(err, taskgraph.ErrDuplicateTask) {
		t.Fatalf("expected ErrDuplicateTask, got %v", err)
	}
}

func TestResultVariantMustMatchTaskType(t *testing.T) {
	g := taskgraph.NewGraph("job-8", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion)

	err := g.MarkCompleted("a", taskgraph.StorageResult{})
	if !errors.Is(err, taskgraph.ErrResultMismatch) {
		t.Fatalf("expected ErrResultMismatch, got %v", err)
	}
	if g.IsComplete() {
		t.Fatal("rejected completion must not settle the task")
	}
}

func TestExecutionInputCollectsDependencyResults(t *testing.T) {
	g := taskgraph.NewGraph("job-9", "/media/input.mp4")
	mustAdd(t, g, "ingestion", taskgraph.TypeIngestion)
	mustAdd(t, g, "audio", taskgraph.TypeAudioExtraction, "ingestion")
	mustAdd(t, g, "transcribe", taskgraph.TypeTranscription, "audio")

	if err := g.MarkCompleted("ingestion", taskgraph.IngestionResult{Container: "mkv"}); err != nil {
		t.Fatalf("complete ingestion: %v", err)
	}
	if err := g.MarkCompleted("audio", taskgraph.AudioResult{Path: "/tmp/a.wav"}); err != nil {
		t.Fatalf("complete audio: %v", err)
	}

	taskType, deps, err := g.ExecutionInput("transcribe")
	if err != nil {
		t.Fatalf("ExecutionInput: %v", err)
	}
	if taskType != taskgraph.TypeTranscription {
		t.Fatalf("unexpected type: %s", taskType)
	}
	audio, ok := deps["audio"].(taskgraph.AudioResult)
	if !ok || audio.Path != "/tmp/a.wav" {
		t.Fatalf("unexpected dependency results: %#v", deps)
	}
}

func TestSnapshotCounters(t *testing.T) {
	g := taskgraph.NewGraph("job-10", "/media/input.mp4")
	mustAdd(t, g, "a", taskgraph.TypeIngestion)
	mustAdd(t, g, "b", taskgraph.TypeSceneDetection, "a")

	st := g.Snapshot()
	if st.JobID != "job-10" || st.TotalTasks != 2 || st.CompletedTasks != 0 || st.IsComplete {
		t.Fatalf("unexpected initial snapshot: %+v", st)
	}

	if err := g.MarkCompleted("a", taskgraph.IngestionResult{}); err != nil {
		t.Fatalf("complete a: %v", err)
	}
	if err := g.MarkFailed("b", "scene pass crashed"); err != nil {
		t.Fatalf("fail b: %v", err)
	}

	st = g.Snapshot()
	if st.CompletedTasks != 1 || st.FailedTasks != 1 || !st.IsComplete || !st.HasFailed {
		t.Fatalf("unexpected final snapshot: %+v", st)
	}
}
