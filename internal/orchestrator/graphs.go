package orchestrator

import (
	"fmt"

	"mediaflow/internal/taskgraph"
)

// Graph profiles selectable per job.
const (
	ProfileRealtime = "realtime"
	ProfileFull     = "full"
)

// Task ids used by the convenience graph builders.
const (
	TaskIngestion        = "ingestion"
	TaskAudioExtract     = "audio_extract"
	TaskKeyframes        = "keyframes"
	TaskSceneDetection   = "scene_detection"
	TaskFaceDetection    = "face_detection"
	TaskOCR              = "ocr"
	TaskDiarization      = "diarization"
	TaskTranscription    = "transcription"
	TaskObjectDetection  = "object_detection"
	TaskVisionEmbeddings = "vision_embeddings"
	TaskTextEmbeddings   = "text_embeddings"
	TaskAudioEmbeddings  = "audio_embeddings"
	TaskFusion           = "fusion"
	TaskStorage          = "storage"
)

// BuildGraph constructs the graph for the named profile.
func BuildGraph(profile, jobID, inputPath string) (*taskgraph.Graph, error) {
	switch profile {
	case ProfileRealtime:
		return BuildRealtimeGraph(jobID, inputPath), nil
	case ProfileFull:
		return BuildFullGraph(jobID, inputPath), nil
	default:
		return nil, fmt.Errorf("unknown graph profile %q", profile)
	}
}

// BuildRealtimeGraph constructs the standard low-latency topology. Storage
// depends only on the three core extraction stages so optional analysis
// failures never block persistence.
func BuildRealtimeGraph(jobID, inputPath string) *taskgraph.Graph {
	g := taskgraph.NewGraph(jobID, inputPath)
	mustAdd(g, TaskIngestion, taskgraph.TypeIngestion, nil)
	mustAdd(g, TaskAudioExtract, taskgraph.TypeAudioExtraction, []string{TaskIngestion})
	mustAdd(g, TaskKeyframes, taskgraph.TypeKeyframeExtraction, []string{TaskIngestion})
	mustAdd(g, TaskSceneDetection, taskgraph.TypeSceneDetection, []string{TaskIngestion})
	mustAdd(g, TaskFaceDetection, taskgraph.TypeFaceDetection, []string{TaskKeyframes})
	mustAdd(g, TaskOCR, taskgraph.TypeOCR, []string{TaskKeyframes})
	mustAdd(g, TaskDiarization, taskgraph.TypeDiarization, []string{TaskAudioExtract})
	mustAdd(g, TaskStorage, taskgraph.TypeStorage, []string{TaskIngestion, TaskAudioExtract, TaskKeyframes})
	return g
}

// BuildFullGraph extends the realtime topology with transcription, object
// detection, per-modality embeddings, and timeline fusion. Fusion takes every
// analysis output as a soft dependency: it waits for them to settle but runs
// with whatever completed. Storage keeps the three core extraction stages as
// hard dependencies and soft-depends on fusion and the embeddings, so their
// payloads persist when present and an analysis failure never blocks
// persistence.
func BuildFullGraph(jobID, inputPath string) *taskgraph.Graph {
	g := taskgraph.NewGraph(jobID, inputPath)
	mustAdd(g, TaskIngestion, taskgraph.TypeIngestion, nil)
	mustAdd(g, TaskAudioExtract, taskgraph.TypeAudioExtraction, []string{TaskIngestion})
	mustAdd(g, TaskKeyframes, taskgraph.TypeKeyframeExtraction, []string{TaskIngestion})
	mustAdd(g, TaskSceneDetection, taskgraph.TypeSceneDetection, []string{TaskIngestion})
	mustAdd(g, TaskTranscription, taskgraph.TypeTranscription, []string{TaskAudioExtract})
	mustAdd(g, TaskDiarization, taskgraph.TypeDiarization, []string{TaskAudioExtract})
	mustAdd(g, TaskObjectDetection, taskgraph.TypeObjectDetection, []string{TaskKeyframes})
	mustAdd(g, TaskFaceDetection, taskgraph.TypeFaceDetection, []string{TaskKeyframes})
	mustAdd(g, TaskOCR, taskgraph.TypeOCR, []string{TaskKeyframes})
	mustAdd(g, TaskVisionEmbeddings, taskgraph.TypeVisionEmbeddings, []string{TaskKeyframes})
	mustAdd(g, TaskTextEmbeddings, taskgraph.TypeTextEmbeddings, []string{TaskTranscription})
	mustAdd(g, TaskAudioEmbeddings, taskgraph.TypeAudioEmbeddings, []string{TaskAudioExtract})
	mustAddSoft(g, TaskFusion, taskgraph.TypeFusion, []string{TaskIngestion}, []string{
		TaskTranscription, TaskDiarization, TaskObjectDetection,
		TaskFaceDetection, TaskOCR, TaskSceneDetection, TaskKeyframes,
	})
	mustAddSoft(g, TaskStorage, taskgraph.TypeStorage,
		[]string{TaskIngestion, TaskAudioExtract, TaskKeyframes},
		[]string{TaskFusion, TaskVisionEmbeddings, TaskTextEmbeddings, TaskAudioEmbeddings},
	)
	return g
}

func mustAdd(g *taskgraph.Graph, id string, taskType taskgraph.TaskType, deps []string) {
	if err := g.AddTask(id, taskType, deps); err != nil {
		panic(fmt.Sprintf("build graph: %v", err))
	}
}

func mustAddSoft(g *taskgraph.Graph, id string, taskType taskgraph.TaskType, hard, soft []string) {
	if err := g.AddTaskWithSoft(id, taskType, hard, soft); err != nil {
		panic(fmt.Sprintf("build graph: %v", err))
	}
}
