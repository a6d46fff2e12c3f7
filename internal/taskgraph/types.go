package taskgraph

// TaskType identifies the kind of work a task performs.
type TaskType string

const (
	TypeIngestion          TaskType = "ingestion"
	TypeAudioExtraction    TaskType = "audio_extraction"
	TypeKeyframeExtraction TaskType = "keyframe_extraction"
	TypeTranscription      TaskType = "transcription"
	TypeDiarization        TaskType = "diarization"
	TypeObjectDetection    TaskType = "object_detection"
	TypeFaceDetection      TaskType = "face_detection"
	TypeOCR                TaskType = "ocr"
	TypeSceneDetection     TaskType = "scene_detection"
	TypeVisionEmbeddings   TaskType = "vision_embeddings"
	TypeTextEmbeddings     TaskType = "text_embeddings"
	TypeAudioEmbeddings    TaskType = "audio_embeddings"
	TypeFusion             TaskType = "fusion"
	TypeStorage            TaskType = "storage"
)

// AllTypes lists every task type in canonical pipeline order. The staged bulk
// strategy iterates this slice to form its global stages.
var AllTypes = []TaskType{
	TypeIngestion,
	TypeAudioExtraction,
	TypeKeyframeExtraction,
	TypeTranscription,
	TypeDiarization,
	TypeObjectDetection,
	TypeFaceDetection,
	TypeOCR,
	TypeSceneDetection,
	TypeVisionEmbeddings,
	TypeTextEmbeddings,
	TypeAudioEmbeddings,
	TypeFusion,
	TypeStorage,
}

var displayNames = map[TaskType]string{
	TypeIngestion:          "Ingestion",
	TypeAudioExtraction:    "Audio Extraction",
	TypeKeyframeExtraction: "Keyframe Extraction",
	TypeTranscription:      "Transcription",
	TypeDiarization:        "Diarization",
	TypeObjectDetection:    "Object Detection",
	TypeFaceDetection:      "Face Detection",
	TypeOCR:                "OCR",
	TypeSceneDetection:     "Scene Detection",
	TypeVisionEmbeddings:   "Vision Embeddings",
	TypeTextEmbeddings:     "Text Embeddings",
	TypeAudioEmbeddings:    "Audio Embeddings",
	TypeFusion:             "Fusion",
	TypeStorage:            "Storage",
}

// Display returns the stable human-readable name for the task type.
func (t TaskType) Display() string {
	if name, ok := displayNames[t]; ok {
		return name
	}
	return string(t)
}

// Valid reports whether the type is one of the known stage kinds.
func (t TaskType) Valid() bool {
	_, ok := displayNames[t]
	return ok
}

// State represents the lifecycle of a task. Transitions are one-way:
// pending -> running -> completed or failed, never reverting.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Task is one stage's unit of work within a job. Readiness is not stored; it
// is derived from the state and the graph's completed set. Dependencies must
// complete before the task runs; SoftDependencies only have to settle, so a
// failed soft dependency leaves the task runnable with that input absent.
type Task struct {
	ID               string
	Type             TaskType
	Dependencies     []string
	SoftDependencies []string
	State            State
	Result           Result
	FailureReason    string
}

// Clone returns a copy safe to hand out after the graph lock is released.
func (t *Task) Clone() Task {
	cp := *t
	cp.Dependencies = append([]string(nil), t.Dependencies...)
	cp.SoftDependencies = append([]string(nil), t.SoftDependencies...)
	return cp
}
