package taskgraph

// Result is the typed payload a completed task produced. Exactly one variant
// exists per TaskType; MarkCompleted rejects a result whose Type does not
// match the task it is recorded against.
type Result interface {
	Type() TaskType
}

// IngestionResult carries container and stream metadata for the input file.
type IngestionResult struct {
	Container       string
	DurationSeconds float64
	SizeBytes       int64
	VideoCodec      string
	AudioCodec      string
	Width           int
	Height          int
	AudioStreams    int
}

func (IngestionResult) Type() TaskType { return TypeIngestion }

// AudioResult is the extracted audio file produced for downstream audio stages.
type AudioResult struct {
	Path       string
	SampleRate int
	Channels   int
}

func (AudioResult) Type() TaskType { return TypeAudioExtraction }

// KeyframesResult is the ordered set of keyframe images extracted from the input.
type KeyframesResult struct {
	Paths      []string
	Timestamps []float64
}

func (KeyframesResult) Type() TaskType { return TypeKeyframeExtraction }

// TranscriptSegment is one span of recognized speech.
type TranscriptSegment struct {
	Start float64
	End   float64
	Text  string
}

// TranscriptionResult is the recognized speech for the extracted audio.
type TranscriptionResult struct {
	Language string
	Segments []TranscriptSegment
}

func (TranscriptionResult) Type() TaskType { return TypeTranscription }

// SpeakerTurn attributes a time span to one speaker label.
type SpeakerTurn struct {
	Start   float64
	End     float64
	Speaker string
}

// DiarizationResult is the speaker timeline for the extracted audio.
type DiarizationResult struct {
	Turns []SpeakerTurn
}

func (DiarizationResult) Type() TaskType { return TypeDiarization }

// Detection is a single labeled region within one keyframe.
type Detection struct {
	Label      string
	Confidence float64
	Box        [4]float64
}

// FrameDetections groups detections by source keyframe.
type FrameDetections struct {
	FramePath  string
	Detections []Detection
}

// ObjectDetectionResult holds per-keyframe object detections.
type ObjectDetectionResult struct {
	Frames []FrameDetections
}

func (ObjectDetectionResult) Type() TaskType { return TypeObjectDetection }

// FaceDetectionResult holds per-keyframe face detections.
type FaceDetectionResult struct {
	Frames []FrameDetections
}

func (FaceDetectionResult) Type() TaskType { return TypeFaceDetection }

// FrameText is recognized text found in one keyframe.
type FrameText struct {
	FramePath string
	Text      string
}

// OCRResult holds per-keyframe recognized text.
type OCRResult struct {
	Frames []FrameText
}

func (OCRResult) Type() TaskType { return TypeOCR }

// SceneDetectionResult holds detected scene boundaries in seconds.
type SceneDetectionResult struct {
	Boundaries []float64
}

func (SceneDetectionResult) Type() TaskType { return TypeSceneDetection }

// VisionEmbeddingsResult holds one vector per keyframe.
type VisionEmbeddingsResult struct {
	Vectors [][]float32
}

func (VisionEmbeddingsResult) Type() TaskType { return TypeVisionEmbeddings }

// TextEmbeddingsResult holds one vector per transcript segment.
type TextEmbeddingsResult struct {
	Vectors [][]float32
}

func (TextEmbeddingsResult) Type() TaskType { return TypeTextEmbeddings }

// AudioEmbeddingsResult holds one vector per audio clip.
type AudioEmbeddingsResult struct {
	Vectors [][]float32
}

func (AudioEmbeddingsResult) Type() TaskType { return TypeAudioEmbeddings }

// TimelineEvent is one entry in the fused multi-modal timeline.
type TimelineEvent struct {
	Start   float64
	End     float64
	Kind    string
	Speaker string
	Text    string
	Labels  []string
}

// FusionResult is the unified timeline assembled from every available
// upstream result. Missing optional inputs degrade to empty fields.
type FusionResult struct {
	Events []TimelineEvent
}

func (FusionResult) Type() TaskType { return TypeFusion }

// StorageResult reports how many items each backend persisted. Storage is
// best-effort per backend: a backend failure lowers the counts and leaves a
// note in Skipped rather than failing the task.
type StorageResult struct {
	BlobsStored   int
	MetadataRows  int
	VectorsStored int
	Skipped       []string
}

func (StorageResult) Type() TaskType { return TypeStorage }
