package stages

import (
	"context"
	"path/filepath"
	"time"

	"mediaflow/internal/config"
	"mediaflow/internal/services"
	"mediaflow/internal/services/inference"
	"mediaflow/internal/services/whisperx"
	"mediaflow/internal/taskgraph"
)

// TranscriptionStage runs WhisperX over the extracted audio track.
type TranscriptionStage struct {
	enabled bool
	service *whisperx.Service
}

func NewTranscriptionStage(cfg *config.Config) *TranscriptionStage {
	return &TranscriptionStage{
		enabled: cfg.Transcription.Enabled,
		service: whisperx.NewService(whisperx.Config{
			Model:       cfg.Transcription.Model,
			CUDAEnabled: cfg.Transcription.CUDAEnabled,
			Language:    cfg.Transcription.Language,
		}, cfg.WhisperXBinary()),
	}
}

// WithService swaps the WhisperX service, primarily for tests.
func (s *TranscriptionStage) WithService(service *whisperx.Service) {
	s.service = service
}

func (s *TranscriptionStage) Type() taskgraph.TaskType { return taskgraph.TypeTranscription }

func (s *TranscriptionStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "transcription disabled in configuration", nil)
	}
	audio, ok := req.Audio()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "audio extraction result missing", nil)
	}

	transcript, err := s.service.Transcribe(ctx, audio.Path, filepath.Join(req.WorkDir, "transcripts"))
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, string(s.Type()), "transcribe", "", err)
	}

	segments := make([]taskgraph.TranscriptSegment, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		segments = append(segments, taskgraph.TranscriptSegment{
			Start: seg.Start,
			End:   seg.End,
			Text:  seg.Text,
		})
	}
	return taskgraph.TranscriptionResult{
		Language: whisperx.NormalizeLanguage(transcript.Language),
		Segments: segments,
	}, nil
}

// DiarizationStage asks the inference service who spoke when.
type DiarizationStage struct {
	enabled bool
	client  *inference.Client
}

func NewDiarizationStage(cfg *config.Config) *DiarizationStage {
	return &DiarizationStage{
		enabled: cfg.Inference.Enabled,
		client:  inference.NewClient(cfg.Inference.BaseURL, time.Duration(cfg.Inference.TimeoutSeconds)*time.Second),
	}
}

func (s *DiarizationStage) WithClient(client *inference.Client) {
	s.client = client
}

func (s *DiarizationStage) Type() taskgraph.TaskType { return taskgraph.TypeDiarization }

func (s *DiarizationStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "inference disabled in configuration", nil)
	}
	audio, ok := req.Audio()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "audio extraction result missing", nil)
	}

	turns, err := s.client.Diarize(ctx, audio.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(s.Type()), "diarize", "", err)
	}

	result := taskgraph.DiarizationResult{Turns: make([]taskgraph.SpeakerTurn, 0, len(turns))}
	for _, turn := range turns {
		result.Turns = append(result.Turns, taskgraph.SpeakerTurn{
			Start:   turn.Start,
			End:     turn.End,
			Speaker: turn.Speaker,
		})
	}
	return result, nil
}

// detectFunc is one of the inference client's per-frame detection calls.
type detectFunc func(ctx context.Context, framePaths []string) ([]inference.FrameDetections, error)

// DetectionStage runs one detector model over the extracted keyframes. It
// backs both the object and face detection stages.
type DetectionStage struct {
	enabled   bool
	taskType  taskgraph.TaskType
	operation string
	detect    detectFunc
}

func NewObjectDetectionStage(cfg *config.Config) *DetectionStage {
	client := inference.NewClient(cfg.Inference.BaseURL, time.Duration(cfg.Inference.TimeoutSeconds)*time.Second)
	return &DetectionStage{enabled: cfg.Inference.Enabled, taskType: taskgraph.TypeObjectDetection, operation: "detect-objects", detect: client.DetectObjects}
}

func NewFaceDetectionStage(cfg *config.Config) *DetectionStage {
	client := inference.NewClient(cfg.Inference.BaseURL, time.Duration(cfg.Inference.TimeoutSeconds)*time.Second)
	return &DetectionStage{enabled: cfg.Inference.Enabled, taskType: taskgraph.TypeFaceDetection, operation: "detect-faces", detect: client.DetectFaces}
}

// WithDetectFunc swaps the detection call, primarily for tests.
func (s *DetectionStage) WithDetectFunc(fn detectFunc) {
	s.detect = fn
}

func (s *DetectionStage) Type() taskgraph.TaskType { return s.taskType }

func (s *DetectionStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "inference disabled in configuration", nil)
	}
	keyframes, ok := req.Keyframes()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "keyframe extraction result missing", nil)
	}

	frames, err := s.detect(ctx, keyframes.Paths)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(s.Type()), s.operation, "", err)
	}

	converted := convertFrameDetections(frames)
	if s.taskType == taskgraph.TypeFaceDetection {
		return taskgraph.FaceDetectionResult{Frames: converted}, nil
	}
	return taskgraph.ObjectDetectionResult{Frames: converted}, nil
}

func convertFrameDetections(frames []inference.FrameDetections) []taskgraph.FrameDetections {
	converted := make([]taskgraph.FrameDetections, 0, len(frames))
	for _, frame := range frames {
		detections := make([]taskgraph.Detection, 0, len(frame.Detections))
		for _, d := range frame.Detections {
			detections = append(detections, taskgraph.Detection{
				Label:      d.Label,
				Confidence: d.Confidence,
				Box:        d.Box,
			})
		}
		converted = append(converted, taskgraph.FrameDetections{
			FramePath:  frame.FramePath,
			Detections: detections,
		})
	}
	return converted
}

// OCRStage recognizes on-screen text in the extracted keyframes.
type OCRStage struct {
	enabled bool
	client  *inference.Client
}

func NewOCRStage(cfg *config.Config) *OCRStage {
	return &OCRStage{
		enabled: cfg.Inference.Enabled,
		client:  inference.NewClient(cfg.Inference.BaseURL, time.Duration(cfg.Inference.TimeoutSeconds)*time.Second),
	}
}

func (s *OCRStage) WithClient(client *inference.Client) {
	s.client = client
}

func (s *OCRStage) Type() taskgraph.TaskType { return taskgraph.TypeOCR }

func (s *OCRStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "inference disabled in configuration", nil)
	}
	keyframes, ok := req.Keyframes()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "keyframe extraction result missing", nil)
	}

	frames, err := s.client.RecognizeText(ctx, keyframes.Paths)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(s.Type()), "ocr", "", err)
	}

	result := taskgraph.OCRResult{Frames: make([]taskgraph.FrameText, 0, len(frames))}
	for _, frame := range frames {
		result.Frames = append(result.Frames, taskgraph.FrameText{
			FramePath: frame.FramePath,
			Text:      frame.Text,
		})
	}
	return result, nil
}
