package stages

import (
	"context"
	"path/filepath"

	"mediaflow/internal/config"
	"mediaflow/internal/media/ffmpeg"
	"mediaflow/internal/media/ffprobe"
	"mediaflow/internal/services"
	"mediaflow/internal/taskgraph"
)

// IngestionStage probes the input container and streams with ffprobe.
type IngestionStage struct {
	binary string
}

func NewIngestionStage(cfg *config.Config) *IngestionStage {
	return &IngestionStage{binary: cfg.FFprobeBinary()}
}

func (s *IngestionStage) Type() taskgraph.TaskType { return taskgraph.TypeIngestion }

func (s *IngestionStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	probe, err := ffprobe.Inspect(ctx, s.binary, req.InputPath)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, string(s.Type()), "probe", "", err)
	}

	result := taskgraph.IngestionResult{
		Container:       probe.Format.FormatName,
		DurationSeconds: probe.DurationSeconds(),
		SizeBytes:       probe.SizeBytes(),
		AudioStreams:    probe.AudioStreamCount(),
	}
	if video, ok := probe.PrimaryVideoStream(); ok {
		result.VideoCodec = video.CodecName
		result.Width = video.Width
		result.Height = video.Height
	}
	if audio, ok := probe.PrimaryAudioStream(); ok {
		result.AudioCodec = audio.CodecName
	}
	return result, nil
}

// AudioStage extracts a mono 16 kHz WAV track for the audio analyses.
type AudioStage struct {
	extractor *ffmpeg.Extractor
}

func NewAudioStage(cfg *config.Config) *AudioStage {
	return &AudioStage{extractor: ffmpeg.NewExtractor(cfg.FFmpegBinary())}
}

// WithExtractor swaps the ffmpeg extractor, primarily for tests.
func (s *AudioStage) WithExtractor(extractor *ffmpeg.Extractor) {
	s.extractor = extractor
}

func (s *AudioStage) Type() taskgraph.TaskType { return taskgraph.TypeAudioExtraction }

func (s *AudioStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	dest := filepath.Join(req.WorkDir, "audio.wav")
	if err := s.extractor.ExtractAudio(ctx, req.InputPath, dest); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, string(s.Type()), "extract", "", err)
	}
	return taskgraph.AudioResult{Path: dest, SampleRate: 16000, Channels: 1}, nil
}

// KeyframesStage extracts scene-change keyframes as JPEG images.
type KeyframesStage struct {
	extractor      *ffmpeg.Extractor
	maxFrames      int
	sceneThreshold float64
}

func NewKeyframesStage(cfg *config.Config) *KeyframesStage {
	return &KeyframesStage{
		extractor:      ffmpeg.NewExtractor(cfg.FFmpegBinary()),
		maxFrames:      cfg.Keyframes.MaxFrames,
		sceneThreshold: cfg.Keyframes.SceneThreshold,
	}
}

func (s *KeyframesStage) WithExtractor(extractor *ffmpeg.Extractor) {
	s.extractor = extractor
}

func (s *KeyframesStage) Type() taskgraph.TaskType { return taskgraph.TypeKeyframeExtraction }

func (s *KeyframesStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	destDir := filepath.Join(req.WorkDir, "keyframes")
	paths, err := s.extractor.ExtractKeyframes(ctx, req.InputPath, destDir, s.maxFrames, s.sceneThreshold)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, string(s.Type()), "extract", "", err)
	}

	// Keyframes are selected at scene changes with the same threshold, so
	// scene timestamps line up with the extracted frames in order.
	timestamps, err := s.extractor.DetectScenes(ctx, req.InputPath, s.sceneThreshold)
	if err != nil {
		timestamps = nil
	}
	if len(timestamps) > len(paths) {
		timestamps = timestamps[:len(paths)]
	}
	return taskgraph.KeyframesResult{Paths: paths, Timestamps: timestamps}, nil
}

// SceneStage detects scene boundaries without extracting frames.
type SceneStage struct {
	extractor *ffmpeg.Extractor
	threshold float64
}

func NewSceneStage(cfg *config.Config) *SceneStage {
	return &SceneStage{
		extractor: ffmpeg.NewExtractor(cfg.FFmpegBinary()),
		threshold: cfg.Keyframes.SceneThreshold,
	}
}

func (s *SceneStage) WithExtractor(extractor *ffmpeg.Extractor) {
	s.extractor = extractor
}

func (s *SceneStage) Type() taskgraph.TaskType { return taskgraph.TypeSceneDetection }

func (s *SceneStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	boundaries, err := s.extractor.DetectScenes(ctx, req.InputPath, s.threshold)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, string(s.Type()), "detect", "", err)
	}
	return taskgraph.SceneDetectionResult{Boundaries: boundaries}, nil
}
