package stages

import (
	"context"
	"time"

	"mediaflow/internal/config"
	"mediaflow/internal/services"
	"mediaflow/internal/services/embeddings"
	"mediaflow/internal/taskgraph"
)

func newEmbeddingsClient(cfg *config.Config) *embeddings.Client {
	return embeddings.NewClient(cfg.Embeddings.BaseURL, time.Duration(cfg.Embeddings.TimeoutSeconds)*time.Second)
}

// VisionEmbeddingsStage embeds the extracted keyframes.
type VisionEmbeddingsStage struct {
	enabled bool
	client  *embeddings.Client
}

func NewVisionEmbeddingsStage(cfg *config.Config) *VisionEmbeddingsStage {
	return &VisionEmbeddingsStage{enabled: cfg.Embeddings.Enabled, client: newEmbeddingsClient(cfg)}
}

func (s *VisionEmbeddingsStage) WithClient(client *embeddings.Client) {
	s.client = client
}

func (s *VisionEmbeddingsStage) Type() taskgraph.TaskType { return taskgraph.TypeVisionEmbeddings }

func (s *VisionEmbeddingsStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "embeddings disabled in configuration", nil)
	}
	keyframes, ok := req.Keyframes()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "keyframe extraction result missing", nil)
	}
	if len(keyframes.Paths) == 0 {
		return taskgraph.VisionEmbeddingsResult{}, nil
	}

	vectors, err := s.client.EmbedImages(ctx, keyframes.Paths)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(s.Type()), "embed", "", err)
	}
	return taskgraph.VisionEmbeddingsResult{Vectors: vectors}, nil
}

// TextEmbeddingsStage embeds the transcript segments.
type TextEmbeddingsStage struct {
	enabled bool
	client  *embeddings.Client
}

func NewTextEmbeddingsStage(cfg *config.Config) *TextEmbeddingsStage {
	return &TextEmbeddingsStage{enabled: cfg.Embeddings.Enabled, client: newEmbeddingsClient(cfg)}
}

func (s *TextEmbeddingsStage) WithClient(client *embeddings.Client) {
	s.client = client
}

func (s *TextEmbeddingsStage) Type() taskgraph.TaskType { return taskgraph.TypeTextEmbeddings }

func (s *TextEmbeddingsStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "embeddings disabled in configuration", nil)
	}
	transcript, ok := req.Transcription()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "transcription result missing", nil)
	}
	if len(transcript.Segments) == 0 {
		return taskgraph.TextEmbeddingsResult{}, nil
	}

	texts := make([]string, 0, len(transcript.Segments))
	for _, seg := range transcript.Segments {
		texts = append(texts, seg.Text)
	}
	vectors, err := s.client.EmbedTexts(ctx, texts)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(s.Type()), "embed", "", err)
	}
	return taskgraph.TextEmbeddingsResult{Vectors: vectors}, nil
}

// AudioEmbeddingsStage embeds the extracted audio track.
type AudioEmbeddingsStage struct {
	enabled bool
	client  *embeddings.Client
}

func NewAudioEmbeddingsStage(cfg *config.Config) *AudioEmbeddingsStage {
	return &AudioEmbeddingsStage{enabled: cfg.Embeddings.Enabled, client: newEmbeddingsClient(cfg)}
}

func (s *AudioEmbeddingsStage) WithClient(client *embeddings.Client) {
	s.client = client
}

func (s *AudioEmbeddingsStage) Type() taskgraph.TaskType { return taskgraph.TypeAudioEmbeddings }

func (s *AudioEmbeddingsStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	if !s.enabled {
		return nil, services.Wrap(services.ErrConfiguration, string(s.Type()), "config", "embeddings disabled in configuration", nil)
	}
	audio, ok := req.Audio()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "audio extraction result missing", nil)
	}

	vectors, err := s.client.EmbedAudio(ctx, audio.Path)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, string(s.Type()), "embed", "", err)
	}
	return taskgraph.AudioEmbeddingsResult{Vectors: vectors}, nil
}
