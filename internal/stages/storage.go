package stages

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"mediaflow/internal/config"
	"mediaflow/internal/fileutil"
	"mediaflow/internal/metastore"
	"mediaflow/internal/services"
	"mediaflow/internal/taskgraph"
)

// StorageStage persists the job's artifacts: keyframes and audio are copied
// into the artifacts directory with size verification, the metadata row
// goes to the metastore, and any embedding vectors are stored alongside it.
// Each backend is best-effort: a failed copy or write lowers the reported
// count and records a skip note instead of failing the task.
type StorageStage struct {
	store        *metastore.Store
	artifactsDir string
}

func NewStorageStage(cfg *config.Config, store *metastore.Store) *StorageStage {
	return &StorageStage{store: store, artifactsDir: cfg.Paths.ArtifactsDir}
}

func (s *StorageStage) Type() taskgraph.TaskType { return taskgraph.TypeStorage }

func (s *StorageStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	ingestion, ok := req.Ingestion()
	if !ok {
		return nil, services.Wrap(services.ErrValidation, string(s.Type()), "input", "ingestion result missing", nil)
	}
	audio, haveAudio := req.Audio()
	keyframes, haveKeyframes := req.Keyframes()

	jobDir := filepath.Join(s.artifactsDir, req.JobID)
	var result taskgraph.StorageResult

	if haveKeyframes {
		for _, src := range keyframes.Paths {
			dst := filepath.Join(jobDir, "keyframes", filepath.Base(src))
			if err := fileutil.CopyFileVerified(src, dst); err != nil {
				result.Skipped = append(result.Skipped, fmt.Sprintf("keyframe %s: %v", filepath.Base(src), err))
				continue
			}
			result.BlobsStored++
		}
	}
	if haveAudio {
		if err := fileutil.CopyFileVerified(audio.Path, filepath.Join(jobDir, filepath.Base(audio.Path))); err != nil {
			result.Skipped = append(result.Skipped, fmt.Sprintf("audio: %v", err))
		} else {
			result.BlobsStored++
		}
	}

	item := &metastore.MediaItem{
		JobID:           req.JobID,
		SourcePath:      req.InputPath,
		Container:       ingestion.Container,
		DurationSeconds: ingestion.DurationSeconds,
		SizeBytes:       ingestion.SizeBytes,
		VideoCodec:      ingestion.VideoCodec,
		AudioCodec:      ingestion.AudioCodec,
		Width:           ingestion.Width,
		Height:          ingestion.Height,
		ArtifactDir:     jobDir,
	}
	if transcript, ok := req.Transcription(); ok {
		item.Language = transcript.Language
		if payload, err := json.Marshal(transcript); err == nil {
			item.TranscriptJSON = string(payload)
		} else {
			result.Skipped = append(result.Skipped, fmt.Sprintf("transcript: %v", err))
		}
	}
	for _, res := range req.Dependencies {
		if timeline, ok := res.(taskgraph.FusionResult); ok {
			if payload, err := json.Marshal(timeline); err == nil {
				item.TimelineJSON = string(payload)
			} else {
				result.Skipped = append(result.Skipped, fmt.Sprintf("timeline: %v", err))
			}
		}
	}
	if err := s.store.SaveMediaItem(ctx, item); err != nil {
		result.Skipped = append(result.Skipped, fmt.Sprintf("metadata: %v", err))
	} else {
		result.MetadataRows = 1
	}

	vectors := collectVectors(req, keyframes)
	if err := s.store.SaveVectors(ctx, vectors); err != nil {
		result.Skipped = append(result.Skipped, fmt.Sprintf("vectors: %v", err))
	} else {
		result.VectorsStored = len(vectors)
	}

	return result, nil
}

func collectVectors(req Request, keyframes taskgraph.KeyframesResult) []metastore.EmbeddingVector {
	var vectors []metastore.EmbeddingVector
	appendBatch := func(modality string, batch [][]float32, key func(i int) string) {
		for i, vec := range batch {
			vectors = append(vectors, metastore.EmbeddingVector{
				JobID:    req.JobID,
				Modality: modality,
				ItemKey:  key(i),
				Vector:   vec,
			})
		}
	}

	for _, res := range req.Dependencies {
		switch v := res.(type) {
		case taskgraph.VisionEmbeddingsResult:
			appendBatch("vision", v.Vectors, func(i int) string {
				if i < len(keyframes.Paths) {
					return filepath.Base(keyframes.Paths[i])
				}
				return fmt.Sprintf("frame-%d", i)
			})
		case taskgraph.TextEmbeddingsResult:
			appendBatch("text", v.Vectors, func(i int) string {
				return fmt.Sprintf("segment-%d", i)
			})
		case taskgraph.AudioEmbeddingsResult:
			appendBatch("audio", v.Vectors, func(i int) string {
				return fmt.Sprintf("clip-%d", i)
			})
		}
	}
	return vectors
}
