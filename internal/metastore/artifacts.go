package metastore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MediaItem is the persisted metadata row produced by the storage stage.
type MediaItem struct {
	JobID           string
	SourcePath      string
	Container       string
	DurationSeconds float64
	SizeBytes       int64
	VideoCodec      string
	AudioCodec      string
	Width           int
	Height          int
	Language        string
	TranscriptJSON  string
	TimelineJSON    string
	ArtifactDir     string
	CreatedAt       time.Time
}

// EmbeddingVector is one stored vector for a job, keyed by modality and item.
type EmbeddingVector struct {
	JobID    string
	Modality string
	ItemKey  string
	Vector   []float32
}

// SaveMediaItem upserts the metadata row for a job.
func (s *Store) SaveMediaItem(ctx context.Context, item *MediaItem) error {
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO media_items (job_id, source_path, container, duration_seconds, size_bytes,
			video_codec, audio_codec, width, height, language,
			transcript_json, timeline_json, artifact_dir, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(job_id) DO UPDATE SET
			source_path = excluded.source_path,
			container = excluded.container,
			duration_seconds = excluded.duration_seconds,
			size_bytes = excluded.size_bytes,
			video_codec = excluded.video_codec,
			audio_codec = excluded.audio_codec,
			width = excluded.width,
			height = excluded.height,
			language = excluded.language,
			transcript_json = excluded.transcript_json,
			timeline_json = excluded.timeline_json,
			artifact_dir = excluded.artifact_dir`,
		item.JobID, item.SourcePath, item.Container, item.DurationSeconds, item.SizeBytes,
		item.VideoCodec, item.AudioCodec, item.Width, item.Height, item.Language,
		item.TranscriptJSON, item.TimelineJSON, item.ArtifactDir, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("save media item: %w", err)
	}
	return nil
}

// GetMediaItem returns the metadata row for a job id.
func (s *Store) GetMediaItem(ctx context.Context, jobID string) (*MediaItem, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT job_id, source_path, container, duration_seconds, size_bytes,
			video_codec, audio_codec, width, height, language,
			transcript_json, timeline_json, artifact_dir, created_at
		FROM media_items WHERE job_id = ?`, jobID)
	var item MediaItem
	err := row.Scan(&item.JobID, &item.SourcePath, &item.Container, &item.DurationSeconds, &item.SizeBytes,
		&item.VideoCodec, &item.AudioCodec, &item.Width, &item.Height, &item.Language,
		&item.TranscriptJSON, &item.TimelineJSON, &item.ArtifactDir, &item.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get media item: %w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get media item: %w", err)
	}
	return &item, nil
}

// SaveVectors stores a batch of embedding vectors for a job inside one
// transaction. Vectors are serialized as JSON arrays.
func (s *Store) SaveVectors(ctx context.Context, vectors []EmbeddingVector) error {
	if len(vectors) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save vectors: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, v := range vectors {
		payload, err := json.Marshal(v.Vector)
		if err != nil {
			return fmt.Errorf("save vectors: encode %s/%s: %w", v.Modality, v.ItemKey, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO embedding_vectors (job_id, modality, item_key, vector_json, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			v.JobID, v.Modality, v.ItemKey, string(payload), now)
		if err != nil {
			return fmt.Errorf("save vectors: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save vectors: %w", err)
	}
	return nil
}

// VectorCount returns how many vectors are stored for a job, optionally
// filtered by modality. An empty modality counts all of them.
func (s *Store) VectorCount(ctx context.Context, jobID, modality string) (int, error) {
	query := "SELECT COUNT(1) FROM embedding_vectors WHERE job_id = ?"
	args := []any{jobID}
	if modality != "" {
		query += " AND modality = ?"
		args = append(args, modality)
	}
	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("vector count: %w", err)
	}
	return count, nil
}
