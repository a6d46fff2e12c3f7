package stages

import (
	"mediaflow/internal/config"
	"mediaflow/internal/metastore"
)

// DefaultExecutors wires one executor per task type from the runtime config.
// The graph profile, not this list, decides which stages actually run.
func DefaultExecutors(cfg *config.Config, store *metastore.Store) []Executor {
	return []Executor{
		NewIngestionStage(cfg),
		NewAudioStage(cfg),
		NewKeyframesStage(cfg),
		NewSceneStage(cfg),
		NewTranscriptionStage(cfg),
		NewDiarizationStage(cfg),
		NewObjectDetectionStage(cfg),
		NewFaceDetectionStage(cfg),
		NewOCRStage(cfg),
		NewVisionEmbeddingsStage(cfg),
		NewTextEmbeddingsStage(cfg),
		NewAudioEmbeddingsStage(cfg),
		NewFusionStage(),
		NewStorageStage(cfg, store),
	}
}
