package config

const (
	defaultStagingDir        = "~/.local/share/mediaflow/staging"
	defaultArtifactsDir      = "~/.local/share/mediaflow/artifacts"
	defaultLogDir            = "~/.local/share/mediaflow/logs"
	defaultStateDir          = "~/.local/share/mediaflow/state"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultPollIntervalMS    = 100
	defaultKeyframeMaxFrames = 16
	defaultSceneThreshold    = 0.4
	defaultWhisperXModel     = "large-v3-turbo"
	defaultInferenceBaseURL  = "http://127.0.0.1:8750"
	defaultEmbeddingsBaseURL = "http://127.0.0.1:8751"
	defaultServiceTimeout    = 120
	defaultNotifyTimeout     = 10
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir:   defaultStagingDir,
			ArtifactsDir: defaultArtifactsDir,
			LogDir:       defaultLogDir,
			StateDir:     defaultStateDir,
		},
		Workflow: Workflow{
			PollIntervalMS: defaultPollIntervalMS,
		},
		Keyframes: Keyframes{
			MaxFrames:      defaultKeyframeMaxFrames,
			SceneThreshold: defaultSceneThreshold,
		},
		Transcription: Transcription{
			Enabled: true,
			Model:   defaultWhisperXModel,
		},
		Inference: Inference{
			Enabled:        true,
			BaseURL:        defaultInferenceBaseURL,
			TimeoutSeconds: defaultServiceTimeout,
		},
		Embeddings: Embeddings{
			Enabled:        true,
			BaseURL:        defaultEmbeddingsBaseURL,
			TimeoutSeconds: defaultServiceTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			JobStarted:     true,
			JobCompleted:   true,
			Bulk:           true,
			Errors:         true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
