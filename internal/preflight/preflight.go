package preflight

import (
	"context"

	"mediaflow/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
// Checks are only run when the corresponding feature is enabled.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir))
	results = append(results, CheckDirectoryAccess("Artifacts directory", cfg.Paths.ArtifactsDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	if cfg.Inference.Enabled {
		results = append(results, CheckHTTPService(ctx, "Inference service", cfg.Inference.BaseURL))
	}
	if cfg.Embeddings.Enabled {
		results = append(results, CheckHTTPService(ctx, "Embeddings service", cfg.Embeddings.BaseURL))
	}

	return results
}
