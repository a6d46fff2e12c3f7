package stages

import (
	"context"

	"mediaflow/internal/fusion"
	"mediaflow/internal/taskgraph"
)

// FusionStage assembles the multi-modal timeline. Every dependency is
// optional; the stage never fails on missing upstream results.
type FusionStage struct{}

func NewFusionStage() *FusionStage { return &FusionStage{} }

func (s *FusionStage) Type() taskgraph.TaskType { return taskgraph.TypeFusion }

func (s *FusionStage) Execute(ctx context.Context, req Request) (taskgraph.Result, error) {
	return fusion.Build(fusion.CollectInputs(req.Dependencies)), nil
}
