package stages

import (
	"context"

	"mediaflow/internal/taskgraph"
)

// Request is the execution input handed to a stage: the job identity, the
// source file, a per-job scratch directory, and the results of every
// dependency the task declared.
type Request struct {
	JobID        string
	TaskID       string
	InputPath    string
	WorkDir      string
	Dependencies map[string]taskgraph.Result
}

// Executor runs one stage of the pipeline. Implementations receive only
// dependency results plus the request fields; they never touch the graph.
type Executor interface {
	Type() taskgraph.TaskType
	Execute(ctx context.Context, req Request) (taskgraph.Result, error)
}

// Ingestion returns the ingestion dependency result, if present.
func (r Request) Ingestion() (taskgraph.IngestionResult, bool) {
	for _, res := range r.Dependencies {
		if v, ok := res.(taskgraph.IngestionResult); ok {
			return v, true
		}
	}
	return taskgraph.IngestionResult{}, false
}

// Audio returns the audio-extraction dependency result, if present.
func (r Request) Audio() (taskgraph.AudioResult, bool) {
	for _, res := range r.Dependencies {
		if v, ok := res.(taskgraph.AudioResult); ok {
			return v, true
		}
	}
	return taskgraph.AudioResult{}, false
}

// Keyframes returns the keyframe-extraction dependency result, if present.
func (r Request) Keyframes() (taskgraph.KeyframesResult, bool) {
	for _, res := range r.Dependencies {
		if v, ok := res.(taskgraph.KeyframesResult); ok {
			return v, true
		}
	}
	return taskgraph.KeyframesResult{}, false
}

// Transcription returns the transcription dependency result, if present.
func (r Request) Transcription() (taskgraph.TranscriptionResult, bool) {
	for _, res := range r.Dependencies {
		if v, ok := res.(taskgraph.TranscriptionResult); ok {
			return v, true
		}
	}
	return taskgraph.TranscriptionResult{}, false
}
