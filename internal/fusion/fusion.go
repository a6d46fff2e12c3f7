package fusion

import (
	"sort"

	"mediaflow/internal/taskgraph"
)

// Inputs carries the upstream results available to the fusion stage. Every
// field is optional; a nil field contributes nothing to the timeline.
type Inputs struct {
	Transcription  *taskgraph.TranscriptionResult
	Diarization    *taskgraph.DiarizationResult
	Objects        *taskgraph.ObjectDetectionResult
	Faces          *taskgraph.FaceDetectionResult
	OCR            *taskgraph.OCRResult
	Scenes         *taskgraph.SceneDetectionResult
	Keyframes      *taskgraph.KeyframesResult
	DurationSecond float64
}

// CollectInputs extracts the fusion inputs from a dependency result map,
// tolerating any combination of missing entries.
func CollectInputs(deps map[string]taskgraph.Result) Inputs {
	var in Inputs
	for _, res := range deps {
		switch v := res.(type) {
		case taskgraph.TranscriptionResult:
			in.Transcription = &v
		case taskgraph.DiarizationResult:
			in.Diarization = &v
		case taskgraph.ObjectDetectionResult:
			in.Objects = &v
		case taskgraph.FaceDetectionResult:
			in.Faces = &v
		case taskgraph.OCRResult:
			in.OCR = &v
		case taskgraph.SceneDetectionResult:
			in.Scenes = &v
		case taskgraph.KeyframesResult:
			in.Keyframes = &v
		case taskgraph.IngestionResult:
			in.DurationSecond = v.DurationSeconds
		}
	}
	return in
}

// Build assembles the unified timeline from whatever inputs are present.
// Speech events carry speaker attribution when diarization overlaps them;
// visual events are anchored at their keyframe timestamps.
func Build(in Inputs) taskgraph.FusionResult {
	var events []taskgraph.TimelineEvent

	if in.Transcription != nil {
		for _, seg := range in.Transcription.Segments {
			ev := taskgraph.TimelineEvent{
				Start: seg.Start,
				End:   seg.End,
				Kind:  "speech",
				Text:  seg.Text,
			}
			if in.Diarization != nil {
				ev.Speaker = speakerAt(in.Diarization.Turns, seg.Start, seg.End)
			}
			events = append(events, ev)
		}
	} else if in.Diarization != nil {
		// Without a transcript the speaker turns still mark who spoke when.
		for _, turn := range in.Diarization.Turns {
			events = append(events, taskgraph.TimelineEvent{
				Start:   turn.Start,
				End:     turn.End,
				Kind:    "speech",
				Speaker: turn.Speaker,
			})
		}
	}

	frameTimes := frameTimestamps(in.Keyframes)
	if in.Objects != nil {
		events = append(events, frameEvents("objects", in.Objects.Frames, frameTimes)...)
	}
	if in.Faces != nil {
		events = append(events, frameEvents("faces", in.Faces.Frames, frameTimes)...)
	}
	if in.OCR != nil {
		for _, f := range in.OCR.Frames {
			if f.Text == "" {
				continue
			}
			ts := frameTimes[f.FramePath]
			events = append(events, taskgraph.TimelineEvent{
				Start: ts,
				End:   ts,
				Kind:  "text",
				Text:  f.Text,
			})
		}
	}

	if in.Scenes != nil {
		for _, boundary := range in.Scenes.Boundaries {
			events = append(events, taskgraph.TimelineEvent{
				Start: boundary,
				End:   boundary,
				Kind:  "scene",
			})
		}
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start < events[j].Start
	})
	return taskgraph.FusionResult{Events: events}
}

func frameEvents(kind string, frames []taskgraph.FrameDetections, frameTimes map[string]float64) []taskgraph.TimelineEvent {
	var events []taskgraph.TimelineEvent
	for _, f := range frames {
		if len(f.Detections) == 0 {
			continue
		}
		labels := make([]string, 0, len(f.Detections))
		for _, d := range f.Detections {
			labels = append(labels, d.Label)
		}
		ts := frameTimes[f.FramePath]
		events = append(events, taskgraph.TimelineEvent{
			Start:  ts,
			End:    ts,
			Kind:   kind,
			Labels: labels,
		})
	}
	return events
}

func frameTimestamps(keyframes *taskgraph.KeyframesResult) map[string]float64 {
	times := make(map[string]float64)
	if keyframes == nil {
		return times
	}
	for i, path := range keyframes.Paths {
		if i < len(keyframes.Timestamps) {
			times[path] = keyframes.Timestamps[i]
		}
	}
	return times
}

// speakerAt returns the speaker whose turn overlaps the span the most, or
// empty when no turn overlaps it.
func speakerAt(turns []taskgraph.SpeakerTurn, start, end float64) string {
	var best string
	var bestOverlap float64
	for _, turn := range turns {
		overlap := min(end, turn.End) - max(start, turn.Start)
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = turn.Speaker
		}
	}
	return best
}
