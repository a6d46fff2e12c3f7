package ffprobe_test

import (
	"testing"

	"mediaflow/internal/media/ffprobe"
)

const sampleOutput = `{
  "streams": [
    {"index": 0, "codec_name": "h264", "codec_type": "video", "width": 1920, "height": 1080},
    {"index": 1, "codec_name": "aac", "codec_type": "audio", "sample_rate": "48000", "channels": 2},
    {"index": 2, "codec_name": "ac3", "codec_type": "audio", "sample_rate": "48000", "channels": 6}
  ],
  "format": {
    "filename": "input.mkv",
    "nb_streams": 3,
    "duration": "5400.120000",
    "size": "734003200",
    "format_name": "matroska,webm"
  }
}`

func TestParseExtractsStreams(t *testing.T) {
	result, err := ffprobe.Parse([]byte(sampleOutput))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	video, ok := result.PrimaryVideoStream()
	if !ok || video.CodecName != "h264" || video.Width != 1920 {
		t.Fatalf("unexpected video stream: %+v", video)
	}
	audio, ok := result.PrimaryAudioStream()
	if !ok || audio.SampleRateHz() != 48000 || audio.Channels != 2 {
		t.Fatalf("unexpected audio stream: %+v", audio)
	}
	if got := result.AudioStreamCount(); got != 2 {
		t.Fatalf("unexpected audio stream count: %d", got)
	}
	if got := result.DurationSeconds(); got < 5400 || got > 5401 {
		t.Fatalf("unexpected duration: %f", got)
	}
	if got := result.SizeBytes(); got != 734003200 {
		t.Fatalf("unexpected size: %d", got)
	}
}

func TestParseRejectsGarbage(t *testing.T) {
	if _, err := ffprobe.Parse([]byte("not json")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestParseToleratesMissingFields(t *testing.T) {
	result, err := ffprobe.Parse([]byte(`{"streams": [], "format": {}}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := result.PrimaryVideoStream(); ok {
		t.Fatal("expected no video stream")
	}
	if result.DurationSeconds() != 0 || result.SizeBytes() != 0 {
		t.Fatal("expected zero duration and size")
	}
}
