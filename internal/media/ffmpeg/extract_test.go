package ffmpeg_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaflow/internal/media/ffmpeg"
)

func TestExtractAudioBuildsMonoWavArgs(t *testing.T) {
	extractor := ffmpeg.NewExtractor("ffmpeg")

	var gotArgs []string
	extractor.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		return nil
	})

	if err := extractor.ExtractAudio(context.Background(), "/in/movie.mkv", "/out/audio.wav"); err != nil {
		t.Fatalf("ExtractAudio: %v", err)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"-ac 1", "-ar 16000", "pcm_s16le", "/in/movie.mkv", "/out/audio.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args, got %q", want, joined)
		}
	}
}

func TestExtractAudioRejectsEmptySource(t *testing.T) {
	extractor := ffmpeg.NewExtractor("")
	if err := extractor.ExtractAudio(context.Background(), "", "/out/audio.wav"); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestExtractKeyframesCollectsProducedFrames(t *testing.T) {
	destDir := filepath.Join(t.TempDir(), "frames")
	extractor := ffmpeg.NewExtractor("ffmpeg")
	extractor.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		for _, frame := range []string{"keyframe_0001.jpg", "keyframe_0002.jpg"} {
			if err := os.WriteFile(filepath.Join(destDir, frame), []byte("jpg"), 0o644); err != nil {
				return err
			}
		}
		return nil
	})

	paths, err := extractor.ExtractKeyframes(context.Background(), "/in/movie.mkv", destDir, 8, 0.4)
	if err != nil {
		t.Fatalf("ExtractKeyframes: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 frames, got %v", paths)
	}
	if !strings.HasSuffix(paths[0], "keyframe_0001.jpg") {
		t.Fatalf("expected ordered frames, got %v", paths)
	}
}

func TestDetectScenesParsesTimestamps(t *testing.T) {
	extractor := ffmpeg.NewExtractor("ffmpeg")
	extractor.WithCaptureRunner(func(ctx context.Context, name string, args ...string) (string, error) {
		return strings.Join([]string{
			"[Parsed_metadata_1 @ 0x0] frame:0    pts:12012   pts_time:12.012",
			"[Parsed_metadata_1 @ 0x0] lavfi.scene_score=0.52",
			"[Parsed_metadata_1 @ 0x0] frame:1    pts:48048   pts_time:48.048",
			"unrelated output line",
		}, "\n"), nil
	})

	boundaries, err := extractor.DetectScenes(context.Background(), "/in/movie.mkv", 0.4)
	if err != nil {
		t.Fatalf("DetectScenes: %v", err)
	}
	if len(boundaries) != 2 || boundaries[0] != 12.012 || boundaries[1] != 48.048 {
		t.Fatalf("unexpected boundaries: %v", boundaries)
	}
}
