package whisperx_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"mediaflow/internal/services/whisperx"
)

func TestTranscribeParsesJSONOutput(t *testing.T) {
	outputDir := t.TempDir()
	service := whisperx.NewService(whisperx.Config{Model: "large-v3-turbo"}, "whisperx")

	var gotArgs []string
	service.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		gotArgs = args
		payload := `{"language": "EN", "segments": [
			{"start": 0.0, "end": 2.5, "text": " hello world "},
			{"start": 2.5, "end": 4.0, "text": "second segment"}
		]}`
		return os.WriteFile(filepath.Join(outputDir, "audio.json"), []byte(payload), 0o644)
	})

	transcript, err := service.Transcribe(context.Background(), "/staging/audio.wav", outputDir)
	if err != nil {
		t.Fatalf("Transcribe: %v", err)
	}
	if transcript.Language != "en" {
		t.Fatalf("expected normalized language, got %q", transcript.Language)
	}
	if len(transcript.Segments) != 2 || transcript.Segments[0].Text != "hello world" {
		t.Fatalf("unexpected segments: %+v", transcript.Segments)
	}
	if got := transcript.Text(); got != "hello world second segment" {
		t.Fatalf("unexpected joined text: %q", got)
	}

	joined := strings.Join(gotArgs, " ")
	for _, want := range []string{"--model large-v3-turbo", "--output_format json", "/staging/audio.wav"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in args, got %q", want, joined)
		}
	}
}

func TestTranscribeRequiresSource(t *testing.T) {
	service := whisperx.NewService(whisperx.Config{}, "")
	if _, err := service.Transcribe(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error for empty source")
	}
}

func TestNormalizeLanguage(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"EN", "en"},
		{"eng", "en"},
		{"de", "de"},
		{"", ""},
		{"!!", "!!"},
	}
	for _, tc := range cases {
		if got := whisperx.NormalizeLanguage(tc.in); got != tc.want {
			t.Errorf("NormalizeLanguage(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLanguageDisplayName(t *testing.T) {
	if got := whisperx.LanguageDisplayName("en"); got != "English" {
		t.Fatalf("unexpected display name: %q", got)
	}
}
