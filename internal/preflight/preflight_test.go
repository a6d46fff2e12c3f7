package preflight

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"mediaflow/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckHTTPService_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	result := CheckHTTPService(context.Background(), "Inference service", srv.URL)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestCheckHTTPService_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	result := CheckHTTPService(context.Background(), "Inference service", srv.URL)
	if result.Passed {
		t.Fatal("expected failure for 5xx response")
	}
}

func TestCheckHTTPService_MissingURL(t *testing.T) {
	result := CheckHTTPService(context.Background(), "Inference service", "")
	if result.Passed {
		t.Fatal("expected failure for missing URL")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.ArtifactsDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.Inference.Enabled = false
	cfg.Embeddings.Enabled = false

	results := RunAll(context.Background(), &cfg)
	// Staging + artifacts + state directory checks.
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
}

func TestRunAll_IncludesServicesWhenEnabled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Paths.StagingDir = t.TempDir()
	cfg.Paths.ArtifactsDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.LogDir = ""
	cfg.Inference.Enabled = true
	cfg.Inference.BaseURL = srv.URL
	cfg.Embeddings.Enabled = false

	results := RunAll(context.Background(), &cfg)
	found := false
	for _, r := range results {
		if r.Name == "Inference service" {
			found = true
			if !r.Passed {
				t.Errorf("inference check failed: %s", r.Detail)
			}
		}
	}
	if !found {
		t.Fatal("expected inference check in results")
	}
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	stub := filepath.Join(binDir, "ffmpeg")
	if err := os.WriteFile(stub, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PATH", binDir)

	statuses := checkBinaries([]Binary{
		{Name: "FFmpeg", Command: "ffmpeg", Purpose: "audio and keyframe extraction"},
		{Name: "FFprobe", Command: "ffprobe", Purpose: "media inspection"},
		{Name: "WhisperX", Command: "", Purpose: "transcription", Optional: true},
	})
	if len(statuses) != 3 {
		t.Fatalf("expected 3 statuses, got %d", len(statuses))
	}
	if !statuses[0].Available {
		t.Fatalf("expected ffmpeg available, got: %s", statuses[0].Detail)
	}
	if statuses[1].Available || statuses[1].Detail != `binary "ffprobe" not found` {
		t.Fatalf("unexpected missing-binary status: %+v", statuses[1])
	}
	if statuses[2].Available || statuses[2].Detail != "command not configured" {
		t.Fatalf("unexpected unconfigured status: %+v", statuses[2])
	}
	if !statuses[2].Optional {
		t.Fatal("expected optional flag carried through")
	}
}

func TestCheckSystemDeps_WhisperXToggle(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Enabled = false
	statuses := CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 2 {
		t.Fatalf("expected 2 statuses with transcription disabled, got %d", len(statuses))
	}

	cfg.Transcription.Enabled = true
	statuses = CheckSystemDeps(context.Background(), &cfg)
	if len(statuses) != 3 || statuses[2].Name != "WhisperX" {
		t.Fatalf("expected whisperx status when enabled, got %+v", statuses)
	}
}
