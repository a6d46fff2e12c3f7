package whisperx

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// Config captures runtime settings for WhisperX transcription.
type Config struct {
	// Model is the WhisperX model to use (e.g., "large-v3-turbo").
	Model string
	// CUDAEnabled enables GPU acceleration.
	CUDAEnabled bool
	// Language forces the transcript language instead of auto-detection.
	Language string
}

// WhisperX configuration constants.
const (
	DefaultModel   = "large-v3-turbo"
	BatchSize      = "4"
	OutputFormat   = "json"
	CPUDevice      = "cpu"
	CUDADevice     = "cuda"
	CPUComputeType = "float32"
)

// Command name for the external tool.
const Command = "whisperx"

// Service provides WhisperX transcription capabilities.
type Service struct {
	cfg           Config
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
}

// NewService creates a WhisperX service with the given configuration.
func NewService(cfg Config, binary string) *Service {
	if binary == "" {
		binary = Command
	}
	return &Service{cfg: cfg, binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (s *Service) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	s.commandRunner = runner
}

// Model returns the configured model name for logging.
func (s *Service) Model() string {
	if s.cfg.Model != "" {
		return s.cfg.Model
	}
	return DefaultModel
}

// Segment is one span of recognized speech.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// Transcript is the parsed WhisperX output for one audio file.
type Transcript struct {
	Language string    `json:"language"`
	Segments []Segment `json:"segments"`
}

// Transcribe runs WhisperX against the extracted audio file and parses the
// JSON transcript it writes into outputDir.
func (s *Service) Transcribe(ctx context.Context, source, outputDir string) (Transcript, error) {
	var transcript Transcript

	if source == "" {
		return transcript, fmt.Errorf("transcribe: source path required")
	}
	if outputDir == "" {
		outputDir = filepath.Dir(source)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return transcript, fmt.Errorf("transcribe: ensure output dir: %w", err)
	}

	if err := s.run(ctx, s.binary, s.buildArgs(source, outputDir)...); err != nil {
		return transcript, fmt.Errorf("whisperx: %w", err)
	}

	baseName := strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	jsonPath := filepath.Join(outputDir, baseName+".json")
	transcript, err := loadTranscript(jsonPath)
	if err != nil {
		return transcript, fmt.Errorf("whisperx: %w", err)
	}
	transcript.Language = NormalizeLanguage(transcript.Language)
	return transcript, nil
}

func (s *Service) buildArgs(source, outputDir string) []string {
	model := s.cfg.Model
	if model == "" {
		model = DefaultModel
	}

	args := []string{
		source,
		"--model", model,
		"--batch_size", BatchSize,
		"--output_dir", outputDir,
		"--output_format", OutputFormat,
	}
	if s.cfg.CUDAEnabled {
		args = append(args, "--device", CUDADevice)
	} else {
		args = append(args, "--device", CPUDevice, "--compute_type", CPUComputeType)
	}
	if lang := strings.TrimSpace(s.cfg.Language); lang != "" {
		args = append(args, "--language", lang)
	}
	return args
}

func (s *Service) run(ctx context.Context, name string, args ...string) error {
	if s.commandRunner != nil {
		return s.commandRunner(ctx, name, args...)
	}
	cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}

func loadTranscript(path string) (Transcript, error) {
	var transcript Transcript
	data, err := os.ReadFile(path)
	if err != nil {
		return transcript, fmt.Errorf("read transcript: %w", err)
	}
	if err := json.Unmarshal(data, &transcript); err != nil {
		return transcript, fmt.Errorf("parse transcript: %w", err)
	}
	for i := range transcript.Segments {
		transcript.Segments[i].Text = strings.TrimSpace(transcript.Segments[i].Text)
	}
	return transcript, nil
}

// Text joins all segments into one plain-text transcript.
func (t Transcript) Text() string {
	parts := make([]string, 0, len(t.Segments))
	for _, segment := range t.Segments {
		if segment.Text != "" {
			parts = append(parts, segment.Text)
		}
	}
	return strings.Join(parts, " ")
}
