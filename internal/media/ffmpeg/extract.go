package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Extractor runs ffmpeg for audio, keyframe, and scene extraction.
type Extractor struct {
	binary        string
	commandRunner func(ctx context.Context, name string, args ...string) error
	captureRunner func(ctx context.Context, name string, args ...string) (string, error)
}

// NewExtractor creates an extractor using the given ffmpeg binary name.
func NewExtractor(binary string) *Extractor {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &Extractor{binary: binary}
}

// WithCommandRunner sets a custom command runner (for testing).
func (e *Extractor) WithCommandRunner(runner func(ctx context.Context, name string, args ...string) error) {
	e.commandRunner = runner
}

// WithCaptureRunner sets a custom output-capturing runner (for testing).
func (e *Extractor) WithCaptureRunner(runner func(ctx context.Context, name string, args ...string) (string, error)) {
	e.captureRunner = runner
}

// ExtractAudio extracts the primary audio stream from source into a mono
// 16 kHz WAV file at dest, the format downstream speech stages expect.
func (e *Extractor) ExtractAudio(ctx context.Context, source, dest string) error {
	if strings.TrimSpace(source) == "" {
		return fmt.Errorf("extract audio: empty source")
	}
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-map", "0:a:0",
		"-vn",
		"-sn",
		"-dn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		dest,
	}
	if err := e.run(ctx, args...); err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w", err)
	}
	return nil
}

// ExtractKeyframes writes up to maxFrames scene-change keyframes from source
// into destDir and returns the produced image paths in frame order.
func (e *Extractor) ExtractKeyframes(ctx context.Context, source, destDir string, maxFrames int, sceneThreshold float64) ([]string, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("extract keyframes: empty source")
	}
	if maxFrames <= 0 {
		return nil, fmt.Errorf("extract keyframes: invalid max frames %d", maxFrames)
	}
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return nil, fmt.Errorf("extract keyframes: %w", err)
	}

	pattern := filepath.Join(destDir, "keyframe_%04d.jpg")
	args := []string{
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", source,
		"-vf", fmt.Sprintf("select='gt(scene,%s)'", formatThreshold(sceneThreshold)),
		"-fps_mode", "vfr",
		"-frames:v", strconv.Itoa(maxFrames),
		pattern,
	}
	if err := e.run(ctx, args...); err != nil {
		return nil, fmt.Errorf("ffmpeg extract keyframes: %w", err)
	}

	matches, err := filepath.Glob(filepath.Join(destDir, "keyframe_*.jpg"))
	if err != nil {
		return nil, fmt.Errorf("extract keyframes: %w", err)
	}
	sort.Strings(matches)
	return matches, nil
}

// DetectScenes returns the timestamps, in seconds, of detected scene changes.
func (e *Extractor) DetectScenes(ctx context.Context, source string, threshold float64) ([]float64, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("detect scenes: empty source")
	}
	args := []string{
		"-hide_banner",
		"-i", source,
		"-vf", fmt.Sprintf("select='gt(scene,%s)',metadata=print", formatThreshold(threshold)),
		"-an",
		"-f", "null",
		"-",
	}
	output, err := e.runCapture(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("ffmpeg detect scenes: %w", err)
	}
	return parseSceneTimestamps(output), nil
}

func (e *Extractor) run(ctx context.Context, args ...string) error {
	if e.commandRunner != nil {
		return e.commandRunner(ctx, e.binary, args...)
	}
	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return nil
}

func (e *Extractor) runCapture(ctx context.Context, args ...string) (string, error) {
	if e.captureRunner != nil {
		return e.captureRunner(ctx, e.binary, args...)
	}
	cmd := exec.CommandContext(ctx, e.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%w: %s", err, strings.TrimSpace(string(output)))
	}
	return string(output), nil
}

func formatThreshold(threshold float64) string {
	if threshold <= 0 || threshold >= 1 {
		threshold = 0.4
	}
	return strconv.FormatFloat(threshold, 'f', -1, 64)
}

// parseSceneTimestamps extracts pts_time values from the metadata filter's
// frame logs.
func parseSceneTimestamps(output string) []float64 {
	timestamps := make([]float64, 0)
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "pts_time:")
		if idx < 0 {
			continue
		}
		value := strings.TrimSpace(line[idx+len("pts_time:"):])
		if cut := strings.IndexAny(value, " \t"); cut >= 0 {
			value = value[:cut]
		}
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			continue
		}
		timestamps = append(timestamps, parsed)
	}
	return timestamps
}
