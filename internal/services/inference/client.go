package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HTTPDoer describes the HTTP client used by the inference service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the inference sidecar that hosts the detection, OCR, and
// diarization models.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient constructs an inference client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// NewClientWithDoer constructs a client with a custom HTTP doer (used in tests).
func NewClientWithDoer(baseURL string, doer HTTPDoer) *Client {
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		client:  doer,
	}
}

// Detection is one labeled region reported by a detector model.
type Detection struct {
	Label      string     `json:"label"`
	Confidence float64    `json:"confidence"`
	Box        [4]float64 `json:"box"`
}

// FrameDetections groups detections by the keyframe they were found in.
type FrameDetections struct {
	FramePath  string      `json:"frame_path"`
	Detections []Detection `json:"detections"`
}

// FrameText is text recognized in one keyframe.
type FrameText struct {
	FramePath string `json:"frame_path"`
	Text      string `json:"text"`
}

// SpeakerTurn attributes a time span to one speaker label.
type SpeakerTurn struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

type framesRequest struct {
	Frames []string `json:"frames"`
}

type detectionsResponse struct {
	Frames []FrameDetections `json:"frames"`
}

type ocrResponse struct {
	Frames []FrameText `json:"frames"`
}

type diarizeRequest struct {
	AudioPath string `json:"audio_path"`
}

type diarizeResponse struct {
	Turns []SpeakerTurn `json:"turns"`
}

// DetectObjects runs the object detector over the given keyframes.
func (c *Client) DetectObjects(ctx context.Context, framePaths []string) ([]FrameDetections, error) {
	var resp detectionsResponse
	if err := c.post(ctx, "/v1/detect/objects", framesRequest{Frames: framePaths}, &resp); err != nil {
		return nil, fmt.Errorf("detect objects: %w", err)
	}
	return resp.Frames, nil
}

// DetectFaces runs the face detector over the given keyframes.
func (c *Client) DetectFaces(ctx context.Context, framePaths []string) ([]FrameDetections, error) {
	var resp detectionsResponse
	if err := c.post(ctx, "/v1/detect/faces", framesRequest{Frames: framePaths}, &resp); err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}
	return resp.Frames, nil
}

// RecognizeText runs OCR over the given keyframes.
func (c *Client) RecognizeText(ctx context.Context, framePaths []string) ([]FrameText, error) {
	var resp ocrResponse
	if err := c.post(ctx, "/v1/ocr", framesRequest{Frames: framePaths}, &resp); err != nil {
		return nil, fmt.Errorf("recognize text: %w", err)
	}
	return resp.Frames, nil
}

// Diarize produces a speaker timeline for the extracted audio file.
func (c *Client) Diarize(ctx context.Context, audioPath string) ([]SpeakerTurn, error) {
	var resp diarizeResponse
	if err := c.post(ctx, "/v1/diarize", diarizeRequest{AudioPath: audioPath}, &resp); err != nil {
		return nil, fmt.Errorf("diarize: %w", err)
	}
	return resp.Turns, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil || c.client == nil || c.baseURL == "" {
		return fmt.Errorf("inference service not configured")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("call inference service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("inference service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
