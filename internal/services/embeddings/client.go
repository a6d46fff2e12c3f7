package embeddings

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

// HTTPDoer describes the HTTP client used by the embeddings service.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the embedding extraction service.
type Client struct {
	baseURL string
	client  HTTPDoer
}

// NewClient constructs an embeddings client for the given base URL.
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

type imagesRequest struct {
	Paths []string `json:"paths"`
}

type textsRequest struct {
	Texts []string `json:"texts"`
}

type audioRequest struct {
	Path string `json:"path"`
}

type vectorsResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// EmbedImages returns one vector per keyframe image.
func (c *Client) EmbedImages(ctx context.Context, paths []string) ([][]float32, error) {
	var resp vectorsResponse
	if err := c.post(ctx, "/v1/embed/images", imagesRequest{Paths: paths}, &resp); err != nil {
		return nil, fmt.Errorf("embed images: %w", err)
	}
	return resp.Vectors, nil
}

// EmbedTexts returns one vector per transcript segment.
func (c *Client) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	var resp vectorsResponse
	if err := c.post(ctx, "/v1/embed/texts", textsRequest{Texts: texts}, &resp); err != nil {
		return nil, fmt.Errorf("embed texts: %w", err)
	}
	return resp.Vectors, nil
}

// EmbedAudio returns one vector per clip for the extracted audio file.
func (c *Client) EmbedAudio(ctx context.Context, path string) ([][]float32, error) {
	var resp vectorsResponse
	if err := c.post(ctx, "/v1/embed/audio", audioRequest{Path: path}, &resp); err != nil {
		return nil, fmt.Errorf("embed audio: %w", err)
	}
	return resp.Vectors, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil || c.client == nil || c.baseURL == "" {
		return fmt.Errorf("embeddings service not configured")
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
		return fmt.Errorf("call embeddings service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("embeddings service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
