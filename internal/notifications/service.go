package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"mediaflow/internal/config"
)

const userAgent = "Mediaflow-Go/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifyJobStarted(ctx context.Context, jobID, inputPath string) error
	NotifyJobCompleted(ctx context.Context, jobID string, completed, failed int, duration time.Duration) error
	NotifyBulkCompleted(ctx context.Context, processed, degraded int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		settings: cfg.Notifications,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	settings config.Notifications
}

func (n *ntfyService) NotifyJobStarted(ctx context.Context, jobID, inputPath string) error {
	if !n.settings.JobStarted {
		return nil
	}
	data := payload{
		title:   "Mediaflow - Job Started",
		message: fmt.Sprintf("Processing %s (%s)", strings.TrimSpace(inputPath), jobID),
		tags:    []string{"mediaflow", "job", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, jobID string, completed, failed int, duration time.Duration) error {
	if !n.settings.JobCompleted {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if failed == 0 {
		title = "Mediaflow - Job Complete"
		message = fmt.Sprintf("Job %s complete: %d tasks in %s", jobID, completed, duration)
	} else {
		title = "Mediaflow - Job Complete (degraded)"
		message = fmt.Sprintf("Job %s complete: %d succeeded, %d failed in %s", jobID, completed, failed, duration)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"mediaflow", "job", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBulkCompleted(ctx context.Context, processed, degraded int, duration time.Duration) error {
	if !n.settings.Bulk {
		return nil
	}
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}

	var title, message string
	if degraded == 0 {
		title = "Mediaflow - Batch Complete"
		message = fmt.Sprintf("Batch complete: %d jobs processed in %s", processed, duration)
	} else {
		title = "Mediaflow - Batch Complete (with errors)"
		message = fmt.Sprintf("Batch complete: %d jobs processed, %d degraded in %s", processed, degraded, duration)
	}
	data := payload{
		title:   title,
		message: message,
		tags:    []string{"mediaflow", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.settings.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Mediaflow - Error",
		message:  builder.String(),
		tags:     []string{"mediaflow", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Mediaflow - Test",
		message:  "Notification system test",
		tags:     []string{"mediaflow", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyJobStarted(context.Context, string, string) error { return nil }
func (noopService) NotifyJobCompleted(context.Context, string, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyBulkCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                   { return nil }
func (noopService) TestNotification(context.Context) error                             { return nil }
