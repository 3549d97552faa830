package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const userAgent = "Debtwatch-Go/0.1.0"

// NtfySink pushes notifications to an ntfy topic.
type NtfySink struct {
	endpoint string
	client   *http.Client
}

// NewNtfySink builds a push sink for the given topic URL.
func NewNtfySink(topic string, timeout time.Duration) *NtfySink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NtfySink{
		endpoint: strings.TrimSpace(topic),
		client:   &http.Client{Timeout: timeout},
	}
}

// Publish sends the notification as an ntfy message. Severity maps onto ntfy
// tags and priority.
func (s *NtfySink) Publish(ctx context.Context, n Notification) error {
	if s == nil || s.client == nil || s.endpoint == "" {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, strings.NewReader(n.Message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if n.Title != "" {
		req.Header.Set("Title", "Debtwatch - "+n.Title)
	}
	req.Header.Set("Tags", strings.Join([]string{"debtwatch", string(n.Severity)}, ","))
	if priority := severityPriority(n.Severity); priority != "" {
		req.Header.Set("Priority", priority)
	}

	resp, err := s.client.Do(req)
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

func severityPriority(severity Severity) string {
	switch severity {
	case SeverityError:
		return "high"
	case SeverityWarning:
		return "default"
	default:
		return ""
	}
}
