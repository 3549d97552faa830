package notifications_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"debtwatch/internal/config"
	"debtwatch/internal/notifications"
)

type captureSink struct {
	events []notifications.Notification
}

func (c *captureSink) Publish(_ context.Context, n notifications.Notification) error {
	c.events = append(c.events, n)
	return nil
}

func TestDispatcherFansOutToAllSinks(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	svc := notifications.NewDispatcher(first, second)

	if err := svc.Warning(context.Background(), "Overwrite Warning", "recent upload exists"); err != nil {
		t.Fatalf("Warning failed: %v", err)
	}

	for i, sink := range []*captureSink{first, second} {
		if len(sink.events) != 1 {
			t.Fatalf("sink %d: expected 1 event, got %d", i, len(sink.events))
		}
		if sink.events[0].Severity != notifications.SeverityWarning {
			t.Fatalf("sink %d: unexpected severity %q", i, sink.events[0].Severity)
		}
	}
}

func TestDispatcherAppliesOptions(t *testing.T) {
	sink := &captureSink{}
	svc := notifications.NewDispatcher(sink)

	err := svc.Error(context.Background(), "Upload Failed", "network error",
		notifications.WithDuration(0),
		notifications.WithAction("Retry", func() {}))
	if err != nil {
		t.Fatalf("Error failed: %v", err)
	}
	got := sink.events[0]
	if got.Options.Duration != 0 {
		t.Fatalf("expected sticky duration 0, got %v", got.Options.Duration)
	}
	if got.Options.Action == nil || got.Options.Action.Label != "Retry" {
		t.Fatalf("expected retry action, got %#v", got.Options.Action)
	}
}

func TestConsoleSinkRendersLine(t *testing.T) {
	var buf bytes.Buffer
	sink := notifications.NewConsoleSink(&buf, false)
	svc := notifications.NewDispatcher(sink)

	if err := svc.Success(context.Background(), "Upload Complete", "120 rows imported"); err != nil {
		t.Fatalf("Success failed: %v", err)
	}
	line := buf.String()
	if !strings.HasPrefix(line, "OK Upload Complete: 120 rows imported") {
		t.Fatalf("unexpected console line %q", line)
	}
}

func TestNtfySinkSendsHeaders(t *testing.T) {
	var gotTitle, gotTags, gotPriority, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTitle = r.Header.Get("Title")
		gotTags = r.Header.Get("Tags")
		gotPriority = r.Header.Get("Priority")
		buf := new(bytes.Buffer)
		_, _ = buf.ReadFrom(r.Body)
		gotBody = buf.String()
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	sink := notifications.NewNtfySink(server.URL, time.Second)
	err := sink.Publish(context.Background(), notifications.Notification{
		Severity: notifications.SeverityError,
		Title:    "Upload Failed",
		Message:  "server unavailable",
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if gotTitle != "Debtwatch - Upload Failed" {
		t.Fatalf("unexpected title %q", gotTitle)
	}
	if gotTags != "debtwatch,error" {
		t.Fatalf("unexpected tags %q", gotTags)
	}
	if gotPriority != "high" {
		t.Fatalf("unexpected priority %q", gotPriority)
	}
	if gotBody != "server unavailable" {
		t.Fatalf("unexpected body %q", gotBody)
	}
}

func TestNewServiceReturnsNoopWithoutSinks(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg, nil, false)
	if err := svc.Info(context.Background(), "Hello", ""); err != nil {
		t.Fatalf("expected noop service to return nil, got %v", err)
	}
}
