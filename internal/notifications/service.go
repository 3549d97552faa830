package notifications

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"debtwatch/internal/config"
)

// Severity tags a notification for presentation.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Action describes an optional follow-up the user can trigger from a
// notification.
type Action struct {
	Label   string
	OnClick func()
}

// Options carries optional notification behavior. A Duration of zero means the
// notification persists until dismissed by the sink.
type Options struct {
	Duration time.Duration
	Action   *Action
}

// Option mutates notification Options.
type Option func(*Options)

// WithDuration sets how long a sink should keep the notification visible.
func WithDuration(d time.Duration) Option {
	return func(o *Options) { o.Duration = d }
}

// WithAction attaches a follow-up action to the notification.
func WithAction(label string, onClick func()) Option {
	return func(o *Options) { o.Action = &Action{Label: label, OnClick: onClick} }
}

// Notification is a single event delivered to sinks.
type Notification struct {
	Severity Severity
	Title    string
	Message  string
	Options  Options
}

// Service defines the notification surface exposed to the pipeline and
// orchestrator.
type Service interface {
	Success(ctx context.Context, title, message string, opts ...Option) error
	Error(ctx context.Context, title, message string, opts ...Option) error
	Warning(ctx context.Context, title, message string, opts ...Option) error
	Info(ctx context.Context, title, message string, opts ...Option) error
}

// Sink receives notifications from a Dispatcher.
type Sink interface {
	Publish(ctx context.Context, n Notification) error
}

// Dispatcher fans notifications out to every registered sink.
type Dispatcher struct {
	sinks []Sink
}

// NewDispatcher builds a dispatcher over the provided sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks}
}

// NewService builds the notification bridge from config. Console output goes
// to out when non-nil; an ntfy push sink is added when a topic is configured.
// With no sinks at all, a noop service is returned.
func NewService(cfg *config.Config, out io.Writer, colorize bool) Service {
	var sinks []Sink
	if out != nil {
		sinks = append(sinks, NewConsoleSink(out, colorize))
	}
	if cfg != nil {
		if topic := strings.TrimSpace(cfg.Notifications.NtfyTopic); topic != "" {
			timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
			sinks = append(sinks, NewNtfySink(topic, timeout))
		}
	}
	if len(sinks) == 0 {
		return Noop()
	}
	return NewDispatcher(sinks...)
}

func (d *Dispatcher) publish(ctx context.Context, severity Severity, title, message string, opts []Option) error {
	var options Options
	for _, opt := range opts {
		opt(&options)
	}
	n := Notification{
		Severity: severity,
		Title:    strings.TrimSpace(title),
		Message:  strings.TrimSpace(message),
		Options:  options,
	}
	var errs []error
	for _, sink := range d.sinks {
		if err := sink.Publish(ctx, n); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Success delivers a success notification.
func (d *Dispatcher) Success(ctx context.Context, title, message string, opts ...Option) error {
	return d.publish(ctx, SeveritySuccess, title, message, opts)
}

// Error delivers an error notification.
func (d *Dispatcher) Error(ctx context.Context, title, message string, opts ...Option) error {
	return d.publish(ctx, SeverityError, title, message, opts)
}

// Warning delivers a warning notification.
func (d *Dispatcher) Warning(ctx context.Context, title, message string, opts ...Option) error {
	return d.publish(ctx, SeverityWarning, title, message, opts)
}

// Info delivers an informational notification.
func (d *Dispatcher) Info(ctx context.Context, title, message string, opts ...Option) error {
	return d.publish(ctx, SeverityInfo, title, message, opts)
}

// Noop returns a service that drops every notification.
func Noop() Service {
	return noopService{}
}

type noopService struct{}

func (noopService) Success(context.Context, string, string, ...Option) error { return nil }
func (noopService) Error(context.Context, string, string, ...Option) error   { return nil }
func (noopService) Warning(context.Context, string, string, ...Option) error { return nil }
func (noopService) Info(context.Context, string, string, ...Option) error    { return nil }
