package notifications

import (
	"context"
	"fmt"
	"io"
	"sync"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

// ConsoleSink prints notifications as single lines for interactive use.
type ConsoleSink struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

// NewConsoleSink builds a sink writing to out, with ANSI color when colorize
// is true.
func NewConsoleSink(out io.Writer, colorize bool) *ConsoleSink {
	return &ConsoleSink{out: out, colorize: colorize}
}

// Publish renders the notification as "LABEL title: message".
func (s *ConsoleSink) Publish(_ context.Context, n Notification) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	label := severityLabel(n.Severity)
	line := label + " " + n.Title
	if n.Message != "" {
		line += ": " + n.Message
	}
	if n.Options.Action != nil && n.Options.Action.Label != "" {
		line += fmt.Sprintf(" [%s]", n.Options.Action.Label)
	}
	if s.colorize {
		if color := severityColor(n.Severity); color != "" {
			line = color + line + ansiReset
		}
	}
	_, err := fmt.Fprintln(s.out, line)
	return err
}

func severityLabel(severity Severity) string {
	switch severity {
	case SeveritySuccess:
		return "OK"
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARN"
	default:
		return "INFO"
	}
}

func severityColor(severity Severity) string {
	switch severity {
	case SeveritySuccess:
		return ansiGreen
	case SeverityError:
		return ansiRed
	case SeverityWarning:
		return ansiYellow
	case SeverityInfo:
		return ansiBlue
	default:
		return ""
	}
}
