// Package notifications is the side channel the upload pipeline and workflow
// orchestrator use to surface user-facing events without rendering anything
// themselves.
//
// The Service interface exposes four severity-tagged calls (success, error,
// warning, info). A Dispatcher fans events out to registered sinks: a console
// sink for interactive CLI use and an ntfy push sink when a topic is
// configured. Services are injected into constructors; there is no
// process-wide singleton.
package notifications
