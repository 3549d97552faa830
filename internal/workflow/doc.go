// Package workflow sequences the three guided stages of the technical-debt
// dashboard: Import, Configuration, and Analytics.
//
// The Orchestrator computes per-step completion and accessibility live from
// step data on every read rather than caching flags, gates navigation on
// predecessor completion, and persists the whole workflow state through a
// Store on every mutation. A corrupt persisted blob is silently replaced
// with defaults; it is never surfaced to the caller.
package workflow
