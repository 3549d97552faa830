// Package logging builds slog loggers for debtwatch commands.
//
// It supports console and JSON output, optional log files alongside stdout,
// and a progress sampler that keeps upload progress logs readable by only
// emitting when the percentage crosses bucket boundaries or the phase
// changes.
package logging
