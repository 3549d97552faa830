// Package main hosts the debtwatch CLI entrypoint and command graph.
//
// The Cobra-based command tree translates terminal invocations into CSV
// uploads against the analytics backend, workflow navigation, upload history
// queries, and configuration scaffolding. It centralizes configuration
// resolution, state store access, and structured logging setup so subcommands
// can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
