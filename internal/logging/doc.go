// Package logging assembles structured slog loggers and formatting helpers used
// across the vistopia CLI.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so workflow code can tag log
// lines with the run ID, show ID, and episode number automatically. An optional
// log directory receives a JSON copy of every record alongside the console
// stream. The package also provides a no-op logger for tests.
package logging
