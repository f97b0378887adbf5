// Package logging assembles structured slog loggers and formatting helpers used
// across admstream.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so commands can tag log lines
// with the invocation session id. Field-name constants keep frame, flow and
// element identities under the same keys everywhere. The package also
// provides a no-op logger for tests and library callers that pass none.
package logging
