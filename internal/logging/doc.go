// Package logging builds slog loggers for the CLI and pipeline components.
//
// It supports console and JSON output formats, mirrors log output into the
// configured log directory, and provides attribute helpers plus a no-op
// logger for tests. Components obtain a scoped logger through
// NewComponentLogger so every record carries a component attribute.
package logging
