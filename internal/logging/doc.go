// Package logging assembles the slog loggers used by the kbp engine and CLI.
//
// It owns the console and JSON handlers, level and output plumbing, and the
// attribute helpers that keep warnings shaped the same way everywhere: a
// cause, an impact, and a hint for what to do next. NewNop is the logger for
// tests and for engine callers that do not care about diagnostics.
package logging
