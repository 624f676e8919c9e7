// Package main hosts the kbp CLI entrypoint and command graph.
//
// The Cobra-based command tree wraps the internal/kbp engine: checking files
// for structural and timing problems, dumping lyrics as text, listing styles,
// rewriting files in canonical form, and browsing the check history. It
// centralizes configuration resolution and logger construction so
// subcommands only translate flags into engine options.
package main
