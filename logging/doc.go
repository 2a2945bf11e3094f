// Package logging provides a tiny abstraction over slog so ActionMesh
// components depend on a minimal interface (Logger) while applications plug in
// any structured logger. NewLogger builds a configured slog-backed
// implementation with component / request scoping for the HTTP server and CLI.
package logging
