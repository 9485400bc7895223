// Package database provides SQLite-based storage for patch-run history.
// Each run records its settings and per-file match statistics so trends
// across runs can be inspected with the history command.
package database
